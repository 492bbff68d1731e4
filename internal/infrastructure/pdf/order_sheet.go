// Package pdf genera la hoja imprimible de la orden de pedido.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + título      │  Código OP + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ESTADO: Fase actual | Estado | Responsable de la fase      │
//	│  REFERENCIAS: Cliente | Proyecto | Clase | Pago | Despacho  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECORRIDO: una fila por fase (completada / actual)         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + OBSERVACIONES                                      │
//	│  FOOTER: QR con el código de la orden                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Ordenes-api/internal/application/orders"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/workflow"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDone    = &props.Color{Red: 30, Green: 120, Blue: 60}
)

var _ orders.DocumentGenerator = (*OrderSheetGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// OrderSheetGenerator implementa orders.DocumentGenerator usando Maroto v2.
type OrderSheetGenerator struct {
	companyName string
}

// NewOrderSheetGenerator construye el generador con el nombre que encabeza la hoja.
func NewOrderSheetGenerator(companyName string) *OrderSheetGenerator {
	return &OrderSheetGenerator{companyName: companyName}
}

// GenerateOrderPDF genera el PDF y devuelve sus bytes.
func (g *OrderSheetGenerator) GenerateOrderPDF(_ context.Context, o *entity.Order) ([]byte, error) {
	if o == nil {
		return nil, fmt.Errorf("pdf: orden nil")
	}
	if !o.Phase.IsValid() {
		return nil, fmt.Errorf("pdf: fase %q desconocida", o.Phase)
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Orden de pedido "+o.Code, true).
		WithAuthor(g.companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(o, g.companyName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(statusRow(o))
	m.AddRows(referencesRows(o)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(progressRows(o.Phase)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(o))
	if o.Notes != "" {
		m.AddRows(notesRow(o.Notes))
	}
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(o))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(o *entity.Order, companyName string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(companyName, "Órdenes de pedido"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ORDEN DE PEDIDO", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(o.Code, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2,
			}),
			text.New("Creada: "+o.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
			text.New("Actualizada: "+o.UpdatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func statusRow(o *entity.Order) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Size: 10, Top: 6}),
		)
	}
	return row.New(14).Add(
		cell("FASE ACTUAL", o.Phase.Label()),
		cell("ESTADO", strings.ToUpper(string(o.Status))),
		cell("RESPONSABLE", string(workflow.RequiredRole(o.Phase))),
	)
}

func referencesRows(o *entity.Order) []core.Row {
	refs := []struct {
		label string
		id    *int64
	}{
		{"Cliente", o.ClientID},
		{"Proyecto", o.ProjectID},
		{"Clase de orden", o.OrderClassID},
		{"Tipo de pago", o.PaymentTypeID},
		{"Método de despacho", o.DispatchMethodID},
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("REFERENCIAS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	for _, r := range refs {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(r.label+":", props.Text{Size: 8, Top: 1, Left: 2})),
			col.New(8).Add(text.New(formatRef(r.id), props.Text{Size: 8, Top: 1, Color: colorGray})),
		))
	}
	return rows
}

// progressRows una fila por fase; las anteriores a la actual se marcan completadas.
func progressRows(current entity.Phase) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("RECORRIDO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	reached := true
	for i, p := range entity.Phases() {
		state, color := "Pendiente", colorGray
		switch {
		case p == current:
			state, color = "Actual", colorPrimary
			reached = false
		case reached:
			state, color = "Completada", colorDone
		}
		rows = append(rows, row.New(5).Add(
			col.New(1).Add(text.New(strconv.Itoa(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(p.Label(), props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(string(workflow.RequiredRole(p)), props.Text{Size: 8, Top: 1, Color: colorGray})),
			col.New(3).Add(text.New(state, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Color: color})),
		))
	}
	return rows
}

func totalRow(o *entity.Order) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("MONTO TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New("$"+formatMoney(o.Total.StringFixed(2)), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

func notesRow(notes string) core.Row {
	return row.New(20).Add(col.New(12).Add(
		text.New("OBSERVACIONES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(notes, props.Text{Size: 8, Top: 6, Color: colorGray}),
	))
}

func footerRow(o *entity.Order) core.Row {
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(o.Code, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(text.New("Documento interno de seguimiento. El estado vigente de la orden "+
			"es el registrado en el sistema.", props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatRef(id *int64) string {
	if id == nil {
		return "—"
	}
	return "#" + strconv.FormatInt(*id, 10)
}

// formatMoney formato es-CO: puntos de miles y coma decimal.
// Ej: "1234567.50" → "1.234.567,50"
func formatMoney(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := sign + string(buf)
	if hasFrac {
		out += "," + frac
	}
	return out
}
