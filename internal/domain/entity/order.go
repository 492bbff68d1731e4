package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Phase fase departamental que tiene la orden en un momento dado.
type Phase string

// Fases en su orden fijo de avance.
const (
	PhaseComercial   Phase = "comercial"
	PhaseInventarios Phase = "inventarios"
	PhaseProduccion  Phase = "produccion"
	PhaseLogistica   Phase = "logistica"
	PhaseFacturacion Phase = "facturacion"
	PhaseFinanciera  Phase = "financiera"
)

// Phases devuelve las seis fases en orden de avance.
func Phases() []Phase {
	return []Phase{PhaseComercial, PhaseInventarios, PhaseProduccion, PhaseLogistica, PhaseFacturacion, PhaseFinanciera}
}

// IsValid indica si la fase es una de las seis conocidas.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseComercial, PhaseInventarios, PhaseProduccion, PhaseLogistica, PhaseFacturacion, PhaseFinanciera:
		return true
	}
	return false
}

// Label nombre legible de la fase para mensajes al usuario.
func (p Phase) Label() string {
	switch p {
	case PhaseComercial:
		return "Comercial"
	case PhaseInventarios:
		return "Inventarios"
	case PhaseProduccion:
		return "Producción"
	case PhaseLogistica:
		return "Logística"
	case PhaseFacturacion:
		return "Facturación"
	case PhaseFinanciera:
		return "Financiera"
	}
	return string(p)
}

// Status estado de ciclo de vida de la orden, ortogonal a la fase.
type Status string

// Estados válidos.
const (
	StatusAbierta Status = "abierta"
	StatusCerrada Status = "cerrada"
	StatusAnulada Status = "anulada"
)

// IsValid indica si el estado es conocido.
func (s Status) IsValid() bool {
	switch s {
	case StatusAbierta, StatusCerrada, StatusAnulada:
		return true
	}
	return false
}

// Order representa una orden de pedido de un cliente.
// Las asociaciones (cliente, proyecto, clase, tipo de pago, despacho) son referencias opacas.
type Order struct {
	ID               int64
	Code             string // OP-000123
	Phase            Phase
	Status           Status
	ClientID         *int64
	ProjectID        *int64
	OrderClassID     *int64
	PaymentTypeID    *int64
	DispatchMethodID *int64
	CreatedBy        string
	Total            decimal.Decimal
	Notes            string
	CreatedAt        time.Time // inmutable
	UpdatedAt        time.Time
}
