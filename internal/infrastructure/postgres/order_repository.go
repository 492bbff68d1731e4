package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, codigo, fase, estado, cliente_id, proyecto_id, clase_orden_id, tipo_pago_id,
	metodo_despacho_id, creado_por, monto_total, observaciones, created_at, updated_at`

// OrderRepo implementación de OrderRepository sobre la tabla ordenes_pedido (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la orden y asigna ID y código (OP-000123) a partir de la secuencia.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		WITH seq AS (SELECT nextval('ordenes_pedido_id_seq') AS id)
		INSERT INTO ordenes_pedido (id, codigo, fase, estado, cliente_id, proyecto_id, clase_orden_id,
			tipo_pago_id, metodo_despacho_id, creado_por, monto_total, observaciones, created_at, updated_at)
		SELECT seq.id, 'OP-' || LPAD(seq.id::text, 6, '0'), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		FROM seq
		RETURNING id, codigo`
	var createdBy *string
	if o.CreatedBy != "" {
		createdBy = &o.CreatedBy
	}
	err := r.q.QueryRow(ctx, query,
		o.Phase, o.Status, o.ClientID, o.ProjectID, o.OrderClassID, o.PaymentTypeID, o.DispatchMethodID,
		createdBy, o.Total, o.Notes, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID, &o.Code)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referencia de catálogo inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert orden: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID. Devuelve (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM ordenes_pedido WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get orden: %w", err)
	}
	return o, nil
}

// UpdatePhase compare-and-set sobre la fase que se abandona.
func (r *OrderRepo) UpdatePhase(ctx context.Context, c repository.PhaseChange) error {
	query := `
		UPDATE ordenes_pedido SET fase = $3, estado = $4, updated_at = $5
		WHERE id = $1 AND fase = $2`
	tag, err := r.q.Exec(ctx, query, c.OrderID, c.FromPhase, c.ToPhase, c.Status, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update fase orden: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ListByFilter lista órdenes por fase, estado y búsqueda libre (código u observaciones), más recientes primero.
func (r *OrderRepo) ListByFilter(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	var (
		where []string
		args  []any
	)
	if f.Phase != "" {
		args = append(args, f.Phase)
		where = append(where, fmt.Sprintf("fase = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("estado = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		where = append(where, fmt.Sprintf("(codigo ILIKE $%d OR observaciones ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM ordenes_pedido`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ordenes: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan orden: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o         entity.Order
		createdBy *string
		notes     *string
	)
	err := row.Scan(
		&o.ID, &o.Code, &o.Phase, &o.Status, &o.ClientID, &o.ProjectID, &o.OrderClassID, &o.PaymentTypeID,
		&o.DispatchMethodID, &createdBy, &o.Total, &notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		o.CreatedBy = *createdBy
	}
	if notes != nil {
		o.Notes = *notes
	}
	return &o, nil
}
