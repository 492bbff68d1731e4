package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
)

// OrderFilter criterios de listado (tablero kanban y búsqueda).
type OrderFilter struct {
	Phase  entity.Phase  // vacío = todas
	Status entity.Status // vacío = todos
	Search string        // coincide con el código de la orden o las notas
	Limit  int
	Offset int
}

// PhaseChange cambio de fase con compare-and-set sobre la fase que se abandona.
type PhaseChange struct {
	OrderID   int64
	FromPhase entity.Phase
	ToPhase   entity.Phase
	Status    entity.Status
	UpdatedAt time.Time
}

// OrderRepository define el puerto de persistencia para Order (DIP).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	// UpdatePhase aplica el cambio sólo si la orden sigue en FromPhase.
	// Devuelve domain.ErrConflict si ninguna fila coincide.
	UpdatePhase(ctx context.Context, change PhaseChange) error
	ListByFilter(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
}
