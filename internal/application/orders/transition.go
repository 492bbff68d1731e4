package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
	"github.com/jhoicas/Ordenes-api/internal/domain/workflow"
	"github.com/jhoicas/Ordenes-api/pkg/logger"
)

// TransitionService valida y aplica un único avance de fase sobre una orden.
type TransitionService struct {
	repo repository.OrderRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewTransitionService construye el servicio de transición.
func NewTransitionService(repo repository.OrderRepository, log *logger.Logger) *TransitionService {
	return &TransitionService{repo: repo, log: log.Component("orders.transition"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (s *TransitionService) WithClock(now func() time.Time) *TransitionService {
	s.now = now
	return s
}

// AdvancePhase mueve la orden a la fase siguiente.
//
// El permiso se evalúa sobre la fase que se abandona, no sobre la de destino.
// La orden recibida nunca se modifica: se devuelve una copia actualizada sólo
// después de que el almacenamiento confirme la escritura.
//
// Errores:
//   - domain.ErrInvalidPhase  la orden trae una fase fuera de las seis conocidas.
//   - domain.ErrNoNextPhase   la orden ya está en financiera.
//   - domain.ErrForbidden     el rol del actor no es dueño de la fase actual.
//   - domain.ErrConflict      otra petición avanzó la orden primero.
//   - domain.ErrPersistence   fallo del backend (reintentable).
func (s *TransitionService) AdvancePhase(ctx context.Context, order *entity.Order, actorRole entity.Role) (*entity.Order, error) {
	if order == nil {
		return nil, domain.ErrInvalidInput
	}
	if !order.Phase.IsValid() {
		return nil, fmt.Errorf("%w: orden %d con fase %q", domain.ErrInvalidPhase, order.ID, order.Phase)
	}

	target, ok := workflow.NextPhase(order.Phase)
	if !ok {
		return nil, domain.ErrNoNextPhase
	}
	if !workflow.CanEdit(actorRole, order.Phase) {
		return nil, domain.ErrForbidden
	}

	updated := *order
	updated.Phase = target
	updated.Status = entity.StatusAbierta
	updated.UpdatedAt = s.now()

	err := s.repo.UpdatePhase(ctx, repository.PhaseChange{
		OrderID:   order.ID,
		FromPhase: order.Phase,
		ToPhase:   updated.Phase,
		Status:    updated.Status,
		UpdatedAt: updated.UpdatedAt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.log.Error().Err(err).Int64("order_id", order.ID).Str("from", string(order.Phase)).Msg("persistir avance de fase")
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.log.Info().
		Int64("order_id", order.ID).
		Str("from", string(order.Phase)).
		Str("to", string(updated.Phase)).
		Str("actor_role", string(actorRole)).
		Msg("orden avanzada de fase")
	return &updated, nil
}

// AdvanceByID carga la orden y delega en AdvancePhase.
func (s *TransitionService) AdvanceByID(ctx context.Context, id int64, actorRole entity.Role) (*entity.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return s.AdvancePhase(ctx, order, actorRole)
}

// SuccessMessage texto que la interfaz muestra tras un avance exitoso.
func SuccessMessage(order *entity.Order) string {
	return fmt.Sprintf("Orden %s avanzada a la fase %s", order.Code, order.Phase.Label())
}
