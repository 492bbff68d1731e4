package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
	"github.com/jhoicas/Ordenes-api/internal/domain/workflow"
)

const boardColumnLimit = 100

// OrderUseCase casos de uso de lectura y creación de órdenes.
type OrderUseCase struct {
	repo      repository.OrderRepository
	generator DocumentGenerator
	now       func() time.Time
}

// NewOrderUseCase construye el caso de uso. generator puede ser nil si no se exponen PDF.
func NewOrderUseCase(repo repository.OrderRepository, generator DocumentGenerator) *OrderUseCase {
	return &OrderUseCase{repo: repo, generator: generator, now: time.Now}
}

// Create registra una orden nueva en fase comercial y estado abierta.
// Sólo un actor comercial (o admin) puede crearla.
func (uc *OrderUseCase) Create(ctx context.Context, actorID string, actorRole entity.Role, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if !workflow.CanEdit(actorRole, entity.PhaseComercial) {
		return nil, domain.ErrForbidden
	}
	if in.ClientID == nil || in.Total.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	order := &entity.Order{
		Phase:            entity.PhaseComercial,
		Status:           entity.StatusAbierta,
		ClientID:         in.ClientID,
		ProjectID:        in.ProjectID,
		OrderClassID:     in.OrderClassID,
		PaymentTypeID:    in.PaymentTypeID,
		DispatchMethodID: in.DispatchMethodID,
		CreatedBy:        actorID,
		Total:            in.Total,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return ToOrderResponse(order, actorRole), nil
}

// GetByID obtiene una orden; devuelve domain.ErrNotFound si no existe.
func (uc *OrderUseCase) GetByID(ctx context.Context, id int64, actorRole entity.Role) (*dto.OrderResponse, error) {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return ToOrderResponse(order, actorRole), nil
}

// List lista órdenes con filtros y paginación.
func (uc *OrderUseCase) List(ctx context.Context, actorRole entity.Role, in dto.OrderListRequest) (*dto.OrderListResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.ListByFilter(ctx, repository.OrderFilter{
		Phase:  entity.Phase(in.Phase),
		Status: entity.Status(in.Status),
		Search: in.Search,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *ToOrderResponse(o, actorRole))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// Board agrupa las órdenes abiertas por fase, una columna por fase en el orden fijo.
func (uc *OrderUseCase) Board(ctx context.Context, actorRole entity.Role) (*dto.BoardResponse, error) {
	phases := entity.Phases()
	board := &dto.BoardResponse{Columns: make([]dto.BoardColumn, 0, len(phases))}
	for _, p := range phases {
		list, err := uc.repo.ListByFilter(ctx, repository.OrderFilter{
			Phase:  p,
			Status: entity.StatusAbierta,
			Limit:  boardColumnLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: tablero fase %s: %v", domain.ErrPersistence, p, err)
		}
		col := dto.BoardColumn{Phase: string(p), Label: p.Label(), Orders: make([]dto.OrderResponse, 0, len(list))}
		for _, o := range list {
			col.Orders = append(col.Orders, *ToOrderResponse(o, actorRole))
		}
		board.Columns = append(board.Columns, col)
	}
	return board, nil
}

// Document genera el PDF de la orden y el nombre de archivo sugerido.
func (uc *OrderUseCase) Document(ctx context.Context, id int64) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("pdf: generador no configurado")
	}
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("%w: pdf: obtener orden: %v", domain.ErrPersistence, err)
	}
	if order == nil {
		return nil, "", domain.ErrNotFound
	}
	pdf, err := uc.generator.GenerateOrderPDF(ctx, order)
	if err != nil {
		return nil, "", err
	}
	return pdf, order.Code + ".pdf", nil
}

// ToOrderResponse mapea la entidad a su DTO. CanAdvance refleja si el actor puede avanzarla ahora.
func ToOrderResponse(o *entity.Order, actorRole entity.Role) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	canAdvance := false
	if o.Phase.IsValid() && !workflow.IsTerminal(o.Phase) {
		canAdvance = workflow.CanEdit(actorRole, o.Phase)
	}
	return &dto.OrderResponse{
		ID:               o.ID,
		Code:             o.Code,
		Phase:            string(o.Phase),
		PhaseLabel:       o.Phase.Label(),
		Status:           string(o.Status),
		ClientID:         o.ClientID,
		ProjectID:        o.ProjectID,
		OrderClassID:     o.OrderClassID,
		PaymentTypeID:    o.PaymentTypeID,
		DispatchMethodID: o.DispatchMethodID,
		CreatedBy:        o.CreatedBy,
		Total:            o.Total,
		Notes:            o.Notes,
		CanAdvance:       canAdvance,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
