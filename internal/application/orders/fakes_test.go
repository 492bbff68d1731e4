package orders_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
)

var errBackend = errors.New("connection reset by peer")

// memOrderRepo implementación en memoria de repository.OrderRepository.
type memOrderRepo struct {
	orders    map[int64]*entity.Order
	nextID    int64
	updates   []repository.PhaseChange
	updateErr error
	listErr   error
	getErr    error
}

func newMemOrderRepo(orders ...*entity.Order) *memOrderRepo {
	r := &memOrderRepo{orders: map[int64]*entity.Order{}, nextID: 1}
	for _, o := range orders {
		cp := *o
		r.orders[o.ID] = &cp
		if o.ID >= r.nextID {
			r.nextID = o.ID + 1
		}
	}
	return r
}

func (r *memOrderRepo) Create(_ context.Context, order *entity.Order) error {
	order.ID = r.nextID
	order.Code = fmt.Sprintf("OP-%06d", order.ID)
	r.nextID++
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) UpdatePhase(_ context.Context, change repository.PhaseChange) error {
	r.updates = append(r.updates, change)
	if r.updateErr != nil {
		return r.updateErr
	}
	o, ok := r.orders[change.OrderID]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Phase != change.FromPhase {
		return domain.ErrConflict
	}
	o.Phase = change.ToPhase
	o.Status = change.Status
	o.UpdatedAt = change.UpdatedAt
	return nil
}

func (r *memOrderRepo) ListByFilter(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*entity.Order
	for id := int64(1); id < r.nextID; id++ {
		o, ok := r.orders[id]
		if !ok {
			continue
		}
		if f.Phase != "" && o.Phase != f.Phase {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(o.Code, f.Search) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}
