package orders

import (
	"context"

	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
)

// DocumentGenerator genera la hoja imprimible de una orden de pedido.
type DocumentGenerator interface {
	GenerateOrderPDF(ctx context.Context, order *entity.Order) ([]byte, error)
}
