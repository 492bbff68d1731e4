package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest entrada para crear una orden de pedido (siempre nace en fase comercial).
type CreateOrderRequest struct {
	ClientID         *int64          `json:"cliente_id" validate:"required,gt=0"`
	ProjectID        *int64          `json:"proyecto_id" validate:"omitempty,gt=0"`
	OrderClassID     *int64          `json:"clase_orden_id" validate:"omitempty,gt=0"`
	PaymentTypeID    *int64          `json:"tipo_pago_id" validate:"omitempty,gt=0"`
	DispatchMethodID *int64          `json:"metodo_despacho_id" validate:"omitempty,gt=0"`
	Total            decimal.Decimal `json:"monto_total"`
	Notes            string          `json:"observaciones" validate:"max=2000"`
}

// OrderListRequest filtros de listado.
type OrderListRequest struct {
	PageRequest
	Phase  string `query:"fase" validate:"omitempty,oneof=comercial inventarios produccion logistica facturacion financiera"`
	Status string `query:"estado" validate:"omitempty,oneof=abierta cerrada anulada"`
	Search string `query:"q" validate:"max=100"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID               int64           `json:"id"`
	Code             string          `json:"codigo"`
	Phase            string          `json:"fase"`
	PhaseLabel       string          `json:"fase_label"`
	Status           string          `json:"estado"`
	ClientID         *int64          `json:"cliente_id,omitempty"`
	ProjectID        *int64          `json:"proyecto_id,omitempty"`
	OrderClassID     *int64          `json:"clase_orden_id,omitempty"`
	PaymentTypeID    *int64          `json:"tipo_pago_id,omitempty"`
	DispatchMethodID *int64          `json:"metodo_despacho_id,omitempty"`
	CreatedBy        string          `json:"creado_por"`
	Total            decimal.Decimal `json:"monto_total"`
	Notes            string          `json:"observaciones,omitempty"`
	CanAdvance       bool            `json:"puede_avanzar"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// OrderListResponse listado paginado de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// AdvanceOrderResponse resultado de avanzar de fase, con el mensaje a mostrar.
type AdvanceOrderResponse struct {
	Order   OrderResponse `json:"orden"`
	Message string        `json:"message"`
}

// BoardColumn columna del tablero kanban (una por fase, en orden fijo).
type BoardColumn struct {
	Phase  string          `json:"fase"`
	Label  string          `json:"label"`
	Orders []OrderResponse `json:"ordenes"`
}

// BoardResponse tablero completo.
type BoardResponse struct {
	Columns []BoardColumn `json:"columnas"`
}
