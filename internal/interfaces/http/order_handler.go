package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/application/orders"
)

// OrderHandler tablero, consulta, creación y avance de fase de órdenes de pedido.
type OrderHandler struct {
	uc          *orders.OrderUseCase
	transitions *orders.TransitionService
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase, transitions *orders.TransitionService) *OrderHandler {
	return &OrderHandler{uc: uc, transitions: transitions}
}

func orderID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("VALIDATION", "id de orden inválido")
	}
	return id, nil
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        fase    query  string  false  "fase"
// @Param        estado  query  string  false  "estado"
// @Param        q       query  string  false  "búsqueda por código u observaciones"
// @Param        limit   query  int     false  "1..100 (default 20)"
// @Param        offset  query  int     false  "offset"
// @Success      200  {object}  dto.OrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	in := dto.OrderListRequest{
		PageRequest: dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
		Phase:       c.Query("fase"),
		Status:      c.Query("estado"),
		Search:      c.Query("q"),
	}
	in.DefaultPage()
	if err := validateStruct(in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), actorRole(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear orden (fase comercial)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateOrderRequest  true  "orden"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), actorRole(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Board godoc
// @Summary      Tablero kanban de órdenes abiertas
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.BoardResponse
// @Router       /api/orders/board [get]
func (h *OrderHandler) Board(c *fiber.Ctx) error {
	out, err := h.uc.Board(c.UserContext(), actorRole(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de orden
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "id de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id, actorRole(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Advance godoc
// @Summary      Avanzar la orden a la fase siguiente
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "id de la orden"
// @Success      200  {object}  dto.AdvanceOrderResponse
// @Failure      403  {object}  dto.ErrorResponse  "el rol no es dueño de la fase actual"
// @Failure      409  {object}  dto.ErrorResponse  "NO_NEXT_PHASE o CONFLICT"
// @Failure      503  {object}  dto.ErrorResponse  "PERSISTENCE_ERROR (reintentable)"
// @Router       /api/orders/{id}/advance [post]
func (h *OrderHandler) Advance(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	role := actorRole(c)
	updated, err := h.transitions.AdvanceByID(c.UserContext(), id, role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AdvanceOrderResponse{
		Order:   *orders.ToOrderResponse(updated, role),
		Message: orders.SuccessMessage(updated),
	})
}

// PDF godoc
// @Summary      Hoja PDF de la orden
// @Tags         orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  int  true  "id de la orden"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/pdf [get]
func (h *OrderHandler) PDF(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	doc, filename, err := h.uc.Document(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}
