package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/application/users"
)

// UserHandler administración de usuarios (sólo admin).
type UserHandler struct {
	uc *users.AdminUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *users.AdminUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Admin godoc
// @Summary      Administrar usuarios
// @Description  Un único endpoint; action = list | create | update | password | delete.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AdminUsersRequest  true  "acción y datos"
// @Success      200   {object}  dto.AdminUsersResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/users [post]
func (h *UserHandler) Admin(c *fiber.Ctx) error {
	var in dto.AdminUsersRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Handle(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	if in.Action == dto.UserActionCreate {
		return c.Status(fiber.StatusCreated).JSON(out)
	}
	return c.JSON(out)
}
