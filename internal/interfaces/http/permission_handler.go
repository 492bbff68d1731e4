package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
)

// PermissionHandler verificación de permisos y administración de la matriz.
type PermissionHandler struct {
	admin   *permissions.AdminUseCase
	checker *permissions.Checker
}

// NewPermissionHandler construye el handler.
func NewPermissionHandler(admin *permissions.AdminUseCase, checker *permissions.Checker) *PermissionHandler {
	return &PermissionHandler{admin: admin, checker: checker}
}

func actor(c *fiber.Ctx) permissions.Actor {
	return permissions.Actor{ID: GetUserID(c), Username: GetUsername(c), Role: actorRole(c)}
}

// Check godoc
// @Summary      has_permission para el rol del token
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        code  query  string  true  "perm_code"
// @Success      200   {object}  dto.PermissionCheckResponse
// @Router       /api/permissions/check [get]
func (h *PermissionHandler) Check(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return writeError(c, badRequest("VALIDATION", "code es requerido"))
	}
	ok, err := h.checker.HasPermission(c.UserContext(), actorRole(c), code)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "PERMISSION_CHECK_FAILED", Message: "no se pudo verificar el permiso", Retryable: true,
		})
	}
	return c.JSON(dto.PermissionCheckResponse{PermCode: code, Allowed: ok})
}

// Matrix godoc
// @Summary      Catálogo de permisos y matriz rol × permiso
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PermissionMatrixResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/admin/permissions [get]
func (h *PermissionHandler) Matrix(c *fiber.Ctx) error {
	out, err := h.admin.Matrix(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar la matriz en un único lote
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdatePermissionsRequest  true  "updates"
// @Success      200   {object}  dto.UpdatePermissionsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/admin/permissions [put]
func (h *PermissionHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePermissionsRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.admin.Update(c.UserContext(), actor(c), in.Updates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
