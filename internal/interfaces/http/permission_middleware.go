package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
)

// permissionChecker contrato mínimo para el middleware; lo implementa *permissions.Checker.
type permissionChecker interface {
	HasPermission(ctx context.Context, role entity.Role, permCode string) (bool, error)
}

// adminAuthorizer confirma contra la tabla de usuarios que el actor sigue siendo admin activo.
type adminAuthorizer interface {
	Authorize(ctx context.Context, actorID string) (*entity.User, error)
}

// RequireActiveAdmin re-valida el perfil del token en la base. Usar después de RequireRole("admin").
func RequireActiveAdmin(authz adminAuthorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := authz.Authorize(c.UserContext(), GetUserID(c)); err != nil {
			return writeError(c, err)
		}
		return c.Next()
	}
}

// RequirePermission exige que el rol del token tenga permCode en la matriz. Usar después de AuthMiddleware.
//   - 403 FORBIDDEN si el permiso no está concedido.
//   - 503 PERMISSION_CHECK_FAILED si no se pudo consultar.
func RequirePermission(checker permissionChecker, permCode string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := actorRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		ok, err := checker.HasPermission(c.UserContext(), role, permCode)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:      "PERMISSION_CHECK_FAILED",
				Message:   "no se pudo verificar el permiso, intente más tarde",
				Retryable: true,
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "permiso requerido: " + permCode,
			})
		}
		return c.Next()
	}
}
