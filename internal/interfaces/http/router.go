package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jhoicas/Ordenes-api/internal/application/auth"
	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/application/orders"
	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/application/users"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC             *auth.AuthUseCase
	OrderUC            *orders.OrderUseCase
	Transitions        *orders.TransitionService
	PermissionsAdminUC *permissions.AdminUseCase
	Checker            *permissions.Checker
	UsersAdminUC       *users.AdminUseCase
	JWTSecret          string
	LoginRatePerMinute int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público, login con límite de intentos por IP)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", loginLimiter(deps.LoginRatePerMinute), authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	// Órdenes
	orderHandler := NewOrderHandler(deps.OrderUC, deps.Transitions)
	ordersGroup := protected.Group("/orders")
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/board", orderHandler.Board)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Post("/:id/advance", orderHandler.Advance)
	ordersGroup.Get("/:id/pdf", RequirePermission(deps.Checker, entity.PermOrderPDF), orderHandler.PDF)

	// Permisos
	permHandler := NewPermissionHandler(deps.PermissionsAdminUC, deps.Checker)
	protected.Get("/permissions/check", permHandler.Check)

	// Administración (sólo admin)
	admin := protected.Group("/admin", RequireRole(string(entity.RoleAdmin)), RequireActiveAdmin(deps.UsersAdminUC))
	admin.Get("/permissions", permHandler.Matrix)
	admin.Put("/permissions", permHandler.Update)
	userHandler := NewUserHandler(deps.UsersAdminUC)
	admin.Post("/users", userHandler.Admin)
}

func loginLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		perMinute = 10
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:      "TOO_MANY_REQUESTS",
				Message:   "demasiados intentos de inicio de sesión, espere un minuto",
				Retryable: true,
			})
		},
	})
}
