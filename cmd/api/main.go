package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Ordenes-api/internal/application/auth"
	"github.com/jhoicas/Ordenes-api/internal/application/orders"
	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/application/users"
	infracache "github.com/jhoicas/Ordenes-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Ordenes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Ordenes-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Ordenes-api/internal/interfaces/http"
	"github.com/jhoicas/Ordenes-api/pkg/config"
	"github.com/jhoicas/Ordenes-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Caché de has_permission: opcional, sin REDIS_ADDR se consulta siempre la base.
	var permCache permissions.PermissionCache
	if cfg.Redis.Enabled() {
		client, err := infracache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché de permisos desactivada")
		} else {
			defer client.Close()
			permCache = infracache.NewPermissionCache(client)
		}
	}

	userRepo := postgres.NewUserRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	permRepo := postgres.NewPermissionRepository(pool)
	auditRepo := postgres.NewPermissionAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	pdfGenerator := infrapdf.NewOrderSheetGenerator(cfg.App.CompanyName)
	orderUC := orders.NewOrderUseCase(orderRepo, pdfGenerator)
	transitions := orders.NewTransitionService(orderRepo, log)

	permAdminUC := permissions.NewAdminUseCase(permRepo, txRunner, auditRepo, permCache, log)
	checker := permissions.NewChecker(permRepo, permCache, cfg.Redis.PermissionCacheTTL, log)
	usersUC := users.NewAdminUseCase(userRepo, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Órdenes de Pedido API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:             authUC,
		OrderUC:            orderUC,
		Transitions:        transitions,
		PermissionsAdminUC: permAdminUC,
		Checker:            checker,
		UsersAdminUC:       usersUC,
		JWTSecret:          cfg.JWT.Secret,
		LoginRatePerMinute: cfg.HTTP.LoginRatePerMinute,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
