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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/boulangerie-api/internal/application/analytics"
	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/application/usecase"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/documents"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/rediscache"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/boulangerie-api/internal/interfaces/http"
	"github.com/jhoicas/boulangerie-api/pkg/config"
	"github.com/jhoicas/boulangerie-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén de documentos")
	}
	defer store.Close()

	materialRepo := documents.NewRawMaterialRepository(store)
	movementRepo := documents.NewStockMovementRepository(store)
	supplierRepo := documents.NewSupplierRepository(store)
	salesRepo := documents.NewSalesRepository(store)

	snapshot := inventory.NewSnapshot(materialRepo, movementRepo, log)
	invalidators := []inventory.Invalidator{snapshot}

	// Caché de analítica en Redis (opcional)
	var cache *rediscache.Cache
	if cfg.Redis.Enabled() {
		client, err := rediscache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		cache = rediscache.New(client, cfg.Redis.CacheTTL, log)
		invalidators = append(invalidators, cache)
		// movimientos registrados por otras instancias
		cache.Listen(ctx, snapshot.MarkStale)
		log.Info().Dur("ttl", cfg.Redis.CacheTTL).Msg("caché de analítica activa")
	}

	txRunner := documents.NewTxRunner(store)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, log, invalidators...)
	materialUC := usecase.NewMaterialUseCase(materialRepo, txRunner, log, invalidators...)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	movementUC := usecase.NewMovementUseCase(movementRepo)
	lowStockUC := inventory.NewLowStockUseCase(snapshot, cfg.Ledger.LowStockFactor)
	var reportCache analytics.Cache
	if cache != nil {
		reportCache = cache
	}
	reportUC := analytics.NewReportUseCase(snapshot, salesRepo, reportCache)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Boulangerie API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		MaterialUC: materialUC,
		SupplierUC: supplierUC,
		MovementUC: movementUC,
		Ledger:     ledgerUC,
		LowStock:   lowStockUC,
		Reports:    reportUC,
		JWTSecret:  cfg.JWT.Secret,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
