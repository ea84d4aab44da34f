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

	"github.com/jhoicas/inventario-lotes/internal/application/finance"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/application/sales"
	"github.com/jhoicas/inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/importer"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/lock"
	infrapdf "github.com/jhoicas/inventario-lotes/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/report"
	httpRouter "github.com/jhoicas/inventario-lotes/internal/interfaces/http"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
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

	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	productRepo := postgres.NewProductRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	orderRepo := postgres.NewSalesOrderRepository(pool)
	accountRepo := postgres.NewBankAccountRepository(pool)
	transactionRepo := postgres.NewFinancialTransactionRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout())

	// Bloqueo por producto: Redis si hay varias réplicas, local si no.
	var locker inventory.Locker = lock.NewLocal()
	if cfg.Redis.Addr != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedis(rdb, 2*cfg.Inventory.LockTimeout(), cfg.Inventory.LockTimeout(), log.Zerolog())
		log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo distribuido activo")
	}

	engine := inventory.NewEngine(txRunner, locker, inventory.EngineConfig{
		MaxRetries:   cfg.Inventory.MaxRetries,
		RetryBackoff: cfg.Inventory.RetryBackoff(),
	}, log.Zerolog())
	ledger := inventory.NewLedger(movementRepo)
	reportUC := inventory.NewReportUseCase(ledger, productRepo, batchRepo, infrapdf.NewKardexGenerator(), report.NewExcelExporter())
	importUC := inventory.NewImportUseCase(engine, productRepo, log.Component("import"))
	productUC := usecase.NewProductUseCase(productRepo, batchRepo)

	// Finanzas consume los eventos de venta ya confirmados.
	saleRecorder := finance.NewSaleRecorder(txRunner, cfg.Finance.DefaultAccountID, log.Zerolog())
	salesUC := sales.NewUseCase(engine, orderRepo, log.Zerolog(), saleRecorder)
	accountUC := finance.NewAccountUseCase(accountRepo, transactionRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    16 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario por lotes API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		Engine:      engine,
		Ledger:      ledger,
		Reports:     reportUC,
		ImportUC:    importUC,
		ParseImport: importer.Parse,
		SalesUC:     salesUC,
		AccountUC:   accountUC,
		JWTSecret:   cfg.JWT.Secret,
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
