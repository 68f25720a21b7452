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

	"github.com/richland-auto/inventory-api/internal/application/audit"
	"github.com/richland-auto/inventory-api/internal/application/auth"
	"github.com/richland-auto/inventory-api/internal/application/catalog"
	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/application/purchasing"
	"github.com/richland-auto/inventory-api/internal/application/reporting"
	"github.com/richland-auto/inventory-api/internal/infrastructure/mail"
	infrapdf "github.com/richland-auto/inventory-api/internal/infrastructure/pdf"
	"github.com/richland-auto/inventory-api/internal/infrastructure/postgres"
	"github.com/richland-auto/inventory-api/internal/infrastructure/queue"
	httpRouter "github.com/richland-auto/inventory-api/internal/interfaces/http"
	"github.com/richland-auto/inventory-api/internal/worker"
	"github.com/richland-auto/inventory-api/pkg/config"
	"github.com/richland-auto/inventory-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Low-stock alert pipeline. Off by default; movements work the same
	// either way, they just stop enqueueing notifications.
	var notifier ledger.AlertNotifier
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	if cfg.Alerts.Enabled {
		rdb, err := queue.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection")
		}
		defer rdb.Close()
		notifier = worker.NewDispatcher(rdb, log)

		mailer := mail.NewMailer(cfg.SMTP)
		alertPool := worker.NewAlertPool(rdb, mailer, cfg.Alerts.Recipients, log)
		alertPool.Start(workerCtx, cfg.Alerts.Workers)
		log.Info().Int("workers", cfg.Alerts.Workers).Msg("low-stock alert pool started")
	}

	ledgerUC := ledger.NewUseCase(txRunner, txRepo, productRepo, notifier, log)
	productUC := catalog.NewProductUseCase(txRunner, productRepo, categoryRepo, orderRepo, ledgerUC)
	categoryUC := catalog.NewCategoryUseCase(txRunner, categoryRepo, productRepo)
	supplierUC := catalog.NewSupplierUseCase(txRunner, supplierRepo)
	purchaseUC := purchasing.NewUseCase(txRunner, orderRepo, supplierRepo, productRepo, ledgerUC)
	auditUC := audit.NewUseCase(auditRepo)
	authUC := auth.NewUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	pdfGenerator := infrapdf.NewMarotoReportGenerator()
	exportUC := reporting.NewExportUseCase(productRepo, txRepo, pdfGenerator, cfg.App.ShopName)
	importUC := reporting.NewImportUseCase(productRepo, categoryRepo, productUC, categoryUC)
	dashboardUC := reporting.NewDashboardUseCase(analyticsRepo, productRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Rich Land Auto Supply API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		CategoryUC:  categoryUC,
		SupplierUC:  supplierUC,
		LedgerUC:    ledgerUC,
		PurchaseUC:  purchaseUC,
		AuditUC:     auditUC,
		ExportUC:    exportUC,
		ImportUC:    importUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
