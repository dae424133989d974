package main

import (
	"context"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rentapi/internal/config"
	"rentapi/internal/database"
	"rentapi/internal/database/migration"
	"rentapi/internal/deadline"
	handlers "rentapi/internal/http/handler"
	"rentapi/internal/http/middleware"
	"rentapi/internal/logger"
	"rentapi/internal/numbering"
	"rentapi/internal/otel"
	"rentapi/internal/repository/postgres"
	"rentapi/internal/scheduler"
	"rentapi/internal/service"
	"rentapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logger.New()
	defer log.Sync()

	// Initialize tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(context.Background(), time.UTC)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(context.Background(), db, log); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Object storage for monthly report artifacts
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	docRepo := postgres.NewDocumentPostgres(db)
	contractRepo := postgres.NewContractPostgres(db)
	notifRepo := postgres.NewNotificationPostgres(db)
	activityRepo := postgres.NewActivityPostgres(db)

	// Core components
	thresholds := deadline.Thresholds{
		Imminent: cfg.Scheduler.ImminentDays,
		Near:     cfg.Scheduler.NearDays,
		Upcoming: cfg.Scheduler.UpcomingDays,
	}
	allocator := numbering.NewAllocator(docRepo, log)
	scanner := deadline.NewScanner(docRepo, contractRepo, thresholds)
	deduper := scheduler.NewDeduper(notifRepo, cfg.Scheduler.SuppressionWindow)

	// Services
	activitySvc := service.NewActivityService(activityRepo, log)
	docSvc := service.NewDocumentService(docRepo, allocator, activitySvc, nil, log)
	notifSvc := service.NewNotificationService(notifRepo, log)

	schedMetrics, err := scheduler.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register scheduler metrics", zap.Error(err))
	}
	sched := scheduler.New(
		scanner, deduper, notifRepo, docRepo, activitySvc, objStore,
		thresholds, cfg.Scheduler.RetentionDays, schedMetrics, log,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Global middleware: request ids, tracing, structured logs, metrics
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log))

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, handlers.Services{
		Documents:     docSvc,
		Notifications: notifSvc,
		Activity:      activitySvc,
		Scheduler:     sched,
	})

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
