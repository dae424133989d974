package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"rentapi/internal/config"
	"rentapi/internal/database"
	"rentapi/internal/database/migration"
	"rentapi/internal/deadline"
	"rentapi/internal/logger"
	"rentapi/internal/repository/postgres"
	"rentapi/internal/scheduler"
	"rentapi/internal/service"
	"rentapi/internal/storage"
)

// The scheduler runner triggers one full sweep per tick. Every step of a
// sweep is idempotent, so a tick overlapping a manual trigger from the API
// is harmless.
func main() {
	cfg := config.Load()

	log := logger.New()
	defer log.Sync()

	log.Info("starting scheduler runner",
		zap.String("db_host", cfg.Database.Host),
		zap.Duration("interval", cfg.Scheduler.Interval),
	)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(context.Background(), db, log); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	docRepo := postgres.NewDocumentPostgres(db)
	contractRepo := postgres.NewContractPostgres(db)
	notifRepo := postgres.NewNotificationPostgres(db)
	activityRepo := postgres.NewActivityPostgres(db)

	thresholds := deadline.Thresholds{
		Imminent: cfg.Scheduler.ImminentDays,
		Near:     cfg.Scheduler.NearDays,
		Upcoming: cfg.Scheduler.UpcomingDays,
	}
	scanner := deadline.NewScanner(docRepo, contractRepo, thresholds)
	deduper := scheduler.NewDeduper(notifRepo, cfg.Scheduler.SuppressionWindow)
	activitySvc := service.NewActivityService(activityRepo, log)

	metrics, err := scheduler.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register scheduler metrics", zap.Error(err))
	}
	sched := scheduler.New(
		scanner, deduper, notifRepo, docRepo, activitySvc, objStore,
		thresholds, cfg.Scheduler.RetentionDays, metrics, log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(cfg.Scheduler.Interval)
		defer ticker.Stop()

		// Run immediately on startup
		runOnce(ctx, sched, log)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce(ctx, sched, log)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("scheduler runner stopped")
}

func runOnce(ctx context.Context, sched *scheduler.Scheduler, log *zap.Logger) {
	if _, err := sched.Run(ctx, time.Now().UTC(), scheduler.ActionFull); err != nil {
		log.Error("scheduler sweep failed", zap.Error(err))
	}
}
