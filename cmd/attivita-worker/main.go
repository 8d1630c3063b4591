package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"attivita/internal/amqp"
	"attivita/internal/config"
	applog "attivita/internal/log"
	"attivita/internal/services"
	"attivita/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	cfgLog := applog.DefaultConfig()
	cfgLog.Component = applog.ComponentWorker
	logger := applog.New(cfgLog)
	applog.SetDefault(logger)

	logger.Info("Starting attivita-worker")

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker always operates on the persistent store; resetting
	// counters in a memory backend would be lost on restart anyway.
	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	// AMQP is optional; without it the worker still rolls counters over,
	// it just reports to nobody.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - rollover events will not be published")
	}

	processor := services.NewRolloverProcessor(sqliteRepo)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Monthly rollover processor configured",
		"interval", cfg.RolloverInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	// Run initial rollover on startup
	runRollover(ctx, processor, amqpClient, logger, time.Now())

	g, gctx := errgroup.WithContext(ctx)

	// Periodic rollover. The processor skips runs within the same month,
	// so a short interval just means a prompt reset after month change.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.RolloverInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case now := <-ticker.C:
				runRollover(gctx, processor, amqpClient, logger, now)
			}
		}
	})

	// Consume activity events for audit logging when a broker is attached.
	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeActivityEvents(gctx, func(ev *amqp.ActivityEvent) error {
				logger.Info("Activity event received",
					"kind", ev.Kind,
					"activity_id", ev.ActivityID,
					"timestamp", ev.Timestamp)
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Attivita-worker shutdown complete")
}

// runRollover executes one rollover pass and publishes the outcome when a
// broker is available. Errors are logged, never fatal.
func runRollover(ctx context.Context, processor *services.RolloverProcessor, amqpClient *amqp.Client, logger *applog.Logger, now time.Time) {
	report, err := processor.Run(ctx, now)
	if err != nil {
		logger.Error("Rollover processing failed", "error", err)
		return
	}
	if report.Skipped {
		logger.Debug("Rollover skipped, month unchanged")
		return
	}

	logger.Info("Rollover processing complete",
		"examined", report.Examined,
		"reset", report.Reset,
		"failed", report.Failed,
		"seeded", report.Seeded)

	if amqpClient != nil {
		if err := amqpClient.PublishActivityEvent(ctx, amqp.NewRolloverEvent(report.Reset, report.Failed)); err != nil {
			logger.Warn("Failed to publish rollover event", "error", err)
		}
	}
}
