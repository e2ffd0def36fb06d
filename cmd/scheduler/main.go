package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"imovel_portal_backend/internal/directory"
	"imovel_portal_backend/internal/email"
	"imovel_portal_backend/internal/events"
	"imovel_portal_backend/internal/leads"
	leadsrepo "imovel_portal_backend/internal/leads/repository"
	"imovel_portal_backend/internal/notification"
	"imovel_portal_backend/internal/notification/outbox"
	"imovel_portal_backend/internal/notification/sink"
	"imovel_portal_backend/internal/scheduler"
	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/db"
	"imovel_portal_backend/platform/logger"
	"imovel_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	sender := email.NewSender(cfg)
	val := validator.New()

	// Worker-side wiring (no HTTP handlers required).
	directoryModule := directory.NewModule(pool, cfg, val, log)
	leadsModule := leads.NewModule(pool, directoryModule.Repository(), eventBus, val, cfg, log)

	var sinkNotifier notification.SinkNotifier
	if sinkClient := sink.NewClient(cfg, log); sinkClient != nil {
		sinkNotifier = sinkClient
	}
	notificationModule := notification.New(outbox.New(pool), sinkNotifier, sender, leadsrepo.New(pool), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	sweepInterval := getDurationEnv("LEAD_EXPIRY_SWEEP_INTERVAL", 5*time.Minute)
	dispatchInterval := getDurationEnv("OUTBOX_DISPATCH_INTERVAL", 15*time.Second)
	enqueuer := scheduler.NewPeriodicEnqueuer(client, log, sweepInterval, dispatchInterval)
	go enqueuer.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Service(), notificationModule, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
