package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency_portal_backend/internal/email"
	"agency_portal_backend/internal/events"
	leadrepo "agency_portal_backend/internal/leads/repository"
	leadservice "agency_portal_backend/internal/leads/service"
	milestonerepo "agency_portal_backend/internal/milestones/repository"
	milestoneservice "agency_portal_backend/internal/milestones/service"
	"agency_portal_backend/internal/notification"
	"agency_portal_backend/internal/scheduler"
	"agency_portal_backend/internal/settings"
	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/db"
	"agency_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

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

	leadSvc := leadservice.New(leadrepo.NewPostgres(pool), nil)
	milestoneSvc := milestoneservice.New(milestonerepo.NewPostgres(pool), nil)
	settingsSvc := settings.NewService(settings.NewPostgresStore(pool))

	sender := email.NewSender(cfg)
	notification.NewModule(eventBus, sender, settingsSvc, leadSvc, cfg.NotifyAddress, log)

	worker, err := scheduler.NewWorker(cfg, milestoneSvc, eventBus, log)
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
