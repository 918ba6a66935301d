package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"agency_portal_backend/internal/email"
	"agency_portal_backend/internal/events"
	"agency_portal_backend/internal/exports"
	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/internal/http/router"
	"agency_portal_backend/internal/leads"
	leadrepo "agency_portal_backend/internal/leads/repository"
	"agency_portal_backend/internal/milestones"
	milestonerepo "agency_portal_backend/internal/milestones/repository"
	"agency_portal_backend/internal/notification"
	"agency_portal_backend/internal/scheduler"
	"agency_portal_backend/internal/settings"
	"agency_portal_backend/internal/webhook"
	"agency_portal_backend/migrations"
	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/db"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting api", "env", cfg.Env, "demo_mode", cfg.DemoMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		pool   *pgxpool.Pool
		health apphttp.HealthChecker
	)
	if !cfg.DemoMode {
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
		health = db.NewPoolAdapter(pool)

		if err := withRetry(ctx, log, "migrations", 3, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS, ".")
		}); err != nil {
			log.Error("failed to run migrations", "error", err)
			panic("failed to run migrations: " + err.Error())
		}
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	var (
		leadStore      leadrepo.Store
		milestoneStore milestonerepo.Store
		settingStore   settings.Store
		webhookStore   webhook.Store
	)
	if cfg.DemoMode {
		leadStore = leadrepo.NewMemory()
		milestoneStore = milestonerepo.NewMemory()
		settingStore = settings.NewMemoryStore()
		webhookStore = webhook.NewMemoryStore()
	} else {
		leadStore = leadrepo.NewPostgres(pool)
		milestoneStore = milestonerepo.NewPostgres(pool)
		settingStore = settings.NewPostgresStore(pool)
		webhookStore = webhook.NewPostgresStore(pool)
	}

	settingsModule := settings.NewModule(settingStore, val)
	leadsModule := leads.NewModule(leadStore, eventBus, val)
	milestonesModule := milestones.NewModule(milestoneStore, eventBus, val, log)
	milestonesModule.SetCapturePolicy(settingsModule.Service())

	webhookModule := webhook.NewModule(leadsModule.Service(), webhookStore, val, log)
	exportsModule := exports.NewModule(leadsModule.Service(), milestonesModule.Service(), log)

	sender := email.NewSender(cfg)
	notification.NewModule(eventBus, sender, settingsModule.Service(), leadsModule.Service(), cfg.NotifyAddress, log)

	if cfg.RedisURL != "" {
		schedulerClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer func() { _ = schedulerClient.Close() }()
		scheduler.RegisterCaptureFollowUps(eventBus, schedulerClient, cfg.FollowUpDelay, log)
	} else {
		log.Info("redis not configured, follow-up scheduling disabled")
	}

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			milestonesModule,
			settingsModule,
			webhookModule,
			exportsModule,
		},
	}

	engine := router.New(app)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
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
