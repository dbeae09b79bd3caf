package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitelis_backend/internal/adapters"
	"vitelis_backend/internal/adapters/storage"
	"vitelis_backend/internal/analyses"
	"vitelis_backend/internal/auth"
	"vitelis_backend/internal/catalog"
	"vitelis_backend/internal/chats"
	"vitelis_backend/internal/credits"
	"vitelis_backend/internal/email"
	"vitelis_backend/internal/events"
	"vitelis_backend/internal/files"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/internal/http/router"
	"vitelis_backend/internal/notification"
	"vitelis_backend/internal/reports"
	"vitelis_backend/internal/scheduler"
	"vitelis_backend/internal/webhook"
	"vitelis_backend/migrations"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/db"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var applied int
	if err := db.WithRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		n, err := db.RunMigrations(ctx, cfg, migrations.FS)
		applied = n
		return err
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete", "applied", applied)

	var pool *pgxpool.Pool
	if err := db.WithRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
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
	log.Info("database connection established")

	store := initStorage(ctx, cfg, log)

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule, err := auth.NewModule(pool, cfg, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize auth module", "error", err)
		panic("failed to initialize auth module: " + err.Error())
	}
	if err := authModule.Bootstrap(ctx, cfg); err != nil {
		log.Error("failed to bootstrap root admin", "error", err)
		panic("failed to bootstrap root admin: " + err.Error())
	}

	creditsModule := credits.NewModule(pool, eventBus, val, log)
	catalogModule := catalog.NewModule(pool, val, log)
	reportsModule := reports.NewModule(pool, adapters.NewCatalogStepReader(catalogModule.Repository()), cfg, eventBus, val, log)

	analysesModule := analyses.NewModule(pool, creditsModule.Service(), cfg, eventBus, val, log)
	if launches, closeLaunches := initLaunchDispatcher(cfg, log); launches != nil {
		defer closeLaunches()
		analysesModule.Service().SetDispatcher(launches)
	}

	webhookModule := webhook.NewModule(analysesModule.Service(), reportsModule.Service(), store, cfg, val, log)
	filesModule := files.NewModule(store, analysesModule.Service(), log)
	chatsModule := chats.NewModule(pool, val, log)

	// Notification module subscribes to domain events and serves the SSE stream
	notificationModule := notification.New(email.NewSender(cfg), adapters.NewRecipientReader(authModule), cfg, log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.SSE().Close()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			creditsModule,
			catalogModule,
			reportsModule,
			analysesModule,
			webhookModule,
			filesModule,
			chatsModule,
			notificationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		// Streams never finish on their own; close them before draining.
		notificationModule.SSE().Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initStorage connects to MinIO when configured. The returned store is a nil
// interface when storage is disabled so modules can detect it.
func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.ObjectStore {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; file downloads and YAML uploads disabled")
		return nil
	}

	minioStore, err := storage.NewMinIOStore(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	if err := db.WithRetry(ctx, log, "ensure reports bucket", 5, 2*time.Second, func() error {
		return minioStore.EnsureBucket(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketReports())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "bucket", cfg.GetMinioBucketReports())
	return minioStore
}

func initLaunchDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; workflow launches run inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}
