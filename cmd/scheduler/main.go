package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitelis_backend/internal/adapters"
	"vitelis_backend/internal/analyses"
	"vitelis_backend/internal/auth"
	"vitelis_backend/internal/credits"
	"vitelis_backend/internal/email"
	"vitelis_backend/internal/events"
	"vitelis_backend/internal/notification"
	"vitelis_backend/internal/scheduler"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/db"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Worker-side wiring: launches charge nothing but may fail and notify.
	authModule, err := auth.NewModule(pool, cfg, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize auth module", "error", err)
		panic("failed to initialize auth module: " + err.Error())
	}
	creditsModule := credits.NewModule(pool, eventBus, val, log)
	analysesModule := analyses.NewModule(pool, creditsModule.Service(), cfg, eventBus, val, log)

	notificationModule := notification.New(email.NewSender(cfg), adapters.NewRecipientReader(authModule), cfg, log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.SSE().Close()

	worker, err := scheduler.NewWorker(cfg, analysesModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}
