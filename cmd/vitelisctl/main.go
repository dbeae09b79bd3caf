// Package main implements vitelisctl, the operator CLI for migrations, the
// root admin bootstrap and manual credit adjustments.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"vitelis_backend/platform/config"
	"vitelis_backend/platform/db"
	"vitelis_backend/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "vitelisctl",
	Short:         "Vitelis backend operator CLI",
	Long:          "vitelisctl applies database migrations, seeds the root admin and adjusts user credits against the configured database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// cliEnv is what every database-backed command needs.
type cliEnv struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool
}

func openEnv(ctx context.Context) (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env)

	var pool *pgxpool.Pool
	if err := db.WithRetry(ctx, log, "database connection", 3, time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		return nil, err
	}
	return &cliEnv{cfg: cfg, log: log, pool: pool}, nil
}

func (r *cliEnv) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
