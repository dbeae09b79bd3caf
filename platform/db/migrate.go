package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"vitelis_backend/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationStatus is one row of `vitelisctl migrate status`.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

// RunMigrations applies all pending migrations found in fsys.
// It returns the number of migrations applied by this call.
func RunMigrations(ctx context.Context, cfg config.DatabaseConfig, fsys fs.FS) (int, error) {
	provider, closeDB, err := newProvider(cfg, fsys)
	if err != nil {
		return 0, err
	}
	defer closeDB()

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("apply migrations: %w", err)
	}
	return len(results), nil
}

// MigrationsStatus lists every known migration and whether it is applied.
func MigrationsStatus(ctx context.Context, cfg config.DatabaseConfig, fsys fs.FS) ([]MigrationStatus, error) {
	provider, closeDB, err := newProvider(cfg, fsys)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, MigrationStatus{
			Version: st.Source.Version,
			Source:  st.Source.Path,
			Applied: st.State == goose.StateApplied,
		})
	}
	return out, nil
}

func newProvider(cfg config.DatabaseConfig, fsys fs.FS) (*goose.Provider, func(), error) {
	sqlDB, err := sql.Open("pgx", cfg.GetDatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("open migration connection: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("init migration provider: %w", err)
	}

	return provider, func() { _ = sqlDB.Close() }, nil
}
