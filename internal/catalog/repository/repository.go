package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/db"
)

const (
	stepNotFoundMessage     = "generation step not found"
	stepNameTakenMessage    = "a generation step with this name already exists"
	industryNotFoundMessage = "industry not found"
	industryTakenMessage    = "industry already exists"
)

const generationStepColumns = `id, name, url, dependency, created_at, updated_at`

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGenerationStep(row rowScanner) (GenerationStep, error) {
	var step GenerationStep
	err := row.Scan(&step.ID, &step.Name, &step.URL, &step.Dependency, &step.CreatedAt, &step.UpdatedAt)
	return step, err
}

// ListGenerationSteps returns the whole catalog ordered by name.
func (r *Repo) ListGenerationSteps(ctx context.Context) ([]GenerationStep, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+generationStepColumns+` FROM generation_steps ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list generation steps: %w", err)
	}
	defer rows.Close()

	items := make([]GenerationStep, 0)
	for rows.Next() {
		step, err := scanGenerationStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation step: %w", err)
		}
		items = append(items, step)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate generation steps: %w", rows.Err())
	}
	return items, nil
}

// GetGenerationStep retrieves a catalog step by ID.
func (r *Repo) GetGenerationStep(ctx context.Context, id uuid.UUID) (GenerationStep, error) {
	step, err := scanGenerationStep(r.pool.QueryRow(ctx,
		`SELECT `+generationStepColumns+` FROM generation_steps WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return GenerationStep{}, apperr.NotFound(stepNotFoundMessage)
		}
		return GenerationStep{}, fmt.Errorf("get generation step: %w", err)
	}
	return step, nil
}

// GenerationStepNameExists reports whether a step with this exact name exists.
func (r *Repo) GenerationStepNameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM generation_steps WHERE name = $1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check generation step name: %w", err)
	}
	return exists, nil
}

// ListDependents returns names of steps whose dependency is name.
func (r *Repo) ListDependents(ctx context.Context, name string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM generation_steps WHERE dependency = $1 ORDER BY name`, name)
	if err != nil {
		return nil, fmt.Errorf("list dependents: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan dependent: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// CreateGenerationStep inserts a catalog step.
func (r *Repo) CreateGenerationStep(ctx context.Context, params CreateGenerationStepParams) (GenerationStep, error) {
	query := `
		INSERT INTO generation_steps (id, name, url, dependency)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + generationStepColumns

	step, err := scanGenerationStep(r.pool.QueryRow(ctx, query, uuid.New(), params.Name, params.URL, params.Dependency))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return GenerationStep{}, apperr.Conflict(stepNameTakenMessage)
		}
		return GenerationStep{}, fmt.Errorf("create generation step: %w", err)
	}
	return step, nil
}

// UpdateGenerationStep patches a catalog step.
func (r *Repo) UpdateGenerationStep(ctx context.Context, params UpdateGenerationStepParams) (GenerationStep, error) {
	query := `
		UPDATE generation_steps
		SET name = COALESCE($2, name),
			url = COALESCE($3, url),
			dependency = CASE WHEN $5::boolean THEN NULL ELSE COALESCE($4, dependency) END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + generationStepColumns

	step, err := scanGenerationStep(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.URL, params.Dependency, params.ClearDependency))
	if err != nil {
		if db.IsNoRows(err) {
			return GenerationStep{}, apperr.NotFound(stepNotFoundMessage)
		}
		if db.IsUniqueViolation(err) {
			return GenerationStep{}, apperr.Conflict(stepNameTakenMessage)
		}
		return GenerationStep{}, fmt.Errorf("update generation step: %w", err)
	}
	return step, nil
}

// DeleteGenerationStep removes a catalog step. Report attachments and status
// cells referencing it cascade.
func (r *Repo) DeleteGenerationStep(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM generation_steps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete generation step: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(stepNotFoundMessage)
	}
	return nil
}

// ListIndustries returns all industries ordered by name.
func (r *Repo) ListIndustries(ctx context.Context) ([]Industry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM industries ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list industries: %w", err)
	}
	defer rows.Close()

	items := make([]Industry, 0)
	for rows.Next() {
		var item Industry
		if err := rows.Scan(&item.ID, &item.Name, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan industry: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate industries: %w", rows.Err())
	}
	return items, nil
}

// CreateIndustry inserts an industry.
func (r *Repo) CreateIndustry(ctx context.Context, name string) (Industry, error) {
	var item Industry
	err := r.pool.QueryRow(ctx,
		`INSERT INTO industries (id, name) VALUES ($1, $2) RETURNING id, name, created_at`,
		uuid.New(), name,
	).Scan(&item.ID, &item.Name, &item.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Industry{}, apperr.Conflict(industryTakenMessage)
		}
		return Industry{}, fmt.Errorf("create industry: %w", err)
	}
	return item, nil
}

// DeleteIndustry removes an industry.
func (r *Repo) DeleteIndustry(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM industries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete industry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(industryNotFoundMessage)
	}
	return nil
}
