package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GenerationStep is a catalog entry: a named unit of external report
// generation work with its own invocation endpoint.
type GenerationStep struct {
	ID         uuid.UUID
	Name       string
	URL        string
	Dependency *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Industry is an admin-managed label offered when ordering analyses.
type Industry struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// CreateGenerationStepParams contains data for creating a generation step.
type CreateGenerationStepParams struct {
	Name       string
	URL        string
	Dependency *string
}

// UpdateGenerationStepParams contains data for updating a generation step.
// ClearDependency removes the dependency; Dependency sets it.
type UpdateGenerationStepParams struct {
	ID              uuid.UUID
	Name            *string
	URL             *string
	Dependency      *string
	ClearDependency bool
}

// Repository defines the catalog data access contract.
type Repository interface {
	ListGenerationSteps(ctx context.Context) ([]GenerationStep, error)
	GetGenerationStep(ctx context.Context, id uuid.UUID) (GenerationStep, error)
	GenerationStepNameExists(ctx context.Context, name string) (bool, error)
	ListDependents(ctx context.Context, name string) ([]string, error)
	CreateGenerationStep(ctx context.Context, params CreateGenerationStepParams) (GenerationStep, error)
	UpdateGenerationStep(ctx context.Context, params UpdateGenerationStepParams) (GenerationStep, error)
	DeleteGenerationStep(ctx context.Context, id uuid.UUID) error

	ListIndustries(ctx context.Context) ([]Industry, error)
	CreateIndustry(ctx context.Context, name string) (Industry, error)
	DeleteIndustry(ctx context.Context, id uuid.UUID) error
}
