package service

import (
	"context"

	"github.com/google/uuid"

	"vitelis_backend/internal/reports/engine"
)

// CatalogStep is the catalog view the reports module needs.
type CatalogStep struct {
	ID         uuid.UUID
	Name       string
	URL        string
	Dependency *string
}

// StepCatalog reads the generation-step catalog owned by another module.
type StepCatalog interface {
	ListGenerationSteps(ctx context.Context) ([]CatalogStep, error)
	GetGenerationStep(ctx context.Context, stepID uuid.UUID) (CatalogStep, error)
}

// EngineClient dispatches ticks to engine instances.
type EngineClient interface {
	Instances() int
	Tick(ctx context.Context, instance int, tick engine.TickRequest) error
}
