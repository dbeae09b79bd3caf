package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	catrepo "vitelis_backend/internal/catalog/repository"
	reportsvc "vitelis_backend/internal/reports/service"
)

// CatalogStepReader adapts the catalog repository for the reports domain,
// satisfying reportsvc.StepCatalog.
type CatalogStepReader struct {
	repo catrepo.Repository
}

// NewCatalogStepReader creates a new catalog step reader adapter.
func NewCatalogStepReader(repo catrepo.Repository) *CatalogStepReader {
	return &CatalogStepReader{repo: repo}
}

// ListGenerationSteps returns every catalog step in catalog order.
func (a *CatalogStepReader) ListGenerationSteps(ctx context.Context) ([]reportsvc.CatalogStep, error) {
	steps, err := a.repo.ListGenerationSteps(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: list steps: %w", err)
	}

	result := make([]reportsvc.CatalogStep, len(steps))
	for i, s := range steps {
		result[i] = toCatalogStep(s)
	}
	return result, nil
}

// GetGenerationStep returns one catalog step. A missing step keeps its
// not-found kind so callers can map it to a 404.
func (a *CatalogStepReader) GetGenerationStep(ctx context.Context, stepID uuid.UUID) (reportsvc.CatalogStep, error) {
	step, err := a.repo.GetGenerationStep(ctx, stepID)
	if err != nil {
		return reportsvc.CatalogStep{}, fmt.Errorf("catalog adapter: get step: %w", err)
	}
	return toCatalogStep(step), nil
}

func toCatalogStep(s catrepo.GenerationStep) reportsvc.CatalogStep {
	return reportsvc.CatalogStep{
		ID:         s.ID,
		Name:       s.Name,
		URL:        s.URL,
		Dependency: s.Dependency,
	}
}

var _ reportsvc.StepCatalog = (*CatalogStepReader)(nil)
