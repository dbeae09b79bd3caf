package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"vitelis_backend/internal/catalog/repository"
	"vitelis_backend/internal/catalog/transport"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/logger"
)

// Service provides business logic for the generation-step catalog and industries.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListGenerationSteps returns all catalog steps.
func (s *Service) ListGenerationSteps(ctx context.Context) (transport.GenerationStepListResponse, error) {
	steps, err := s.repo.ListGenerationSteps(ctx)
	if err != nil {
		return transport.GenerationStepListResponse{}, err
	}
	items := make([]transport.GenerationStepResponse, len(steps))
	for i, step := range steps {
		items[i] = ToGenerationStepResponse(step)
	}
	return transport.GenerationStepListResponse{Items: items, Total: len(items)}, nil
}

// GetGenerationStep returns one catalog step.
func (s *Service) GetGenerationStep(ctx context.Context, id uuid.UUID) (transport.GenerationStepResponse, error) {
	step, err := s.repo.GetGenerationStep(ctx, id)
	if err != nil {
		return transport.GenerationStepResponse{}, err
	}
	return ToGenerationStepResponse(step), nil
}

// CreateGenerationStep adds a step to the catalog. A dependency must name an
// existing step.
func (s *Service) CreateGenerationStep(ctx context.Context, req transport.CreateGenerationStepRequest) (transport.GenerationStepResponse, error) {
	name := strings.TrimSpace(req.Name)
	dependency := trimmedOrNil(req.Dependency)
	if dependency != nil {
		if *dependency == name {
			return transport.GenerationStepResponse{}, apperr.Validation("a step cannot depend on itself")
		}
		if err := s.ensureStepExists(ctx, *dependency); err != nil {
			return transport.GenerationStepResponse{}, err
		}
	}

	step, err := s.repo.CreateGenerationStep(ctx, repository.CreateGenerationStepParams{
		Name:       name,
		URL:        strings.TrimSpace(req.URL),
		Dependency: dependency,
	})
	if err != nil {
		return transport.GenerationStepResponse{}, err
	}

	s.log.Info("generation step created", "id", step.ID, "name", step.Name)
	return ToGenerationStepResponse(step), nil
}

// UpdateGenerationStep patches a catalog step.
func (s *Service) UpdateGenerationStep(ctx context.Context, id uuid.UUID, req transport.UpdateGenerationStepRequest) (transport.GenerationStepResponse, error) {
	current, err := s.repo.GetGenerationStep(ctx, id)
	if err != nil {
		return transport.GenerationStepResponse{}, err
	}

	params := repository.UpdateGenerationStepParams{ID: id, Name: trimmedOrNil(req.Name), URL: trimmedOrNil(req.URL)}

	if req.Dependency != nil {
		dep := strings.TrimSpace(*req.Dependency)
		if dep == "" {
			params.ClearDependency = true
		} else {
			finalName := current.Name
			if params.Name != nil {
				finalName = *params.Name
			}
			if dep == finalName {
				return transport.GenerationStepResponse{}, apperr.Validation("a step cannot depend on itself")
			}
			if err := s.ensureStepExists(ctx, dep); err != nil {
				return transport.GenerationStepResponse{}, err
			}
			params.Dependency = &dep
		}
	}

	step, err := s.repo.UpdateGenerationStep(ctx, params)
	if err != nil {
		return transport.GenerationStepResponse{}, err
	}

	s.log.Info("generation step updated", "id", step.ID, "name", step.Name)
	return ToGenerationStepResponse(step), nil
}

// DeleteGenerationStep removes a step unless another step depends on it.
func (s *Service) DeleteGenerationStep(ctx context.Context, id uuid.UUID) error {
	step, err := s.repo.GetGenerationStep(ctx, id)
	if err != nil {
		return err
	}
	dependents, err := s.repo.ListDependents(ctx, step.Name)
	if err != nil {
		return err
	}
	if len(dependents) > 0 {
		return apperr.Conflict("generation step is a dependency of other steps").
			WithDetails(map[string][]string{"dependents": dependents})
	}
	if err := s.repo.DeleteGenerationStep(ctx, id); err != nil {
		return err
	}

	s.log.Info("generation step deleted", "id", id, "name", step.Name)
	return nil
}

// ListIndustries returns all industries.
func (s *Service) ListIndustries(ctx context.Context) (transport.IndustryListResponse, error) {
	industries, err := s.repo.ListIndustries(ctx)
	if err != nil {
		return transport.IndustryListResponse{}, err
	}
	items := make([]transport.IndustryResponse, len(industries))
	for i, item := range industries {
		items[i] = transport.IndustryResponse{ID: item.ID, Name: item.Name, CreatedAt: item.CreatedAt.Format(time.RFC3339)}
	}
	return transport.IndustryListResponse{Items: items, Total: len(items)}, nil
}

// CreateIndustry adds an industry.
func (s *Service) CreateIndustry(ctx context.Context, req transport.CreateIndustryRequest) (transport.IndustryResponse, error) {
	item, err := s.repo.CreateIndustry(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		return transport.IndustryResponse{}, err
	}
	s.log.Info("industry created", "id", item.ID, "name", item.Name)
	return transport.IndustryResponse{ID: item.ID, Name: item.Name, CreatedAt: item.CreatedAt.Format(time.RFC3339)}, nil
}

// DeleteIndustry removes an industry.
func (s *Service) DeleteIndustry(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteIndustry(ctx, id); err != nil {
		return err
	}
	s.log.Info("industry deleted", "id", id)
	return nil
}

func (s *Service) ensureStepExists(ctx context.Context, name string) error {
	exists, err := s.repo.GenerationStepNameExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.Validation("dependency must name an existing generation step")
	}
	return nil
}

// ToGenerationStepResponse maps a catalog row to its API shape.
func ToGenerationStepResponse(step repository.GenerationStep) transport.GenerationStepResponse {
	return transport.GenerationStepResponse{
		ID:         step.ID,
		Name:       step.Name,
		URL:        step.URL,
		Dependency: step.Dependency,
		CreatedAt:  step.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  step.UpdatedAt.Format(time.RFC3339),
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
