package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vitelis_backend/internal/reports/repository"
	"vitelis_backend/internal/reports/transport"
	"vitelis_backend/platform/apperr"
)

// GetReportSteps returns the configured steps and the catalog steps not yet
// attached to the report.
func (s *Service) GetReportSteps(ctx context.Context, reportID uuid.UUID) (transport.ReportStepsResponse, error) {
	if _, err := s.repo.GetReport(ctx, reportID); err != nil {
		return transport.ReportStepsResponse{}, err
	}

	var (
		configured []repository.ConfiguredStep
		catalog    []CatalogStep
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		configured, err = s.repo.ListConfiguredSteps(gctx, reportID)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = s.catalog.ListGenerationSteps(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.ReportStepsResponse{}, err
	}

	attached := make(map[uuid.UUID]struct{}, len(configured))
	resp := transport.ReportStepsResponse{
		Configured: make([]transport.ConfiguredStepResponse, len(configured)),
		Available:  make([]transport.AvailableStepResponse, 0, len(catalog)),
	}
	for i, step := range configured {
		attached[step.StepID] = struct{}{}
		resp.Configured[i] = toConfiguredStepResponse(step)
	}
	for _, step := range catalog {
		if _, ok := attached[step.ID]; ok {
			continue
		}
		resp.Available = append(resp.Available, transport.AvailableStepResponse{
			StepID: step.ID, Name: step.Name, URL: step.URL, Dependency: step.Dependency,
		})
	}
	return resp, nil
}

// AddStepToReport appends a catalog step with the next order.
func (s *Service) AddStepToReport(ctx context.Context, reportID, stepID uuid.UUID) (transport.ConfiguredStepResponse, error) {
	if _, err := s.repo.GetReport(ctx, reportID); err != nil {
		return transport.ConfiguredStepResponse{}, err
	}
	step, err := s.catalog.GetGenerationStep(ctx, stepID)
	if err != nil {
		return transport.ConfiguredStepResponse{}, err
	}

	order, err := s.repo.AddStep(ctx, reportID, stepID)
	if err != nil {
		return transport.ConfiguredStepResponse{}, err
	}

	s.log.Info("step added to report", "reportId", reportID, "stepId", stepID, "order", order)
	return toConfiguredStepResponse(repository.ConfiguredStep{
		StepID: step.ID, Name: step.Name, URL: step.URL, Dependency: step.Dependency, Order: order,
	}), nil
}

// RemoveStepFromReport detaches a step without renumbering the others.
func (s *Service) RemoveStepFromReport(ctx context.Context, reportID, stepID uuid.UUID) error {
	if err := s.repo.RemoveStep(ctx, reportID, stepID); err != nil {
		return err
	}
	s.log.Info("step removed from report", "reportId", reportID, "stepId", stepID)
	return nil
}

// ReorderStep sets one step's order. Other steps are untouched and may share it.
func (s *Service) ReorderStep(ctx context.Context, reportID, stepID uuid.UUID, order int) (transport.ConfiguredStepResponse, error) {
	if order < 1 {
		return transport.ConfiguredStepResponse{}, apperr.Validation("order must be a positive integer")
	}
	if err := s.repo.SetStepOrder(ctx, reportID, stepID, order); err != nil {
		return transport.ConfiguredStepResponse{}, err
	}
	step, err := s.repo.GetConfiguredStep(ctx, reportID, stepID)
	if err != nil {
		return transport.ConfiguredStepResponse{}, err
	}
	return toConfiguredStepResponse(step), nil
}

// UpdateStepSettings replaces a configured step's settings. An empty map
// clears them.
func (s *Service) UpdateStepSettings(ctx context.Context, reportID, stepID uuid.UUID, settings map[string]string) (transport.ConfiguredStepResponse, error) {
	if len(settings) == 0 {
		settings = nil
	}
	if err := s.repo.SetStepSettings(ctx, reportID, stepID, settings); err != nil {
		return transport.ConfiguredStepResponse{}, err
	}
	step, err := s.repo.GetConfiguredStep(ctx, reportID, stepID)
	if err != nil {
		return transport.ConfiguredStepResponse{}, err
	}
	return toConfiguredStepResponse(step), nil
}

func toConfiguredStepResponse(step repository.ConfiguredStep) transport.ConfiguredStepResponse {
	return transport.ConfiguredStepResponse{
		StepID:     step.StepID,
		Name:       step.Name,
		URL:        step.URL,
		Dependency: step.Dependency,
		Order:      step.Order,
		Settings:   step.Settings,
	}
}
