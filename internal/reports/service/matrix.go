package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vitelis_backend/internal/events"
	"vitelis_backend/internal/reports/matrixview"
	"vitelis_backend/internal/reports/repository"
	"vitelis_backend/internal/reports/transport"
	"vitelis_backend/platform/apperr"
)

// Sources of a cell write.
const (
	SourceOperator = "operator"
	SourceEngine   = "engine"
)

var validStatuses = map[string]struct{}{
	repository.StatusPending:    {},
	repository.StatusProcessing: {},
	repository.StatusDone:       {},
	repository.StatusError:      {},
}

// GetStepsMatrix builds companies x configured steps, filling missing cells
// with PENDING, then applies the view options.
func (s *Service) GetStepsMatrix(ctx context.Context, reportID uuid.UUID, opts matrixview.Options) (transport.StepsMatrixResponse, error) {
	if _, err := s.repo.GetReport(ctx, reportID); err != nil {
		return transport.StepsMatrixResponse{}, err
	}

	var (
		companies []repository.Company
		steps     []repository.ConfiguredStep
		cells     []repository.StatusCell
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		companies, err = s.repo.ListCompanies(gctx, reportID)
		return err
	})
	g.Go(func() error {
		var err error
		steps, err = s.repo.ListConfiguredSteps(gctx, reportID)
		return err
	})
	g.Go(func() error {
		var err error
		cells, err = s.repo.ListStatusCells(gctx, reportID)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.StepsMatrixResponse{}, err
	}

	return matrixview.Apply(buildMatrix(companies, steps, cells), opts), nil
}

type cellKey struct {
	companyID uuid.UUID
	stepID    uuid.UUID
}

func buildMatrix(companies []repository.Company, steps []repository.ConfiguredStep, cells []repository.StatusCell) transport.StepsMatrixResponse {
	explicit := make(map[cellKey]string, len(cells))
	for _, c := range cells {
		explicit[cellKey{c.CompanyID, c.StepID}] = c.Status
	}

	m := transport.StepsMatrixResponse{
		Companies: make([]transport.MatrixCompany, len(companies)),
		Steps:     make([]transport.MatrixStep, len(steps)),
		Matrix:    make([]transport.MatrixRow, len(companies)),
	}
	for i, step := range steps {
		m.Steps[i] = transport.MatrixStep{StepID: step.StepID, Name: step.Name, Order: step.Order}
	}
	for i, company := range companies {
		m.Companies[i] = transport.MatrixCompany{CompanyID: company.ID, Name: company.Name}
		row := transport.MatrixRow{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			Cells:       make([]transport.MatrixCell, len(steps)),
		}
		for j, step := range steps {
			status, ok := explicit[cellKey{company.ID, step.StepID}]
			if !ok {
				status = repository.StatusPending
			}
			row.Cells[j] = transport.MatrixCell{StepID: step.StepID, Status: status}
		}
		m.Matrix[i] = row
	}
	return m
}

// UpdateStepStatus overwrites one cell. Any status may follow any other.
func (s *Service) UpdateStepStatus(ctx context.Context, reportID uuid.UUID, req transport.UpdateStepStatusRequest, source string) (transport.MatrixCell, error) {
	if _, ok := validStatuses[req.Status]; !ok {
		return transport.MatrixCell{}, apperr.Validation("invalid step status")
	}
	if _, err := s.repo.GetCompany(ctx, reportID, req.CompanyID); err != nil {
		return transport.MatrixCell{}, err
	}
	if _, err := s.repo.GetConfiguredStep(ctx, reportID, req.StepID); err != nil {
		return transport.MatrixCell{}, err
	}

	cell := repository.StatusCell{CompanyID: req.CompanyID, StepID: req.StepID, Status: req.Status}
	if err := s.repo.UpsertStatusCell(ctx, reportID, cell); err != nil {
		return transport.MatrixCell{}, err
	}

	s.log.Info("step status updated", "reportId", reportID, "companyId", req.CompanyID,
		"stepId", req.StepID, "status", req.Status, "source", source)
	s.publish(ctx, events.StepStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		ReportID:  reportID,
		CompanyID: req.CompanyID,
		StepID:    req.StepID,
		Status:    req.Status,
		Source:    source,
	})
	return transport.MatrixCell{StepID: req.StepID, Status: req.Status}, nil
}
