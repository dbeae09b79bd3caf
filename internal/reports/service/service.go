package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"vitelis_backend/internal/events"
	"vitelis_backend/internal/reports/repository"
	"vitelis_backend/internal/reports/transport"
	"vitelis_backend/platform/logger"
)

// Service implements deep-dive reports, their step configuration, the status
// matrix and the orchestrator controls.
type Service struct {
	repo     repository.Repository
	catalog  StepCatalog
	engine   EngineClient
	eventBus events.Bus
	log      *logger.Logger
}

// New creates the reports service.
func New(repo repository.Repository, catalog StepCatalog, engine EngineClient, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, engine: engine, eventBus: eventBus, log: log}
}

// ListReports returns a page of reports.
func (s *Service) ListReports(ctx context.Context, req transport.ListReportsRequest) (transport.ReportListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)
	reports, total, err := s.repo.ListReports(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return transport.ReportListResponse{}, err
	}

	items := make([]transport.ReportResponse, len(reports))
	for i, r := range reports {
		items[i] = toReportResponse(r, nil)
	}
	return transport.ReportListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

func (s *Service) CreateReport(ctx context.Context, actorID uuid.UUID, req transport.CreateReportRequest) (transport.ReportResponse, error) {
	report, err := s.repo.CreateReport(ctx, repository.CreateReportParams{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   actorID,
	})
	if err != nil {
		return transport.ReportResponse{}, err
	}
	s.log.Info("report created", "reportId", report.ID, "actorId", actorID)
	return toReportResponse(report, []repository.Company{}), nil
}

// GetReport returns a report with its companies.
func (s *Service) GetReport(ctx context.Context, reportID uuid.UUID) (transport.ReportResponse, error) {
	report, err := s.repo.GetReport(ctx, reportID)
	if err != nil {
		return transport.ReportResponse{}, err
	}
	companies, err := s.repo.ListCompanies(ctx, reportID)
	if err != nil {
		return transport.ReportResponse{}, err
	}
	return toReportResponse(report, companies), nil
}

func (s *Service) DeleteReport(ctx context.Context, reportID uuid.UUID) error {
	if err := s.repo.DeleteReport(ctx, reportID); err != nil {
		return err
	}
	s.log.Info("report deleted", "reportId", reportID)
	return nil
}

func (s *Service) AddCompany(ctx context.Context, reportID uuid.UUID, req transport.AddCompanyRequest) (transport.CompanyResponse, error) {
	if _, err := s.repo.GetReport(ctx, reportID); err != nil {
		return transport.CompanyResponse{}, err
	}
	company, err := s.repo.AddCompany(ctx, repository.AddCompanyParams{
		ReportID: reportID,
		Name:     strings.TrimSpace(req.Name),
		URL:      strings.TrimSpace(req.URL),
		Country:  strings.TrimSpace(req.Country),
	})
	if err != nil {
		return transport.CompanyResponse{}, err
	}
	return toCompanyResponse(company), nil
}

func (s *Service) RemoveCompany(ctx context.Context, reportID, companyID uuid.UUID) error {
	return s.repo.RemoveCompany(ctx, reportID, companyID)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, event)
	}
}

func toReportResponse(r repository.Report, companies []repository.Company) transport.ReportResponse {
	resp := transport.ReportResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if companies != nil {
		resp.Companies = make([]transport.CompanyResponse, len(companies))
		for i, c := range companies {
			resp.Companies[i] = toCompanyResponse(c)
		}
	}
	return resp
}

func toCompanyResponse(c repository.Company) transport.CompanyResponse {
	return transport.CompanyResponse{
		ID:        c.ID,
		ReportID:  c.ReportID,
		Name:      c.Name,
		URL:       c.URL,
		Country:   c.Country,
		CreatedAt: c.CreatedAt,
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
