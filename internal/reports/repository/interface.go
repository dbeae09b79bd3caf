package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Cell and orchestrator statuses.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusDone       = "DONE"
	StatusError      = "ERROR"
)

// Report is a deep-dive grouping companies and configured steps.
type Report struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Company is one company analysed inside a report.
type Company struct {
	ID        uuid.UUID
	ReportID  uuid.UUID
	Name      string
	URL       string
	Country   string
	CreatedAt time.Time
}

// ConfiguredStep is a catalog step attached to a report.
type ConfiguredStep struct {
	StepID     uuid.UUID
	Name       string
	URL        string
	Dependency *string
	Order      int
	Settings   map[string]string
}

// Orchestrator is the report-level run state.
type Orchestrator struct {
	ReportID  uuid.UUID
	Status    string
	Metadata  map[string]interface{}
	UpdatedAt *time.Time
}

// StatusCell is an explicit (company, step) status. Missing cells read as PENDING.
type StatusCell struct {
	CompanyID uuid.UUID
	StepID    uuid.UUID
	Status    string
}

type CreateReportParams struct {
	Name        string
	Description string
	CreatedBy   uuid.UUID
}

type AddCompanyParams struct {
	ReportID uuid.UUID
	Name     string
	URL      string
	Country  string
}

// OrchestratorPatch overwrites Status when set, merges Set into metadata and
// then removes DeleteKeys.
type OrchestratorPatch struct {
	ReportID   uuid.UUID
	Status     *string
	Set        map[string]interface{}
	DeleteKeys []string
}

// ReportReader covers report and company reads.
type ReportReader interface {
	ListReports(ctx context.Context, offset, limit int) ([]Report, int, error)
	GetReport(ctx context.Context, reportID uuid.UUID) (Report, error)
	ListCompanies(ctx context.Context, reportID uuid.UUID) ([]Company, error)
	GetCompany(ctx context.Context, reportID, companyID uuid.UUID) (Company, error)
}

// ReportWriter covers report and company writes.
type ReportWriter interface {
	CreateReport(ctx context.Context, params CreateReportParams) (Report, error)
	DeleteReport(ctx context.Context, reportID uuid.UUID) error
	AddCompany(ctx context.Context, params AddCompanyParams) (Company, error)
	RemoveCompany(ctx context.Context, reportID, companyID uuid.UUID) error
}

// StepStore manages the steps configured on a report.
type StepStore interface {
	ListConfiguredSteps(ctx context.Context, reportID uuid.UUID) ([]ConfiguredStep, error)
	GetConfiguredStep(ctx context.Context, reportID, stepID uuid.UUID) (ConfiguredStep, error)
	// AddStep appends stepID with order max+1 (or 1) and returns the order.
	AddStep(ctx context.Context, reportID, stepID uuid.UUID) (int, error)
	RemoveStep(ctx context.Context, reportID, stepID uuid.UUID) error
	SetStepOrder(ctx context.Context, reportID, stepID uuid.UUID, order int) error
	// SetStepSettings replaces the settings; nil stores NULL.
	SetStepSettings(ctx context.Context, reportID, stepID uuid.UUID, settings map[string]string) error
}

// MatrixStore manages status cells and the orchestrator row.
type MatrixStore interface {
	ListStatusCells(ctx context.Context, reportID uuid.UUID) ([]StatusCell, error)
	UpsertStatusCell(ctx context.Context, reportID uuid.UUID, cell StatusCell) error
	// GetOrchestrator returns PENDING with empty metadata when no row exists.
	GetOrchestrator(ctx context.Context, reportID uuid.UUID) (Orchestrator, error)
	PatchOrchestrator(ctx context.Context, patch OrchestratorPatch) (Orchestrator, error)
}

// Repository is the full reports data access contract.
type Repository interface {
	ReportReader
	ReportWriter
	StepStore
	MatrixStore
}
