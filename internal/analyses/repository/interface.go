package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kinds of analysis orders.
const (
	KindAnalyze      = "analyze"
	KindVitelisSales = "vitelis_sales"
)

// Record statuses.
const (
	StatusProgress = "progress"
	StatusFinished = "finished"
	StatusError    = "error"
	StatusCanceled = "canceled"
)

// Workflow execution statuses.
const (
	ExecutionStarted    = "started"
	ExecutionInProgress = "inProgress"
	ExecutionFinished   = "finished"
	ExecutionError      = "error"
	ExecutionCanceled   = "canceled"
)

// Analysis is one ordered report and its workflow run.
type Analysis struct {
	ID                    uuid.UUID
	Kind                  string
	UserID                uuid.UUID
	CompanyName           string
	BusinessLine          string
	URL                   string
	Country               string
	UseCase               string
	Timeline              string
	Language              string
	AdditionalInformation string
	Status                string
	ExecutionID           *string
	ExecutionStatus       string
	ExecutionStep         int
	ResultText            *string
	Summary               *string
	ImprovementLeverages  *string
	HeadToHead            *string
	Sources               *string
	DocxFile              *string
	YAMLFile              *string
	ErrorMessage          *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type CreateParams struct {
	Kind                  string
	UserID                uuid.UUID
	CompanyName           string
	BusinessLine          string
	URL                   string
	Country               string
	UseCase               string
	Timeline              string
	Language              string
	AdditionalInformation string
	ExecutionID           *string
}

type ListParams struct {
	// UserID restricts the list to one owner; nil lists everyone.
	UserID    *uuid.UUID
	Kind      string
	Status    string
	Search    string
	Offset    int
	Limit     int
	SortOrder string
}

// Result carries the result fields of a callback or admin edit. Nil fields
// are left unchanged.
type Result struct {
	ResultText           *string
	Summary              *string
	ImprovementLeverages *string
	HeadToHead           *string
	Sources              *string
	DocxFile             *string
	YAMLFile             *string
}

type UpdateParams struct {
	ID              uuid.UUID
	Status          *string
	ExecutionStatus *string
	ExecutionStep   *int
	ExecutionID     *string
	Result          Result
}

// Transition is an updated record together with the execution status it had
// before the write. Applied is false when a terminal record was left as is.
type Transition struct {
	Analysis                Analysis
	PreviousExecutionStatus string
	Applied                 bool
}

// Repository is the analyses data access contract.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Analysis, error)
	Get(ctx context.Context, id uuid.UUID) (Analysis, error)
	GetByExecutionID(ctx context.Context, executionID string) (Analysis, error)
	List(ctx context.Context, params ListParams) ([]Analysis, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// FindOwnerByFileKey returns the owner of the analysis storing key.
	FindOwnerByFileKey(ctx context.Context, key string) (uuid.UUID, error)

	// SetExecutionID stores the id unless a different one is already set.
	SetExecutionID(ctx context.Context, id uuid.UUID, executionID string) (Analysis, error)
	Update(ctx context.Context, params UpdateParams) (Transition, error)
	// Cancel moves an in-progress record to canceled. It returns Conflict
	// for terminal records.
	Cancel(ctx context.Context, id uuid.UUID) (Analysis, error)
	// MarkFailed sets status and execution status to error by record id.
	// Finished and canceled records come back unchanged with Applied false.
	MarkFailed(ctx context.Context, id uuid.UUID, message string) (Transition, error)

	// UpdateProgress records a step for an in-progress run. applied is false
	// when the record is already terminal.
	UpdateProgress(ctx context.Context, executionID string, step int) (a Analysis, applied bool, err error)
	// Finish and MarkError leave other terminal states untouched and report
	// Applied false; repeating the same terminal write is applied again.
	Finish(ctx context.Context, executionID string, result Result) (Transition, error)
	MarkError(ctx context.Context, executionID, message string) (Transition, error)
}
