// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/google/uuid"

	"vitelis_backend/platform/events"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserRegistered is published after self-service registration or admin creation.
type UserRegistered struct {
	BaseEvent
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	CompanyName string    `json:"companyName"`
	CreatedBy   string    `json:"createdBy"` // "self" or "admin"
}

func (e UserRegistered) EventName() string { return "auth.user.registered" }

// =============================================================================
// Credits Domain Events
// =============================================================================

// CreditsRefunded is published when a failed analysis gives a credit back.
type CreditsRefunded struct {
	BaseEvent
	UserID    uuid.UUID `json:"userId"`
	Amount    int       `json:"amount"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e CreditsRefunded) EventName() string { return "credits.refunded" }

// =============================================================================
// Analyses Domain Events
// =============================================================================

// AnalysisCreated is published once an order is persisted and paid for.
type AnalysisCreated struct {
	BaseEvent
	AnalysisID  uuid.UUID `json:"analysisId"`
	UserID      uuid.UUID `json:"userId"`
	Kind        string    `json:"kind"`
	CompanyName string    `json:"companyName"`
}

func (e AnalysisCreated) EventName() string { return "analyses.analysis.created" }

// AnalysisFinished is published when a result callback completes an analysis.
type AnalysisFinished struct {
	BaseEvent
	AnalysisID  uuid.UUID `json:"analysisId"`
	UserID      uuid.UUID `json:"userId"`
	ExecutionID string    `json:"executionId"`
	Kind        string    `json:"kind"`
	CompanyName string    `json:"companyName"`
}

func (e AnalysisFinished) EventName() string { return "analyses.analysis.finished" }

// AnalysisFailed is published when a run errors or cannot be launched.
type AnalysisFailed struct {
	BaseEvent
	AnalysisID  uuid.UUID `json:"analysisId"`
	UserID      uuid.UUID `json:"userId"`
	ExecutionID string    `json:"executionId"`
	Kind        string    `json:"kind"`
	CompanyName string    `json:"companyName"`
	Reason      string    `json:"reason"`
	Refunded    bool      `json:"refunded"`
}

func (e AnalysisFailed) EventName() string { return "analyses.analysis.failed" }

// =============================================================================
// Reports Domain Events
// =============================================================================

// StepStatusChanged is published whenever a matrix cell is written.
type StepStatusChanged struct {
	BaseEvent
	ReportID  uuid.UUID `json:"reportId"`
	CompanyID uuid.UUID `json:"companyId"`
	StepID    uuid.UUID `json:"stepId"`
	Status    string    `json:"status"`
	Source    string    `json:"source"` // "operator" or "engine"
}

func (e StepStatusChanged) EventName() string { return "reports.step_status.changed" }

// EngineTickDispatched is published after an engine instance accepted a tick.
type EngineTickDispatched struct {
	BaseEvent
	ReportID uuid.UUID `json:"reportId"`
	Instance int       `json:"instance"`
}

func (e EngineTickDispatched) EventName() string { return "reports.engine.tick_dispatched" }
