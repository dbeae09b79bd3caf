package service

import (
	"context"

	"github.com/google/uuid"

	"vitelis_backend/internal/analyses/workflow"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

// CreditLedger charges and refunds analysis credits.
type CreditLedger interface {
	DeductCredits(ctx context.Context, userID uuid.UUID, amount int) (bool, error)
	RefundCredits(ctx context.Context, userID uuid.UUID, amount int) error
	HandleStatusChangeRefund(ctx context.Context, userID uuid.UUID, oldStatus, newStatus string) (bool, error)
}

// WorkflowLauncher starts an external workflow and returns its executionId.
type WorkflowLauncher interface {
	Launch(ctx context.Context, workflowName string, launch workflow.LaunchRequest) (string, error)
}

// LaunchDispatcher hands a launch to a background worker.
type LaunchDispatcher interface {
	DispatchLaunch(ctx context.Context, analysisID uuid.UUID) error
}
