package service

import (
	"context"

	"github.com/google/uuid"

	"vitelis_backend/internal/credits/repository"
	"vitelis_backend/internal/credits/transport"
	"vitelis_backend/internal/events"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/logger"
)

// Execution statuses that drive the refund rule.
const (
	executionInProgress = "inProgress"
	executionError      = "error"
	refundAmount        = 1
)

// Service owns credit balances.
type Service struct {
	repo     repository.Repository
	eventBus events.Bus
	log      *logger.Logger
}

// New creates the credits service.
func New(repo repository.Repository, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log}
}

// DeductCredits charges amount credits. It reports false, leaving the balance
// untouched, when the user cannot afford it. Admins are never charged.
func (s *Service) DeductCredits(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	if amount <= 0 {
		return false, apperr.Validation("amount must be positive")
	}
	ok, err := s.repo.Deduct(ctx, userID, amount)
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.Info("credit deduction declined", "userId", userID, "amount", amount)
	}
	return ok, nil
}

// AddCredits grants amount credits.
func (s *Service) AddCredits(ctx context.Context, userID uuid.UUID, amount int) (transport.BalanceResponse, error) {
	if amount <= 0 {
		return transport.BalanceResponse{}, apperr.Validation("amount must be positive")
	}
	credits, err := s.repo.Add(ctx, userID, amount)
	if err != nil {
		return transport.BalanceResponse{}, err
	}
	s.log.Info("credits added", "userId", userID, "amount", amount, "balance", credits)
	return transport.BalanceResponse{UserID: userID, Credits: credits}, nil
}

// RefundCredits returns credits charged for an order that was never stored.
func (s *Service) RefundCredits(ctx context.Context, userID uuid.UUID, amount int) error {
	if amount <= 0 {
		return nil
	}
	if _, err := s.repo.Add(ctx, userID, amount); err != nil {
		return err
	}
	s.log.Info("credits returned", "userId", userID, "amount", amount)
	return nil
}

// SetCredits overwrites the balance.
func (s *Service) SetCredits(ctx context.Context, userID uuid.UUID, credits int) (transport.BalanceResponse, error) {
	if credits < 0 {
		return transport.BalanceResponse{}, apperr.Validation("credits must not be negative")
	}
	balance, err := s.repo.Set(ctx, userID, credits)
	if err != nil {
		return transport.BalanceResponse{}, err
	}
	s.log.Info("credits set", "userId", userID, "balance", balance)
	return transport.BalanceResponse{UserID: userID, Credits: balance}, nil
}

// GetBalance returns the caller's balance.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (transport.BalanceResponse, error) {
	b, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return transport.BalanceResponse{}, err
	}
	return transport.BalanceResponse{UserID: userID, Credits: b.Credits, Unlimited: b.Role == "admin"}, nil
}

// HandleStatusChangeRefund refunds one credit when a run that had started
// working (inProgress) ends in error. All other transitions are ignored.
func (s *Service) HandleStatusChangeRefund(ctx context.Context, userID uuid.UUID, oldStatus, newStatus string) (bool, error) {
	if oldStatus != executionInProgress || newStatus != executionError {
		return false, nil
	}
	if _, err := s.repo.Add(ctx, userID, refundAmount); err != nil {
		return false, err
	}

	s.log.Info("credit refunded", "userId", userID, "oldStatus", oldStatus, "newStatus", newStatus)
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.CreditsRefunded{
			BaseEvent: events.NewBaseEvent(),
			UserID:    userID,
			Amount:    refundAmount,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		})
	}
	return true, nil
}
