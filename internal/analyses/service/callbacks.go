package service

import (
	"context"
	"strings"

	"vitelis_backend/internal/analyses/repository"
	"vitelis_backend/internal/analyses/transport"
	"vitelis_backend/internal/events"
	"vitelis_backend/platform/apperr"
)

// UpdateProgress records the workflow's current step. Callbacks for finished,
// errored or canceled orders are acknowledged without effect.
func (s *Service) UpdateProgress(ctx context.Context, cb transport.ProgressCallback) (transport.CallbackResponse, error) {
	step := 0
	if cb.Step != nil {
		step = *cb.Step
	}
	if step < 0 {
		return transport.CallbackResponse{}, apperr.Validation("step must be a non-negative number")
	}
	a, applied, err := s.repo.UpdateProgress(ctx, strings.TrimSpace(cb.ExecutionID), step)
	if err != nil {
		return transport.CallbackResponse{}, err
	}
	if !applied {
		s.log.Info("progress ignored for terminal analysis", "analysisId", a.ID, "status", a.Status)
	}
	return transport.CallbackResponse{AnalysisID: a.ID, Status: a.Status, Applied: applied}, nil
}

// UpdateResult stores a BizMiner/SalesMiner result and finishes the order.
func (s *Service) UpdateResult(ctx context.Context, cb transport.ResultCallback) (transport.CallbackResponse, error) {
	return s.finish(ctx, strings.TrimSpace(cb.ExecutionID), repository.Result{
		ResultText:           cb.Data,
		Summary:              cb.Summary,
		ImprovementLeverages: cb.ImprovementLeverages,
		HeadToHead:           cb.HeadToHead,
		Sources:              cb.Sources,
	})
}

// UpdateSalesResult stores a VitelisSales result and finishes the order.
func (s *Service) UpdateSalesResult(ctx context.Context, cb transport.SalesResultCallback) (transport.CallbackResponse, error) {
	executionID := strings.TrimSpace(cb.ExecutionID)
	if _, err := s.RequireSalesExecution(ctx, executionID); err != nil {
		return transport.CallbackResponse{}, err
	}
	return s.finish(ctx, executionID, repository.Result{ResultText: cb.Data, DocxFile: cb.DocxFile})
}

// UpdateYAMLResult attaches an uploaded YAML report and finishes the order.
func (s *Service) UpdateYAMLResult(ctx context.Context, executionID, fileKey string) (transport.CallbackResponse, error) {
	return s.finish(ctx, strings.TrimSpace(executionID), repository.Result{YAMLFile: &fileKey})
}

// RequireSalesExecution resolves a VitelisSales order by executionId.
func (s *Service) RequireSalesExecution(ctx context.Context, executionID string) (repository.Analysis, error) {
	a, err := s.repo.GetByExecutionID(ctx, executionID)
	if err != nil {
		return repository.Analysis{}, err
	}
	if a.Kind != repository.KindVitelisSales {
		return repository.Analysis{}, apperr.Validation("executionId does not belong to a VitelisSales analysis")
	}
	return a, nil
}

// MarkError fails the order and refunds one credit when the run had
// reached inProgress. Finished and canceled orders are left untouched.
func (s *Service) MarkError(ctx context.Context, cb transport.ErrorCallback) (transport.CallbackResponse, error) {
	message := strings.TrimSpace(cb.Message)
	t, err := s.repo.MarkError(ctx, strings.TrimSpace(cb.ExecutionID), message)
	if err != nil {
		return transport.CallbackResponse{}, err
	}
	if !t.Applied {
		s.log.Info("error ignored for terminal analysis", "analysisId", t.Analysis.ID, "status", t.Analysis.Status)
		return transport.CallbackResponse{AnalysisID: t.Analysis.ID, Status: t.Analysis.Status}, nil
	}

	refunded, err := s.credits.HandleStatusChangeRefund(ctx, t.Analysis.UserID, t.PreviousExecutionStatus, repository.ExecutionError)
	if err != nil {
		s.log.Error("refund on error callback failed", "error", err, "analysisId", t.Analysis.ID)
	}

	if t.PreviousExecutionStatus != repository.ExecutionError {
		s.log.Info("analysis failed", "analysisId", t.Analysis.ID, "previous", t.PreviousExecutionStatus, "refunded", refunded)
		s.publishFailed(ctx, t.Analysis, message, refunded)
	}
	return transport.CallbackResponse{AnalysisID: t.Analysis.ID, Status: t.Analysis.Status, Applied: true, Refunded: refunded}, nil
}

func (s *Service) finish(ctx context.Context, executionID string, result repository.Result) (transport.CallbackResponse, error) {
	t, err := s.repo.Finish(ctx, executionID, result)
	if err != nil {
		return transport.CallbackResponse{}, err
	}
	if !t.Applied {
		s.log.Info("result ignored for terminal analysis", "analysisId", t.Analysis.ID, "status", t.Analysis.Status)
		return transport.CallbackResponse{AnalysisID: t.Analysis.ID, Status: t.Analysis.Status}, nil
	}

	if t.PreviousExecutionStatus != repository.ExecutionFinished {
		s.log.Info("analysis finished", "analysisId", t.Analysis.ID, "executionId", executionID)
		s.publish(ctx, events.AnalysisFinished{
			BaseEvent:   events.NewBaseEvent(),
			AnalysisID:  t.Analysis.ID,
			UserID:      t.Analysis.UserID,
			ExecutionID: executionID,
			Kind:        t.Analysis.Kind,
			CompanyName: t.Analysis.CompanyName,
		})
	}
	return transport.CallbackResponse{AnalysisID: t.Analysis.ID, Status: t.Analysis.Status, Applied: true}, nil
}
