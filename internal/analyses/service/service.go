package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"vitelis_backend/internal/analyses/repository"
	"vitelis_backend/internal/analyses/transport"
	"vitelis_backend/internal/analyses/workflow"
	"vitelis_backend/internal/events"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/sanitize"
)

const (
	msgInsufficientCredits = "insufficient credits"
	msgLaunchFailed        = "workflow launch failed"
	salesMinerUseCase      = "salesminer"
)

// Service implements analysis orders and the ingestion of workflow callbacks.
type Service struct {
	repo       repository.Repository
	credits    CreditLedger
	workflows  WorkflowLauncher
	dispatcher LaunchDispatcher
	eventBus   events.Bus
	creditCost int
	log        *logger.Logger
}

// New creates the analyses service.
func New(repo repository.Repository, credits CreditLedger, workflows WorkflowLauncher, eventBus events.Bus, cfg config.AnalysisConfig, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		credits:    credits,
		workflows:  workflows,
		eventBus:   eventBus,
		creditCost: cfg.GetAnalysisCreditCost(),
		log:        log,
	}
}

// SetDispatcher routes launches through a background queue. Without one,
// launches run inline during Create.
func (s *Service) SetDispatcher(d LaunchDispatcher) {
	s.dispatcher = d
}

// Create charges the caller, stores the order and starts its workflow.
func (s *Service) Create(ctx context.Context, actor Actor, req transport.CreateAnalysisRequest) (transport.AnalysisResponse, error) {
	kind := req.Kind
	if kind == "" {
		kind = repository.KindAnalyze
	}

	charged := false
	if !actor.Admin && s.creditCost > 0 {
		ok, err := s.credits.DeductCredits(ctx, actor.UserID, s.creditCost)
		if err != nil {
			return transport.AnalysisResponse{}, err
		}
		if !ok {
			return transport.AnalysisResponse{}, apperr.Forbidden(msgInsufficientCredits)
		}
		charged = true
	}

	a, err := s.repo.Create(ctx, repository.CreateParams{
		Kind:                  kind,
		UserID:                actor.UserID,
		CompanyName:           sanitize.Text(req.CompanyName),
		BusinessLine:          sanitize.Text(req.BusinessLine),
		URL:                   strings.TrimSpace(req.URL),
		Country:               sanitize.Text(req.Country),
		UseCase:               sanitize.Text(req.UseCase),
		Timeline:              sanitize.Text(req.Timeline),
		Language:              sanitize.Text(req.Language),
		AdditionalInformation: sanitize.Multiline(req.AdditionalInformation),
		ExecutionID:           trimmedOrNil(req.ExecutionID),
	})
	if err != nil {
		if charged {
			if refundErr := s.credits.RefundCredits(ctx, actor.UserID, s.creditCost); refundErr != nil {
				s.log.Error("refund after failed create", "error", refundErr, "userId", actor.UserID)
			}
		}
		return transport.AnalysisResponse{}, err
	}

	s.log.Info("analysis created", "analysisId", a.ID, "userId", a.UserID, "kind", a.Kind)
	s.publish(ctx, events.AnalysisCreated{
		BaseEvent: events.NewBaseEvent(), AnalysisID: a.ID, UserID: a.UserID, Kind: a.Kind, CompanyName: a.CompanyName,
	})

	if a.ExecutionID != nil {
		return ToAnalysisResponse(a), nil
	}
	s.startLaunch(ctx, a.ID)

	latest, err := s.repo.Get(ctx, a.ID)
	if err != nil {
		return ToAnalysisResponse(a), nil
	}
	return ToAnalysisResponse(latest), nil
}

func (s *Service) startLaunch(ctx context.Context, analysisID uuid.UUID) {
	if s.dispatcher != nil {
		err := s.dispatcher.DispatchLaunch(ctx, analysisID)
		if err == nil {
			return
		}
		s.log.Error("enqueue workflow launch failed, launching inline", "error", err, "analysisId", analysisID)
	}
	if err := s.Launch(ctx, analysisID); err != nil {
		s.log.Warn("inline workflow launch failed", "error", err, "analysisId", analysisID)
	}
}

// Launch starts the workflow for an in-progress order that has no
// executionId yet. A failed launch marks the order as errored.
func (s *Service) Launch(ctx context.Context, analysisID uuid.UUID) error {
	a, err := s.repo.Get(ctx, analysisID)
	if err != nil {
		return err
	}
	if a.Status != repository.StatusProgress || a.ExecutionID != nil {
		s.log.Debug("workflow launch skipped", "analysisId", a.ID, "status", a.Status)
		return nil
	}

	executionID, err := s.workflows.Launch(ctx, WorkflowFor(a), workflow.LaunchRequest{
		AnalysisID:            a.ID,
		CompanyName:           a.CompanyName,
		BusinessLine:          a.BusinessLine,
		URL:                   a.URL,
		Country:               a.Country,
		UseCase:               a.UseCase,
		Timeline:              a.Timeline,
		Language:              a.Language,
		AdditionalInformation: a.AdditionalInformation,
	})
	if err != nil {
		t, markErr := s.repo.MarkFailed(ctx, a.ID, msgLaunchFailed)
		if markErr != nil {
			return markErr
		}
		if t.Applied {
			s.publishFailed(ctx, t.Analysis, msgLaunchFailed, false)
		}
		return apperr.Upstream(msgLaunchFailed, err)
	}

	if _, err := s.repo.SetExecutionID(ctx, a.ID, executionID); err != nil {
		return err
	}
	s.log.Info("workflow launched", "analysisId", a.ID, "executionId", executionID)
	return nil
}

// WorkflowFor picks the workflow that produces an order's report.
func WorkflowFor(a repository.Analysis) string {
	if a.Kind == repository.KindVitelisSales {
		return config.WorkflowVitelisSales
	}
	if strings.EqualFold(strings.ReplaceAll(a.UseCase, " ", ""), salesMinerUseCase) {
		return config.WorkflowSalesMiner
	}
	return config.WorkflowBizMiner
}

// List returns the caller's orders, or everyone's for admins.
func (s *Service) List(ctx context.Context, actor Actor, req transport.ListAnalysesRequest) (transport.AnalysisListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)
	params := repository.ListParams{
		Kind:      req.Kind,
		Status:    req.Status,
		Search:    strings.TrimSpace(req.Search),
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortOrder: req.SortOrder,
	}
	if !actor.Admin {
		owner := actor.UserID
		params.UserID = &owner
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.AnalysisListResponse{}, err
	}
	resp := transport.AnalysisListResponse{
		Items:      make([]transport.AnalysisResponse, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for i, a := range items {
		resp.Items[i] = ToAnalysisResponse(a)
	}
	return resp, nil
}

// Get returns one order visible to the caller.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (transport.AnalysisResponse, error) {
	a, err := s.getVisible(ctx, actor, id)
	if err != nil {
		return transport.AnalysisResponse{}, err
	}
	return ToAnalysisResponse(a), nil
}

// GetByExecutionID looks an order up by its workflow run.
func (s *Service) GetByExecutionID(ctx context.Context, executionID string) (transport.AnalysisResponse, error) {
	a, err := s.repo.GetByExecutionID(ctx, strings.TrimSpace(executionID))
	if err != nil {
		return transport.AnalysisResponse{}, err
	}
	return ToAnalysisResponse(a), nil
}

func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.getVisible(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("analysis deleted", "analysisId", id, "actorId", actor.UserID)
	return nil
}

// Cancel stops an in-progress order. Terminal orders are a conflict.
func (s *Service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (transport.AnalysisResponse, error) {
	if _, err := s.getVisible(ctx, actor, id); err != nil {
		return transport.AnalysisResponse{}, err
	}
	a, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return transport.AnalysisResponse{}, err
	}
	s.log.Info("analysis canceled", "analysisId", id, "actorId", actor.UserID)
	return ToAnalysisResponse(a), nil
}

// Update applies an admin patch. A change of execution status runs the
// refund rule.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateAnalysisRequest) (transport.AnalysisResponse, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return transport.AnalysisResponse{}, err
	}
	executionID := trimmedOrNil(req.ExecutionID)
	if executionID != nil && current.ExecutionID != nil && *current.ExecutionID != *executionID {
		return transport.AnalysisResponse{}, apperr.Conflict("executionId is already assigned")
	}

	t, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:              id,
		Status:          req.Status,
		ExecutionStatus: req.ExecutionStatus,
		ExecutionStep:   req.ExecutionStep,
		ExecutionID:     executionID,
		Result: repository.Result{
			ResultText:           req.ResultText,
			Summary:              req.Summary,
			ImprovementLeverages: req.ImprovementLeverages,
			HeadToHead:           req.HeadToHead,
			Sources:              req.Sources,
			DocxFile:             req.DocxFile,
			YAMLFile:             req.YAMLFile,
		},
	})
	if err != nil {
		return transport.AnalysisResponse{}, err
	}

	if req.ExecutionStatus != nil {
		if _, err := s.credits.HandleStatusChangeRefund(ctx, t.Analysis.UserID, t.PreviousExecutionStatus, t.Analysis.ExecutionStatus); err != nil {
			s.log.Error("refund on admin update failed", "error", err, "analysisId", id)
		}
	}
	s.log.Info("analysis updated by admin", "analysisId", id, "status", t.Analysis.Status,
		"executionStatus", t.Analysis.ExecutionStatus)
	return ToAnalysisResponse(t.Analysis), nil
}

// FileOwner returns the owner of the order that stores key.
func (s *Service) FileOwner(ctx context.Context, key string) (uuid.UUID, error) {
	return s.repo.FindOwnerByFileKey(ctx, key)
}

func (s *Service) getVisible(ctx context.Context, actor Actor, id uuid.UUID) (repository.Analysis, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return repository.Analysis{}, err
	}
	if !actor.Admin && a.UserID != actor.UserID {
		return repository.Analysis{}, apperr.NotFound("analysis not found")
	}
	return a, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, event)
	}
}

func (s *Service) publishFailed(ctx context.Context, a repository.Analysis, reason string, refunded bool) {
	s.publish(ctx, events.AnalysisFailed{
		BaseEvent:   events.NewBaseEvent(),
		AnalysisID:  a.ID,
		UserID:      a.UserID,
		ExecutionID: deref(a.ExecutionID),
		Kind:        a.Kind,
		CompanyName: a.CompanyName,
		Reason:      reason,
		Refunded:    refunded,
	})
}

// ToAnalysisResponse maps a record to its API shape.
func ToAnalysisResponse(a repository.Analysis) transport.AnalysisResponse {
	return transport.AnalysisResponse{
		ID:                    a.ID,
		Kind:                  a.Kind,
		UserID:                a.UserID,
		CompanyName:           a.CompanyName,
		BusinessLine:          a.BusinessLine,
		URL:                   a.URL,
		Country:               a.Country,
		UseCase:               a.UseCase,
		Timeline:              a.Timeline,
		Language:              a.Language,
		AdditionalInformation: a.AdditionalInformation,
		Status:                a.Status,
		ExecutionID:           a.ExecutionID,
		ExecutionStatus:       a.ExecutionStatus,
		ExecutionStep:         a.ExecutionStep,
		ResultText:            a.ResultText,
		Summary:               a.Summary,
		ImprovementLeverages:  a.ImprovementLeverages,
		HeadToHead:            a.HeadToHead,
		Sources:               a.Sources,
		DocxFile:              a.DocxFile,
		YAMLFile:              a.YAMLFile,
		ErrorMessage:          a.ErrorMessage,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
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
