package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vitelis_backend/internal/events"
	"vitelis_backend/internal/reports/engine"
	"vitelis_backend/internal/reports/repository"
	"vitelis_backend/internal/reports/transport"
	"vitelis_backend/platform/apperr"
)

// GetOrchestratorStatus returns the orchestrator, PENDING with empty metadata
// when it was never written.
func (s *Service) GetOrchestratorStatus(ctx context.Context, reportID uuid.UUID) (transport.OrchestratorResponse, error) {
	if _, err := s.repo.GetReport(ctx, reportID); err != nil {
		return transport.OrchestratorResponse{}, err
	}
	o, err := s.repo.GetOrchestrator(ctx, reportID)
	if err != nil {
		return transport.OrchestratorResponse{}, err
	}
	return toOrchestratorResponse(o), nil
}

// UpdateOrchestrator overwrites the status when given and patches metadata:
// null values delete keys, other values set them.
func (s *Service) UpdateOrchestrator(ctx context.Context, reportID uuid.UUID, req transport.UpdateOrchestratorRequest) (transport.OrchestratorResponse, error) {
	if req.Status != nil {
		if _, ok := validStatuses[*req.Status]; !ok {
			return transport.OrchestratorResponse{}, apperr.Validation("invalid orchestrator status")
		}
	}
	if _, err := s.repo.GetReport(ctx, reportID); err != nil {
		return transport.OrchestratorResponse{}, err
	}

	set, deleteKeys := splitMetadataPatch(req.Metadata)
	o, err := s.repo.PatchOrchestrator(ctx, repository.OrchestratorPatch{
		ReportID:   reportID,
		Status:     req.Status,
		Set:        set,
		DeleteKeys: deleteKeys,
	})
	if err != nil {
		return transport.OrchestratorResponse{}, err
	}

	s.log.Info("orchestrator updated", "reportId", reportID, "status", o.Status,
		"setKeys", len(set), "deletedKeys", len(deleteKeys))
	return toOrchestratorResponse(o), nil
}

// TriggerEngineTick asks an engine instance to advance the report. The
// orchestrator must be PROCESSING; otherwise nothing is sent.
func (s *Service) TriggerEngineTick(ctx context.Context, reportID uuid.UUID, instance int) (transport.TriggerTickResponse, error) {
	if instance < 1 || instance > s.engine.Instances() {
		return transport.TriggerTickResponse{}, apperr.Validation("unknown engine instance")
	}
	if _, err := s.repo.GetReport(ctx, reportID); err != nil {
		return transport.TriggerTickResponse{}, err
	}

	o, err := s.repo.GetOrchestrator(ctx, reportID)
	if err != nil {
		return transport.TriggerTickResponse{}, err
	}
	if o.Status != repository.StatusProcessing {
		return transport.TriggerTickResponse{}, apperr.Conflict("orchestrator must be PROCESSING to trigger a tick")
	}

	tick := engine.TickRequest{ReportID: reportID, Metadata: o.Metadata, TriggeredAt: time.Now().UTC()}
	if err := s.engine.Tick(ctx, instance, tick); err != nil {
		return transport.TriggerTickResponse{}, apperr.Upstream("engine tick failed", err)
	}

	s.log.Info("engine tick dispatched", "reportId", reportID, "instance", instance)
	s.publish(ctx, events.EngineTickDispatched{BaseEvent: events.NewBaseEvent(), ReportID: reportID, Instance: instance})
	return transport.TriggerTickResponse{Accepted: true, Instance: instance}, nil
}

func splitMetadataPatch(patch map[string]interface{}) (map[string]interface{}, []string) {
	set := make(map[string]interface{}, len(patch))
	deleteKeys := make([]string, 0)
	for k, v := range patch {
		if v == nil {
			deleteKeys = append(deleteKeys, k)
			continue
		}
		set[k] = v
	}
	return set, deleteKeys
}

func toOrchestratorResponse(o repository.Orchestrator) transport.OrchestratorResponse {
	metadata := o.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return transport.OrchestratorResponse{
		ReportID:  o.ReportID,
		Status:    o.Status,
		Metadata:  metadata,
		UpdatedAt: o.UpdatedAt,
	}
}
