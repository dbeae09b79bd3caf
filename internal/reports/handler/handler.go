package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitelis_backend/internal/reports/matrixview"
	"vitelis_backend/internal/reports/service"
	"vitelis_backend/internal/reports/transport"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for reports, steps, the matrix and the orchestrator.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListReports handles GET /api/v1/reports.
func (h *Handler) ListReports(c *gin.Context) {
	var req transport.ListReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	result, err := h.svc.ListReports(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateReport handles POST /api/v1/admin/reports.
func (h *Handler) CreateReport(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.CreateReportRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.CreateReport(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetReport handles GET /api/v1/reports/:id.
func (h *Handler) GetReport(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	result, err := h.svc.GetReport(c.Request.Context(), reportID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteReport handles DELETE /api/v1/admin/reports/:id.
func (h *Handler) DeleteReport(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteReport(c.Request.Context(), reportID)) {
		return
	}
	httpkit.NoContent(c)
}

// AddCompany handles POST /api/v1/admin/reports/:id/companies.
func (h *Handler) AddCompany(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	var req transport.AddCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.AddCompany(c.Request.Context(), reportID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// RemoveCompany handles DELETE /api/v1/admin/reports/:id/companies/:companyId.
func (h *Handler) RemoveCompany(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	companyID, ok := parseUUIDParam(c, "companyId", "invalid company id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.RemoveCompany(c.Request.Context(), reportID, companyID)) {
		return
	}
	httpkit.NoContent(c)
}

// GetReportSteps handles GET /api/v1/reports/:id/steps.
func (h *Handler) GetReportSteps(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	result, err := h.svc.GetReportSteps(c.Request.Context(), reportID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddStep handles POST /api/v1/admin/reports/:id/steps.
func (h *Handler) AddStep(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	var req transport.AddStepRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.AddStepToReport(c.Request.Context(), reportID, req.StepID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// RemoveStep handles DELETE /api/v1/admin/reports/:id/steps/:stepId.
func (h *Handler) RemoveStep(c *gin.Context) {
	reportID, stepID, ok := parseReportStep(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.RemoveStepFromReport(c.Request.Context(), reportID, stepID)) {
		return
	}
	httpkit.NoContent(c)
}

// ReorderStep handles PATCH /api/v1/admin/reports/:id/steps/:stepId/order.
func (h *Handler) ReorderStep(c *gin.Context) {
	reportID, stepID, ok := parseReportStep(c)
	if !ok {
		return
	}
	var req transport.ReorderStepRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.ReorderStep(c.Request.Context(), reportID, stepID, req.Order)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStepSettings handles PUT /api/v1/admin/reports/:id/steps/:stepId/settings.
func (h *Handler) UpdateStepSettings(c *gin.Context) {
	reportID, stepID, ok := parseReportStep(c)
	if !ok {
		return
	}
	var req transport.UpdateStepSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.UpdateStepSettings(c.Request.Context(), reportID, stepID, req.Settings)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetStepsMatrix handles GET /api/v1/reports/:id/matrix.
// Query: search, status (repeatable), step (repeatable), sortBy, sortOrder.
func (h *Handler) GetStepsMatrix(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	var q transport.MatrixQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	opts := matrixview.Options{Search: q.Search, Statuses: q.Statuses, SortBy: q.SortBy, SortOrder: q.SortOrder}
	for _, raw := range q.StepIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid step id", nil)
			return
		}
		opts.StepIDs = append(opts.StepIDs, id)
	}

	result, err := h.svc.GetStepsMatrix(c.Request.Context(), reportID, opts)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStepStatus handles PUT /api/v1/admin/reports/:id/matrix/status.
func (h *Handler) UpdateStepStatus(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	var req transport.UpdateStepStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.UpdateStepStatus(c.Request.Context(), reportID, req, service.SourceOperator)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetOrchestrator handles GET /api/v1/reports/:id/orchestrator.
func (h *Handler) GetOrchestrator(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	result, err := h.svc.GetOrchestratorStatus(c.Request.Context(), reportID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateOrchestrator handles PATCH /api/v1/admin/reports/:id/orchestrator.
func (h *Handler) UpdateOrchestrator(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	var req transport.UpdateOrchestratorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.UpdateOrchestrator(c.Request.Context(), reportID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// TriggerTick handles POST /api/v1/admin/reports/:id/orchestrator/tick.
func (h *Handler) TriggerTick(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return
	}
	var req transport.TriggerTickRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.TriggerEngineTick(c.Request.Context(), reportID, req.Instance)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, result)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func parseUUIDParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, message, nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseReportStep(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	reportID, ok := parseUUIDParam(c, "id", "invalid report id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	stepID, ok := parseUUIDParam(c, "stepId", "invalid step id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return reportID, stepID, true
}
