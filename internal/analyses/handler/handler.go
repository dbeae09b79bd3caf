package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitelis_backend/internal/analyses/service"
	"vitelis_backend/internal/analyses/transport"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/validator"
)

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgInvalidAnalysisID = "invalid analysis id"
)

// Handler handles HTTP requests for analysis orders.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates an analyses handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create orders a new analysis and starts its workflow.
// POST /api/v1/analyses
func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.CreateAnalysisRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.Create(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List returns the caller's analyses.
// GET /api/v1/analyses
func (h *Handler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.ListAnalysesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	result, err := h.svc.List(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one analysis.
// GET /api/v1/analyses/:id
func (h *Handler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseAnalysisID(c)
	if !ok {
		return
	}
	result, err := h.svc.Get(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes an analysis.
// DELETE /api/v1/analyses/:id
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseAnalysisID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), actor, id)) {
		return
	}
	httpkit.NoContent(c)
}

// Cancel stops an in-progress analysis.
// POST /api/v1/analyses/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseAnalysisID(c)
	if !ok {
		return
	}
	result, err := h.svc.Cancel(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update patches an analysis as admin.
// PATCH /api/v1/admin/analyses/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseAnalysisID(c)
	if !ok {
		return
	}
	var req transport.UpdateAnalysisRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByExecutionID resolves an analysis from its workflow run.
// GET /api/v1/admin/analyses/by-execution/:executionId
func (h *Handler) GetByExecutionID(c *gin.Context) {
	result, err := h.svc.GetByExecutionID(c.Request.Context(), c.Param("executionId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
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

func actorFrom(c *gin.Context) (service.Actor, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return service.Actor{}, false
	}
	return service.Actor{UserID: identity.UserID(), Admin: identity.IsAdmin()}, true
}

func parseAnalysisID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAnalysisID, nil)
		return uuid.Nil, false
	}
	return id, true
}
