package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitelis_backend/internal/catalog/service"
	"vitelis_backend/internal/catalog/transport"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/validator"
)

// Handler handles HTTP requests for the generation-step catalog and industries.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListGenerationSteps returns the catalog.
// GET /api/v1/generation-steps
func (h *Handler) ListGenerationSteps(c *gin.Context) {
	result, err := h.svc.ListGenerationSteps(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetGenerationStep returns one catalog step.
// GET /api/v1/generation-steps/:id
func (h *Handler) GetGenerationStep(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetGenerationStep(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateGenerationStep adds a catalog step.
// POST /api/v1/admin/generation-steps
func (h *Handler) CreateGenerationStep(c *gin.Context) {
	var req transport.CreateGenerationStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateGenerationStep(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateGenerationStep patches a catalog step.
// PUT /api/v1/admin/generation-steps/:id
func (h *Handler) UpdateGenerationStep(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateGenerationStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateGenerationStep(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteGenerationStep removes a catalog step.
// DELETE /api/v1/admin/generation-steps/:id
func (h *Handler) DeleteGenerationStep(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteGenerationStep(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

// ListIndustries returns all industries.
// GET /api/v1/industries
func (h *Handler) ListIndustries(c *gin.Context) {
	result, err := h.svc.ListIndustries(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateIndustry adds an industry.
// POST /api/v1/admin/industries
func (h *Handler) CreateIndustry(c *gin.Context) {
	var req transport.CreateIndustryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateIndustry(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// DeleteIndustry removes an industry.
// DELETE /api/v1/admin/industries/:id
func (h *Handler) DeleteIndustry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteIndustry(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
