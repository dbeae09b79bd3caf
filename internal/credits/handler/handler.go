package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitelis_backend/internal/credits/service"
	"vitelis_backend/internal/credits/transport"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler exposes credit balances.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// GetMyCredits handles GET /api/v1/users/me/credits.
func (h *Handler) GetMyCredits(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	result, err := h.svc.GetBalance(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetCredits handles PUT /api/v1/admin/users/:id/credits.
func (h *Handler) SetCredits(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var req transport.SetCreditsRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.SetCredits(c.Request.Context(), userID, *req.Credits)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddCredits handles POST /api/v1/admin/users/:id/credits.
func (h *Handler) AddCredits(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var req transport.AddCreditsRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.AddCredits(c.Request.Context(), userID, req.Amount)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
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

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return uuid.Nil, false
	}
	return id, true
}
