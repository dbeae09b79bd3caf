package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitelis_backend/internal/chats/service"
	"vitelis_backend/internal/chats/transport"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidChatID    = "invalid chat id"
)

// Handler handles HTTP requests for chats.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListChats GET /api/v1/chats
func (h *Handler) ListChats(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.ListChatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	result, err := h.svc.ListChats(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateChat POST /api/v1/chats
func (h *Handler) CreateChat(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.CreateChatRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.CreateChat(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetChat GET /api/v1/chats/:id
func (h *Handler) GetChat(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetChat(c.Request.Context(), identity.UserID(), chatID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteChat DELETE /api/v1/chats/:id
func (h *Handler) DeleteChat(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteChat(c.Request.Context(), identity.UserID(), chatID)) {
		return
	}
	httpkit.NoContent(c)
}

// ListMessages GET /api/v1/chats/:id/messages
func (h *Handler) ListMessages(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	result, err := h.svc.ListMessages(c.Request.Context(), identity.UserID(), chatID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

// AddMessage POST /api/v1/chats/:id/messages
func (h *Handler) AddMessage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	var req transport.AddMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.AddMessage(c.Request.Context(), identity.UserID(), chatID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
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

func parseChatID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidChatID, nil)
		return uuid.Nil, false
	}
	return id, true
}
