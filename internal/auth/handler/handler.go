package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitelis_backend/internal/auth/service"
	"vitelis_backend/internal/auth/transport"
	authvalidator "vitelis_backend/internal/auth/validator"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/validator"
)

// Handler handles HTTP requests for accounts and login.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidUserID    = "invalid user id"
)

// New creates an auth handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the public login and registration endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
}

// Register creates a self-service account.
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.Register(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Login exchanges credentials for an access token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.Login(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetMe returns the caller's account.
// GET /api/v1/users/me
func (h *Handler) GetMe(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	result, err := h.svc.GetMe(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateMe edits the caller's profile.
// PATCH /api/v1/users/me
func (h *Handler) UpdateMe(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.UpdateMeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.UpdateMe(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ChangePassword rotates the caller's password.
// POST /api/v1/users/me/password
func (h *Handler) ChangePassword(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.svc.ChangePassword(c.Request.Context(), identity.UserID(), req)) {
		return
	}
	httpkit.NoContent(c)
}

// ListUsers lists accounts for admins.
// GET /api/v1/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	var req transport.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	result, err := h.svc.ListUsers(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetUser returns one account.
// GET /api/v1/admin/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetUser(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateUser creates an account as admin.
// POST /api/v1/admin/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req transport.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.CreateUser(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateUser edits an account as admin.
// PATCH /api/v1/admin/users/:id
func (h *Handler) UpdateUser(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var req transport.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.svc.UpdateUser(c.Request.Context(), identity.UserID(), userID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteUser removes an account.
// DELETE /api/v1/admin/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteUser(c.Request.Context(), identity.UserID(), userID)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, passwordHint(err))
		return false
	}
	return true
}

// passwordHint replaces the raw strongpassword tag failure with the policy text.
func passwordHint(err error) interface{} {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "'strongpassword'") {
		return authvalidator.PasswordPolicy
	}
	return err.Error()
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return uuid.Nil, false
	}
	return id, true
}
