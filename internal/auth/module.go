// Package auth provides the authentication bounded context module.
package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/internal/auth/handler"
	"vitelis_backend/internal/auth/repository"
	"vitelis_backend/internal/auth/service"
	authvalidator "vitelis_backend/internal/auth/validator"
	"vitelis_backend/internal/events"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the auth repository, service and handler and registers the
// strongpassword rule on the shared validator.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := authvalidator.Register(val); err != nil {
		return nil, fmt.Errorf("register password rules: %w", err)
	}

	svc := service.New(repository.New(pool), cfg, eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for the CLI and adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// Bootstrap runs the one-time root admin seed.
func (m *Module) Bootstrap(ctx context.Context, cfg config.BootstrapConfig) error {
	return m.service.EnsureRootAdmin(ctx, cfg.GetRootAdminEmail(), cfg.GetRootAdminPassword())
}

// Profile resolves a user for other modules.
func (m *Module) Profile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := m.service.Profile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{ID: user.ID, Email: user.Email, CompanyName: user.CompanyName, Role: user.Role}, nil
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/users/me", m.handler.GetMe)
	ctx.Protected.PATCH("/users/me", m.handler.UpdateMe)
	ctx.Protected.POST("/users/me/password", m.handler.ChangePassword)

	ctx.Admin.GET("/users", m.handler.ListUsers)
	ctx.Admin.POST("/users", m.handler.CreateUser)
	ctx.Admin.GET("/users/:id", m.handler.GetUser)
	ctx.Admin.PATCH("/users/:id", m.handler.UpdateUser)
	ctx.Admin.DELETE("/users/:id", m.handler.DeleteUser)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
