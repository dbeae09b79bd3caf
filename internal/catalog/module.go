// Package catalog provides the generation-step catalog and industries module.
package catalog

import (
	"vitelis_backend/internal/catalog/handler"
	"vitelis_backend/internal/catalog/repository"
	"vitelis_backend/internal/catalog/service"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes catalog reads to the reports adapter.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/generation-steps", m.handler.ListGenerationSteps)
	ctx.Protected.GET("/generation-steps/:id", m.handler.GetGenerationStep)
	ctx.Protected.GET("/industries", m.handler.ListIndustries)

	ctx.Admin.POST("/generation-steps", m.handler.CreateGenerationStep)
	ctx.Admin.PUT("/generation-steps/:id", m.handler.UpdateGenerationStep)
	ctx.Admin.DELETE("/generation-steps/:id", m.handler.DeleteGenerationStep)
	ctx.Admin.POST("/industries", m.handler.CreateIndustry)
	ctx.Admin.DELETE("/industries/:id", m.handler.DeleteIndustry)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
