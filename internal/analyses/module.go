// Package analyses provides the analysis order module: orders, workflow
// launches and the state changes driven by workflow callbacks.
package analyses

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/internal/analyses/handler"
	"vitelis_backend/internal/analyses/repository"
	"vitelis_backend/internal/analyses/service"
	"vitelis_backend/internal/analyses/workflow"
	"vitelis_backend/internal/events"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"
)

// Config is the configuration the analyses module reads.
type Config interface {
	config.WorkflowConfig
	config.AnalysisConfig
}

// Module is the analyses bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the analyses module.
func NewModule(pool *pgxpool.Pool, credits service.CreditLedger, cfg Config, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), credits, workflow.New(cfg, log), eventBus, cfg, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string { return "analyses" }

// Service exposes the service to the webhook, files and scheduler wiring.
func (m *Module) Service() *service.Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	analyses := ctx.Protected.Group("/analyses")
	analyses.POST("", m.handler.Create)
	analyses.GET("", m.handler.List)
	analyses.GET("/:id", m.handler.Get)
	analyses.DELETE("/:id", m.handler.Delete)
	analyses.POST("/:id/cancel", m.handler.Cancel)

	admin := ctx.Admin.Group("/analyses")
	admin.PATCH("/:id", m.handler.Update)
	admin.GET("/by-execution/:executionId", m.handler.GetByExecutionID)
}

var _ apphttp.Module = (*Module)(nil)
