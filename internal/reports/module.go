// Package reports provides deep-dive reports: step configuration, the
// per-company status matrix and the orchestrator that drives the engine.
package reports

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/internal/events"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/internal/reports/engine"
	"vitelis_backend/internal/reports/handler"
	"vitelis_backend/internal/reports/repository"
	"vitelis_backend/internal/reports/service"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"
)

// Module is the reports bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the reports module. The catalog port is satisfied by an
// adapter over the catalog module.
func NewModule(pool *pgxpool.Pool, catalog service.StepCatalog, cfg config.EngineConfig, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), catalog, engine.New(cfg, log), eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string { return "reports" }

// Service exposes the matrix writer to the engine callback route.
func (m *Module) Service() *service.Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	reads := ctx.Protected.Group("/reports")
	reads.GET("", m.handler.ListReports)
	reads.GET("/:id", m.handler.GetReport)
	reads.GET("/:id/steps", m.handler.GetReportSteps)
	reads.GET("/:id/matrix", m.handler.GetStepsMatrix)
	reads.GET("/:id/orchestrator", m.handler.GetOrchestrator)

	admin := ctx.Admin.Group("/reports")
	admin.POST("", m.handler.CreateReport)
	admin.DELETE("/:id", m.handler.DeleteReport)
	admin.POST("/:id/companies", m.handler.AddCompany)
	admin.DELETE("/:id/companies/:companyId", m.handler.RemoveCompany)
	admin.POST("/:id/steps", m.handler.AddStep)
	admin.DELETE("/:id/steps/:stepId", m.handler.RemoveStep)
	admin.PATCH("/:id/steps/:stepId/order", m.handler.ReorderStep)
	admin.PUT("/:id/steps/:stepId/settings", m.handler.UpdateStepSettings)
	admin.PUT("/:id/matrix/status", m.handler.UpdateStepStatus)
	admin.PATCH("/:id/orchestrator", m.handler.UpdateOrchestrator)
	admin.POST("/:id/orchestrator/tick", m.handler.TriggerTick)
}

var _ apphttp.Module = (*Module)(nil)
