// Package webhook receives the asynchronous callbacks of analysis workflows
// and report engines.
package webhook

import (
	"vitelis_backend/internal/adapters/storage"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/platform/config"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	secret  string
	log     *logger.Logger
}

// NewModule creates the webhook module.
func NewModule(analyses AnalysisCallbacks, steps StepStatusWriter, store storage.ObjectStore, cfg config.WebhookConfig, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(analyses, steps, store, val, log),
		secret:  cfg.GetWebhookSharedSecret(),
		log:     log,
	}
}

func (m *Module) Name() string { return "webhook" }

// RegisterRoutes mounts the callback routes on the public group; they are
// authenticated by the shared secret instead of a JWT.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	hooks := ctx.V1.Group("/webhooks")
	hooks.Use(httpkit.WebhookRecovery(), SharedSecretMiddleware(m.secret, m.log))

	hooks.POST("/progress", m.handler.HandleProgress)
	hooks.POST("/result", m.handler.HandleResult)
	hooks.POST("/vitelis-sales/result", m.handler.HandleSalesResult)
	hooks.POST("/vitelis-sales/yaml", m.handler.HandleSalesYAML)
	hooks.POST("/error", m.handler.HandleError)
	hooks.POST("/steps/status", m.handler.HandleStepStatus)
}

var _ apphttp.Module = (*Module)(nil)
