// Package credits provides the credit ledger module.
package credits

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/internal/credits/handler"
	"vitelis_backend/internal/credits/repository"
	"vitelis_backend/internal/credits/service"
	"vitelis_backend/internal/events"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"
)

// Module is the credits bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the credits module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string { return "credits" }

// Service is used by the analyses adapter for charging and refunds.
func (m *Module) Service() *service.Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/users/me/credits", m.handler.GetMyCredits)
	ctx.Admin.PUT("/users/:id/credits", m.handler.SetCredits)
	ctx.Admin.POST("/users/:id/credits", m.handler.AddCredits)
}

var _ apphttp.Module = (*Module)(nil)
