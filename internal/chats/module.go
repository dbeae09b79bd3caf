// Package chats provides per-user chat threads.
package chats

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"vitelis_backend/internal/chats/handler"
	"vitelis_backend/internal/chats/repository"
	"vitelis_backend/internal/chats/service"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/platform/logger"
	"vitelis_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "chats" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	chats := ctx.Protected.Group("/chats")
	chats.GET("", m.handler.ListChats)
	chats.POST("", m.handler.CreateChat)
	chats.GET("/:id", m.handler.GetChat)
	chats.DELETE("/:id", m.handler.DeleteChat)
	chats.GET("/:id/messages", m.handler.ListMessages)
	chats.POST("/:id/messages", m.handler.AddMessage)
}

var _ apphttp.Module = (*Module)(nil)
