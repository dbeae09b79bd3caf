// Package notification reacts to analysis and report events: it emails the
// owner of a finished or failed analysis and pushes live updates over SSE.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitelis_backend/internal/email"
	"vitelis_backend/internal/events"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/internal/notification/sse"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/logger"
)

// RecipientReader resolves the email address of a user.
type RecipientReader interface {
	RecipientEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

// Config provides the frontend URL used in email links.
type Config interface {
	GetAppBaseURL() string
}

// Module handles notification event subscriptions and the SSE stream.
type Module struct {
	sender     email.Sender
	recipients RecipientReader
	sse        *sse.Service
	baseURL    string
	log        *logger.Logger
}

func New(sender email.Sender, recipients RecipientReader, cfg Config, log *logger.Logger) *Module {
	return &Module{
		sender:     sender,
		recipients: recipients,
		sse:        sse.New(log),
		baseURL:    strings.TrimRight(cfg.GetAppBaseURL(), "/"),
		log:        log,
	}
}

func (m *Module) Name() string { return "notification" }

// SSE exposes the stream hub so main can close it on shutdown.
func (m *Module) SSE() *sse.Service { return m.sse }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/events/stream", m.sse.Handler(func(c *gin.Context) (uuid.UUID, bool, bool) {
		identity := httpkit.GetIdentity(c)
		if !identity.IsAuthenticated() {
			return uuid.Nil, false, false
		}
		return identity.UserID(), identity.IsAdmin(), true
	}))
}

// RegisterHandlers subscribes to the events this module reacts to.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.AnalysisFinished{}.EventName(), m)
	bus.Subscribe(events.AnalysisFailed{}.EventName(), m)
	bus.Subscribe(events.CreditsRefunded{}.EventName(), m)
	bus.Subscribe(events.StepStatusChanged{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.AnalysisFinished:
		return m.handleAnalysisFinished(ctx, e)
	case events.AnalysisFailed:
		return m.handleAnalysisFailed(ctx, e)
	case events.CreditsRefunded:
		m.sse.Publish(e.UserID, sse.Event{Type: sse.EventCreditsRefunded, Data: e})
		return nil
	case events.StepStatusChanged:
		m.sse.PublishToAdmins(sse.Event{Type: sse.EventStepStatusChanged, Data: e})
		return nil
	default:
		m.log.Debug("notification ignored event", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleAnalysisFinished(ctx context.Context, e events.AnalysisFinished) error {
	m.sse.Publish(e.UserID, sse.Event{
		Type:    sse.EventAnalysisFinished,
		Message: fmt.Sprintf("Analysis of %s is ready", e.CompanyName),
		Data:    e,
	})

	to, err := m.recipients.RecipientEmail(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	mail := email.AnalysisMail{CompanyName: e.CompanyName, Kind: e.Kind, ReportURL: m.analysisURL(e.AnalysisID)}
	if err := m.sender.SendAnalysisFinishedEmail(ctx, to, mail); err != nil {
		m.log.Error("analysis finished email failed", "error", err, "analysisId", e.AnalysisID)
		return err
	}
	m.log.Info("analysis finished email sent", "analysisId", e.AnalysisID, "userId", e.UserID)
	return nil
}

func (m *Module) handleAnalysisFailed(ctx context.Context, e events.AnalysisFailed) error {
	m.sse.Publish(e.UserID, sse.Event{
		Type:    sse.EventAnalysisFailed,
		Message: fmt.Sprintf("Analysis of %s failed", e.CompanyName),
		Data:    e,
	})

	to, err := m.recipients.RecipientEmail(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	mail := email.AnalysisMail{
		CompanyName: e.CompanyName,
		Kind:        e.Kind,
		Reason:      e.Reason,
		Refunded:    e.Refunded,
		ReportURL:   m.analysisURL(e.AnalysisID),
	}
	if err := m.sender.SendAnalysisFailedEmail(ctx, to, mail); err != nil {
		m.log.Error("analysis failed email failed", "error", err, "analysisId", e.AnalysisID)
		return err
	}
	return nil
}

func (m *Module) analysisURL(id uuid.UUID) string {
	if m.baseURL == "" {
		return ""
	}
	return m.baseURL + "/analyses/" + id.String()
}

var _ apphttp.Module = (*Module)(nil)
