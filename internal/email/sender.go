// Package email renders and delivers notification emails.
package email

import (
	"context"

	"vitelis_backend/platform/config"
)

// AnalysisMail describes one analysis for a notification email.
type AnalysisMail struct {
	CompanyName string
	Kind        string
	Reason      string
	Refunded    bool
	ReportURL   string
}

type Sender interface {
	SendAnalysisFinishedEmail(ctx context.Context, toEmail string, mail AnalysisMail) error
	SendAnalysisFailedEmail(ctx context.Context, toEmail string, mail AnalysisMail) error
}

// NoopSender drops every email. It is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendAnalysisFinishedEmail(context.Context, string, AnalysisMail) error {
	return nil
}

func (NoopSender) SendAnalysisFailedEmail(context.Context, string, AnalysisMail) error {
	return nil
}

// NewSender returns an SMTP sender when SMTP is configured, else NoopSender.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName())
}
