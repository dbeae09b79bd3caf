package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type analysisEmailData struct {
	baseEmailData
	CompanyName string
	Product     string
	Reason      string
	Refunded    bool
}

func productName(kind string) string {
	if kind == "vitelis_sales" {
		return "VitelisSales"
	}
	return "Company analysis"
}

func renderEmailTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderAnalysisFinished(mail AnalysisMail) (string, string, error) {
	content, err := renderEmailTemplate("analysis_finished.html", analysisEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your report is ready",
			Heading:  "Your report is ready",
			CTALabel: "Open report",
			CTAURL:   mail.ReportURL,
		},
		CompanyName: mail.CompanyName,
		Product:     productName(mail.Kind),
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectAnalysisFinishedFmt, mail.CompanyName), content, nil
}

func renderAnalysisFailed(mail AnalysisMail) (string, string, error) {
	content, err := renderEmailTemplate("analysis_failed.html", analysisEmailData{
		baseEmailData: baseEmailData{
			Title:    "Analysis failed",
			Heading:  "We could not complete your analysis",
			CTALabel: "View analyses",
			CTAURL:   mail.ReportURL,
		},
		CompanyName: mail.CompanyName,
		Product:     productName(mail.Kind),
		Reason:      mail.Reason,
		Refunded:    mail.Refunded,
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectAnalysisFailedFmt, mail.CompanyName), content, nil
}
