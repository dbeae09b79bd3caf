// Package workflow provides the HTTP client that starts n8n analysis workflows.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"vitelis_backend/platform/config"
	"vitelis_backend/platform/logger"
)

// ErrNotConfigured is returned when no webhook URL exists for a workflow.
var ErrNotConfigured = errors.New("workflow url not configured")

// LaunchRequest is the body posted to a workflow webhook.
type LaunchRequest struct {
	AnalysisID            uuid.UUID `json:"analysisId"`
	CompanyName           string    `json:"companyName"`
	BusinessLine          string    `json:"businessLine,omitempty"`
	URL                   string    `json:"url,omitempty"`
	Country               string    `json:"country,omitempty"`
	UseCase               string    `json:"useCase,omitempty"`
	Timeline              string    `json:"timeline,omitempty"`
	Language              string    `json:"language,omitempty"`
	AdditionalInformation string    `json:"additionalInformation,omitempty"`
}

type launchResponse struct {
	ExecutionID string `json:"executionId"`
}

// Client starts workflows.
type Client struct {
	httpClient *http.Client
	cfg        config.WorkflowConfig
	log        *logger.Logger
}

// New creates a workflow client bounded by WORKFLOW_TIMEOUT.
func New(cfg config.WorkflowConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetWorkflowTimeout()},
		cfg:        cfg,
		log:        log,
	}
}

// Launch starts workflow and returns the executionId the workflow assigned.
func (c *Client) Launch(ctx context.Context, workflow string, launch LaunchRequest) (string, error) {
	reqURL := strings.TrimSpace(c.cfg.GetWorkflowURL(workflow))
	if reqURL == "" {
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, workflow)
	}

	body, err := json.Marshal(launch)
	if err != nil {
		return "", fmt.Errorf("encode launch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if key := c.cfg.GetWorkflowAPIKey(); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("workflow launch failed", "error", err, "workflow", workflow)
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("workflow launch rejected", "status", resp.StatusCode, "workflow", workflow)
		return "", fmt.Errorf("workflow returned status %d", resp.StatusCode)
	}

	var decoded launchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(decoded.ExecutionID) == "" {
		return "", errors.New("workflow response has no executionId")
	}
	return decoded.ExecutionID, nil
}
