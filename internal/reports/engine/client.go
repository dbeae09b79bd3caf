// Package engine provides the HTTP client for the report execution engine.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"vitelis_backend/platform/config"
	"vitelis_backend/platform/logger"
)

const tickPath = "/tick"

// TickRequest is the body sent to an engine instance.
type TickRequest struct {
	ReportID    uuid.UUID              `json:"reportId"`
	Metadata    map[string]interface{} `json:"metadata"`
	TriggeredAt time.Time              `json:"triggeredAt"`
}

// Client fires ticks at one of the configured engine instances.
type Client struct {
	httpClient *http.Client
	baseURLs   []string
	apiKey     string
	log        *logger.Logger
}

// New creates an engine client. Instances are numbered from 1 in
// ENGINE_INSTANCE_URLS order.
func New(cfg config.EngineConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetEngineTimeout()},
		baseURLs:   cfg.GetEngineInstanceURLs(),
		apiKey:     cfg.GetEngineAPIKey(),
		log:        log,
	}
}

// Instances returns how many engine instances are configured.
func (c *Client) Instances() int {
	return len(c.baseURLs)
}

// Tick posts a tick to instance (1-based). Any non-2xx answer is an error.
func (c *Client) Tick(ctx context.Context, instance int, tick TickRequest) error {
	if instance < 1 || instance > len(c.baseURLs) {
		return fmt.Errorf("engine instance %d not configured", instance)
	}
	reqURL := strings.TrimRight(c.baseURLs[instance-1], "/") + tickPath

	body, err := json.Marshal(tick)
	if err != nil {
		return fmt.Errorf("encode tick: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("engine tick failed", "error", err, "instance", instance)
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("engine tick rejected", "status", resp.StatusCode, "instance", instance)
		return fmt.Errorf("engine returned status %d", resp.StatusCode)
	}
	return nil
}
