// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
}

// BootstrapConfig provides the root admin credentials seeded at startup.
type BootstrapConfig interface {
	GetRootAdminEmail() string
	GetRootAdminPassword() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketReports() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// WorkflowConfig provides the n8n workflow webhook endpoints per use case.
type WorkflowConfig interface {
	GetWorkflowURL(kind string) string
	GetWorkflowAPIKey() string
	GetWorkflowTimeout() time.Duration
}

// EngineConfig provides the external report engine instances.
type EngineConfig interface {
	GetEngineInstanceURLs() []string
	GetEngineAPIKey() string
	GetEngineTimeout() time.Duration
}

// WebhookConfig provides the shared secret expected on inbound callbacks.
type WebhookConfig interface {
	GetWebhookSharedSecret() string
}

// SMTPConfig provides settings for outbound notification email.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromAddress() string
	GetEmailFromName() string
	GetAppBaseURL() string
	IsSMTPEnabled() bool
}

// AnalysisConfig provides billing settings for analysis orders.
type AnalysisConfig interface {
	GetAnalysisCreditCost() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	JWTAccessSecret     string
	AccessTokenTTL      time.Duration
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	AppBaseURL          string
	RootAdminEmail      string
	RootAdminPassword   string
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinIOMaxFileSize    int64
	MinioBucketReports  string
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	WorkflowURLs        map[string]string
	WorkflowAPIKey      string
	WorkflowTimeout     time.Duration
	EngineInstanceURLs  []string
	EngineAPIKey        string
	EngineTimeout       time.Duration
	WebhookSharedSecret string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	EmailFromAddress    string
	EmailFromName       string
	AnalysisCreditCost  int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// BootstrapConfig implementation
func (c *Config) GetRootAdminEmail() string    { return c.RootAdminEmail }
func (c *Config) GetRootAdminPassword() string { return c.RootAdminPassword }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64    { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketReports() string { return c.MinioBucketReports }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// WorkflowConfig implementation
func (c *Config) GetWorkflowURL(kind string) string { return c.WorkflowURLs[kind] }
func (c *Config) GetWorkflowAPIKey() string         { return c.WorkflowAPIKey }
func (c *Config) GetWorkflowTimeout() time.Duration { return c.WorkflowTimeout }

// EngineConfig implementation
func (c *Config) GetEngineInstanceURLs() []string { return c.EngineInstanceURLs }
func (c *Config) GetEngineAPIKey() string         { return c.EngineAPIKey }
func (c *Config) GetEngineTimeout() time.Duration { return c.EngineTimeout }

// WebhookConfig implementation
func (c *Config) GetWebhookSharedSecret() string { return c.WebhookSharedSecret }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetAppBaseURL() string       { return c.AppBaseURL }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.EmailFromAddress != ""
}

// AnalysisConfig implementation
func (c *Config) GetAnalysisCreditCost() int { return c.AnalysisCreditCost }

// Workflow kinds used as keys in WorkflowURLs.
const (
	WorkflowBizMiner     = "bizminer"
	WorkflowSalesMiner   = "salesminer"
	WorkflowVitelisSales = "vitelis_sales"
)

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:     mustDuration(getEnv("JWT_ACCESS_TTL", "24h")),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:3000"),
		RootAdminEmail:     strings.ToLower(strings.TrimSpace(getEnv("ROOT_ADMIN_EMAIL", ""))),
		RootAdminPassword:  getEnv("ROOT_ADMIN_PASSWORD", ""),
		MinIOEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:   mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "52428800")),
		MinioBucketReports: getEnv("MINIO_BUCKET_REPORTS", "vitelis-reports"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE_NAME", "default"),
		AsynqConcurrency:   int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "10"))),
		WorkflowURLs: map[string]string{
			WorkflowBizMiner:     getEnv("N8N_BIZMINER_URL", ""),
			WorkflowSalesMiner:   getEnv("N8N_SALESMINER_URL", ""),
			WorkflowVitelisSales: getEnv("N8N_VITELIS_SALES_URL", ""),
		},
		WorkflowAPIKey:      getEnv("N8N_API_KEY", ""),
		WorkflowTimeout:     mustDuration(getEnv("WORKFLOW_TIMEOUT", "30s")),
		EngineInstanceURLs:  splitCSV(getEnv("ENGINE_INSTANCE_URLS", "")),
		EngineAPIKey:        getEnv("ENGINE_API_KEY", ""),
		EngineTimeout:       mustDuration(getEnv("ENGINE_TIMEOUT", "10s")),
		WebhookSharedSecret: getEnv("WEBHOOK_SHARED_SECRET", ""),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            int(mustInt64(getEnv("SMTP_PORT", "587"))),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		EmailFromAddress:    getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:       getEnv("EMAIL_FROM_NAME", "Vitelis"),
		AnalysisCreditCost:  int(mustInt64(getEnv("ANALYSIS_CREDIT_COST", "1"))),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL must be a positive duration")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.AnalysisCreditCost < 0 {
		return nil, fmt.Errorf("ANALYSIS_CREDIT_COST cannot be negative")
	}
	if (cfg.RootAdminEmail == "") != (cfg.RootAdminPassword == "") {
		return nil, fmt.Errorf("ROOT_ADMIN_EMAIL and ROOT_ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
