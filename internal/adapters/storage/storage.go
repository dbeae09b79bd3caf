// Package storage provides the S3-compatible object store that holds
// generated report files (DOCX, YAML, PDF).
package storage

import (
	"context"
	"io"
	"time"
)

// PresignedURL is a time-limited download link.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Object is an open stored file. The caller closes Body.
type Object struct {
	Body        io.ReadCloser
	Key         string
	ContentType string
	Size        int64
}

// ObjectStore is the report bucket as seen by the webhook and file modules.
type ObjectStore interface {
	// Upload stores the reader under folder and returns the generated key.
	Upload(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	// Open returns the object body and metadata. Missing keys are NotFound.
	Open(ctx context.Context, key string) (Object, error)
	PresignDownload(ctx context.Context, key string) (PresignedURL, error)
	Delete(ctx context.Context, key string) error
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
	MaxFileSize() int64
}

// Config defines the configuration the MinIO client reads.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketReports() string
	IsMinIOEnabled() bool
}
