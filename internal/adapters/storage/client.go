package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vitelis_backend/platform/apperr"
)

const (
	// PresignedURLTTL is how long a download link stays valid.
	PresignedURLTTL = 15 * time.Minute

	msgFileNotFound = "file not found"
)

// MinIOStore implements ObjectStore on a single MinIO bucket.
type MinIOStore struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
}

var _ ObjectStore = (*MinIOStore)(nil)

// NewMinIOStore connects to MinIO. It fails when no endpoint is configured.
func NewMinIOStore(cfg Config) (*MinIOStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOStore{
		client:      client,
		bucket:      cfg.GetMinioBucketReports(),
		maxFileSize: cfg.GetMinIOMaxFileSize(),
	}, nil
}

// EnsureBucket creates the reports bucket if it is missing.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *MinIOStore) Upload(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	fileKey := ObjectKey(folder, fileName, uuid.New())
	_, err := s.client.PutObject(ctx, s.bucket, fileKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", fileKey, err)
	}
	return fileKey, nil
}

// Open stats the object first so missing keys surface before any bytes are
// written to the client.
func (s *MinIOStore) Open(ctx context.Context, key string) (Object, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return Object{}, apperr.NotFound(msgFileNotFound)
		}
		return Object{}, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return Object{}, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return Object{Body: obj, Key: key, ContentType: info.ContentType, Size: info.Size}, nil
}

func (s *MinIOStore) PresignDownload(ctx context.Context, key string) (PresignedURL, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return PresignedURL{}, apperr.NotFound(msgFileNotFound)
		}
		return PresignedURL{}, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))

	expiresAt := time.Now().Add(PresignedURLTTL)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, PresignedURLTTL, reqParams)
	if err != nil {
		return PresignedURL{}, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return PresignedURL{URL: presigned.String(), FileKey: key, ExpiresAt: expiresAt}, nil
}

func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *MinIOStore) MaxFileSize() int64 {
	return s.maxFileSize
}

// ObjectKey builds "<folder>/<base>_<8 hex><ext>" so repeated uploads of the
// same file name never overwrite each other.
func ObjectKey(folder, fileName string, id uuid.UUID) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base = "file"
	}
	unique := fmt.Sprintf("%s_%s%s", base, id.String()[:8], ext)
	return path.Join(strings.Trim(folder, "/"), unique)
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
