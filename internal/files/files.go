// Package files proxies report files from object storage to the users who
// own them.
package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitelis_backend/internal/adapters/storage"
	apphttp "vitelis_backend/internal/http"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/httpkit"
	"vitelis_backend/platform/logger"
)

// OwnerResolver finds the user whose analysis references a file key.
type OwnerResolver interface {
	FileOwner(ctx context.Context, key string) (uuid.UUID, error)
}

// Service authorizes access to stored files.
type Service struct {
	store  storage.ObjectStore
	owners OwnerResolver
	log    *logger.Logger
}

func NewService(store storage.ObjectStore, owners OwnerResolver, log *logger.Logger) *Service {
	return &Service{store: store, owners: owners, log: log}
}

// authorize cleans the key and checks that the caller may read it. Keys not
// referenced by any analysis are admin-only.
func (s *Service) authorize(ctx context.Context, identity httpkit.Identity, rawKey string) (string, error) {
	key, err := storage.CleanKey(rawKey)
	if err != nil {
		return "", err
	}
	if s.store == nil {
		return "", apperr.NotFound("file storage is not configured")
	}
	if identity.IsAdmin() {
		return key, nil
	}

	owner, err := s.owners.FileOwner(ctx, key)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", apperr.NotFound("file not found")
		}
		return "", err
	}
	if owner != identity.UserID() {
		s.log.Warn("file access denied", "key", key, "userId", identity.UserID())
		return "", apperr.NotFound("file not found")
	}
	return key, nil
}

// Open returns the object for a permitted caller.
func (s *Service) Open(ctx context.Context, identity httpkit.Identity, rawKey string) (storage.Object, error) {
	key, err := s.authorize(ctx, identity, rawKey)
	if err != nil {
		return storage.Object{}, err
	}
	return s.store.Open(ctx, key)
}

// DownloadURL returns a presigned link for a permitted caller.
func (s *Service) DownloadURL(ctx context.Context, identity httpkit.Identity, rawKey string) (storage.PresignedURL, error) {
	key, err := s.authorize(ctx, identity, rawKey)
	if err != nil {
		return storage.PresignedURL{}, err
	}
	return s.store.PresignDownload(ctx, key)
}

// Module is the files module implementing http.Module.
type Module struct {
	svc *Service
	log *logger.Logger
}

// NewModule creates the files module. store may be nil.
func NewModule(store storage.ObjectStore, owners OwnerResolver, log *logger.Logger) *Module {
	return &Module{svc: NewService(store, owners, log), log: log}
}

func (m *Module) Name() string { return "files" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/files", m.Download)
	ctx.Protected.GET("/files/url", m.DownloadURL)
}

// Download streams a stored file.
// GET /api/v1/files?key=
func (m *Module) Download(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	obj, err := m.svc.Open(c.Request.Context(), identity, c.Query("key"))
	if httpkit.HandleError(c, err) {
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForName(obj.Key)
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(obj.Key)))
	c.Header("Content-Type", contentType)
	if obj.Size > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", obj.Size))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj.Body); err != nil {
		m.log.Warn("file stream interrupted", "key", obj.Key, "error", err)
	}
}

// DownloadURL returns a presigned download link.
// GET /api/v1/files/url?key=
func (m *Module) DownloadURL(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	url, err := m.svc.DownloadURL(c.Request.Context(), identity, c.Query("key"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, url)
}

var _ apphttp.Module = (*Module)(nil)
