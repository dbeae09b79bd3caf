package storage

import (
	"fmt"
	"path"
	"strings"

	"vitelis_backend/platform/apperr"
)

// AllowedContentTypes lists the report formats accepted for upload.
var AllowedContentTypes = map[string]bool{
	"application/yaml":   true,
	"application/x-yaml": true,
	"text/yaml":          true,
	"text/x-yaml":        true,
	"application/pdf":    true,
	"text/plain":         true,
	"text/markdown":      true,
	"application/json":   true,

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// ContentTypeForName guesses a content type from the file extension. Workflow
// senders often post files as application/octet-stream.
func ContentTypeForName(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".yaml", ".yml":
		return "application/yaml"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		return "application/pdf"
	case ".md":
		return "text/markdown"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	}
	return "application/octet-stream"
}

func normalizeContentType(contentType string) string {
	return strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
}

func (s *MinIOStore) ValidateContentType(contentType string) error {
	return validateContentType(contentType)
}

func (s *MinIOStore) ValidateFileSize(sizeBytes int64) error {
	return validateFileSize(sizeBytes, s.maxFileSize)
}

func validateContentType(contentType string) error {
	if !AllowedContentTypes[normalizeContentType(contentType)] {
		return apperr.Validation(fmt.Sprintf("content type %q is not allowed", contentType))
	}
	return nil
}

func validateFileSize(sizeBytes, maxFileSize int64) error {
	if sizeBytes <= 0 {
		return apperr.Validation("file size must be greater than 0")
	}
	if maxFileSize > 0 && sizeBytes > maxFileSize {
		return apperr.Validation(fmt.Sprintf("file size %d exceeds maximum allowed size %d", sizeBytes, maxFileSize))
	}
	return nil
}

// CleanKey rejects keys that are empty, absolute or escape their prefix.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", apperr.BadRequest("file key is required")
	}
	cleaned := path.Clean(strings.TrimPrefix(key, "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.Contains(key, "\\") {
		return "", apperr.BadRequest("invalid file key")
	}
	return cleaned, nil
}
