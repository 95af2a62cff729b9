package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

var ErrStorageDisabled = errors.New("file storage is not configured")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string

	// KeyFromURL returns the object key behind a URL produced by GetPublicURL.
	KeyFromURL(publicURL string) (string, bool)
}

// JoinPublicURL appends key to the public base URL with exactly one slash
// between them.
func JoinPublicURL(base, key string) string {
	if base == "" || key == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// KeyFromPublicURL is the inverse of JoinPublicURL. It reports false for URLs
// that were not produced under base.
func KeyFromPublicURL(base, publicURL string) (string, bool) {
	if base == "" || publicURL == "" {
		return "", false
	}
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(publicURL, prefix))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
