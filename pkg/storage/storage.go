// Package storage provides blob storage for attachment files with Azure Blob Storage,
// S3-compatible (AWS S3, Cloudflare R2, MinIO), and in-memory implementations.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/courier/pkg/lifecycle"
)

// Object describes a stored blob. Field names follow the attachment provenance
// contract returned by the upload endpoint.
type Object struct {
	Key     string `json:"key"`
	URL     string `json:"url"`
	Bucket  string `json:"bucket"`
	Storage string `json:"storage"`
	Size    int64  `json:"size"`
}

// Blob is a readable object stream. The caller must close Body.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the container or bucket.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to the given key and returns its provenance.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Object, error)
	// Download returns a stream for the object at key. Returns ErrNotFound if absent.
	Download(ctx context.Context, key string) (*Blob, error)
	// Delete removes the object at key. Returns ErrNotFound if absent.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)
	// PresignURL returns a time-limited read URL for key.
	PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Resolve maps a URL previously returned by Upload back to its key.
	Resolve(url string) (string, error)
	// Provider returns the provider name recorded as attachment provenance.
	Provider() string
}

// New creates a storage system for the configured provider.
// Clients are constructed eagerly but no network call is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderS3:
		return newS3(cfg, logger)
	case ProviderMemory:
		return NewMemory(cfg.ContainerName), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

func resolveKey(base, url string) (string, error) {
	prefix := strings.TrimSuffix(base, "/") + "/"
	key, ok := strings.CutPrefix(url, prefix)
	if !ok {
		return "", ErrForeignURL
	}
	if i := strings.IndexByte(key, '?'); i >= 0 {
		key = key[:i]
	}
	if err := validateKey(key); err != nil {
		return "", err
	}
	return key, nil
}
