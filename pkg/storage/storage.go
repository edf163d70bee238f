package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/internship-portal-api/pkg/config"
)

// FileStore persists uploaded files (CVs, task submissions) under opaque keys.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New selects the configured driver.
func New(cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Driver {
	case "", config.StorageDriverLocal:
		return NewLocalStorage(cfg.Dir)
	case config.StorageDriverS3:
		return NewS3Storage(S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ObjectKey builds a collision free key such as "cv/<owner>/<uuid>.pdf".
func ObjectKey(kind, owner, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(kind, owner, uuid.NewString()+ext)
}
