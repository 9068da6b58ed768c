package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage keeps event images and hands out their public URLs.
type Storage interface {
	// Put stores the object at key and returns its public URL
	Put(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)

	// Remove deletes the object at key. A missing object is not an error
	Remove(ctx context.Context, key string) error
}

// Config holds storage configuration
type Config struct {
	Type      string // local, s3
	BasePath  string // For local storage
	BaseURL   string // Public URL base
	Bucket    string // For S3
	Region    string // For S3
	AccessKey string // For S3
	SecretKey string // For S3
	Endpoint  string // For S3-compatible services
}

// New creates a storage backend based on configuration
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// ObjectKey builds the key for an upload: <ownerID>/<unix millis>-<file name>.
func ObjectKey(ownerID, fileName string, at time.Time) string {
	name := sanitize(path.Base(fileName))
	if name == "" || name == "." {
		name = uuid.NewString()
	}
	return fmt.Sprintf("%s/%d-%s", ownerID, at.UnixMilli(), name)
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
