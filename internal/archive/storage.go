// Package archive keeps a copy of every collaborator exchange (topping
// suggestions and critiques) in blob storage for offline review.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when an exchange is not in the archive.
var ErrNotFound = errors.New("exchange not found")

// StorageClient abstracts blob storage for exchange records.
type StorageClient interface {
	PutExchange(ctx context.Context, kind, id string, data []byte) error
	GetExchange(ctx context.Context, kind, id string) ([]byte, error)
}

// Backends.
const (
	BackendNone  = ""
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendGCS   = "gcs"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Dir      string // local
	Bucket   string // s3, gcs
	Prefix   string // s3, gcs
	Region   string // s3
	Endpoint string // s3-compatible stores such as MinIO
}

// Open returns the StorageClient for opts. It returns nil and no error
// when archiving is disabled.
func Open(ctx context.Context, opts Options) (StorageClient, error) {
	switch opts.Backend {
	case BackendNone:
		return nil, nil
	case BackendLocal:
		if opts.Dir == "" {
			return nil, errors.New("archive: local backend needs a directory")
		}
		return NewLocalStorage(opts.Dir), nil
	case BackendS3:
		if opts.Bucket == "" {
			return nil, errors.New("archive: s3 backend needs a bucket")
		}
		return NewS3Storage(ctx, S3Config{
			Bucket:   opts.Bucket,
			Prefix:   opts.Prefix,
			Region:   opts.Region,
			Endpoint: opts.Endpoint,
		})
	case BackendGCS:
		if opts.Bucket == "" {
			return nil, errors.New("archive: gcs backend needs a bucket")
		}
		return NewGCSStorage(ctx, opts.Bucket, opts.Prefix)
	default:
		return nil, fmt.Errorf("archive: unknown backend %q", opts.Backend)
	}
}

// objectKey is the blob name shared by the bucket backends.
func objectKey(prefix, kind, id string) string {
	key := kind + "/" + id + ".json"
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(kind, id string) string {
	return filepath.Join(s.BaseDir, kind, id+".json")
}

// PutExchange stores an exchange blob.
func (s *LocalStorage) PutExchange(_ context.Context, kind, id string, data []byte) error {
	path := s.path(kind, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GetExchange retrieves an exchange blob.
func (s *LocalStorage) GetExchange(_ context.Context, kind, id string) ([]byte, error) {
	data, err := os.ReadFile(s.path(kind, id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", kind, id, ErrNotFound)
	}
	return data, err
}
