// Package blob stores parsed documents and stratum snapshots as objects
// addressed by slash-separated keys. Drivers: local filesystem, S3/MinIO and
// an in-memory store for tests.
package blob

import (
	"context"
	"errors"
	"fmt"
)

// Driver identifies a concrete blob storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local filesystem (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// ErrNotFound is returned by DownloadFile when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// Store is the object storage surface used by the import and strata
// services. All methods are individually fallible and not transactional with
// each other.
type Store interface {
	FileExists(ctx context.Context, key string) (bool, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	// ListFiles returns keys under prefix in lexical order. A limit <= 0
	// means no limit.
	ListFiles(ctx context.Context, prefix string, limit int) ([]string, error)
	// UploadFile writes data under key, replacing any existing object.
	UploadFile(ctx context.Context, key string, data []byte, contentType string) error
	Driver() Driver
}

// Config selects and configures a driver.
type Config struct {
	Driver Driver
	Root   string // fs driver

	Bucket          string // s3 driver
	Region          string
	Endpoint        string // optional; MinIO or other S3-compatible endpoint
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string
	PathStyle       bool
}

// Open constructs the Store named by cfg.Driver (default fs).
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.Root)
	case DriverS3:
		return NewS3(ctx, cfg)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// limitKeys truncates a sorted key list to limit when limit is positive.
func limitKeys(keys []string, limit int) []string {
	if limit > 0 && len(keys) > limit {
		return keys[:limit]
	}
	return keys
}
