// Package storage is the file-storage abstraction used for product images.
//
// Two drivers are available:
//   - "local": files under STORAGE_LOCAL_ROOT, served at /storage/*
//   - "s3":    any S3-compatible bucket (AWS S3, MinIO, R2, Spaces)
//
// Boot once at startup, then use the default disk:
//
//	storage.Connect(ctx)
//	err := storage.Default().Put(ctx, "products/p1/a.png", r, "image/png")
//	url := storage.Default().URL("products/p1/a.png")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a path does not exist on a disk.
var ErrNotFound = errors.New("storage: file not found")

// ErrBadPath is returned for paths that escape the disk root.
var ErrBadPath = errors.New("storage: invalid path")

// Disk is the driver interface.
type Disk interface {
	Name() string

	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Get opens the file at path. Caller must close it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// DeletePrefix removes every file under prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// URL returns the public URL for path.
	URL(path string) string
}
