package objectstore

import (
	"context"
	"io"
)

// Writer streams one object. Close commits it; Abort discards a partial
// upload, after which Close must not be called.
type Writer interface {
	io.Writer
	Close() error
	Abort()
}

// Storage is the object storage used for product images and avatars.
type Storage interface {
	// EnsureBucket checks the bucket and creates it when missing.
	EnsureBucket(ctx context.Context) error
	// NewWriter opens an upload. chunkSize > 0 makes each chunkSize bytes
	// leave as their own request; 0 sends the object in one request on Close.
	NewWriter(ctx context.Context, objectPath, contentType string, chunkSize int) (Writer, error)
	PublicURL(objectPath string) string
}
