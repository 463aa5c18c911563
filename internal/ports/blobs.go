package ports

import (
	"context"
	"io"
)

type BlobStore interface {
	// Put writes body at path and fails if an object already exists there.
	// size is -1 when unknown.
	Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) error
	PublicURL(path string) string
	Remove(ctx context.Context, paths ...string) error
}
