package testkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gallery-la/internal/ports"
)

var _ ports.BlobStore = (*Blobs)(nil)

// PublicBase is the URL prefix of objects stored in Blobs.
const PublicBase = "https://storage.test/object/public/artworks/"

// Blobs is an in-memory object store.
type Blobs struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PutErr, when set, is consulted before each write.
	PutErr func(path string) error
	// RemoveErr, when set, is consulted before each removal.
	RemoveErr func(path string) error
	// OnRemove observes removals before they happen.
	OnRemove func(path string)
}

func NewBlobs() *Blobs {
	return &Blobs{objects: map[string][]byte{}}
}

func (b *Blobs) Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) error {
	if b.PutErr != nil {
		if err := b.PutErr(path); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.objects[path]; exists {
		return fmt.Errorf("object %s already exists", path)
	}
	b.objects[path] = data
	return nil
}

func (b *Blobs) PublicURL(path string) string {
	return PublicBase + path
}

func (b *Blobs) Remove(ctx context.Context, paths ...string) error {
	var errList []error
	for _, p := range paths {
		if b.OnRemove != nil {
			b.OnRemove(p)
		}
		if b.RemoveErr != nil {
			if err := b.RemoveErr(p); err != nil {
				errList = append(errList, err)
				continue
			}
		}
		b.mu.Lock()
		delete(b.objects, p)
		b.mu.Unlock()
	}
	return errors.Join(errList...)
}

// Paths lists stored object paths in lexical order.
func (b *Blobs) Paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.objects))
	for p := range b.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Has reports whether the object behind url or path exists.
func (b *Blobs) Has(urlOrPath string) bool {
	p := strings.TrimPrefix(urlOrPath, PublicBase)
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[p]
	return ok
}

// Content returns the bytes stored at path.
func (b *Blobs) Content(path string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[path]
}
