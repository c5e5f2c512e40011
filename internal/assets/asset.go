package assets

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
)

// Asset is a fetched and, for images, decoded media blob. Release is
// idempotent: the backing object URL is revoked exactly once.
type Asset struct {
	URL         string
	ContentType string
	Blob        []byte
	Image       image.Image // nil for video blobs
	ObjectURL   string

	registry *ObjectURLRegistry
	released sync.Once
}

// Release revokes the asset's object URL. Safe to call repeatedly.
func (a *Asset) Release() {
	a.released.Do(func() {
		if a.registry != nil {
			a.registry.Revoke(a.ObjectURL)
		}
	})
}

// ObjectURLRegistry hands out identifiers for in-memory blobs, standing
// in for the browser's object-URL pool. Revoking an unknown or already
// revoked URL is a no-op.
type ObjectURLRegistry struct {
	mu     sync.Mutex
	serial atomic.Uint64
	live   map[string][]byte
}

// NewObjectURLRegistry returns an empty registry.
func NewObjectURLRegistry() *ObjectURLRegistry {
	return &ObjectURLRegistry{live: make(map[string][]byte)}
}

// Create registers blob and returns its object URL.
func (r *ObjectURLRegistry) Create(blob []byte) string {
	url := fmt.Sprintf("blob:herocycle/%d", r.serial.Add(1))
	r.mu.Lock()
	r.live[url] = blob
	r.mu.Unlock()
	return url
}

// Revoke drops the blob behind url. Reports whether the URL was live.
func (r *ObjectURLRegistry) Revoke(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[url]; !ok {
		return false
	}
	delete(r.live, url)
	return true
}

// Live returns the number of unrevoked object URLs.
func (r *ObjectURLRegistry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
