// Package assets supplies decoded hero media for URLs with
// content-hash-aware caching. One network fetch is in flight per URL at
// most; concurrent callers share the pending result.
package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"

	"github.com/ivlev/herocycle/internal/media"
)

// LoadError reports an asset fetch or decode failure. The cycle loop
// recovers from it on the next tick; it never crashes the machine.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Provider is the capability the cycle machine depends on: fetch a
// decoded asset for a URL. Priority fetches are for the item about to
// display; background ones prefetch upcoming items.
type Provider interface {
	Fetch(ctx context.Context, url string, priority bool) (*Asset, error)
}

type cacheEntry struct {
	hash  string
	asset *Asset
}

// HTTPProvider fetches assets over HTTP with retries, deduplicates
// concurrent fetches per URL, and caches blobs keyed by their
// hash-stripped URL so a rebuilt asset invalidates its predecessor.
type HTTPProvider struct {
	Timeout     time.Duration // per-fetch budget; exceeding it is a LoadError
	DecodeWidth int           // images wider than this are downscaled after decode

	client *retryablehttp.Client
	group  singleflight.Group
	urls   *ObjectURLRegistry
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewHTTPProvider returns a provider with the production defaults.
func NewHTTPProvider(logger *slog.Logger) *HTTPProvider {
	if logger == nil {
		logger = slog.Default()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil

	return &HTTPProvider{
		Timeout:     30 * time.Second,
		DecodeWidth: 1920,
		client:      client,
		urls:        NewObjectURLRegistry(),
		logger:      logger,
		cache:       make(map[string]cacheEntry),
	}
}

// Fetch returns the asset for url, from cache when its content hash
// still matches. At most one network fetch per URL is in flight;
// concurrent callers receive the same result.
func (p *HTTPProvider) Fetch(ctx context.Context, url string, priority bool) (*Asset, error) {
	key := media.CacheKey(url)
	hash := media.ContentHash(url)

	if asset := p.cached(key, hash); asset != nil {
		return asset, nil
	}

	v, err, _ := p.group.Do(url, func() (any, error) {
		// A concurrent caller may have populated the cache while we
		// waited on the flight group.
		if asset := p.cached(key, hash); asset != nil {
			return asset, nil
		}
		// The flight is shared by every caller waiting on this URL,
		// so it must outlive the first caller's context; a cancelled
		// prefetch must not poison the result for a priority caller
		// that joined. The provider timeout still bounds it.
		asset, err := p.fetchAndDecode(context.WithoutCancel(ctx), url, priority)
		if err != nil {
			return nil, err
		}
		p.store(key, hash, asset)
		return asset, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Asset), nil
}

func (p *HTTPProvider) cached(key, hash string) *Asset {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.cache[key]
	if !ok {
		return nil
	}
	if entry.hash != hash {
		// Content hash changed: the build produced a new asset under
		// the same logical name. Drop the stale entry.
		delete(p.cache, key)
		entry.asset.Release()
		return nil
	}
	return entry.asset
}

func (p *HTTPProvider) store(key, hash string, asset *Asset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[key] = cacheEntry{hash: hash, asset: asset}
}

func (p *HTTPProvider) fetchAndDecode(ctx context.Context, url string, priority bool) (*Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	if !priority {
		// Hint caches that this is speculative prefetch traffic.
		req.Header.Set("X-Purpose", "prefetch")
	}

	started := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}

	asset := &Asset{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Blob:        blob,
		ObjectURL:   p.urls.Create(blob),
		registry:    p.urls,
	}

	if strings.HasPrefix(asset.ContentType, "image/") {
		img, err := DecodeImage(blob, p.DecodeWidth)
		if err != nil {
			asset.Release()
			return nil, &LoadError{URL: url, Err: err}
		}
		asset.Image = img
	}

	p.logger.Debug("asset_fetched",
		slog.String("url", url),
		slog.Bool("priority", priority),
		slog.Int("bytes", len(blob)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return asset, nil
}

// Purge releases every cached asset. Used on teardown.
func (p *HTTPProvider) Purge() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, entry := range p.cache {
		entry.asset.Release()
		delete(p.cache, key)
	}
}
