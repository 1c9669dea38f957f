package results

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"github.com/cellrun/cellrun/model/table"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// DefaultCacheDir is used when no cache location is configured.
const DefaultCacheDir = ".cache"

// Cache is the durable, on-disk keyed store mapping a result entry key to its
// serialized frame. Workers persist their own output here instead of holding
// it in memory for later serialization; each key is written once per run.
type Cache struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

// NewCache creates a cache rooted at baseURL, creating the directory when
// absent.
func NewCache(baseURL string) (*Cache, error) {
	if baseURL == "" {
		baseURL = DefaultCacheDir
	}
	fs := afs.New()
	ctx := context.Background()
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", baseURL, err)
		}
	}
	baseURL = url.Normalize(baseURL, file.Scheme)
	return &Cache{baseURL: baseURL, fs: fs}, nil
}

// Save persists a frame under a key, overwriting any previous payload (a key
// is only rewritten when a job is deliberately re-run).
func (c *Cache) Save(ctx context.Context, key string, frame *table.Frame) error {
	if key == "" {
		return ErrInvalidKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame for %s: %w", key, err)
	}
	location := c.keyPath(key)
	if err := c.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save frame to %s: %w", location, err)
	}
	return nil
}

// Load retrieves a frame by key, returning ErrNotFound when no payload has
// been written yet.
func (c *Cache) Load(ctx context.Context, key string) (*table.Frame, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	location := c.keyPath(key)
	exists, err := c.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check cache entry %s: %w", location, err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	data, err := c.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %s: %w", location, err)
	}
	var frame table.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry %s: %w", location, err)
	}
	return &frame, nil
}

// Purge removes the whole cache directory. Called once after the final
// artifact has been written.
func (c *Cache) Purge(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fs.Delete(ctx, c.baseURL); err != nil {
		return fmt.Errorf("failed to purge cache %s: %w", c.baseURL, err)
	}
	return nil
}

// keyPath returns the payload location for a key.
func (c *Cache) keyPath(key string) string {
	return url.Join(c.baseURL, path.Clean(key)+".json")
}
