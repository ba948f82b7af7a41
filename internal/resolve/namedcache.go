package resolve

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"media-catalog/internal/fsys"
	"media-catalog/internal/items"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// NamedCache deduplicates creation of shared named entities (people,
// studios, genres, years), each backed by a directory under a fixed category
// root. For a given key at most one creation ever runs, no matter how many
// callers race for it; later callers share the in-flight computation or the
// cached result. Entries live until process teardown; there is no eviction.
type NamedCache struct {
	fs            fsys.Access
	providers     []Enricher
	metadataDir   string
	allowExternal bool

	sf singleflight.Group

	mu      sync.RWMutex
	entries map[string]items.Item
}

// NewNamedCache creates a cache rooted at metadataDir. Category directories
// are created lazily under it on first use.
func NewNamedCache(fs fsys.Access, providers []Enricher, metadataDir string, allowExternal bool) *NamedCache {
	return &NamedCache{
		fs:            fs,
		providers:     providers,
		metadataDir:   metadataDir,
		allowExternal: allowExternal,
		entries:       make(map[string]items.Item),
	}
}

// GetOrCreate returns the entity for a category and raw display name,
// creating its backing directory and enriching it exactly once. Concurrent
// callers for the same (category, name) observe the same computation; a
// failed creation is not cached, so a later call can retry.
func (c *NamedCache) GetOrCreate(ctx context.Context, category items.Category, rawName string) (items.Item, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown named-entity category %q", category)
	}

	name := c.fs.SanitizeName(rawName)
	if name == "" {
		return nil, fmt.Errorf("name %q sanitizes to nothing", rawName)
	}

	key := filepath.Join(c.metadataDir, category.Subdir(), name)

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		metrics.NamedCacheHits.WithLabelValues(string(category)).Inc()
		return cached, nil
	}

	value, err, shared := c.sf.Do(key, func() (interface{}, error) {
		// Another caller may have finished between the cache check and here.
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		metrics.NamedCacheMisses.WithLabelValues(string(category)).Inc()

		entity, err := c.create(ctx, category, key, name)
		if err != nil {
			// Not cached: the singleflight key clears when this call
			// returns, so the next lookup re-attempts.
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entity
		size := len(c.entries)
		c.mu.Unlock()
		metrics.NamedCacheEntries.Set(float64(size))

		return entity, nil
	})
	if shared {
		metrics.NamedCacheShared.WithLabelValues(string(category)).Inc()
	}
	if err != nil {
		return nil, fmt.Errorf("create %s %q: %w", category, name, err)
	}

	return value.(items.Item), nil
}

// create materializes the entity: ensures its directory exists, reads its
// timestamps and current children, and runs enrichment.
func (c *NamedCache) create(_ context.Context, category items.Category, dir, name string) (items.Item, error) {
	logging.Debug("Creating %s entity %q at %s", category, name, dir)

	entry, err := c.fs.EnsureDirectory(dir)
	if err != nil {
		return nil, err
	}

	children, err := c.fs.ListChildren(dir)
	if err != nil {
		return nil, err
	}

	entity := &items.NamedEntity{
		BaseItem: items.BaseItem{
			ID:       items.DeterministicID(dir),
			Name:     name,
			Path:     dir,
			Created:  entry.CreatedAt,
			Modified: entry.ModifiedAt,
		},
		Category: category,
	}

	rctx := &Context{Path: dir, Entry: entry, Children: children}
	for _, provider := range c.providers {
		if err := provider.Enrich(entity, rctx, c.allowExternal); err != nil {
			return nil, fmt.Errorf("provider %s: %w", provider.Name(), err)
		}
	}

	return entity, nil
}

// Len returns the number of cached entities.
func (c *NamedCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
