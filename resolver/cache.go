package resolver

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/aalemi-dev/observer-lab/metadata"
)

// metadataCache memoises successful metadata lookups per class name for the
// lifetime of the resolver. Failed lookups are not cached.
type metadataCache struct {
	service metadata.Service

	mu      sync.RWMutex
	entries map[string]metadata.ClassMetadata

	// group is nil unless compute-once-per-key was requested.
	group *singleflight.Group
}

func newMetadataCache(service metadata.Service, singleFlight bool) *metadataCache {
	c := &metadataCache{
		service: service,
		entries: make(map[string]metadata.ClassMetadata),
	}
	if singleFlight {
		c.group = &singleflight.Group{}
	}
	return c
}

// get returns the metadata for name and whether it came from the cache.
func (c *metadataCache) get(ctx context.Context, name string) (metadata.ClassMetadata, bool, error) {
	if md, ok := c.cached(name); ok {
		return md, true, nil
	}

	if c.group == nil {
		md, err := c.fetch(ctx, name)
		return md, false, err
	}

	// Callers that join an in-flight fetch share the first caller's result
	// (and its context).
	v, err, _ := c.group.Do(name, func() (interface{}, error) {
		if md, ok := c.cached(name); ok {
			return md, nil
		}
		return c.fetch(ctx, name)
	})
	if err != nil {
		return nil, false, err
	}
	return v.(metadata.ClassMetadata), false, nil
}

func (c *metadataCache) cached(name string) (metadata.ClassMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	md, ok := c.entries[name]
	return md, ok
}

func (c *metadataCache) fetch(ctx context.Context, name string) (metadata.ClassMetadata, error) {
	md, err := c.service.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[name] = md
	c.mu.Unlock()
	return md, nil
}

func (c *metadataCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
