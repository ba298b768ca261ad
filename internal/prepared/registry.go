// Package prepared caches prepared-statement descriptors per
// connection, keyed by (keyspace, query_text), and coalesces
// concurrent PREPARE calls for the same key.
package prepared

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/onoffswitch/gocassa/internal/result"
)

// PrepareFunc performs the actual PREPARE round-trip against the
// server; Registry calls it at most once per key at a time, no matter
// how many goroutines ask for the same (keyspace, query) concurrently.
type PrepareFunc func(ctx context.Context, keyspace, query string) (*result.Prepared, error)

type key struct {
	keyspace string
	query    string
}

// Registry is a (keyspace, query_text) -> *result.Prepared cache
// scoped to one connection's lifetime. Entries never expire on their
// own; a caller invalidates one after an UNPREPARED response so the
// next Prepare call re-runs the round-trip.
//
// Reads go through an RWMutex so the common case (statement already
// prepared) never blocks on other readers; the rarer first-prepare
// path is serialized per key by a singleflight.Group, so a burst of
// goroutines issuing the same brand-new statement triggers exactly one
// PREPARE frame.
type Registry struct {
	mu      sync.RWMutex
	entries map[key]*result.Prepared
	group   singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[key]*result.Prepared)}
}

// Get returns the cached descriptor for (keyspace, query), if any.
func (r *Registry) Get(keyspace, query string) (*result.Prepared, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[key{keyspace, query}]
	return p, ok
}

// Prepare returns the cached descriptor for (keyspace, query),
// calling fn to populate the cache on a miss. Concurrent misses for
// the same key share one call to fn.
func (r *Registry) Prepare(ctx context.Context, keyspace, query string, fn PrepareFunc) (*result.Prepared, error) {
	if p, ok := r.Get(keyspace, query); ok {
		return p, nil
	}

	k := key{keyspace, query}
	groupKey := keyspace + "\x00" + query
	v, err, _ := r.group.Do(groupKey, func() (any, error) {
		// Re-check under the singleflight key: another call may have
		// already populated the entry between our Get above and here.
		if p, ok := r.Get(keyspace, query); ok {
			return p, nil
		}
		p, err := fn(ctx, keyspace, query)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.entries[k] = p
		r.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*result.Prepared), nil
}

// Invalidate drops the cached descriptor for (keyspace, query), if
// present. Call it after an UNPREPARED response so the next Prepare
// forces a fresh round-trip instead of replaying a stale id.
func (r *Registry) Invalidate(keyspace, query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key{keyspace, query})
}

// Len reports the number of cached descriptors, for tests and metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
