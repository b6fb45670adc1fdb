package risk

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultCatalogTTL bounds how long a fetched layer catalog is reused before
// a refetch is attempted.
const DefaultCatalogTTL = 24 * time.Hour

// FetchNamesFunc fetches the current layer identifiers from an upstream
// discovery endpoint.
type FetchNamesFunc func(ctx context.Context) ([]string, error)

type catalogEntry struct {
	names     []string
	nameSet   map[string]struct{}
	fetchedAt time.Time
}

// Catalog is a time-bounded cache of one upstream service's named data
// layers. Concurrent refresh attempts are allowed; the cache slot is an
// atomically replaced pointer, so the last writer wins. That is acceptable
// because catalog contents are eventually-consistent metadata, not
// correctness-critical state.
//
// A refetch failure propagates to the caller: the stale catalog is never
// served past its TTL.
type Catalog struct {
	fetch FetchNamesFunc
	ttl   time.Duration
	now   func() time.Time

	entry atomic.Pointer[catalogEntry]
}

// NewCatalog creates a catalog backed by fetch. A zero ttl means
// DefaultCatalogTTL; a nil now means time.Now (injectable for tests).
func NewCatalog(fetch FetchNamesFunc, ttl time.Duration, now func() time.Time) *Catalog {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Catalog{fetch: fetch, ttl: ttl, now: now}
}

// Names returns the deduplicated layer identifiers, refetching when the
// cached set is older than the TTL.
func (c *Catalog) Names(ctx context.Context) ([]string, error) {
	entry, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	return entry.names, nil
}

// NameSet returns the layer identifiers as a membership set.
func (c *Catalog) NameSet(ctx context.Context) (map[string]struct{}, error) {
	entry, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	return entry.nameSet, nil
}

func (c *Catalog) current(ctx context.Context) (*catalogEntry, error) {
	if e := c.entry.Load(); e != nil && c.now().Sub(e.fetchedAt) < c.ttl {
		return e, nil
	}

	raw, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh layer catalog: %w", err)
	}

	// Discovery documents may repeat names across nesting levels.
	set := make(map[string]struct{}, len(raw))
	names := make([]string, 0, len(raw))
	for _, n := range raw {
		if _, seen := set[n]; seen {
			continue
		}
		set[n] = struct{}{}
		names = append(names, n)
	}

	e := &catalogEntry{names: names, nameSet: set, fetchedAt: c.now()}
	c.entry.Store(e)
	return e, nil
}
