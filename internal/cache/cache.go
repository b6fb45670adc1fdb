// Package cache provides the best-effort response cache. A cache outage must
// never take a request down with it: reads degrade to misses, writes are
// dropped, and a tripped backend stays untouched for a cooldown period.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is a best-effort key-value cache. Get reports a miss for absent keys
// and for backend failures alike; Set is fire-and-forget.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// GetJSON reads key and unmarshals it into dest. A miss or a decode failure
// both report false; a corrupt entry is treated as absent.
func GetJSON(ctx context.Context, store Store, key string, dest any) bool {
	raw, ok := store.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON marshals value and stores it under key. Marshal failures are
// dropped silently; the cache is an optimization, never a dependency.
func SetJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	store.Set(ctx, key, raw, ttl)
}
