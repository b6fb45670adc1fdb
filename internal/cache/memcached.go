package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// DefaultCooldown is how long the memcached backend is left alone after a
// failure before another attempt is made.
const DefaultCooldown = 30 * time.Second

// MemcachedConfig holds configuration for the memcached-backed store.
type MemcachedConfig struct {
	// Addrs are the memcached server addresses (required).
	Addrs []string

	// Timeout is the per-operation network timeout (optional, default 500ms).
	Timeout time.Duration

	// Cooldown is the circuit open period after a failure (optional,
	// defaults to DefaultCooldown).
	Cooldown time.Duration

	// Logger for cache diagnostics.
	Logger zerolog.Logger
}

// Memcached is a Store backed by memcached. Any backend failure trips a
// circuit: while it is open, Get reports misses and Set/Delete return
// immediately, so a cache outage costs one failed call per cooldown instead
// of a timeout per request.
type Memcached struct {
	client  *memcache.Client
	breaker *gobreaker.CircuitBreaker[*memcache.Item]
	logger  zerolog.Logger
}

// NewMemcached creates a memcached-backed store.
func NewMemcached(cfg MemcachedConfig) *Memcached {
	client := memcache.New(cfg.Addrs...)
	client.Timeout = cfg.Timeout
	if client.Timeout == 0 {
		client.Timeout = 500 * time.Millisecond
	}

	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}

	breaker := gobreaker.NewCircuitBreaker[*memcache.Item](gobreaker.Settings{
		Name:        "memcached",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	})

	return &Memcached{client: client, breaker: breaker, logger: cfg.Logger}
}

func (m *Memcached) Get(_ context.Context, key string) ([]byte, bool) {
	item, err := m.breaker.Execute(func() (*memcache.Item, error) {
		item, err := m.client.Get(key)
		if errors.Is(err, memcache.ErrCacheMiss) {
			// A miss is a healthy backend answering; it must not trip
			// the circuit.
			return nil, nil
		}
		return item, err
	})
	if err != nil {
		m.logger.Debug().Err(err).Str("key", key).Msg("cache get failed")
		return nil, false
	}
	if item == nil {
		return nil, false
	}
	return item.Value, true
}

func (m *Memcached) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	_, err := m.breaker.Execute(func() (*memcache.Item, error) {
		return nil, m.client.Set(&memcache.Item{
			Key:        key,
			Value:      value,
			Expiration: int32(ttl / time.Second),
		})
	})
	if err != nil {
		m.logger.Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (m *Memcached) Delete(_ context.Context, key string) {
	_, err := m.breaker.Execute(func() (*memcache.Item, error) {
		err := m.client.Delete(key)
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	})
	if err != nil {
		m.logger.Debug().Err(err).Str("key", key).Msg("cache delete failed")
	}
}
