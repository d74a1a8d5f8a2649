package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/viant/lifecycle/config"
	"github.com/viant/lifecycle/key"
)

// Key identifies the shared in-memory cache
var Key = key.Named("cache", "memory")

// Store represents in-memory cache shared across the process
type Store struct {
	cache *gocache.Cache
}

// Set stores value with default expiry
func (s *Store) Set(k string, value interface{}) {
	s.cache.Set(k, value, gocache.DefaultExpiration)
}

// SetWithTTL stores value with a custom expiry
func (s *Store) SetWithTTL(k string, value interface{}, ttl time.Duration) {
	s.cache.Set(k, value, ttl)
}

// Get returns a value and a flag if it was found
func (s *Store) Get(k string) (interface{}, bool) {
	return s.cache.Get(k)
}

// Delete removes a value
func (s *Store) Delete(k string) {
	s.cache.Delete(k)
}

// Len returns number of items, expired but not yet cleaned up items included
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// New creates a store
func New(cfg *config.Cache) *Store {
	expiry, cleanup := gocache.NoExpiration, time.Duration(0)
	if cfg != nil {
		if cfg.ExpiryMs > 0 {
			expiry = cfg.Expiry()
		}
		cleanup = cfg.Cleanup()
	}
	return &Store{cache: gocache.New(expiry, cleanup)}
}
