package memory

import (
	"time"

	"mealbox-be/pkg/delivery"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// StatusCache keeps the stored facts behind a subscription's derived status.
// The derivation itself is re-run on every read because it depends on the
// clock, so only database lookups are saved.
type StatusCache struct {
	cache *cache.Cache
}

// CachedStatus is the owner of a subscription and the stored facts its
// status is derived from.
type CachedStatus struct {
	OwnerId uuid.UUID
	Input   delivery.Input
}

// NewStatusCache purges expired entries at twice the ttl. A ttl of zero
// disables caching.
func NewStatusCache(ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		return &StatusCache{}
	}
	return &StatusCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *StatusCache) Save(subscriptionId uuid.UUID, entry CachedStatus) {
	if c.cache == nil {
		return
	}
	c.cache.Set(subscriptionId.String(), entry, cache.DefaultExpiration)
}

func (c *StatusCache) Get(subscriptionId uuid.UUID) (CachedStatus, bool) {
	if c.cache == nil {
		return CachedStatus{}, false
	}
	if x, found := c.cache.Get(subscriptionId.String()); found {
		return x.(CachedStatus), true
	}
	return CachedStatus{}, false
}

func (c *StatusCache) Delete(subscriptionId uuid.UUID) {
	if c.cache == nil {
		return
	}
	c.cache.Delete(subscriptionId.String())
}

// Flush drops everything. Bulk transitions call it since they touch an
// unbounded set of subscriptions.
func (c *StatusCache) Flush() {
	if c.cache == nil {
		return
	}
	c.cache.Flush()
}
