package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

type cachedPrice struct {
	price model.Money
	ok    bool
}

// CachingPriceProvider memoizes another PriceProvider by (asset code, day).
// Concurrent lookups of the same key share one call to the underlying provider.
// A caller whose ctx ends stops waiting without cancelling the shared call for the
// others. Errors are not cached.
type CachingPriceProvider struct {
	next  PriceProvider
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedPrice
}

// NewCachingPriceProvider wraps next with a cache.
func NewCachingPriceProvider(next PriceProvider) *CachingPriceProvider {
	return &CachingPriceProvider{
		next:  next,
		cache: make(map[string]cachedPrice),
	}
}

// GetPrice implements PriceProvider.
func (c *CachingPriceProvider) GetPrice(ctx context.Context, asset model.Asset, date time.Time) (model.Money, bool, error) {
	key := asset.Code() + "|" + model.Day(date).Format("2006-01-02")

	c.mu.RLock()
	hit, found := c.cache[key]
	c.mu.RUnlock()
	if found {
		return hit.price, hit.ok, nil
	}

	if err := ctx.Err(); err != nil {
		return model.Money{}, false, err
	}

	// The shared lookup outlives any single caller; each caller still honours its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		price, ok, err := c.next.GetPrice(shared, asset, date)
		if err != nil {
			return nil, err
		}
		entry := cachedPrice{price: price, ok: ok}
		c.mu.Lock()
		c.cache[key] = entry
		c.mu.Unlock()
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return model.Money{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.Money{}, false, res.Err
		}
		entry := res.Val.(cachedPrice)
		return entry.price, entry.ok, nil
	}
}

// Len returns the number of cached entries.
func (c *CachingPriceProvider) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Reset drops every cached entry.
func (c *CachingPriceProvider) Reset() {
	c.mu.Lock()
	c.cache = make(map[string]cachedPrice)
	c.mu.Unlock()
}
