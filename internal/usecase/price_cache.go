package usecase

import (
	"context"
	"sync"
	"time"

	"receitamed/internal/usecase/interfaces"
)

const defaultPriceCacheTTL = 5 * time.Minute

type priceEntry struct {
	amount    float64
	expiresAt time.Time
}

// PriceCache is a read-mostly TTL cache in front of the catalog price lookup.
// It is owned by the request usecase; misses and expired entries go to the
// wrapped lookup, negative results are not cached.
type PriceCache struct {
	lookup interfaces.IPriceLookup
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]priceEntry
}

var _ interfaces.IPriceLookup = (*PriceCache)(nil)

func NewPriceCache(lookup interfaces.IPriceLookup, ttl time.Duration) *PriceCache {
	if ttl <= 0 {
		ttl = defaultPriceCacheTTL
	}
	return &PriceCache{
		lookup:  lookup,
		ttl:     ttl,
		entries: make(map[string]priceEntry),
	}
}

func (c *PriceCache) GetPrice(ctx context.Context, productType, subtype string) (float64, error) {
	key := productType + "|" + subtype

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.amount, nil
	}

	amount, err := c.lookup.GetPrice(ctx, productType, subtype)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.entries[key] = priceEntry{amount: amount, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return amount, nil
}

// Invalidate drops a single cached pair.
func (c *PriceCache) Invalidate(productType, subtype string) {
	c.mu.Lock()
	delete(c.entries, productType+"|"+subtype)
	c.mu.Unlock()
}

// InvalidateAll drops every cached entry.
func (c *PriceCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]priceEntry)
	c.mu.Unlock()
}
