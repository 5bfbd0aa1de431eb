// Package price memoizes historical token price lookups for one analysis run.
package price

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// priceCache memoizes prices keyed by (token, hour bucket). Entries never
// expire: a cached value must stay identical for the whole analysis run, and
// runs are small and finite, so the cache is unbounded.
type priceCache struct {
	mu      sync.RWMutex
	entries map[string]decimal.Decimal
}

func newPriceCache() *priceCache {
	return &priceCache{
		entries: make(map[string]decimal.Decimal),
	}
}

// cacheKey format: "{token}@{hour bucket RFC3339}", e.g. "0xa0b8...@2023-11-14T22:00:00Z"
func cacheKey(token common.Address, ts time.Time) string {
	return fmt.Sprintf("%s@%s", token.Hex(), ts.UTC().Truncate(time.Hour).Format(time.RFC3339))
}

func (c *priceCache) get(key string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.entries[key]
	return p, ok
}

func (c *priceCache) set(key string, p decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = p
}
