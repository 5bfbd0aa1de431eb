package price

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Feed supplies spot prices from the market-data collaborator.
type Feed interface {
	CurrentPrice(ctx context.Context, token common.Address) (decimal.Decimal, error)
}

// Service answers historical price queries through the per-run cache. The market
// feed has no true historical depth, so a miss is answered with the current spot
// price and memoized. Every later query for the same (token, hour) sees the
// identical value, which keeps valuation consistent across one run.
type Service struct {
	feed  Feed
	cache *priceCache
}

// NewService creates a price service with an empty cache. Each analysis run owns
// its own Service; nothing is shared across runs.
func NewService(feed Feed) *Service {
	return &Service{
		feed:  feed,
		cache: newPriceCache(),
	}
}

// PriceAt returns the token's native-coin price at the given time. Lookup
// failures are not memoized, so a later retry may still succeed.
func (s *Service) PriceAt(ctx context.Context, token common.Address, ts time.Time) (decimal.Decimal, error) {
	key := cacheKey(token, ts)
	if cached, ok := s.cache.get(key); ok {
		return cached, nil
	}

	p, err := s.feed.CurrentPrice(ctx, token)
	if err != nil {
		return decimal.Zero, err
	}

	s.cache.set(key, p)
	return p, nil
}
