package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tokenlens/pnl/internal/domain"
)

// ErrNoPrice indicates that no price could be determined for a token.
var ErrNoPrice = errors.New("no price available")

// WETHAddress is the canonical wrapped-native-coin contract. Its price in native
// coin is 1 by definition.
var WETHAddress = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

// SpotFeed supplies the native coin's USD price.
type SpotFeed interface {
	EthPriceUSD(ctx context.Context) (decimal.Decimal, error)
}

// Service resolves token prices in native-coin terms.
type Service struct {
	dex  *DexScreenerClient
	spot SpotFeed
}

// NewService creates a new market data service.
func NewService(dex *DexScreenerClient, spot SpotFeed) *Service {
	return &Service{dex: dex, spot: spot}
}

// CurrentPrice returns the token's spot price in native coin. Ethereum-chain
// WETH-quoted pairs are preferred; other pairs are converted through the USD
// spot price. Returns ErrNoPrice when no route yields a price.
func (s *Service) CurrentPrice(ctx context.Context, token common.Address) (decimal.Decimal, error) {
	if token == WETHAddress {
		return decimal.NewFromInt(1), nil
	}

	pairs, err := s.dex.TokenPairs(ctx, token)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetching pairs for %s: %w", token.Hex(), err)
	}
	if len(pairs) == 0 {
		return decimal.Zero, ErrNoPrice
	}

	wethPair, ok := lo.Find(pairs, func(p Pair) bool {
		return p.ChainID == "ethereum" && strings.EqualFold(p.QuoteToken.Symbol, "WETH")
	})
	if ok {
		if price := domain.SafeParse(wethPair.PriceNative); price.IsPositive() {
			return price, nil
		}
	}

	// No WETH quote: convert the first USD-priced pair through the spot price.
	usdPair, ok := lo.Find(pairs, func(p Pair) bool {
		return domain.SafeParse(p.PriceUSD).IsPositive()
	})
	if !ok {
		return decimal.Zero, ErrNoPrice
	}

	ethUSD, err := s.spot.EthPriceUSD(ctx)
	if err != nil {
		slog.Warn("spot USD price unavailable, cannot convert pair price",
			"token", token.Hex(), "error", err)
		return decimal.Zero, ErrNoPrice
	}
	if ethUSD.IsZero() {
		return decimal.Zero, ErrNoPrice
	}

	return domain.SafeParse(usdPair.PriceUSD).Div(ethUSD), nil
}

// SpotNativeUSD returns the native coin's current USD price.
func (s *Service) SpotNativeUSD(ctx context.Context) (decimal.Decimal, error) {
	return s.spot.EthPriceUSD(ctx)
}
