package etherscan

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/tokenlens/pnl/internal/domain"
)

// EthPriceUSD returns the current native-coin price in USD from stats/ethprice.
func (c *Client) EthPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("module", "stats")
	params.Set("action", "ethprice")

	var result ethPriceResult
	if err := c.getEnvelope(ctx, params, &result); err != nil {
		return decimal.Zero, fmt.Errorf("fetching native coin price: %w", err)
	}

	price := domain.SafeParse(result.EthUSD)
	if price.IsZero() {
		return decimal.Zero, fmt.Errorf("etherscan returned no usable native coin price")
	}
	return price, nil
}
