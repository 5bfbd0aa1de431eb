// Package market implements the market-data collaborator: spot token prices in
// native coin and the native coin's USD price.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DexScreenerClient fetches token pair prices from the DexScreener API.
type DexScreenerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDexScreenerClient creates a new DexScreener API client.
func NewDexScreenerClient(baseURL string) *DexScreenerClient {
	return &DexScreenerClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Pair is one trading pair returned by DexScreener.
type Pair struct {
	ChainID     string `json:"chainId"`
	PriceUSD    string `json:"priceUsd"`
	PriceNative string `json:"priceNative"`
	QuoteToken  struct {
		Symbol string `json:"symbol"`
	} `json:"quoteToken"`
}

// TokenPairs returns every known trading pair for a token.
func (c *DexScreenerClient) TokenPairs(ctx context.Context, token common.Address) ([]Pair, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, token.Hex())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating dexscreener request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dexscreener request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading dexscreener response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dexscreener HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Pairs []Pair `json:"pairs"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing dexscreener response: %w", err)
	}

	return result.Pairs, nil
}
