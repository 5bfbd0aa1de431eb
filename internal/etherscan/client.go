// Package etherscan implements the ledger collaborator clients: the token
// transfer feed and the per-transaction detail feed.
package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is an HTTP client for the Etherscan API with retry on 429.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a new Etherscan API client.
func NewClient(baseURL, apiKey string, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// get performs a GET request with the API key attached and retry on 429.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP 429 from etherscan (attempt %d/%d)", attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("HTTP %d from etherscan: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}

// envelope is the {status, message, result} wrapper of the account and stats modules.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// getEnvelope performs a GET and unwraps the Etherscan status envelope.
// A status "0" with an empty-result message is returned as (nil, nil): Etherscan
// reports "No transactions found" that way and it is a valid empty answer.
func (c *Client) getEnvelope(ctx context.Context, params url.Values, dest any) error {
	body, err := c.get(ctx, params)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("parsing etherscan envelope: %w", err)
	}

	if env.Status != "1" {
		if env.Message == "No transactions found" || env.Message == "No records found" {
			return nil
		}
		return fmt.Errorf("etherscan API error: %s", env.Message)
	}

	if err := json.Unmarshal(env.Result, dest); err != nil {
		return fmt.Errorf("parsing etherscan result: %w", err)
	}
	return nil
}

// proxyEnvelope is the JSON-RPC wrapper of the proxy module.
type proxyEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// getProxy performs a GET against a proxy (JSON-RPC passthrough) action.
// A null result is returned as (false, nil): the transaction or receipt is absent.
func (c *Client) getProxy(ctx context.Context, params url.Values, dest any) (bool, error) {
	body, err := c.get(ctx, params)
	if err != nil {
		return false, err
	}

	var env proxyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return false, fmt.Errorf("parsing proxy envelope: %w", err)
	}

	if len(env.Result) == 0 || string(env.Result) == "null" {
		return false, nil
	}

	if err := json.Unmarshal(env.Result, dest); err != nil {
		return false, fmt.Errorf("parsing proxy result: %w", err)
	}
	return true, nil
}
