// Package yahoo is a client for the public Yahoo Finance endpoints used
// for symbol search and financial statements.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultSearchBaseURL serves the autocomplete search endpoint.
	DefaultSearchBaseURL = "https://query1.finance.yahoo.com"
	// DefaultQuoteBaseURL serves the quoteSummary fundamentals endpoint.
	DefaultQuoteBaseURL = "https://query2.finance.yahoo.com"

	// Yahoo rejects requests without a browser user agent.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Client issues requests to Yahoo Finance.
type Client struct {
	searchBaseURL string
	quoteBaseURL  string
	client        *http.Client
}

// NewClient creates a Yahoo Finance client with production endpoints.
func NewClient() *Client {
	return NewClientWithBaseURLs(DefaultSearchBaseURL, DefaultQuoteBaseURL)
}

// NewClientWithBaseURLs creates a client against custom endpoints, used
// by tests to point at a local server.
func NewClientWithBaseURLs(searchBaseURL, quoteBaseURL string) *Client {
	return &Client{
		searchBaseURL: searchBaseURL,
		quoteBaseURL:  quoteBaseURL,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, baseURL, endpoint string, params url.Values, dest interface{}) error {
	reqURL := baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode yahoo response: %w", err)
	}
	return nil
}
