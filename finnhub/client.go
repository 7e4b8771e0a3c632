// Package finnhub is a typed client for the Finnhub market-data API.
// Responses are mapped field by field into the models package; fields the
// API omits stay nil.
package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Finnhub endpoint.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// ErrUpstream is returned when Finnhub is unreachable or answers with a
// server error after all retry attempts.
var ErrUpstream = errors.New("market data provider unavailable")

const (
	maxAttempts = 3
	retryDelay  = 500 * time.Millisecond
)

// Client issues requests to the Finnhub REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a Finnhub client. baseURL is overridable for tests.
func NewClient(baseURL, apiKey string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// get issues one GET with the API token attached both ways Finnhub
// accepts it, retrying a bounded number of times with a fixed delay on
// rate limits, server errors, and network failures.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dest interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)
	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-Finnhub-Token", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("finnhub returned status %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("finnhub error %d: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(dest)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode finnhub response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("%w: %v", ErrUpstream, lastErr)
}

// Quote is the raw /quote response. Field names follow Finnhub's wire
// format: c=current, d=change, dp=percent change, h/l/o=session range,
// pc=previous close.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// GetQuote returns the real-time quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var q Quote
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Profile is the raw /stock/profile2 response.
type Profile struct {
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	Exchange             string  `json:"exchange"`
	Industry             string  `json:"finnhubIndustry"`
	MarketCapitalization float64 `json:"marketCapitalization"` // in millions
	Logo                 string  `json:"logo"`
	WebURL               string  `json:"weburl"`
}

// GetProfile returns the company profile for a symbol.
func (c *Client) GetProfile(ctx context.Context, symbol string) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, "/stock/profile2", url.Values{"symbol": {symbol}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Metrics is the raw /stock/metric response; the metric map carries the
// PE ratios, margins, and 52-week range keyed by Finnhub's metric names.
type Metrics struct {
	Metric map[string]*float64 `json:"metric"`
}

// GetMetrics returns basic financial metrics (metric=all) for a symbol.
func (c *Client) GetMetrics(ctx context.Context, symbol string) (*Metrics, error) {
	var m Metrics
	if err := c.get(ctx, "/stock/metric", url.Values{"symbol": {symbol}, "metric": {"all"}}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Candles is the raw /stock/candle response: parallel arrays plus a
// status flag ("ok" or "no_data").
type Candles struct {
	Close      []float64 `json:"c"`
	High       []float64 `json:"h"`
	Low        []float64 `json:"l"`
	Open       []float64 `json:"o"`
	Volume     []float64 `json:"v"`
	Timestamps []int64   `json:"t"`
	Status     string    `json:"s"`
}

// GetCandles returns OHLCV data between two unix timestamps at the given
// resolution (D, W, M).
func (c *Client) GetCandles(ctx context.Context, symbol, resolution string, from, to int64) (*Candles, error) {
	params := url.Values{
		"symbol":     {symbol},
		"resolution": {resolution},
		"from":       {fmt.Sprintf("%d", from)},
		"to":         {fmt.Sprintf("%d", to)},
	}
	var candles Candles
	if err := c.get(ctx, "/stock/candle", params, &candles); err != nil {
		return nil, err
	}
	return &candles, nil
}

// NewsItem is one raw /company-news article.
type NewsItem struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Summary  string `json:"summary"`
	Datetime int64  `json:"datetime"`
}

// GetCompanyNews returns articles for a symbol between two dates
// (YYYY-MM-DD).
func (c *Client) GetCompanyNews(ctx context.Context, symbol, from, to string) ([]NewsItem, error) {
	var items []NewsItem
	params := url.Values{"symbol": {symbol}, "from": {from}, "to": {to}}
	if err := c.get(ctx, "/company-news", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RecommendationTrend is one period of raw /stock/recommendation counts.
type RecommendationTrend struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// GetRecommendationTrends returns analyst recommendation counts by period.
func (c *Client) GetRecommendationTrends(ctx context.Context, symbol string) ([]RecommendationTrend, error) {
	var trends []RecommendationTrend
	if err := c.get(ctx, "/stock/recommendation", url.Values{"symbol": {symbol}}, &trends); err != nil {
		return nil, err
	}
	return trends, nil
}

// PriceTarget is the raw /stock/price-target response.
type PriceTarget struct {
	TargetHigh   *float64 `json:"targetHigh"`
	TargetLow    *float64 `json:"targetLow"`
	TargetMean   *float64 `json:"targetMean"`
	TargetMedian *float64 `json:"targetMedian"`
}

// GetPriceTarget returns analyst price targets for a symbol.
func (c *Client) GetPriceTarget(ctx context.Context, symbol string) (*PriceTarget, error) {
	var pt PriceTarget
	if err := c.get(ctx, "/stock/price-target", url.Values{"symbol": {symbol}}, &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

// EarningsItem is one raw /stock/earnings entry.
type EarningsItem struct {
	Period          string   `json:"period"`
	Actual          *float64 `json:"actual"`
	Estimate        *float64 `json:"estimate"`
	SurprisePercent *float64 `json:"surprisePercent"`
}

// GetEarnings returns quarterly EPS history and estimates.
func (c *Client) GetEarnings(ctx context.Context, symbol string) ([]EarningsItem, error) {
	var items []EarningsItem
	if err := c.get(ctx, "/stock/earnings", url.Values{"symbol": {symbol}}, &items); err != nil {
		return nil, err
	}
	return items, nil
}
