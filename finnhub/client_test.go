package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"investiq/models"
)

func TestStockQuoteAssemblesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			w.Write([]byte(`{"c": 190.5, "d": 2.5, "dp": 1.33, "pc": 188.0}`))
		case "/stock/profile2":
			w.Write([]byte(`{"name": "Apple Inc", "marketCapitalization": 2900000}`))
		case "/stock/metric":
			w.Write([]byte(`{"metric": {"peBasicExclExtraTTM": 29.4, "52WeekHigh": 199.6, "52WeekLow": 164.1}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	quote, err := client.StockQuote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("StockQuote: %v", err)
	}

	if quote.Ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", quote.Ticker)
	}
	if quote.Price != 190.5 {
		t.Errorf("price = %v, want 190.5", quote.Price)
	}
	if quote.Name != "Apple Inc" {
		t.Errorf("name = %q, want Apple Inc", quote.Name)
	}
	if quote.PERatio == nil || *quote.PERatio != 29.4 {
		t.Errorf("pe = %v, want 29.4", quote.PERatio)
	}
	if quote.MarketCap == nil || *quote.MarketCap != 2900000*1_000_000 {
		t.Errorf("market cap = %v", quote.MarketCap)
	}
	if quote.Week52High != 199.6 || quote.Week52Low != 164.1 {
		t.Errorf("52w range = %v/%v", quote.Week52High, quote.Week52Low)
	}
}

func TestStockQuoteUnknownTicker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Finnhub answers unknown symbols with an all-zero quote.
		w.Write([]byte(`{"c": 0, "d": 0, "dp": 0, "pc": 0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.StockQuote(context.Background(), "NOTREAL")

	var notFound *models.TickerNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want TickerNotFoundError", err)
	}
	if notFound.Ticker != "NOTREAL" {
		t.Errorf("ticker in error = %q", notFound.Ticker)
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"c": 100.0, "pc": 99.0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	quote, err := client.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote after retries: %v", err)
	}
	if quote.Current != 100.0 {
		t.Errorf("current = %v, want 100", quote.Current)
	}
	if calls.Load() != 3 {
		t.Errorf("upstream calls = %d, want 3", calls.Load())
	}
}

func TestGetExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.GetQuote(context.Background(), "AAPL")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
	if calls.Load() != maxAttempts {
		t.Errorf("upstream calls = %d, want %d", calls.Load(), maxAttempts)
	}
}

func TestNewsSkipsMalformedAndLimits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"headline": "First", "url": "https://example.com/1", "source": "Wire", "datetime": 1700000000},
			{"headline": "", "url": "https://example.com/2", "source": "Wire"},
			{"headline": "No URL", "url": "", "source": "Wire"},
			{"headline": "Second", "url": "https://example.com/3", "source": "Wire", "datetime": 1700001000},
			{"headline": "Third", "url": "https://example.com/4", "source": "Wire", "datetime": 1700002000}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	summary, err := client.News(context.Background(), "AAPL", 7, 2)
	if err != nil {
		t.Fatalf("News: %v", err)
	}
	if len(summary.Articles) != 2 {
		t.Fatalf("articles = %d, want 2", len(summary.Articles))
	}
	if summary.Articles[0].Title != "First" || summary.Articles[1].Title != "Second" {
		t.Errorf("unexpected titles: %q, %q", summary.Articles[0].Title, summary.Articles[1].Title)
	}
}

func TestAnalystRecommendationRule(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"mostly buys", `[{"period": "2026-08-01", "strongBuy": 20, "buy": 15, "hold": 5, "sell": 2, "strongSell": 1}]`, "buy"},
		{"split", `[{"period": "2026-08-01", "strongBuy": 5, "buy": 5, "hold": 8, "sell": 2, "strongSell": 0}]`, "hold"},
		{"mostly sells", `[{"period": "2026-08-01", "strongBuy": 1, "buy": 2, "hold": 3, "sell": 8, "strongSell": 6}]`, "sell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/stock/recommendation":
					w.Write([]byte(tt.body))
				case "/stock/price-target":
					w.Write([]byte(`{"targetMean": 210.0}`))
				case "/quote":
					w.Write([]byte(`{"c": 200.0}`))
				default:
					http.NotFound(w, r)
				}
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key")
			data, err := client.Analyst(context.Background(), "AAPL")
			if err != nil {
				t.Fatalf("Analyst: %v", err)
			}
			if data.PriceTargets.Recommendation != tt.want {
				t.Errorf("recommendation = %q, want %q", data.PriceTargets.Recommendation, tt.want)
			}
			if data.PriceTargets.UpsidePotentialPct == nil || *data.PriceTargets.UpsidePotentialPct != 5.0 {
				t.Errorf("upside = %v, want 5.0", data.PriceTargets.UpsidePotentialPct)
			}
		})
	}
}

func TestHistoryNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s": "no_data"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.History(context.Background(), "NOTREAL", "6mo", "1d")

	var notFound *models.TickerNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want TickerNotFoundError", err)
	}
}
