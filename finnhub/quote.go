package finnhub

import (
	"context"
	"strings"
	"time"

	"investiq/models"
)

// StockQuote assembles a full quote for a ticker from the quote, profile,
// and metrics endpoints. A quote with a zero current price means Finnhub
// does not know the symbol and yields TickerNotFoundError.
func (c *Client) StockQuote(ctx context.Context, ticker string) (*models.StockQuote, error) {
	ticker = strings.ToUpper(ticker)

	quote, err := c.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if quote.Current == 0 {
		return nil, &models.TickerNotFoundError{Ticker: ticker}
	}

	profile, err := c.GetProfile(ctx, ticker)
	if err != nil {
		// Profile is enrichment only; the quote itself is authoritative.
		profile = &Profile{}
	}

	metric := map[string]*float64{}
	if metrics, err := c.GetMetrics(ctx, ticker); err == nil && metrics.Metric != nil {
		metric = metrics.Metric
	}

	change := quote.Change
	if change == 0 && quote.PrevClose != 0 {
		change = quote.Current - quote.PrevClose
	}
	changePercent := quote.ChangePercent
	if changePercent == 0 && quote.PrevClose != 0 {
		changePercent = change / quote.PrevClose * 100
	}

	name := profile.Name
	if name == "" {
		name = ticker
	}

	sq := &models.StockQuote{
		Ticker:        ticker,
		Name:          name,
		Price:         quote.Current,
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		PERatio:       metric["peBasicExclExtraTTM"],
		EPS:           metric["epsBasicExclExtraItemsTTM"],
		UpdatedAt:     time.Now().UTC(),
	}

	// Finnhub reports market cap and average volume in millions.
	if profile.MarketCapitalization > 0 {
		mc := profile.MarketCapitalization * 1_000_000
		sq.MarketCap = &mc
	}
	if avgVol := metric["10DayAverageTradingVolume"]; avgVol != nil {
		sq.Volume = int64(*avgVol * 1_000_000)
	}
	if high := metric["52WeekHigh"]; high != nil {
		sq.Week52High = *high
	}
	if low := metric["52WeekLow"]; low != nil {
		sq.Week52Low = *low
	}

	return sq, nil
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
