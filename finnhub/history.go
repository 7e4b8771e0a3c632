package finnhub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"investiq/models"
)

// periodDays maps the supported history periods to calendar days.
var periodDays = map[string]int{
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
}

// intervalResolution maps the supported intervals to Finnhub candle
// resolutions.
var intervalResolution = map[string]string{
	"1d":  "D",
	"1wk": "W",
	"1mo": "M",
}

// History returns OHLCV candles for a ticker over a named period. Unknown
// periods and intervals fall back to 6mo/1d.
func (c *Client) History(ctx context.Context, ticker, period, interval string) (*models.PriceHistory, error) {
	ticker = strings.ToUpper(ticker)

	days, ok := periodDays[period]
	if !ok {
		period, days = "6mo", 180
	}
	resolution, ok := intervalResolution[interval]
	if !ok {
		interval, resolution = "1d", "D"
	}

	now := time.Now()
	candles, err := c.GetCandles(ctx, ticker, resolution, now.AddDate(0, 0, -days).Unix(), now.Unix())
	if err != nil {
		return nil, err
	}
	if candles.Status != "ok" || len(candles.Close) == 0 {
		return nil, fmt.Errorf("no price history for %s: %w", ticker, &models.TickerNotFoundError{Ticker: ticker})
	}

	history := &models.PriceHistory{
		Ticker:   ticker,
		Period:   period,
		Interval: interval,
		Dates:    make([]string, len(candles.Timestamps)),
		Open:     candles.Open,
		High:     candles.High,
		Low:      candles.Low,
		Close:    candles.Close,
		Volume:   make([]int64, len(candles.Volume)),
	}
	for i, ts := range candles.Timestamps {
		history.Dates[i] = time.Unix(ts, 0).UTC().Format("2006-01-02")
	}
	for i, v := range candles.Volume {
		history.Volume[i] = int64(v)
	}

	return history, nil
}
