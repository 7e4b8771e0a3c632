// Package models defines the API response schemas shared by the data
// clients, the LLM layer, and the HTTP handlers. Fields that an upstream
// provider may omit are pointers; nil means "unknown", never zero.
package models

import (
	"fmt"
	"time"
)

// Sentiment classifies analysis output.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// NormalizeSentiment maps arbitrary model output onto a valid Sentiment.
func NormalizeSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
		return Sentiment(s)
	}
	return SentimentNeutral
}

// TickerNotFoundError is returned when a ticker has no upstream data.
type TickerNotFoundError struct {
	Ticker string
}

func (e *TickerNotFoundError) Error() string {
	return fmt.Sprintf("stock ticker '%s' not found", e.Ticker)
}

// StockQuote is the current quote with key metrics.
type StockQuote struct {
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	MarketCap     *float64  `json:"market_cap"`
	PERatio       *float64  `json:"pe_ratio"`
	EPS           *float64  `json:"eps"`
	Week52High    float64   `json:"week_52_high"`
	Week52Low     float64   `json:"week_52_low"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewsArticle is a single article about a ticker.
type NewsArticle struct {
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	PublishedAt time.Time  `json:"published_at"`
	Description string     `json:"description,omitempty"`
	Sentiment   *Sentiment `json:"sentiment"`
}

// NewsSummary bundles recent articles with an optional AI summary.
// Immutable once generated; a new fetch supersedes it.
type NewsSummary struct {
	Ticker           string        `json:"ticker"`
	Articles         []NewsArticle `json:"articles"`
	AISummary        string        `json:"ai_summary,omitempty"`
	OverallSentiment *Sentiment    `json:"overall_sentiment"`
	KeyThemes        []string      `json:"key_themes"`
	FetchedAt        time.Time     `json:"fetched_at"`
}

// InvestmentBrief is the LLM-synthesized structured analysis.
type InvestmentBrief struct {
	Ticker      string    `json:"ticker"`
	CompanyName string    `json:"company_name"`
	GeneratedAt time.Time `json:"generated_at"`

	ExecutiveSummary string   `json:"executive_summary"`
	BullCase         []string `json:"bull_case"`
	BearCase         []string `json:"bear_case"`
	KeyRisks         []string `json:"key_risks"`
	Catalysts        []string `json:"catalysts"`

	TechnicalOutlook   string `json:"technical_outlook"`
	FinancialHealth    string `json:"financial_health"`
	RecentDevelopments string `json:"recent_developments"`

	Conclusion string    `json:"conclusion"`
	Sentiment  Sentiment `json:"sentiment"`

	// Cached distinguishes a brief served from storage from a freshly
	// generated one.
	Cached bool `json:"cached"`
}

// MovingAverages holds SMA/EMA values. Nil means the series was shorter
// than the window.
type MovingAverages struct {
	SMA20  *float64 `json:"sma_20"`
	SMA50  *float64 `json:"sma_50"`
	SMA200 *float64 `json:"sma_200"`
	EMA12  *float64 `json:"ema_12"`
	EMA26  *float64 `json:"ema_26"`
}

// RSIIndicator is RSI-14 with its signal classification.
type RSIIndicator struct {
	Value  *float64 `json:"value"`
	Signal string   `json:"signal"` // overbought, oversold, neutral
}

// MACDIndicator holds the MACD line, signal line, and histogram.
type MACDIndicator struct {
	MACDLine   *float64 `json:"macd_line"`
	SignalLine *float64 `json:"signal_line"`
	Histogram  *float64 `json:"histogram"`
}

// SupportResistance holds pivot-point levels from recent highs/lows.
type SupportResistance struct {
	Support1    float64 `json:"support_1"`
	Pivot       float64 `json:"pivot"`
	Resistance1 float64 `json:"resistance_1"`
}

// TechnicalIndicators is the complete indicator response for a ticker.
type TechnicalIndicators struct {
	Ticker            string            `json:"ticker"`
	MovingAverages    MovingAverages    `json:"moving_averages"`
	RSI               RSIIndicator      `json:"rsi"`
	MACD              MACDIndicator     `json:"macd"`
	SupportResistance SupportResistance `json:"support_resistance"`
	Trend             string            `json:"trend"` // bullish, bearish, neutral
	CurrentPrice      float64           `json:"current_price"`
}

// PriceHistory is OHLCV series data for charting.
type PriceHistory struct {
	Ticker   string    `json:"ticker"`
	Period   string    `json:"period"`
	Interval string    `json:"interval"`
	Dates    []string  `json:"dates"`
	Open     []float64 `json:"open"`
	High     []float64 `json:"high"`
	Low      []float64 `json:"low"`
	Close    []float64 `json:"close"`
	Volume   []int64   `json:"volume"`
}

// PriceTargets aggregates analyst price targets.
type PriceTargets struct {
	Current            *float64 `json:"current"`
	TargetHigh         *float64 `json:"target_high"`
	TargetLow          *float64 `json:"target_low"`
	TargetMean         *float64 `json:"target_mean"`
	TargetMedian       *float64 `json:"target_median"`
	NumberOfAnalysts   *int     `json:"number_of_analysts"`
	Recommendation     string   `json:"recommendation,omitempty"`
	UpsidePotentialPct *float64 `json:"upside_potential"`
}

// AnalystRecommendation is one period of consensus recommendation counts.
type AnalystRecommendation struct {
	Date       string `json:"date"`
	Firm       string `json:"firm"`
	ToGrade    string `json:"to_grade"`
	StrongBuy  int    `json:"strong_buy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strong_sell"`
}

// AnalystData is the complete analyst response.
type AnalystData struct {
	Ticker          string                  `json:"ticker"`
	PriceTargets    PriceTargets            `json:"price_targets"`
	Recommendations []AnalystRecommendation `json:"recommendations"`
}

// QuarterlyEarning is one quarter of reported results.
type QuarterlyEarning struct {
	Quarter  string   `json:"quarter"`
	Actual   *float64 `json:"actual"`
	Estimate *float64 `json:"estimate"`
	Surprise *float64 `json:"surprise_percent"`
}

// EarningsData is the earnings history response.
type EarningsData struct {
	Ticker            string             `json:"ticker"`
	QuarterlyEarnings []QuarterlyEarning `json:"quarterly_earnings"`
	EPSGrowthTTM      *float64           `json:"eps_growth_ttm"`
	RevenueGrowthTTM  *float64           `json:"revenue_growth_ttm"`
}

// FinancialStatement carries a statement as metric → per-period values.
type FinancialStatement struct {
	Ticker    string                `json:"ticker"`
	Periods   []string              `json:"periods"`
	Data      map[string][]*float64 `json:"data"`
	Quarterly bool                  `json:"quarterly"`
}

// ValuationRatios groups valuation metrics.
type ValuationRatios struct {
	PERatio      *float64 `json:"pe_ratio"`
	ForwardPE    *float64 `json:"forward_pe"`
	PEGRatio     *float64 `json:"peg_ratio"`
	PriceToBook  *float64 `json:"price_to_book"`
	PriceToSales *float64 `json:"price_to_sales"`
	EVToEBITDA   *float64 `json:"ev_to_ebitda"`
}

// ProfitabilityRatios groups margin and return metrics.
type ProfitabilityRatios struct {
	ProfitMargin    *float64 `json:"profit_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	GrossMargin     *float64 `json:"gross_margin"`
	ReturnOnAssets  *float64 `json:"return_on_assets"`
	ReturnOnEquity  *float64 `json:"return_on_equity"`
}

// LiquidityRatios groups balance-sheet health metrics.
type LiquidityRatios struct {
	CurrentRatio *float64 `json:"current_ratio"`
	QuickRatio   *float64 `json:"quick_ratio"`
	DebtToEquity *float64 `json:"debt_to_equity"`
}

// GrowthMetrics groups revenue/EPS growth metrics.
type GrowthMetrics struct {
	RevenueGrowth  *float64 `json:"revenue_growth"`
	EarningsGrowth *float64 `json:"earnings_growth"`
}

// DividendInfo groups dividend metrics.
type DividendInfo struct {
	DividendYield *float64 `json:"dividend_yield"`
	PayoutRatio   *float64 `json:"payout_ratio"`
}

// FinancialRatios is the complete ratio response for a ticker.
type FinancialRatios struct {
	Ticker        string              `json:"ticker"`
	Valuation     ValuationRatios     `json:"valuation"`
	Profitability ProfitabilityRatios `json:"profitability"`
	Liquidity     LiquidityRatios     `json:"liquidity"`
	Growth        GrowthMetrics       `json:"growth"`
	Dividends     DividendInfo        `json:"dividends"`
}

// SearchResult is one ticker match from symbol search.
type SearchResult struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}
