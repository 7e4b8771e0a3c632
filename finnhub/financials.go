package finnhub

import (
	"context"
	"strings"

	"investiq/models"
)

// Earnings maps quarterly EPS history into the earnings response.
func (c *Client) Earnings(ctx context.Context, ticker string) (*models.EarningsData, error) {
	ticker = strings.ToUpper(ticker)

	items, err := c.GetEarnings(ctx, ticker)
	if err != nil {
		return nil, err
	}

	data := &models.EarningsData{
		Ticker:            ticker,
		QuarterlyEarnings: make([]models.QuarterlyEarning, 0, len(items)),
	}
	for _, item := range items {
		data.QuarterlyEarnings = append(data.QuarterlyEarnings, models.QuarterlyEarning{
			Quarter:  item.Period,
			Actual:   item.Actual,
			Estimate: item.Estimate,
			Surprise: item.SurprisePercent,
		})
	}

	if metrics, err := c.GetMetrics(ctx, ticker); err == nil && metrics.Metric != nil {
		data.EPSGrowthTTM = metrics.Metric["epsGrowthTTMYoy"]
		data.RevenueGrowthTTM = metrics.Metric["revenueGrowthTTMYoy"]
	}

	return data, nil
}

// Ratios maps the basic-financials metric bag into grouped ratios.
// Metrics Finnhub does not report for a symbol stay nil.
func (c *Client) Ratios(ctx context.Context, ticker string) (*models.FinancialRatios, error) {
	ticker = strings.ToUpper(ticker)

	metrics, err := c.GetMetrics(ctx, ticker)
	if err != nil {
		return nil, err
	}
	m := metrics.Metric
	if m == nil {
		m = map[string]*float64{}
	}

	return &models.FinancialRatios{
		Ticker: ticker,
		Valuation: models.ValuationRatios{
			PERatio:      m["peBasicExclExtraTTM"],
			ForwardPE:    m["peNormalizedAnnual"],
			PEGRatio:     m["pegTTM"],
			PriceToBook:  m["pbAnnual"],
			PriceToSales: m["psTTM"],
			EVToEBITDA:   m["currentEv/freeCashFlowTTM"],
		},
		Profitability: models.ProfitabilityRatios{
			ProfitMargin:    m["netProfitMarginTTM"],
			OperatingMargin: m["operatingMarginTTM"],
			GrossMargin:     m["grossMarginTTM"],
			ReturnOnAssets:  m["roaTTM"],
			ReturnOnEquity:  m["roeTTM"],
		},
		Liquidity: models.LiquidityRatios{
			CurrentRatio: m["currentRatioQuarterly"],
			QuickRatio:   m["quickRatioQuarterly"],
			DebtToEquity: m["totalDebt/totalEquityQuarterly"],
		},
		Growth: models.GrowthMetrics{
			RevenueGrowth:  m["revenueGrowthTTMYoy"],
			EarningsGrowth: m["epsGrowthTTMYoy"],
		},
		Dividends: models.DividendInfo{
			DividendYield: m["currentDividendYieldTTM"],
			PayoutRatio:   m["payoutRatioTTM"],
		},
	}, nil
}
