package finnhub

import (
	"context"
	"fmt"
	"strings"

	"investiq/models"
)

// Analyst assembles price targets and consensus recommendations for a
// ticker. Each sub-fetch is best effort; whatever succeeded is returned.
func (c *Client) Analyst(ctx context.Context, ticker string) (*models.AnalystData, error) {
	ticker = strings.ToUpper(ticker)

	data := &models.AnalystData{
		Ticker:          ticker,
		Recommendations: []models.AnalystRecommendation{},
	}

	trends, err := c.GetRecommendationTrends(ctx, ticker)
	if err == nil {
		for i, t := range trends {
			if i >= 10 {
				break
			}
			data.Recommendations = append(data.Recommendations, models.AnalystRecommendation{
				Date:       t.Period,
				Firm:       "Consensus",
				ToGrade:    fmt.Sprintf("Buy: %d, Hold: %d, Sell: %d", t.Buy, t.Hold, t.Sell),
				StrongBuy:  t.StrongBuy,
				Buy:        t.Buy,
				Hold:       t.Hold,
				Sell:       t.Sell,
				StrongSell: t.StrongSell,
			})
		}
	}

	if targets, err := c.GetPriceTarget(ctx, ticker); err == nil {
		data.PriceTargets.TargetHigh = targets.TargetHigh
		data.PriceTargets.TargetLow = targets.TargetLow
		data.PriceTargets.TargetMean = targets.TargetMean
		data.PriceTargets.TargetMedian = targets.TargetMedian
	}

	if quote, err := c.GetQuote(ctx, ticker); err == nil && quote.Current > 0 {
		current := quote.Current
		data.PriceTargets.Current = &current

		if mean := data.PriceTargets.TargetMean; mean != nil {
			upside := round2((*mean - current) / current * 100)
			data.PriceTargets.UpsidePotentialPct = &upside
		}
	}

	// Derive a consensus recommendation from the latest trend period.
	if len(data.Recommendations) > 0 {
		latest := data.Recommendations[0]
		total := latest.StrongBuy + latest.Buy + latest.Hold + latest.Sell + latest.StrongSell
		if total > 0 {
			data.PriceTargets.NumberOfAnalysts = &total
			buyPct := float64(latest.StrongBuy+latest.Buy) / float64(total)
			switch {
			case buyPct > 0.6:
				data.PriceTargets.Recommendation = "buy"
			case buyPct > 0.4:
				data.PriceTargets.Recommendation = "hold"
			default:
				data.PriceTargets.Recommendation = "sell"
			}
		}
	}

	return data, nil
}
