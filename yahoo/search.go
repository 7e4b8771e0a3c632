package yahoo

import (
	"context"
	"net/url"

	"investiq/models"
)

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchDisp"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search finds tickers matching a free-text query. Only equities and
// ETFs are returned; a failed upstream call yields an empty list rather
// than an error since search is advisory.
func (c *Client) Search(ctx context.Context, query string, limit int) []models.SearchResult {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{
		"q":           {query},
		"quotesCount": {"20"},
		"newsCount":   {"0"},
	}

	var resp searchResponse
	if err := c.get(ctx, c.searchBaseURL, "/v1/finance/search", params, &resp); err != nil {
		return []models.SearchResult{}
	}

	results := make([]models.SearchResult, 0, limit)
	for _, q := range resp.Quotes {
		if len(results) >= limit {
			break
		}
		if q.QuoteType != "EQUITY" && q.QuoteType != "ETF" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		results = append(results, models.SearchResult{
			Ticker:   q.Symbol,
			Name:     name,
			Exchange: q.Exchange,
			Type:     q.QuoteType,
		})
	}
	return results
}
