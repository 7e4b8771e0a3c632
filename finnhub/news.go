package finnhub

import (
	"context"
	"strings"
	"time"

	"investiq/models"
)

// News fetches recent articles for a ticker and maps them into a
// NewsSummary without an AI summary yet. Articles missing a timestamp
// get the fetch time; per-article sentiment stays nil until the LLM
// layer fills it.
func (c *Client) News(ctx context.Context, ticker string, days, limit int) (*models.NewsSummary, error) {
	ticker = strings.ToUpper(ticker)
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 20
	}

	now := time.Now()
	from := now.AddDate(0, 0, -days).Format("2006-01-02")
	to := now.Format("2006-01-02")

	items, err := c.GetCompanyNews(ctx, ticker, from, to)
	if err != nil {
		return nil, err
	}

	articles := make([]models.NewsArticle, 0, limit)
	for _, item := range items {
		if len(articles) >= limit {
			break
		}
		if item.Headline == "" || item.URL == "" {
			continue // skip malformed articles
		}

		published := now
		if item.Datetime > 0 {
			published = time.Unix(item.Datetime, 0)
		}

		articles = append(articles, models.NewsArticle{
			Title:       item.Headline,
			Source:      item.Source,
			URL:         item.URL,
			PublishedAt: published,
			Description: item.Summary,
		})
	}

	return &models.NewsSummary{
		Ticker:    ticker,
		Articles:  articles,
		KeyThemes: []string{},
		FetchedAt: now.UTC(),
	}, nil
}
