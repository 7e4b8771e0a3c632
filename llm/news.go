package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"investiq/models"
)

type newsAnalysis struct {
	Summary          string   `json:"summary"`
	OverallSentiment string   `json:"overall_sentiment"`
	KeyThemes        []string `json:"key_themes"`
	Sentiments       []string `json:"sentiments"`
}

// EnrichNews adds an AI summary, sentiment, and key themes to a news
// bundle in place. Summarization is best effort; on any failure the
// articles are returned untouched with a placeholder summary.
func (c *Client) EnrichNews(ctx context.Context, summary *models.NewsSummary) {
	if len(summary.Articles) == 0 {
		summary.AISummary = "No recent news found."
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the news coverage for %s below.\n\n", summary.Ticker)
	for i, a := range summary.Articles {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, a.Title, a.Source)
		if a.Description != "" {
			fmt.Fprintf(&b, ": %s", a.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with ONLY a JSON object, no prose:\n")
	b.WriteString(`{"summary": "3-4 sentence overview", "overall_sentiment": "bullish | bearish | neutral", "key_themes": ["theme 1", "theme 2"], "sentiments": ["per-article sentiment in order"]}`)

	raw, err := c.Complete(ctx, b.String())
	if err != nil {
		summary.AISummary = "Summary unavailable: " + err.Error()
		return
	}

	var analysis newsAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &analysis); err != nil {
		summary.AISummary = "Summary unavailable: model returned malformed analysis"
		return
	}

	summary.AISummary = analysis.Summary
	overall := models.NormalizeSentiment(analysis.OverallSentiment)
	summary.OverallSentiment = &overall
	if analysis.KeyThemes != nil {
		summary.KeyThemes = analysis.KeyThemes
	}
	for i := range summary.Articles {
		if i < len(analysis.Sentiments) {
			s := models.NormalizeSentiment(analysis.Sentiments[i])
			summary.Articles[i].Sentiment = &s
		}
	}
}
