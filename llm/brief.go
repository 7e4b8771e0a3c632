package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"investiq/models"
)

// BriefInput is the data bundle synthesized into an investment brief.
// Nil sections are omitted from the prompt.
type BriefInput struct {
	Quote      *models.StockQuote
	Technicals *models.TechnicalIndicators
	Ratios     *models.FinancialRatios
	Analyst    *models.AnalystData
	News       *models.NewsSummary
}

// briefSchema is the JSON shape the model is asked to produce.
const briefSchema = `{
  "executive_summary": "2-3 sentence overview",
  "bull_case": ["point 1", "point 2", "point 3"],
  "bear_case": ["point 1", "point 2", "point 3"],
  "key_risks": ["risk 1", "risk 2"],
  "catalysts": ["catalyst 1", "catalyst 2"],
  "technical_outlook": "1-2 sentences on the technical picture",
  "financial_health": "1-2 sentences on financials",
  "recent_developments": "1-2 sentences on recent news",
  "conclusion": "2-3 sentence synthesis",
  "sentiment": "bullish | bearish | neutral"
}`

// briefPrompt renders the data bundle into a completion prompt that
// demands strict JSON back.
func briefPrompt(ticker string, input BriefInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate an investment research brief for %s from the data below.\n\n", ticker)

	section := func(name string, v interface{}) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", name, data)
	}
	if input.Quote != nil {
		section("Quote", input.Quote)
	}
	if input.Technicals != nil {
		section("Technical indicators", input.Technicals)
	}
	if input.Ratios != nil {
		section("Financial ratios", input.Ratios)
	}
	if input.Analyst != nil {
		section("Analyst data", input.Analyst)
	}
	if input.News != nil {
		section("Recent news", input.News)
	}

	b.WriteString("Respond with ONLY a JSON object matching this schema, no prose before or after:\n")
	b.WriteString(briefSchema)
	return b.String()
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models wrap around JSON output despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// GenerateBrief produces a structured brief for a ticker. Output that
// does not parse as the expected JSON is an error; nothing is guessed.
func (c *Client) GenerateBrief(ctx context.Context, ticker string, input BriefInput) (*models.InvestmentBrief, error) {
	ticker = strings.ToUpper(ticker)

	raw, err := c.Complete(ctx, briefPrompt(ticker, input))
	if err != nil {
		return nil, fmt.Errorf("brief generation failed for %s: %w", ticker, err)
	}

	var brief models.InvestmentBrief
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &brief); err != nil {
		return nil, fmt.Errorf("model returned malformed brief for %s: %w", ticker, err)
	}

	brief.Ticker = ticker
	if input.Quote != nil {
		brief.CompanyName = input.Quote.Name
	}
	if brief.CompanyName == "" {
		brief.CompanyName = ticker
	}
	brief.GeneratedAt = time.Now().UTC()
	brief.Sentiment = models.NormalizeSentiment(string(brief.Sentiment))
	brief.Cached = false

	return &brief, nil
}

// GenerateBriefStream streams the raw model output for a brief without
// parsing it; the caller relays deltas to the client as they arrive.
func (c *Client) GenerateBriefStream(ctx context.Context, ticker string, input BriefInput, callback StreamCallback) error {
	return c.CompleteStream(ctx, briefPrompt(strings.ToUpper(ticker), input), callback)
}
