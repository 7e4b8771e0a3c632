package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"investiq/models"
)

// chatServer fakes an OpenAI-compatible endpoint that always answers
// with the given assistant content.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		resp := `{"choices": [{"index": 0, "message": {"role": "assistant", "content": ` + jsonString(content) + `}, "finish_reason": "stop"}]}`
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
}

func jsonString(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + replacer.Replace(s) + `"`
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"padded", "  \n```json\n{\"a\": 1}\n```\n  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateBriefParsesFencedJSON(t *testing.T) {
	content := "```json\n{\"executive_summary\": \"Solid quarter.\", \"bull_case\": [\"growth\"], \"bear_case\": [\"valuation\"], \"key_risks\": [\"regulation\"], \"catalysts\": [\"launch\"], \"technical_outlook\": \"Uptrend.\", \"financial_health\": \"Strong.\", \"recent_developments\": \"New product.\", \"conclusion\": \"Constructive.\", \"sentiment\": \"bullish\"}\n```"
	server := chatServer(t, content)
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model", 0)
	quote := &models.StockQuote{Ticker: "AAPL", Name: "Apple Inc"}
	brief, err := client.GenerateBrief(context.Background(), "aapl", BriefInput{Quote: quote})
	if err != nil {
		t.Fatalf("GenerateBrief: %v", err)
	}

	if brief.Ticker != "AAPL" || brief.CompanyName != "Apple Inc" {
		t.Errorf("identity = %q/%q", brief.Ticker, brief.CompanyName)
	}
	if brief.ExecutiveSummary != "Solid quarter." {
		t.Errorf("summary = %q", brief.ExecutiveSummary)
	}
	if brief.Sentiment != models.SentimentBullish {
		t.Errorf("sentiment = %q", brief.Sentiment)
	}
	if brief.Cached {
		t.Error("fresh brief marked cached")
	}
	if brief.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}
}

func TestGenerateBriefRejectsMalformedOutput(t *testing.T) {
	server := chatServer(t, "Sure! Here is my analysis: the stock looks great.")
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model", 0)
	if _, err := client.GenerateBrief(context.Background(), "AAPL", BriefInput{}); err == nil {
		t.Fatal("expected error for non-JSON model output")
	}
}

func TestGenerateBriefNormalizesSentiment(t *testing.T) {
	server := chatServer(t, `{"executive_summary": "x", "sentiment": "very bullish indeed"}`)
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model", 0)
	brief, err := client.GenerateBrief(context.Background(), "AAPL", BriefInput{})
	if err != nil {
		t.Fatalf("GenerateBrief: %v", err)
	}
	if brief.Sentiment != models.SentimentNeutral {
		t.Errorf("sentiment = %q, want neutral fallback", brief.Sentiment)
	}
}

func TestEnrichNewsFillsSummaryAndSentiments(t *testing.T) {
	server := chatServer(t, `{"summary": "Coverage is upbeat.", "overall_sentiment": "bullish", "key_themes": ["earnings"], "sentiments": ["bullish", "neutral"]}`)
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model", 0)
	summary := &models.NewsSummary{
		Ticker: "AAPL",
		Articles: []models.NewsArticle{
			{Title: "Beats estimates", URL: "https://example.com/1"},
			{Title: "Analyst day", URL: "https://example.com/2"},
		},
	}
	client.EnrichNews(context.Background(), summary)

	if summary.AISummary != "Coverage is upbeat." {
		t.Errorf("ai summary = %q", summary.AISummary)
	}
	if summary.OverallSentiment == nil || *summary.OverallSentiment != models.SentimentBullish {
		t.Errorf("overall sentiment = %v", summary.OverallSentiment)
	}
	if summary.Articles[0].Sentiment == nil || *summary.Articles[0].Sentiment != models.SentimentBullish {
		t.Errorf("article sentiment = %v", summary.Articles[0].Sentiment)
	}
}

func TestEnrichNewsUpstreamFailureIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model", 0)
	summary := &models.NewsSummary{
		Ticker:   "AAPL",
		Articles: []models.NewsArticle{{Title: "Something", URL: "https://example.com/1"}},
	}
	client.EnrichNews(context.Background(), summary)

	if !strings.HasPrefix(summary.AISummary, "Summary unavailable") {
		t.Errorf("ai summary = %q, want unavailable placeholder", summary.AISummary)
	}
	if len(summary.Articles) != 1 {
		t.Error("articles should be untouched on failure")
	}
}

func TestChatCompletionStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`data: {"choices": [{"index": 0, "delta": {"role": "assistant", "content": "Hel"}, "finish_reason": null}]}`,
			`data: {"choices": [{"index": 0, "delta": {"content": "lo"}, "finish_reason": null}]}`,
			`data: not-json`,
			`data: {"choices": [{"index": 0, "delta": {}, "finish_reason": "stop"}]}`,
			`data: [DONE]`,
		}
		for _, chunk := range chunks {
			w.Write([]byte(chunk + "\n\n"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "test-model", 0)
	var got strings.Builder
	err := client.ChatCompletionStream(context.Background(), []Message{{Role: "user", Content: "hi"}}, func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got.String() != "Hello" {
		t.Errorf("streamed content = %q, want Hello", got.String())
	}
}
