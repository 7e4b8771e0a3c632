package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"investiq/llm"
	"investiq/models"
	"investiq/technical"
)

// briefCooldown is the minimum gap between forced regenerations of the
// same ticker.
const briefCooldown = 5 * time.Minute

// gatherBriefInput assembles the data bundle for brief generation. The
// quote is mandatory; the other sections are fetched concurrently and
// skipped on failure.
func (s *Server) gatherBriefInput(ctx context.Context, ticker string) (llm.BriefInput, error) {
	quote, err := s.market.StockQuote(ctx, ticker)
	if err != nil {
		return llm.BriefInput{}, err
	}

	input := llm.BriefInput{Quote: quote}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		now := time.Now()
		candles, err := s.market.GetCandles(ctx, ticker, "D", now.AddDate(-1, 0, 0).Unix(), now.Unix())
		if err != nil || candles.Status != "ok" {
			return
		}
		if indicators, err := technical.Compute(ticker, candles.Close, candles.High, candles.Low); err == nil {
			input.Technicals = indicators
		}
	}()
	go func() {
		defer wg.Done()
		if ratios, err := s.market.Ratios(ctx, ticker); err == nil {
			input.Ratios = ratios
		}
	}()
	go func() {
		defer wg.Done()
		if analyst, err := s.market.Analyst(ctx, ticker); err == nil {
			input.Analyst = analyst
		}
	}()
	go func() {
		defer wg.Done()
		if news, err := s.market.News(ctx, ticker, 7, 10); err == nil {
			input.News = news
		}
	}()

	wg.Wait()
	return input, nil
}

func (s *Server) handleGetBrief(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force_regenerate") == "true"
	s.serveBrief(w, r, force)
}

// handleGenerateBrief is the explicit generation entry point. The body
// may carry {"force_regenerate": true} to skip the stored brief.
func (s *Server) handleGenerateBrief(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ForceRegenerate bool `json:"force_regenerate"`
	}
	if r.Body != nil {
		// An empty or absent body means a plain regeneration request.
		json.NewDecoder(r.Body).Decode(&body)
	}
	s.serveBrief(w, r, body.ForceRegenerate)
}

func (s *Server) serveBrief(w http.ResponseWriter, r *http.Request, force bool) {
	if !s.llmEnabled {
		respondWithError(w, http.StatusServiceUnavailable, "AI brief generation is not configured", nil)
		return
	}

	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	latest, latestErr := s.briefs.Latest(ticker)
	if !force && latestErr == nil && time.Since(latest.GeneratedAt) < s.cfg.CacheTTL.Brief {
		writeJSON(w, http.StatusOK, latest)
		return
	}

	if s.cooldown.Active(ctx, ticker) {
		// Generation just ran; hand back the stored brief instead of
		// burning another LLM call.
		if latestErr == nil {
			writeJSON(w, http.StatusOK, latest)
			return
		}
		respondWithError(w, http.StatusTooManyRequests, "brief generation is cooling down, try again shortly", nil)
		return
	}

	input, err := s.gatherBriefInput(ctx, ticker)
	if err != nil {
		marketError(w, err)
		return
	}

	brief, err := s.llmClient.GenerateBrief(ctx, ticker, input)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "AI brief generation failed", err)
		return
	}

	if err := s.briefs.Save(brief); err != nil {
		log.Printf("⚠️  Failed to persist brief for %s: %v", ticker, err)
	}
	s.cooldown.Set(ctx, ticker, briefCooldown)

	writeJSON(w, http.StatusOK, brief)
}

func (s *Server) handleGetBriefHistory(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	one, fifty := 1, 50
	limit := getIntParam(r, "limit", 10, &one, &fifty)

	records, err := s.briefs.History(ticker, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load brief history", err)
		return
	}

	briefs := make([]models.InvestmentBrief, 0, len(records))
	for _, record := range records {
		var brief models.InvestmentBrief
		if err := json.Unmarshal([]byte(record.Content), &brief); err != nil {
			log.Printf("⚠️  Skipping undecodable brief %d for %s: %v", record.ID, ticker, err)
			continue
		}
		brief.Cached = true
		brief.GeneratedAt = record.GeneratedAt
		briefs = append(briefs, brief)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"briefs": briefs,
	})
}

func (s *Server) handleBriefStream(w http.ResponseWriter, r *http.Request) {
	if !s.llmEnabled {
		respondWithError(w, http.StatusServiceUnavailable, "AI brief generation is not configured", nil)
		return
	}

	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	input, err := s.gatherBriefInput(ctx, ticker)
	if err != nil {
		marketError(w, err)
		return
	}

	flusher, ok := setupSSE(w)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	err = s.llmClient.GenerateBriefStream(ctx, ticker, input, func(chunk string) error {
		encoded, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "data: %s\n\n", encoded)
		flusher.Flush()
		return nil
	})
	if err != nil {
		fmt.Fprintf(w, "event: error\ndata: %q\n\n", "AI brief generation failed")
		flusher.Flush()
		return
	}

	fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}
