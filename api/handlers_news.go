package api

import (
	"log"
	"net/http"
	"strings"

	"investiq/models"
)

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	one, ninety := 1, 90
	days := getIntParam(r, "days", 7, &one, &ninety)
	fifty := 50
	limit := getIntParam(r, "limit", 20, &one, &fifty)
	ctx := r.Context()

	var cached models.NewsSummary
	if err := s.cache.Get(ctx, ticker, "news", &cached); err == nil {
		writeJSON(w, http.StatusOK, &cached)
		return
	}

	summary, err := s.market.News(ctx, ticker, days, limit)
	if err != nil {
		marketError(w, err)
		return
	}

	if s.llmEnabled {
		s.llmClient.EnrichNews(ctx, summary)
	} else {
		summary.AISummary = "AI summarization disabled."
	}

	s.cache.Put(ctx, ticker, "news", summary, s.cfg.CacheTTL.News)
	if s.newsArchive != nil {
		if err := s.newsArchive.Save(summary); err != nil {
			log.Printf("⚠️  Failed to archive news for %s: %v", ticker, err)
		}
	}

	writeJSON(w, http.StatusOK, summary)
}
