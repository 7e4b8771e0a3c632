package api

import (
	"errors"
	"net/http"
	"strings"

	"investiq/finnhub"
	"investiq/models"
)

// marketError maps upstream failures onto API status codes: unknown
// tickers are 404, provider outages 502, everything else 500.
func marketError(w http.ResponseWriter, err error) {
	var notFound *models.TickerNotFoundError
	switch {
	case errors.As(err, &notFound):
		respondWithError(w, http.StatusNotFound, notFound.Error(), nil)
	case errors.Is(err, finnhub.ErrUpstream):
		respondWithError(w, http.StatusBadGateway, "market data provider unavailable", err)
	default:
		respondWithError(w, http.StatusInternalServerError, "failed to fetch market data", err)
	}
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	var quote models.StockQuote
	if err := s.cache.Get(ctx, ticker, "quote", &quote); err == nil {
		writeJSON(w, http.StatusOK, &quote)
		return
	}

	fresh, err := s.market.StockQuote(ctx, ticker)
	if err != nil {
		marketError(w, err)
		return
	}

	// A failed cache write degrades to refetching, never to an error.
	s.cache.Put(ctx, ticker, "quote", fresh, s.cfg.CacheTTL.Quote)
	writeJSON(w, http.StatusOK, fresh)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "6mo"
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "1d"
	}
	ctx := r.Context()

	kind := "history:" + period + ":" + interval
	var history models.PriceHistory
	if err := s.cache.Get(ctx, ticker, kind, &history); err == nil {
		writeJSON(w, http.StatusOK, &history)
		return
	}

	fresh, err := s.market.History(ctx, ticker, period, interval)
	if err != nil {
		marketError(w, err)
		return
	}

	s.cache.Put(ctx, ticker, kind, fresh, s.cfg.CacheTTL.Technical)
	writeJSON(w, http.StatusOK, fresh)
}
