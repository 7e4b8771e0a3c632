package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"investiq/models"
	"investiq/technical"
)

func (s *Server) handleGetTechnical(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	var cached models.TechnicalIndicators
	if err := s.cache.Get(ctx, ticker, "technical", &cached); err == nil {
		writeJSON(w, http.StatusOK, &cached)
		return
	}

	// One year of daily candles covers the longest moving-average window.
	now := time.Now()
	candles, err := s.market.GetCandles(ctx, ticker, "D", now.AddDate(-1, 0, 0).Unix(), now.Unix())
	if err != nil {
		marketError(w, err)
		return
	}
	if candles.Status != "ok" || len(candles.Close) == 0 {
		respondWithError(w, http.StatusNotFound, "no price history for "+ticker, nil)
		return
	}

	indicators, err := technical.Compute(ticker, candles.Close, candles.High, candles.Low)
	if err != nil {
		var insufficient *technical.ErrInsufficientData
		if errors.As(err, &insufficient) {
			respondWithError(w, http.StatusUnprocessableEntity, insufficient.Error(), nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to compute indicators", err)
		return
	}

	s.cache.Put(ctx, ticker, "technical", indicators, s.cfg.CacheTTL.Technical)
	writeJSON(w, http.StatusOK, indicators)
}
