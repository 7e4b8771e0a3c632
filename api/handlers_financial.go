package api

import (
	"net/http"
	"strings"

	"investiq/models"
	"investiq/yahoo"
)

var statementKinds = map[string]yahoo.StatementKind{
	"income":   yahoo.StatementIncome,
	"balance":  yahoo.StatementBalance,
	"cashflow": yahoo.StatementCashflow,
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	kind, ok := statementKinds[r.PathValue("statement")]
	if !ok {
		respondWithError(w, http.StatusBadRequest, "statement must be income, balance, or cashflow", nil)
		return
	}
	quarterly := r.URL.Query().Get("quarterly") == "true"
	ctx := r.Context()

	cacheKind := "stmt:" + string(kind) + ":annual"
	if quarterly {
		cacheKind = "stmt:" + string(kind) + ":quarterly"
	}

	var cached models.FinancialStatement
	if err := s.cache.Get(ctx, ticker, cacheKind, &cached); err == nil {
		writeJSON(w, http.StatusOK, &cached)
		return
	}

	statement, err := s.fundamentals.Statement(ctx, ticker, kind, quarterly)
	if err != nil {
		marketError(w, err)
		return
	}

	s.cache.Put(ctx, ticker, cacheKind, statement, s.cfg.CacheTTL.Financial)
	writeJSON(w, http.StatusOK, statement)
}

func (s *Server) handleGetRatios(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	var cached models.FinancialRatios
	if err := s.cache.Get(ctx, ticker, "ratios", &cached); err == nil {
		writeJSON(w, http.StatusOK, &cached)
		return
	}

	ratios, err := s.market.Ratios(ctx, ticker)
	if err != nil {
		marketError(w, err)
		return
	}

	s.cache.Put(ctx, ticker, "ratios", ratios, s.cfg.CacheTTL.Financial)
	writeJSON(w, http.StatusOK, ratios)
}

func (s *Server) handleGetEarnings(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	var cached models.EarningsData
	if err := s.cache.Get(ctx, ticker, "earnings", &cached); err == nil {
		writeJSON(w, http.StatusOK, &cached)
		return
	}

	earnings, err := s.market.Earnings(ctx, ticker)
	if err != nil {
		marketError(w, err)
		return
	}

	s.cache.Put(ctx, ticker, "earnings", earnings, s.cfg.CacheTTL.Financial)
	writeJSON(w, http.StatusOK, earnings)
}

func (s *Server) handleGetAnalyst(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	var cached models.AnalystData
	if err := s.cache.Get(ctx, ticker, "analyst", &cached); err == nil {
		writeJSON(w, http.StatusOK, &cached)
		return
	}

	analyst, err := s.market.Analyst(ctx, ticker)
	if err != nil {
		marketError(w, err)
		return
	}

	s.cache.Put(ctx, ticker, "analyst", analyst, s.cfg.CacheTTL.Financial)
	writeJSON(w, http.StatusOK, analyst)
}
