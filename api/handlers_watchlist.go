package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"investiq/database"
	"investiq/realtime"
)

type watchlistRequest struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := s.watchlist.List(r.URL.Query().Get("category"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list watchlist", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) handleAddWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	if req.Ticker == "" {
		respondWithError(w, http.StatusBadRequest, "ticker is required", nil)
		return
	}

	// Fill in the company name from the quote when the client omits it.
	if req.Name == "" {
		if quote, err := s.market.StockQuote(r.Context(), req.Ticker); err == nil {
			req.Name = quote.Name
		}
	}

	item := &database.WatchlistItem{
		Ticker:   req.Ticker,
		Name:     req.Name,
		Category: req.Category,
		Notes:    req.Notes,
	}
	if err := s.watchlist.Add(item); err != nil {
		if errors.Is(err, database.ErrDuplicateTicker) {
			respondWithError(w, http.StatusConflict, req.Ticker+" is already in the watchlist", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to add watchlist item", err)
		return
	}

	if s.broker != nil {
		s.broker.Broadcast(realtime.EventWatchlistChange, map[string]string{"action": "added", "ticker": item.Ticker})
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetWatchlistItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.watchlist.Get(r.PathValue("ticker"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "ticker not in watchlist", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to load watchlist item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	item, err := s.watchlist.Update(r.PathValue("ticker"), req.Category, req.Notes)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "ticker not in watchlist", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to update watchlist item", err)
		return
	}

	if s.broker != nil {
		s.broker.Broadcast(realtime.EventWatchlistChange, map[string]string{"action": "updated", "ticker": item.Ticker})
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleRemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	if err := s.watchlist.Remove(ticker); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "ticker not in watchlist", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to remove watchlist item", err)
		return
	}

	if s.broker != nil {
		s.broker.Broadcast(realtime.EventWatchlistChange, map[string]string{"action": "removed", "ticker": ticker})
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": ticker + " removed from watchlist"})
}

func (s *Server) handleWatchlistCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.watchlist.Categories()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}
