package api

import (
	"net/http"
	"strings"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	one, twenty := 1, 20
	limit := getIntParam(r, "limit", 10, &one, &twenty)

	results := s.fundamentals.Search(r.Context(), query, limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}
