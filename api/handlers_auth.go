package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"investiq/database"
)

const stateCookie = "oauth_state"

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.google == nil || !s.google.Enabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Google sign-in is not configured", nil)
		return
	}

	state, err := randomState()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to start sign-in", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.google.AuthURL(state), http.StatusTemporaryRedirect)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.google == nil || !s.google.Enabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Google sign-in is not configured", nil)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		respondWithError(w, http.StatusBadRequest, "invalid oauth state", nil)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "missing authorization code", nil)
		return
	}

	profile, err := s.google.Exchange(r.Context(), code)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Google sign-in failed", err)
		return
	}

	user, err := s.users.GetOrCreate(profile.ID, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to record user", err)
		return
	}

	token, err := s.tokens.Mint(uint(user.ID), user.Email, user.Name, user.Picture)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to issue session token", err)
		return
	}

	// Clear the one-shot state cookie and hand the token to the frontend.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	http.Redirect(w, r, s.cfg.Auth.FrontendURL+"/auth/callback?token="+token, http.StatusTemporaryRedirect)
}

// handleLogout acknowledges a sign-out. Sessions are stateless JWTs,
// so the client discards its token; there is nothing to revoke here.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		respondWithError(w, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	claims, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "invalid or expired token", err)
		return
	}

	user, err := s.users.ByID(int64(claims.UserID))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondWithError(w, http.StatusUnauthorized, "unknown user", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
