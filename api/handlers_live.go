package api

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"investiq/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API already allows any origin through CORS; the socket follows.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveQuoteMaxFailures is how many quote fetches may fail in a row
// before the socket is closed instead of re-polling a dead upstream.
const liveQuoteMaxFailures = 3

// handleLiveQuote pushes fresh quotes for one ticker over a WebSocket
// until the client disconnects.
func (s *Server) handleLiveQuote(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	five, threeHundred := 5, 300
	interval := time.Duration(getIntParam(r, "interval", 15, &five, &threeHundred)) * time.Second

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.streamQuotes(r.Context(), conn, ticker, interval)
}

// streamQuotes pushes a quote every interval until the client
// disconnects, the context ends, or the upstream fails
// liveQuoteMaxFailures times in a row.
func (s *Server) streamQuotes(ctx context.Context, conn *websocket.Conn, ticker string, interval time.Duration) {
	// Drain client frames so close events surface as read errors.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	failures := 0
	push := func() bool {
		quote, err := s.market.StockQuote(ctx, ticker)
		if err != nil {
			failures++
			conn.WriteJSON(map[string]string{"error": "quote unavailable for " + ticker})
			return failures < liveQuoteMaxFailures
		}
		failures = 0
		if s.broker != nil {
			s.broker.Broadcast(realtime.EventQuoteRefresh, quote)
		}
		return conn.WriteJSON(quote) == nil
	}

	if !push() {
		return
	}

	timer := time.NewTicker(interval)
	defer timer.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
			if !push() {
				return
			}
		}
	}
}
