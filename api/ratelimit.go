package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	rateLimitPerMinute = 100
	rateLimitWindow    = time.Minute
)

// rateLimiter is a sliding-window request counter per client address.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
	}
}

// allow records a hit for key and reports whether it is within the
// limit, along with the remaining budget and when the window resets.
func (rl *rateLimiter) allow(key string, now time.Time) (allowed bool, remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.window)

	// Evict clients whose last hit slid out of the window, so the map
	// does not grow with every address ever seen.
	for k, times := range rl.hits {
		if k != key && !times[len(times)-1].After(cutoff) {
			delete(rl.hits, k)
		}
	}

	hits := rl.hits[key]

	// Drop hits that slid out of the window.
	live := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}

	if len(live) >= rl.limit {
		rl.hits[key] = live
		return false, 0, live[0].Add(rl.window)
	}

	live = append(live, now)
	rl.hits[key] = live

	remaining = rl.limit - len(live)
	return true, remaining, live[0].Add(rl.window)
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health checks are exempt so probes never trip the limiter.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining, reset := s.limiter.allow(clientIP(r), time.Now())

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", s.limiter.limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))

		if !allowed {
			respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
