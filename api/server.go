// Package api exposes the REST surface of the research backend. Route
// handlers are distributed across handlers_*.go by domain.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"investiq/auth"
	"investiq/cache"
	"investiq/config"
	"investiq/database"
	"investiq/finnhub"
	"investiq/llm"
	"investiq/models"
	"investiq/realtime"
	"investiq/yahoo"
)

// MarketData is the provider surface the stock handlers consume. It is
// implemented by finnhub.Client and faked in tests.
type MarketData interface {
	StockQuote(ctx context.Context, ticker string) (*models.StockQuote, error)
	History(ctx context.Context, ticker, period, interval string) (*models.PriceHistory, error)
	News(ctx context.Context, ticker string, days, limit int) (*models.NewsSummary, error)
	Analyst(ctx context.Context, ticker string) (*models.AnalystData, error)
	Earnings(ctx context.Context, ticker string) (*models.EarningsData, error)
	Ratios(ctx context.Context, ticker string) (*models.FinancialRatios, error)
	GetCandles(ctx context.Context, symbol, resolution string, from, to int64) (*finnhub.Candles, error)
}

// Fundamentals is the secondary provider used for symbol search and
// financial statements. Implemented by yahoo.Client.
type Fundamentals interface {
	Search(ctx context.Context, query string, limit int) []models.SearchResult
	Statement(ctx context.Context, ticker string, kind yahoo.StatementKind, quarterly bool) (*models.FinancialStatement, error)
}

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Config       *config.Config
	Watchlist    *database.WatchlistRepository
	Briefs       *database.BriefRepository
	NewsArchive  *database.NewsRepository
	Users        *database.UserRepository
	Cache        *cache.Tiered
	Cooldown     *cache.BriefCooldown
	Market       MarketData
	Fundamentals Fundamentals
	LLM          *llm.Client
	LLMEnabled   bool
	Broker       *realtime.Broker
	Google       *auth.GoogleClient
	Tokens       *auth.TokenManager
}

// Server handles HTTP API requests.
type Server struct {
	cfg          *config.Config
	watchlist    *database.WatchlistRepository
	briefs       *database.BriefRepository
	newsArchive  *database.NewsRepository
	users        *database.UserRepository
	cache        *cache.Tiered
	cooldown     *cache.BriefCooldown
	market       MarketData
	fundamentals Fundamentals
	llmClient    *llm.Client
	llmEnabled   bool
	broker       *realtime.Broker
	google       *auth.GoogleClient
	tokens       *auth.TokenManager
	limiter      *rateLimiter

	httpServer *http.Server
}

// NewServer creates a new API server instance.
func NewServer(deps Deps) *Server {
	return &Server{
		cfg:          deps.Config,
		watchlist:    deps.Watchlist,
		briefs:       deps.Briefs,
		newsArchive:  deps.NewsArchive,
		users:        deps.Users,
		cache:        deps.Cache,
		cooldown:     deps.Cooldown,
		market:       deps.Market,
		fundamentals: deps.Fundamentals,
		llmClient:    deps.LLM,
		llmEnabled:   deps.LLMEnabled,
		broker:       deps.Broker,
		google:       deps.Google,
		tokens:       deps.Tokens,
		limiter:      newRateLimiter(rateLimitPerMinute, rateLimitWindow),
	}
}

// Handler builds the full route table with middleware applied. Exposed
// separately from Start so tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Market data
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/quote", s.handleGetQuote)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/history", s.handleGetHistory)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/technical", s.handleGetTechnical)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/news", s.handleGetNews)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/live", s.handleLiveQuote)

	// Financials
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/financials/{statement}", s.handleGetStatement)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/ratios", s.handleGetRatios)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/earnings", s.handleGetEarnings)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/analyst", s.handleGetAnalyst)

	// AI briefs
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/brief", s.handleGetBrief)
	mux.HandleFunc("POST /api/v1/stocks/{ticker}/brief", s.handleGenerateBrief)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/brief/history", s.handleGetBriefHistory)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/brief/stream", s.handleBriefStream)

	// Exports
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/export/summary", s.handleExportSummary)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/export/history", s.handleExportHistory)
	mux.HandleFunc("GET /api/v1/stocks/{ticker}/export/financials", s.handleExportFinancials)

	// Watchlist
	mux.HandleFunc("GET /api/v1/watchlist", s.handleListWatchlist)
	mux.HandleFunc("POST /api/v1/watchlist", s.handleAddWatchlist)
	mux.HandleFunc("GET /api/v1/watchlist/categories", s.handleWatchlistCategories)
	mux.HandleFunc("GET /api/v1/watchlist/export", s.handleExportWatchlist)
	mux.HandleFunc("GET /api/v1/watchlist/{ticker}", s.handleGetWatchlistItem)
	mux.HandleFunc("PUT /api/v1/watchlist/{ticker}", s.handleUpdateWatchlist)
	mux.HandleFunc("DELETE /api/v1/watchlist/{ticker}", s.handleRemoveWatchlist)

	// Search
	mux.HandleFunc("GET /api/v1/search", s.handleSearch)

	// Auth
	mux.HandleFunc("GET /api/v1/auth/google/login", s.handleGoogleLogin)
	mux.HandleFunc("GET /api/v1/auth/google/callback", s.handleGoogleCallback)
	mux.HandleFunc("GET /api/v1/auth/me", s.handleMe)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)

	// Watchlist event stream
	if s.broker != nil {
		mux.Handle("GET /api/v1/events", s.broker)
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.corsMiddleware(s.loggingMiddleware(s.rateLimitMiddleware(mux)))
}

// Start starts the HTTP server on the specified port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	log.Printf("🚀 API server starting on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"llm_enabled": s.llmEnabled,
	})
}
