// Package app wires configuration, storage, providers, and the HTTP
// server together and owns the process lifecycle.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"investiq/api"
	"investiq/auth"
	"investiq/cache"
	"investiq/config"
	"investiq/database"
	"investiq/finnhub"
	"investiq/llm"
	"investiq/realtime"
	"investiq/yahoo"
)

// cachePurgeInterval is how often expired cache rows are swept. Expiry
// itself is enforced on read; this only reclaims space.
const cachePurgeInterval = 15 * time.Minute

// App represents the main application.
type App struct {
	config *config.Config

	db         *database.Database
	redis      *cache.RedisClient
	cacheStore *cache.Store
	broker     *realtime.Broker
	apiServer  *api.Server
}

// New creates a new application instance.
func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

// Start brings up storage, providers, and the API server, then blocks
// until an interrupt triggers graceful shutdown.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Database connection
	fmt.Println("🗄️  Connecting to database...")
	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	if err := db.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 2. Market-data cache store (raw SQL, same PostgreSQL instance)
	cacheStore, err := cache.OpenStore(
		a.config.DatabaseHost,
		a.config.DatabasePort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("cache store connection failed: %w", err)
	}
	a.cacheStore = cacheStore
	if err := cacheStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("cache schema initialization failed: %w", err)
	}

	// 3. Redis (optional hot layer)
	fmt.Println("🧠 Connecting to Redis...")
	a.redis = cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)
	if a.redis == nil {
		fmt.Println("⚠️  Redis unavailable, serving from the relational cache only")
	}
	tiered := cache.NewTiered(a.redis, cacheStore)

	// 4. Upstream providers
	if a.config.FinnhubAPIKey == "" {
		log.Println("⚠️  FINNHUB_API_KEY is not set; market data requests will fail")
	}
	market := finnhub.NewClient(finnhub.DefaultBaseURL, a.config.FinnhubAPIKey)
	fundamentals := yahoo.NewClient()

	// 5. LLM client
	var llmClient *llm.Client
	llmEnabled := a.config.LLM.Enabled && a.config.LLM.APIKey != ""
	if llmEnabled {
		llmClient = llm.NewClient(a.config.LLM.Endpoint, a.config.LLM.APIKey, a.config.LLM.Model, a.config.LLM.MaxTokens)
		log.Printf("✅ AI briefs ENABLED (model: %s)", a.config.LLM.Model)
	} else {
		log.Println("ℹ️  AI briefs DISABLED")
	}

	// 6. Realtime broker
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	// 7. Auth
	google := auth.NewGoogleClient(
		a.config.Auth.GoogleClientID,
		a.config.Auth.GoogleClientSecret,
		a.config.Auth.CallbackURL,
	)
	tokens := auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.JWTExpiry)

	// 8. API server
	a.apiServer = api.NewServer(api.Deps{
		Config:       a.config,
		Watchlist:    database.NewWatchlistRepository(db),
		Briefs:       database.NewBriefRepository(db),
		NewsArchive:  database.NewNewsRepository(db),
		Users:        database.NewUserRepository(db),
		Cache:        tiered,
		Cooldown:     cache.NewBriefCooldown(a.redis),
		Market:       market,
		Fundamentals: fundamentals,
		LLM:          llmClient,
		LLMEnabled:   llmEnabled,
		Broker:       a.broker,
		Google:       google,
		Tokens:       tokens,
	})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.runCachePurge(ctx)
	}()

	go func() {
		if err := a.apiServer.Start(a.config.ServerPort); err != nil {
			log.Printf("⚠️  API server stopped: %v", err)
			cancel()
		}
	}()

	err = a.gracefulShutdown(ctx, cancel)
	wg.Wait()
	return err
}

// runCachePurge sweeps expired cache rows on a fixed interval.
func (a *App) runCachePurge(ctx context.Context) {
	ticker := time.NewTicker(cachePurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := a.cacheStore.Purge(ctx)
			if err != nil {
				log.Printf("⚠️  Cache purge failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("🧹 Purged %d expired cache entries", removed)
			}
		}
	}
}

// gracefulShutdown waits for an interrupt, then closes everything with a
// timeout.
func (a *App) gracefulShutdown(ctx context.Context, cancel context.CancelFunc) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-interrupt:
		fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	shutdownComplete := make(chan struct{})
	go func() {
		if a.apiServer != nil {
			if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error stopping API server: %v", err)
			} else {
				fmt.Println("✅ API server stopped")
			}
		}
		if a.cacheStore != nil {
			if err := a.cacheStore.Close(); err != nil {
				log.Printf("Error closing cache store: %v", err)
			}
		}
		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			} else {
				fmt.Println("✅ Database connection closed")
			}
		}
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Printf("Error closing redis: %v", err)
			} else {
				fmt.Println("✅ Redis connection closed")
			}
		}
		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		fmt.Println("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}
