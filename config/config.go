package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort int

	// Market data providers
	FinnhubAPIKey string

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration (optional hot cache layer)
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// LLM configuration
	LLM LLMConfig

	// OAuth / session configuration
	Auth AuthConfig

	// Cache TTL policy per data kind
	CacheTTL CacheTTLConfig
}

// LLMConfig holds LLM service configuration
type LLMConfig struct {
	Enabled   bool
	Endpoint  string
	APIKey    string
	Model     string
	MaxTokens int
}

// AuthConfig holds Google OAuth and JWT settings
type AuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	JWTSecret          string
	JWTExpiry          time.Duration
	FrontendURL        string
	CallbackURL        string
}

// CacheTTLConfig holds per-data-kind cache expiry durations.
// These are policy knobs, not invariants; every value can be overridden
// from the environment.
type CacheTTLConfig struct {
	Quote     time.Duration
	News      time.Duration
	Technical time.Duration
	Financial time.Duration
	Brief     time.Duration
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		ServerPort: getEnvInt("SERVER_PORT", 8000),

		FinnhubAPIKey: os.Getenv("FINNHUB_API_KEY"),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "investiq"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "investiq"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "investiq123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// LLM configuration (Groq serves the OpenAI chat-completions API)
		LLM: LLMConfig{
			Enabled:   getEnvOrDefault("LLM_ENABLED", "true") == "true",
			Endpoint:  getEnvOrDefault("GROQ_ENDPOINT", "https://api.groq.com/openai/v1"),
			APIKey:    getEnvOrDefault("GROQ_API_KEY", ""),
			Model:     getEnvOrDefault("GROQ_MODEL", "llama-3.3-70b-versatile"),
			MaxTokens: getEnvInt("GROQ_MAX_TOKENS", 2000),
		},

		Auth: AuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			JWTSecret:          getEnvOrDefault("JWT_SECRET", "dev-secret-key-change-in-production"),
			JWTExpiry:          getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
			FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
			CallbackURL:        getEnvOrDefault("OAUTH_CALLBACK_URL", "http://localhost:8000/api/v1/auth/google/callback"),
		},

		CacheTTL: CacheTTLConfig{
			Quote:     getEnvDuration("CACHE_TTL_QUOTE", 60*time.Second),
			News:      getEnvDuration("CACHE_TTL_NEWS", 30*time.Minute),
			Technical: getEnvDuration("CACHE_TTL_TECHNICAL", 5*time.Minute),
			Financial: getEnvDuration("CACHE_TTL_FINANCIAL", time.Hour),
			Brief:     getEnvDuration("CACHE_TTL_BRIEF", 2*time.Hour),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvDuration gets environment variable as a Go duration ("90s", "15m")
// or returns default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
