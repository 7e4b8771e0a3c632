// Package cache provides the market-data TTL cache: a relational store
// keyed by (ticker, data kind) with per-entry expiry, optionally fronted
// by Redis for hot payloads. A cache failure is never fatal; callers fall
// back to a direct upstream fetch.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// ErrMiss is returned when a key is absent or its entry has expired.
var ErrMiss = errors.New("cache miss")

// Store is a keyed payload store backed by a relational table. At most
// one live row exists per (ticker, kind); Put overwrites, never appends.
type Store struct {
	db *sql.DB
}

// OpenStore connects to PostgreSQL and returns a Store with a tuned pool.
func OpenStore(host, port, dbname, user, password string) (*Store, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache store: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an existing connection. Used by tests.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the cache table if it does not exist. The DDL is
// shared between PostgreSQL and the SQLite used in tests.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS market_cache (
			ticker     TEXT   NOT NULL,
			data_kind  TEXT   NOT NULL,
			payload    TEXT   NOT NULL,
			fetched_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			PRIMARY KEY (ticker, data_kind)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create market_cache table: %w", err)
	}
	return nil
}

// Get loads the payload for (ticker, kind) into dest. Returns ErrMiss
// when no row exists or the stored expiry has passed.
func (s *Store) Get(ctx context.Context, ticker, kind string, dest interface{}) error {
	var payload string
	var expiresAt int64

	row := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM market_cache WHERE ticker = $1 AND data_kind = $2`,
		ticker, kind,
	)
	if err := row.Scan(&payload, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMiss
		}
		return fmt.Errorf("cache read failed: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		return ErrMiss
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return fmt.Errorf("failed to decode cached payload: %w", err)
	}
	return nil
}

// Put upserts the payload for (ticker, kind) with the given TTL. Last
// writer wins; no stronger ordering is provided or needed.
func (s *Store) Put(ctx context.Context, ticker, kind string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO market_cache (ticker, data_kind, payload, fetched_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticker, data_kind) DO UPDATE SET
			payload    = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at,
			expires_at = EXCLUDED.expires_at
	`, ticker, kind, string(payload), now, now+int64(ttl.Seconds()))
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed. Expiry is
// otherwise lazy; this is periodic housekeeping, not correctness.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM market_cache WHERE expires_at <= $1`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("cache purge failed: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
