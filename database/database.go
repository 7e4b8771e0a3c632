// Package database provides connection management and repositories for
// the InvestIQ research backend.
//
// This package includes:
//   - Database connection management using GORM and PostgreSQL
//   - Persistent models (watchlist, briefs, news, users)
//   - Per-domain repositories with explicit error values
//
// The market-data TTL cache table is managed separately by the cache
// package over raw database/sql.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// FromGorm wraps an existing GORM connection. Used by tests to run the
// repositories against in-memory SQLite.
func FromGorm(db *gorm.DB) *Database {
	return &Database{db: db}
}

// InitSchema performs auto-migration for all persistent models.
func (d *Database) InitSchema() error {
	if err := d.db.AutoMigrate(
		&WatchlistItem{},
		&BriefRecord{},
		&NewsRecord{},
		&User{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
