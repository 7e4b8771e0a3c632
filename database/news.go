package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"investiq/models"
)

// NewsRepository handles database operations for cached news summaries
type NewsRepository struct {
	db *Database
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(db *Database) *NewsRepository {
	return &NewsRepository{db: db}
}

// Save persists a fetched news summary. A new row supersedes prior ones;
// the old rows stay until purged with the rest of the stale cache.
func (r *NewsRepository) Save(summary *models.NewsSummary) error {
	articles, err := json.Marshal(summary.Articles)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}

	sentiment := ""
	if summary.OverallSentiment != nil {
		sentiment = string(*summary.OverallSentiment)
	}

	record := NewsRecord{
		Ticker:    strings.ToUpper(summary.Ticker),
		Articles:  string(articles),
		Summary:   summary.AISummary,
		Sentiment: sentiment,
		FetchedAt: summary.FetchedAt,
	}
	if err := r.db.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save news summary: %w", err)
	}
	return nil
}

// Latest returns the most recent news summary for a ticker no older than
// maxAge, or ErrNotFound.
func (r *NewsRepository) Latest(ticker string, maxAge time.Duration) (*models.NewsSummary, error) {
	var record NewsRecord
	err := r.db.db.Where("ticker = ? AND fetched_at > ?", strings.ToUpper(ticker), time.Now().Add(-maxAge)).
		Order("fetched_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load news summary: %w", err)
	}

	summary := models.NewsSummary{
		Ticker:    record.Ticker,
		AISummary: record.Summary,
		FetchedAt: record.FetchedAt,
	}
	if record.Sentiment != "" {
		s := models.Sentiment(record.Sentiment)
		summary.OverallSentiment = &s
	}
	if err := json.Unmarshal([]byte(record.Articles), &summary.Articles); err != nil {
		return nil, fmt.Errorf("failed to decode stored articles: %w", err)
	}
	return &summary, nil
}
