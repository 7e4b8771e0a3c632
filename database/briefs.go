package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"investiq/models"
)

// BriefRepository handles database operations for investment briefs
type BriefRepository struct {
	db *Database
}

// NewBriefRepository creates a new brief repository
func NewBriefRepository(db *Database) *BriefRepository {
	return &BriefRepository{db: db}
}

// Save persists a freshly generated brief. Rows are append-only so prior
// generations remain available through History.
func (r *BriefRepository) Save(brief *models.InvestmentBrief) error {
	content, err := json.Marshal(brief)
	if err != nil {
		return fmt.Errorf("failed to marshal brief: %w", err)
	}

	record := BriefRecord{
		Ticker:      strings.ToUpper(brief.Ticker),
		BriefType:   "full",
		Content:     string(content),
		GeneratedAt: brief.GeneratedAt,
	}
	if err := r.db.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save brief: %w", err)
	}
	return nil
}

// Latest returns the most recent brief for a ticker with the cached flag
// set, or ErrNotFound if none exists.
func (r *BriefRepository) Latest(ticker string) (*models.InvestmentBrief, error) {
	var record BriefRecord
	err := r.db.db.Where("ticker = ?", strings.ToUpper(ticker)).
		Order("generated_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load brief: %w", err)
	}

	var brief models.InvestmentBrief
	if err := json.Unmarshal([]byte(record.Content), &brief); err != nil {
		return nil, fmt.Errorf("failed to decode stored brief: %w", err)
	}
	brief.Cached = true
	brief.GeneratedAt = record.GeneratedAt
	return &brief, nil
}

// History lists prior generations for a ticker, newest first.
func (r *BriefRepository) History(ticker string, limit int) ([]BriefRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []BriefRecord
	err := r.db.db.Where("ticker = ?", strings.ToUpper(ticker)).
		Order("generated_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list brief history: %w", err)
	}
	return records, nil
}
