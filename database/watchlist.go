package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicateTicker is returned when a ticker is already on the watchlist.
var ErrDuplicateTicker = errors.New("ticker already in watchlist")

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// WatchlistRepository handles database operations for the watchlist
type WatchlistRepository struct {
	db *Database
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db *Database) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add inserts a new watchlist item. The ticker is normalized to upper
// case; adding a ticker that is already present returns ErrDuplicateTicker.
func (r *WatchlistRepository) Add(item *WatchlistItem) error {
	item.Ticker = strings.ToUpper(item.Ticker)

	var count int64
	if err := r.db.db.Model(&WatchlistItem{}).Where("ticker = ?", item.Ticker).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check watchlist: %w", err)
	}
	if count > 0 {
		return ErrDuplicateTicker
	}

	if err := r.db.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to add watchlist item: %w", err)
	}
	return nil
}

// List returns watchlist items newest first, optionally filtered by category.
func (r *WatchlistRepository) List(category string) ([]WatchlistItem, error) {
	var items []WatchlistItem
	query := r.db.db.Order("added_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return items, nil
}

// Get returns a single watchlist item by ticker.
func (r *WatchlistRepository) Get(ticker string) (*WatchlistItem, error) {
	var item WatchlistItem
	err := r.db.db.Where("ticker = ?", strings.ToUpper(ticker)).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist item: %w", err)
	}
	return &item, nil
}

// Update changes category and/or notes on an existing item. Empty
// strings leave the corresponding field untouched.
func (r *WatchlistRepository) Update(ticker, category, notes string) (*WatchlistItem, error) {
	item, err := r.Get(ticker)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if category != "" {
		updates["category"] = category
	}
	if notes != "" {
		updates["notes"] = notes
	}
	if len(updates) > 0 {
		if err := r.db.db.Model(item).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update watchlist item: %w", err)
		}
	}
	return item, nil
}

// Remove deletes a ticker from the watchlist. Removing an absent ticker
// returns ErrNotFound.
func (r *WatchlistRepository) Remove(ticker string) error {
	res := r.db.db.Where("ticker = ?", strings.ToUpper(ticker)).Delete(&WatchlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove watchlist item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Categories returns the distinct non-empty categories in use, sorted.
func (r *WatchlistRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.db.Model(&WatchlistItem{}).
		Where("category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
