package database

import "time"

// WatchlistItem is a tracked ticker. Ticker is unique per deployment
// (single-user scale); duplicates are rejected at add time.
type WatchlistItem struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Ticker   string    `gorm:"size:10;uniqueIndex;not null" json:"ticker"`
	Name     string    `gorm:"size:255" json:"name,omitempty"`
	Category string    `gorm:"size:100;index" json:"category,omitempty"`
	Notes    string    `gorm:"type:text" json:"notes,omitempty"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`
}

// TableName specifies the table name for WatchlistItem
func (WatchlistItem) TableName() string {
	return "watchlist"
}

// BriefRecord is one generated investment brief. Rows are append-only;
// the newest row per ticker is the authoritative brief and older rows
// form the generation history.
type BriefRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Ticker      string    `gorm:"size:10;index;not null" json:"ticker"`
	BriefType   string    `gorm:"size:50;default:full" json:"brief_type"`
	Content     string    `gorm:"type:text;not null" json:"content"` // InvestmentBrief JSON
	GeneratedAt time.Time `gorm:"index;autoCreateTime" json:"generated_at"`
}

// TableName specifies the table name for BriefRecord
func (BriefRecord) TableName() string {
	return "briefs"
}

// NewsRecord caches fetched articles plus the AI summary for a ticker.
// Superseded by a newer row, never mutated.
type NewsRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Ticker    string    `gorm:"size:10;index;not null" json:"ticker"`
	Articles  string    `gorm:"type:text;not null" json:"articles"` // []NewsArticle JSON
	Summary   string    `gorm:"type:text" json:"summary,omitempty"`
	Sentiment string    `gorm:"size:20" json:"sentiment,omitempty"`
	FetchedAt time.Time `gorm:"index;autoCreateTime" json:"fetched_at"`
}

// TableName specifies the table name for NewsRecord
func (NewsRecord) TableName() string {
	return "news_cache"
}

// User is an account created through Google OAuth.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GoogleID  string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Name      string    `gorm:"size:255" json:"name,omitempty"`
	Picture   string    `gorm:"size:512" json:"picture,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
