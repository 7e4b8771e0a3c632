package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// UserRepository handles database operations for OAuth users
type UserRepository struct {
	db *Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *Database) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate looks a user up by Google account id, creating the row on
// first login and refreshing profile data on subsequent ones.
func (r *UserRepository) GetOrCreate(googleID, email, name, picture string) (*User, error) {
	var user User
	err := r.db.db.Where("google_id = ?", googleID).First(&user).Error
	if err == nil {
		user.LastLogin = time.Now().UTC()
		if name != "" {
			user.Name = name
		}
		if picture != "" {
			user.Picture = picture
		}
		if err := r.db.db.Save(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = User{
		GoogleID:  googleID,
		Email:     email,
		Name:      name,
		Picture:   picture,
		LastLogin: time.Now().UTC(),
	}
	if err := r.db.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// ByID returns a user by primary key, or ErrNotFound.
func (r *UserRepository) ByID(id int64) (*User, error) {
	var user User
	err := r.db.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
