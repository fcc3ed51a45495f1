// Package userbooks provides reading status storage.
//
// A user has at most one status per book. Upsert overwrites the previous
// status for the same (user, book) pair; no history is kept.
package userbooks

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/booky/internal/entities"
)

// Repository handles all reading status database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new user books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertUserBook inserts or replaces the status for (userID, bookID).
func (r *Repository) UpsertUserBook(ctx context.Context, userID, bookID string, status entities.ReadingStatus) error {
	now := time.Now()
	row := entities.UserBook{
		UserID:    userID,
		BookID:    bookID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Omit("Book").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(&row).Error
}

// Get returns the status row for (userID, bookID), or gorm.ErrRecordNotFound.
func (r *Repository) Get(ctx context.Context, userID, bookID string) (*entities.UserBook, error) {
	var row entities.UserBook
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListForUser returns all of a user's books with the book preloaded,
// most recently updated first.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]entities.UserBook, error) {
	var rows []entities.UserBook
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// StatusesForUser maps book ID to the user's status for the given books.
// Used to mark buttons on book cards.
func (r *Repository) StatusesForUser(ctx context.Context, userID string, bookIDs []string) (map[string]entities.ReadingStatus, error) {
	out := make(map[string]entities.ReadingStatus, len(bookIDs))
	if userID == "" || len(bookIDs) == 0 {
		return out, nil
	}

	var rows []entities.UserBook
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id IN ?", userID, bookIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.BookID] = row.Status
	}
	return out, nil
}
