// Package reviews provides review storage and the recent reviews feed.
//
// A user has at most one review per book; Upsert overwrites rating and text
// for an existing (user, book) review and keeps its creation time.
package reviews

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/booky/internal/entities"
)

// Repository handles all review database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertReview inserts or replaces the review for (userID, bookID).
// A nil text clears any previous text.
func (r *Repository) UpsertReview(ctx context.Context, userID, bookID string, rating int, text *string) error {
	now := time.Now()
	review := entities.Review{
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Omit("Book").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "text", "updated_at"}),
		}).
		Create(&review).Error
}

// Recent returns the newest reviews with their book. Reviews whose book no
// longer exists are skipped.
func (r *Repository) Recent(ctx context.Context, limit int) ([]entities.Review, error) {
	if limit <= 0 {
		limit = 10
	}

	var reviews []entities.Review
	err := r.db.WithContext(ctx).
		InnerJoins("Book").
		Order("reviews.created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

// ListForBook returns a book's reviews, newest first.
func (r *Repository) ListForBook(ctx context.Context, bookID string, limit int) ([]entities.Review, error) {
	var reviews []entities.Review
	query := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&reviews).Error
	return reviews, err
}

// Get returns the review for (userID, bookID), or gorm.ErrRecordNotFound.
func (r *Repository) Get(ctx context.Context, userID, bookID string) (*entities.Review, error) {
	var review entities.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}
