// Package books provides catalog reads and rating statistics.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	trending, err := repo.Trending(ctx, 6)
package books

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/booky/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Trending returns the catalog in insertion order, the order the sample grid
// was curated in.
func (r *Repository) Trending(ctx context.Context, limit int) ([]entities.Book, error) {
	var books []entities.Book
	query := r.db.WithContext(ctx).Order("created_at ASC, title ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&books).Error
	return books, err
}

// GetByID retrieves a book by ID. Returns gorm.ErrRecordNotFound when missing.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Search finds books whose title or author contains the query (case-insensitive).
// An empty query returns the whole catalog.
func (r *Repository) Search(ctx context.Context, q string, limit int) ([]entities.Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return r.Trending(ctx, limit)
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	var books []entities.Book
	query := r.db.WithContext(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("title ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&books).Error
	return books, err
}

// TopRated returns books ordered by rating, best first.
func (r *Repository) TopRated(ctx context.Context, limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("rating DESC, title ASC").Limit(limit).Find(&books).Error
	return books, err
}

// MostReviewed returns books ordered by review count, most reviewed first.
func (r *Repository) MostReviewed(ctx context.Context, limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("review_count DESC, title ASC").Limit(limit).Find(&books).Error
	return books, err
}

// Count returns the number of books in the catalog.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// RefreshStats recomputes a book's rating and review count from its reviews.
// Books without reviews keep their current values.
func (r *Repository) RefreshStats(ctx context.Context, bookID string) error {
	var stats struct {
		Count int
		Avg   float64
	}
	err := r.db.WithContext(ctx).Model(&entities.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Where("book_id = ?", bookID).
		Scan(&stats).Error
	if err != nil {
		return fmt.Errorf("aggregate reviews for book %s: %w", bookID, err)
	}
	if stats.Count == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ?", bookID).
		Updates(map[string]any{
			"rating":       roundRating(stats.Avg),
			"review_count": stats.Count,
		})
	if result.Error != nil {
		return fmt.Errorf("update stats for book %s: %w", bookID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// roundRating rounds to one decimal place, the precision the UI shows.
func roundRating(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
