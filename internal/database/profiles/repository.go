// Package profiles provides public profile reads and reader activity
// aggregates for the community page.
package profiles

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/booky/internal/entities"
)

// ReaderStats is a profile together with its reading activity.
type ReaderStats struct {
	ID             string
	Username       string
	Bio            string
	ProfilePicture string
	BooksReadCount int
	ReviewsCount   int
}

// Repository handles all profile database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new profiles repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a profile by ID. Returns gorm.ErrRecordNotFound when missing.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Profile, error) {
	var profile entities.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ByIDs returns the profiles whose ID is in ids. Unknown IDs are ignored,
// so the result may be shorter than ids. An empty ids slice issues no query.
func (r *Repository) ByIDs(ctx context.Context, ids []string) ([]entities.Profile, error) {
	if len(ids) == 0 {
		return []entities.Profile{}, nil
	}

	var profiles []entities.Profile
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error
	return profiles, err
}

// ReaderStats returns up to limit profiles with the number of books they
// marked as read and the number of reviews they wrote, most active first.
func (r *Repository) ReaderStats(ctx context.Context, limit int) ([]ReaderStats, error) {
	var stats []ReaderStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT * FROM (
			SELECT
				p.id,
				p.username,
				p.bio,
				p.profile_picture,
				(SELECT COUNT(*) FROM user_books ub WHERE ub.user_id = p.id AND ub.status = ?) AS books_read_count,
				(SELECT COUNT(*) FROM reviews rv WHERE rv.user_id = p.id) AS reviews_count
			FROM profiles p
		) AS activity
		ORDER BY (books_read_count + reviews_count) DESC, username ASC
		LIMIT ?
	`, entities.StatusRead, limit).Scan(&stats).Error
	return stats, err
}
