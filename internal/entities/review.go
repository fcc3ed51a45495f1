package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_user_book" json:"user_id"`
	BookID    string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_user_book;index" json:"book_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Text      *string   `gorm:"type:text" json:"text"`
	Book      Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Body returns the review text, or "" when the review has none.
func (r Review) Body() string {
	if r.Text == nil {
		return ""
	}
	return *r.Text
}
