package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadingStatus is the shelf a user keeps a book on.
type ReadingStatus string

const (
	StatusRead       ReadingStatus = "read"
	StatusReading    ReadingStatus = "reading"
	StatusWantToRead ReadingStatus = "want_to_read"
)

// ReadingStatuses lists the statuses in display order.
var ReadingStatuses = []ReadingStatus{StatusWantToRead, StatusReading, StatusRead}

// Valid reports whether s is one of the known statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusRead, StatusReading, StatusWantToRead:
		return true
	}
	return false
}

// Label returns the status with underscores replaced by spaces ("want to read").
func (s ReadingStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

type Book struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"index;size:512" json:"title"`
	Author      string    `gorm:"index;size:256" json:"author"`
	CoverURL    string    `gorm:"size:2048" json:"cover_url,omitempty"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Tag         string    `gorm:"size:50" json:"tag,omitempty"` // e.g. "trending", "new", "bestseller"
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// UserBook is a user's reading status for a book. One row per (user, book);
// writing a new status overwrites the previous one.
type UserBook struct {
	UserID    string        `gorm:"primaryKey;size:36" json:"user_id"`
	BookID    string        `gorm:"primaryKey;size:36" json:"book_id"`
	Status    ReadingStatus `gorm:"size:20;not null" json:"status"`
	Book      Book          `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
