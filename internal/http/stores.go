package http

import (
	"context"

	"github.com/mrlokans/booky/internal/actions"
	"github.com/mrlokans/booky/internal/community"
	"github.com/mrlokans/booky/internal/entities"
)

// This file collects the store and service interfaces the controllers use.
// Each controller depends only on the methods it calls.

// BookCatalog provides read access to the book catalog.
type BookCatalog interface {
	Trending(ctx context.Context, limit int) ([]entities.Book, error)
	GetByID(ctx context.Context, id string) (*entities.Book, error)
	Search(ctx context.Context, q string, limit int) ([]entities.Book, error)
	TopRated(ctx context.Context, limit int) ([]entities.Book, error)
	MostReviewed(ctx context.Context, limit int) ([]entities.Book, error)
}

// ShelfReader provides read access to a user's reading statuses.
type ShelfReader interface {
	ListForUser(ctx context.Context, userID string) ([]entities.UserBook, error)
	StatusesForUser(ctx context.Context, userID string, bookIDs []string) (map[string]entities.ReadingStatus, error)
}

// ReviewLister lists the reviews of one book.
type ReviewLister interface {
	ListForBook(ctx context.Context, bookID string, limit int) ([]entities.Review, error)
}

// ActionRunner performs the signed-in user's writes.
type ActionRunner interface {
	AddToBooks(ctx context.Context, bookID string, status entities.ReadingStatus) actions.Result
	AddReview(ctx context.Context, bookID string, rating int, text string) actions.Result
}

// WriteMonitor reports whether reader writes are still being stored.
type WriteMonitor interface {
	Loading() bool
}

// CommunityLoader assembles the community page.
type CommunityLoader interface {
	Load(ctx context.Context) *community.Page
}

// ActivityReader lists a user's audit trail, newest first.
type ActivityReader interface {
	GetEvents(ctx context.Context, userID string, limit, offset int) ([]entities.AuditEvent, int64, error)
}
