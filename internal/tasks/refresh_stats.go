package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// BookStatsRefresher recomputes a book's rating and review count from its reviews.
type BookStatsRefresher interface {
	RefreshStats(ctx context.Context, bookID string) error
}

// RefreshBookStatsTask recomputes the aggregate rating of one book after a
// review was written.
type RefreshBookStatsTask struct {
	BookID string `json:"book_id"`
}

// Config returns the queue configuration for book stats tasks.
func (t RefreshBookStatsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_book_stats",
		MaxAttempts: 3,
		Backoff:     10 * time.Second,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshBookStatsProcessor creates a processor function for RefreshBookStatsTask.
func RefreshBookStatsProcessor(refresher BookStatsRefresher) backlite.QueueProcessor[RefreshBookStatsTask] {
	return func(ctx context.Context, task RefreshBookStatsTask) error {
		if refresher == nil {
			return fmt.Errorf("book stats refresher not configured")
		}
		if task.BookID == "" {
			return fmt.Errorf("refresh book stats: missing book id")
		}

		if err := refresher.RefreshStats(ctx, task.BookID); err != nil {
			return fmt.Errorf("refresh stats for book %s: %w", task.BookID, err)
		}

		log.Printf("[TASK] Refreshed rating stats for book %s", task.BookID)
		return nil
	}
}

// NewRefreshBookStatsQueue creates a backlite queue for book stats tasks.
func NewRefreshBookStatsQueue(refresher BookStatsRefresher) backlite.Queue {
	return backlite.NewQueue(RefreshBookStatsProcessor(refresher))
}
