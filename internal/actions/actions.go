// Package actions implements the two write operations a reader can perform
// on a book: putting it on one of their shelves and reviewing it.
//
// Both operations share one contract. Without a session nothing is written
// and the reader is told to sign in. With a session exactly one upsert keyed
// by (reader, book) is issued; the store decides conflicts and the last write
// wins. The outcome is announced through the Notifier and also returned as a
// Result so that callers can present it their own way.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/entities"
	"github.com/mrlokans/booky/internal/notify"
)

type Kind string

const (
	KindSuccess      Kind = "success"
	KindAuthRequired Kind = "auth_required"
	KindInvalid      Kind = "invalid"
	KindFailed       Kind = "failed"
)

// Result is the outcome of one action call. Err is set for KindInvalid and
// KindFailed only.
type Result struct {
	Kind         Kind                `json:"result"`
	Notification notify.Notification `json:"notification"`
	Err          error               `json:"-"`
}

func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

var ErrInvalidInput = errors.New("invalid input")

// SessionSource yields the signed-in reader, or nil.
type SessionSource interface {
	Current(ctx context.Context) *auth.Session
}

type UserBookStore interface {
	UpsertUserBook(ctx context.Context, userID, bookID string, status entities.ReadingStatus) error
}

type ReviewStore interface {
	UpsertReview(ctx context.Context, userID, bookID string, rating int, text *string) error
}

type Auditor interface {
	LogBookStatus(userID, bookID string, status entities.ReadingStatus, err error)
	LogReview(userID, bookID string, rating int, err error)
}

// StatsRefresher schedules recomputation of a book's rating and review count.
type StatsRefresher interface {
	EnqueueRefreshBookStats(ctx context.Context, bookID string) error
}

// Dependencies wires a Service. Auditor and Stats are optional.
type Dependencies struct {
	Sessions  SessionSource
	UserBooks UserBookStore
	Reviews   ReviewStore
	Notifier  notify.Notifier
	Auditor   Auditor
	Stats     StatsRefresher
}

type Service struct {
	deps     Dependencies
	validate *validator.Validate
	inFlight atomic.Int64
}

func NewService(deps Dependencies) *Service {
	return &Service{
		deps:     deps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Loading reports whether any write issued through the service is still in flight.
func (s *Service) Loading() bool {
	return s.inFlight.Load() > 0
}

type statusInput struct {
	BookID string                 `validate:"required,max=64"`
	Status entities.ReadingStatus `validate:"required,oneof=read reading want_to_read"`
}

type reviewInput struct {
	BookID string `validate:"required,max=64"`
	Rating int    `validate:"min=1,max=5"`
	Text   string `validate:"max=5000"`
}

// AddToBooks puts a book on one of the reader's shelves.
func (s *Service) AddToBooks(ctx context.Context, bookID string, status entities.ReadingStatus) Result {
	session := s.deps.Sessions.Current(ctx)
	if session == nil {
		return s.finish(ctx, Result{
			Kind: KindAuthRequired,
			Notification: destructive("Authentication required",
				"Please sign in to add books to your library."),
		})
	}

	if err := s.validate.Struct(statusInput{BookID: bookID, Status: status}); err != nil {
		res := invalid(err)
		s.auditStatus(session.UserID, bookID, status, res.Err)
		return s.finish(ctx, res)
	}

	err := s.track(func() error {
		return s.deps.UserBooks.UpsertUserBook(ctx, session.UserID, bookID, status)
	})
	s.auditStatus(session.UserID, bookID, status, err)
	if err != nil {
		log.Printf("Error adding book %s for user %s: %v", bookID, session.UserID, err)
		return s.finish(ctx, Result{
			Kind:         KindFailed,
			Notification: destructive("Error", "Failed to add book. Please try again."),
			Err:          fmt.Errorf("add to books: %w", err),
		})
	}

	return s.finish(ctx, Result{
		Kind: KindSuccess,
		Notification: notify.Notification{
			Title:       "Book added!",
			Description: fmt.Sprintf("Book added to your %s list.", status.Label()),
			Variant:     notify.VariantDefault,
		},
	})
}

// AddReview writes or replaces the reader's review of a book. Blank text is
// stored as no text.
func (s *Service) AddReview(ctx context.Context, bookID string, rating int, text string) Result {
	session := s.deps.Sessions.Current(ctx)
	if session == nil {
		return s.finish(ctx, Result{
			Kind:         KindAuthRequired,
			Notification: destructive("Authentication required", "Please sign in to write reviews."),
		})
	}

	if err := s.validate.Struct(reviewInput{BookID: bookID, Rating: rating, Text: text}); err != nil {
		res := invalid(err)
		s.auditReview(session.UserID, bookID, rating, res.Err)
		return s.finish(ctx, res)
	}

	var body *string
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		body = &trimmed
	}

	err := s.track(func() error {
		return s.deps.Reviews.UpsertReview(ctx, session.UserID, bookID, rating, body)
	})
	s.auditReview(session.UserID, bookID, rating, err)
	if err != nil {
		log.Printf("Error adding review of %s for user %s: %v", bookID, session.UserID, err)
		return s.finish(ctx, Result{
			Kind:         KindFailed,
			Notification: destructive("Error", "Failed to add review. Please try again."),
			Err:          fmt.Errorf("add review: %w", err),
		})
	}

	if s.deps.Stats != nil {
		if err := s.deps.Stats.EnqueueRefreshBookStats(ctx, bookID); err != nil {
			log.Printf("Failed to schedule stats refresh for book %s: %v", bookID, err)
		}
	}

	return s.finish(ctx, Result{
		Kind: KindSuccess,
		Notification: notify.Notification{
			Title:       "Review added!",
			Description: "Your review has been published.",
			Variant:     notify.VariantDefault,
		},
	})
}

// track runs one store write while counting it as in flight.
func (s *Service) track(write func() error) error {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	return write()
}

func (s *Service) finish(ctx context.Context, res Result) Result {
	if s.deps.Notifier != nil {
		s.deps.Notifier.Notify(ctx, res.Notification)
	}
	return res
}

func (s *Service) auditStatus(userID, bookID string, status entities.ReadingStatus, err error) {
	if s.deps.Auditor != nil {
		s.deps.Auditor.LogBookStatus(userID, bookID, status, err)
	}
}

func (s *Service) auditReview(userID, bookID string, rating int, err error) {
	if s.deps.Auditor != nil {
		s.deps.Auditor.LogReview(userID, bookID, rating, err)
	}
}

func destructive(title, description string) notify.Notification {
	return notify.Notification{Title: title, Description: description, Variant: notify.VariantDestructive}
}

func invalid(err error) Result {
	return Result{
		Kind:         KindInvalid,
		Notification: destructive("Invalid input", describe(err)),
		Err:          fmt.Errorf("%w: %v", ErrInvalidInput, err),
	}
}

// describe turns the first validation failure into a sentence for the reader.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check your input and try again."
	}
	switch verrs[0].Field() {
	case "Status":
		return "Status must be one of read, reading or want_to_read."
	case "Rating":
		return "Rating must be between 1 and 5 stars."
	case "Text":
		return "Review text is too long."
	case "BookID":
		return "Unknown book."
	}
	return "Please check your input and try again."
}
