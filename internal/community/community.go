// Package community assembles the community page: the newest reviews with
// their book and author, the most active readers and a few headline numbers.
package community

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/booky/internal/database/profiles"
	"github.com/mrlokans/booky/internal/entities"
)

// UnknownUsername is shown for reviews whose author has no profile.
const UnknownUsername = "Unknown User"

// TrendingTopics is the fixed list of discussion tags.
var TrendingTopics = []string{"#SciFi", "#Romance", "#Classics", "#Fantasy", "#NonFiction"}

type ReviewSource interface {
	Recent(ctx context.Context, limit int) ([]entities.Review, error)
}

type ProfileSource interface {
	ByIDs(ctx context.Context, ids []string) ([]entities.Profile, error)
	ReaderStats(ctx context.Context, limit int) ([]profiles.ReaderStats, error)
}

type CatalogCounter interface {
	Count(ctx context.Context) (int64, error)
}

type Reviewer struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

type BookSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	CoverURL string `json:"cover_url"`
}

// ReviewCard is a review ready for display.
type ReviewCard struct {
	ID         string      `json:"id"`
	Rating     int         `json:"rating"`
	Text       string      `json:"text"`
	CreatedAt  time.Time   `json:"created_at"`
	User       Reviewer    `json:"user"`
	Book       BookSummary `json:"book"`
	LikesCount int         `json:"likes_count"`
}

type Reader struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	BooksReadCount int    `json:"books_read_count"`
	ReviewsCount   int    `json:"reviews_count"`
}

type Stats struct {
	TotalReviews  int   `json:"total_reviews"`
	ActiveReaders int   `json:"active_readers"`
	BooksTracked  int64 `json:"books_tracked"`
}

type Page struct {
	Reviews        []ReviewCard `json:"reviews"`
	TopReaders     []Reader     `json:"top_readers"`
	Stats          Stats        `json:"stats"`
	TrendingTopics []string     `json:"trending_topics"`
}

type Config struct {
	ReviewsLimit    int
	TopReadersLimit int
}

type Service struct {
	reviews  ReviewSource
	profiles ProfileSource
	catalog  CatalogCounter
	config   Config
}

func NewService(reviews ReviewSource, profiles ProfileSource, catalog CatalogCounter, cfg Config) *Service {
	if cfg.ReviewsLimit <= 0 {
		cfg.ReviewsLimit = 10
	}
	if cfg.TopReadersLimit <= 0 {
		cfg.TopReadersLimit = 6
	}
	return &Service{reviews: reviews, profiles: profiles, catalog: catalog, config: cfg}
}

// Load builds the community page. A failing step is logged and leaves its
// part of the page empty; Load itself never fails.
func (s *Service) Load(ctx context.Context) *Page {
	page := &Page{
		Reviews:        []ReviewCard{},
		TopReaders:     []Reader{},
		TrendingTopics: append([]string(nil), TrendingTopics...),
	}

	var g errgroup.Group

	g.Go(func() error {
		page.Reviews = s.loadReviews(ctx)
		return nil
	})

	g.Go(func() error {
		stats, err := s.profiles.ReaderStats(ctx, s.config.TopReadersLimit)
		if err != nil {
			log.Printf("Error fetching top readers: %v", err)
			return nil
		}
		page.TopReaders = readersFrom(stats)
		return nil
	})

	g.Go(func() error {
		count, err := s.catalog.Count(ctx)
		if err != nil {
			log.Printf("Error counting books: %v", err)
			return nil
		}
		page.Stats.BooksTracked = count
		return nil
	})

	_ = g.Wait()

	page.Stats.TotalReviews = len(page.Reviews)
	page.Stats.ActiveReaders = len(page.TopReaders)
	return page
}

func (s *Service) loadReviews(ctx context.Context) []ReviewCard {
	reviews, err := s.reviews.Recent(ctx, s.config.ReviewsLimit)
	if err != nil {
		log.Printf("Error fetching reviews: %v", err)
		return []ReviewCard{}
	}

	authors, err := s.profiles.ByIDs(ctx, reviewerIDs(reviews))
	if err != nil {
		// Reviews are still shown, attributed to the placeholder author.
		log.Printf("Error fetching profiles: %v", err)
		authors = nil
	}

	return Join(reviews, authors)
}

// reviewerIDs returns the distinct author IDs in first-seen order.
func reviewerIDs(reviews []entities.Review) []string {
	seen := make(map[string]struct{}, len(reviews))
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	return ids
}

// Join attaches an author to every review, keeping the review order.
// Reviews without a matching profile get the UnknownUsername placeholder.
func Join(reviews []entities.Review, authors []entities.Profile) []ReviewCard {
	byID := make(map[string]entities.Profile, len(authors))
	for _, p := range authors {
		byID[p.ID] = p
	}

	cards := make([]ReviewCard, 0, len(reviews))
	for _, r := range reviews {
		user := Reviewer{ID: r.UserID, Username: UnknownUsername}
		if p, ok := byID[r.UserID]; ok {
			user = Reviewer{ID: p.ID, Username: p.Username, ProfilePicture: p.ProfilePicture}
		}
		cards = append(cards, ReviewCard{
			ID:        r.ID,
			Rating:    r.Rating,
			Text:      r.Body(),
			CreatedAt: r.CreatedAt,
			User:      user,
			Book: BookSummary{
				ID:       r.Book.ID,
				Title:    r.Book.Title,
				Author:   r.Book.Author,
				CoverURL: r.Book.CoverURL,
			},
		})
	}
	return cards
}

func readersFrom(stats []profiles.ReaderStats) []Reader {
	readers := make([]Reader, 0, len(stats))
	for _, st := range stats {
		readers = append(readers, Reader{
			ID:             st.ID,
			Username:       st.Username,
			Bio:            st.Bio,
			ProfilePicture: st.ProfilePicture,
			BooksReadCount: st.BooksReadCount,
			ReviewsCount:   st.ReviewsCount,
		})
	}
	return readers
}

// Initials returns the first two characters of a username in upper case,
// or "UN" for an empty name.
func Initials(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "UN"
	}
	if utf8.RuneCountInString(username) <= 2 {
		return strings.ToUpper(username)
	}
	runes := []rune(username)
	return strings.ToUpper(string(runes[:2]))
}
