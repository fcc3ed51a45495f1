package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/entities"
	"github.com/mrlokans/booky/internal/web"
)

const (
	maxBooksLimit   = 100
	bookReviewLimit = 20
)

// BookDetailResponse is a book with its latest reviews and, for a signed-in
// reader, their shelf.
type BookDetailResponse struct {
	Book    *entities.Book         `json:"book"`
	Reviews []entities.Review      `json:"reviews"`
	Status  entities.ReadingStatus `json:"status,omitempty"`
}

type BooksController struct {
	books   BookCatalog
	shelves ShelfReader
	reviews ReviewLister
}

func NewBooksController(books BookCatalog, shelves ShelfReader, reviews ReviewLister) *BooksController {
	return &BooksController{
		books:   books,
		shelves: shelves,
		reviews: reviews,
	}
}

// ListBooks returns the catalog, optionally filtered by ?q= and capped by ?limit=.
func (controller *BooksController) ListBooks(c *gin.Context) {
	limit, ok := parseLimit(c, searchLimit, maxBooksLimit)
	if !ok {
		return
	}

	books, err := controller.books.Search(c.Request.Context(), strings.TrimSpace(c.Query("q")), limit)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	cards := cardsFor(c, controller.shelves, books)
	c.JSON(http.StatusOK, ListResponse{Data: cards, Count: len(cards)})
}

// GetBook returns one book with its reviews.
func (controller *BooksController) GetBook(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	book, err := controller.books.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}

	resp := BookDetailResponse{Book: book, Reviews: []entities.Review{}}
	if controller.reviews != nil {
		reviews, err := controller.reviews.ListForBook(ctx, id, bookReviewLimit)
		if err != nil {
			respondInternalError(c, err, "list reviews")
			return
		}
		if reviews != nil {
			resp.Reviews = reviews
		}
	}
	if cards := cardsFor(c, controller.shelves, []entities.Book{*book}); len(cards) == 1 {
		resp.Status = cards[0].Status
	}

	c.JSON(http.StatusOK, resp)
}

// MyBooks returns the signed-in reader's shelves. The route sits behind RequireAuth.
func (controller *BooksController) MyBooks(c *gin.Context) {
	items, err := controller.shelves.ListForUser(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "my books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelves": web.Shelves(items), "count": len(items)})
}
