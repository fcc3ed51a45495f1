package http

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/entities"
	"github.com/mrlokans/booky/internal/web"
)

const (
	trendingLimit = 6
	searchLimit   = 24
	listLimit     = 6
)

// UIController serves the server-rendered pages.
type UIController struct {
	books     BookCatalog
	shelves   ShelfReader
	community CommunityLoader
	renderer  *web.Renderer
}

func NewUIController(books BookCatalog, shelves ShelfReader, community CommunityLoader, renderer *web.Renderer) *UIController {
	return &UIController{
		books:     books,
		shelves:   shelves,
		community: community,
		renderer:  renderer,
	}
}

// HomePage shows the hero and the trending grid.
func (controller *UIController) HomePage(c *gin.Context) {
	books, err := controller.books.Trending(c.Request.Context(), trendingLimit)
	if err != nil {
		controller.loadFailed(c, err, "trending books")
		return
	}

	controller.renderer.HTML(c, http.StatusOK, web.PageIndex, gin.H{
		"Cards": cardsFor(c, controller.shelves, books),
	})
}

// DiscoverPage lists the catalog, filtered by the navbar search box.
func (controller *UIController) DiscoverPage(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	books, err := controller.books.Search(c.Request.Context(), query, searchLimit)
	if err != nil {
		controller.loadFailed(c, err, "search")
		return
	}

	data := gin.H{
		"Title":  "Discover",
		"Active": "discover",
		"Query":  query,
		"Cards":  cardsFor(c, controller.shelves, books),
	}
	if query != "" {
		data["Empty"] = fmt.Sprintf("No books match %q.", query)
	}
	controller.renderer.HTML(c, http.StatusOK, web.PageDiscover, data)
}

// MyBooksPage shows the signed-in reader's shelves. The route sits behind
// RequireAuth.
func (controller *UIController) MyBooksPage(c *gin.Context) {
	items, err := controller.shelves.ListForUser(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		controller.loadFailed(c, err, "my books")
		return
	}

	controller.renderer.HTML(c, http.StatusOK, web.PageMyBooks, gin.H{
		"Title":   "My Books",
		"Active":  "my-books",
		"Shelves": web.Shelves(items),
	})
}

// ListsPage shows the curated lists.
func (controller *UIController) ListsPage(c *gin.Context) {
	ctx := c.Request.Context()
	topRated, err := controller.books.TopRated(ctx, listLimit)
	if err != nil {
		controller.loadFailed(c, err, "top rated")
		return
	}
	mostReviewed, err := controller.books.MostReviewed(ctx, listLimit)
	if err != nil {
		controller.loadFailed(c, err, "most reviewed")
		return
	}

	lists := []web.List{
		{Name: "Top Rated", Description: "The highest rated books in the catalog.", Cards: cardsFor(c, controller.shelves, topRated)},
		{Name: "Most Reviewed", Description: "The books readers talk about the most.", Cards: cardsFor(c, controller.shelves, mostReviewed)},
	}
	controller.renderer.HTML(c, http.StatusOK, web.PageLists, gin.H{
		"Title":  "Lists",
		"Active": "lists",
		"Lists":  lists,
	})
}

// CommunityPage shows recent reviews, top readers and community stats.
// Sections that fail to load are rendered empty.
func (controller *UIController) CommunityPage(c *gin.Context) {
	controller.renderer.HTML(c, http.StatusOK, web.PageCommunity, gin.H{
		"Title":  "Community",
		"Active": "community",
		"Page":   controller.community.Load(c.Request.Context()),
	})
}

// NotFoundPage handles every unknown route.
func (controller *UIController) NotFoundPage(c *gin.Context) {
	if auth.IsAPIRequest(c) {
		respondNotFound(c, "route")
		return
	}
	log.Printf("404 Error: User attempted to access non-existent route: %s", c.Request.URL.Path)
	controller.renderer.HTML(c, http.StatusNotFound, web.PageNotFound, gin.H{"Title": "Not Found"})
}

func (controller *UIController) loadFailed(c *gin.Context, err error, what string) {
	log.Printf("Failed to load %s: %v", what, err)
	c.String(http.StatusInternalServerError, "Error loading books")
}

// cardsFor pairs books with the signed-in reader's statuses. A failed status
// lookup still renders the books, just without shelf markers.
func cardsFor(c *gin.Context, shelves ShelfReader, books []entities.Book) []web.BookCard {
	userID := auth.GetUserID(c)
	if userID == "" || shelves == nil || len(books) == 0 {
		return web.Cards(books, nil)
	}

	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	statuses, err := shelves.StatusesForUser(c.Request.Context(), userID, ids)
	if err != nil {
		log.Printf("Failed to load statuses for user %s: %v", userID, err)
		statuses = nil
	}
	return web.Cards(books, statuses)
}
