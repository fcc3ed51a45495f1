package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booky/internal/community"
	"github.com/mrlokans/booky/internal/entities"
)

func TestUIController_HomePage(t *testing.T) {
	app := setupTestApp(t)

	w := app.get("/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Trending now")
	assert.Contains(t, body, "Project Hail Mary")
	assert.Contains(t, body, "Sign In")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestUIController_DiscoverPage(t *testing.T) {
	app := setupTestApp(t)

	t.Run("filters by author", func(t *testing.T) {
		w := app.get("/discover?q=weir", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Project Hail Mary")
		assert.NotContains(t, body, "The Midnight Library")
		assert.Contains(t, body, `value="weir"`)
	})

	t.Run("shows a message when nothing matches", func(t *testing.T) {
		w := app.get("/discover?q=zzzz", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No books match &#34;zzzz&#34;.")
	})
}

func TestUIController_MyBooksPage(t *testing.T) {
	app := setupTestApp(t)

	t.Run("redirects anonymous readers to sign in", func(t *testing.T) {
		w := app.get("/my-books", nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth?next=%2Fmy-books", w.Header().Get("Location"))
	})

	t.Run("groups the reader's books by status", func(t *testing.T) {
		cookie := app.signUp(t, "shelfie")
		book := app.books[0]

		w := app.postForm("/books/"+book.ID+"/status", url.Values{"status": {"reading"}, "next": {"/my-books"}}, cookie)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/my-books", w.Header().Get("Location"))

		w = app.get("/my-books", cookie)

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Reading <span class=\"muted\">(1)</span>")
		assert.Contains(t, body, "Want to read <span class=\"muted\">(0)</span>")
		assert.Contains(t, body, book.Title)
		assert.Contains(t, body, "Book added to your reading list.")
		assert.Contains(t, body, "Sign Out")
	})
}

func TestUIController_ListsPage(t *testing.T) {
	app := setupTestApp(t)

	w := app.get("/lists", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Top Rated")
	assert.Contains(t, w.Body.String(), "Most Reviewed")
}

func TestUIController_CommunityPage(t *testing.T) {
	app := setupTestApp(t)
	text := "A reviewer without a profile"
	require.NoError(t, app.db.DB.Create(&entities.Review{
		UserID: "ghost", BookID: app.books[0].ID, Rating: 4, Text: &text,
	}).Error)

	w := app.get("/community", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, community.UnknownUsername)
	assert.Contains(t, body, text)
	assert.Contains(t, body, "#SciFi")
}

func TestUIController_NotFound(t *testing.T) {
	app := setupTestApp(t)

	t.Run("renders the not found page", func(t *testing.T) {
		w := app.get("/no/such/page", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Oops! Page not found")
		assert.Contains(t, w.Body.String(), `href="/"`)
	})

	t.Run("answers JSON under /api", func(t *testing.T) {
		w := app.get("/api/nope", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"route not found"}`, w.Body.String())
	})
}

func TestRouter_ServesStaticAssets(t *testing.T) {
	app := setupTestApp(t)

	w := app.get("/static/style.css", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".book-grid")
}
