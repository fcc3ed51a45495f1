package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booky/internal/actions"
	"github.com/mrlokans/booky/internal/entities"
	"github.com/mrlokans/booky/internal/notify"
)

type actionResponse struct {
	Result       actions.Kind        `json:"result"`
	Notification notify.Notification `json:"notification"`
}

func decodeAction(t *testing.T, w *httptest.ResponseRecorder) actionResponse {
	t.Helper()
	var res actionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func countUserBooks(t *testing.T, app *testApp) int64 {
	t.Helper()
	var n int64
	require.NoError(t, app.db.DB.Model(&entities.UserBook{}).Count(&n).Error)
	return n
}

func TestActionsAPI_SetStatus(t *testing.T) {
	app := setupTestApp(t)
	book := app.books[0]

	t.Run("anonymous request is rejected and writes nothing", func(t *testing.T) {
		w := app.postJSON("/api/books/"+book.ID+"/status", `{"status":"reading"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		res := decodeAction(t, w)
		assert.Equal(t, actions.KindAuthRequired, res.Result)
		assert.Equal(t, "Authentication required", res.Notification.Title)
		assert.Equal(t, "Please sign in to add books to your library.", res.Notification.Description)
		assert.True(t, res.Notification.Destructive())
		assert.Zero(t, countUserBooks(t, app))
	})

	cookie := app.signUp(t, "apireader")

	t.Run("valid status is stored", func(t *testing.T) {
		w := app.postJSON("/api/books/"+book.ID+"/status", `{"status":"want_to_read"}`, cookie)

		assert.Equal(t, http.StatusOK, w.Code)
		res := decodeAction(t, w)
		assert.Equal(t, actions.KindSuccess, res.Result)
		assert.Equal(t, "Book added!", res.Notification.Title)
		assert.Equal(t, "Book added to your want to read list.", res.Notification.Description)

		var ub entities.UserBook
		require.NoError(t, app.db.DB.Where("book_id = ?", book.ID).First(&ub).Error)
		assert.Equal(t, app.userID(t, "apireader"), ub.UserID)
		assert.Equal(t, entities.StatusWantToRead, ub.Status)
	})

	t.Run("unknown status is invalid", func(t *testing.T) {
		w := app.postJSON("/api/books/"+book.ID+"/status", `{"status":"finished"}`, cookie)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, actions.KindInvalid, decodeAction(t, w).Result)
	})

	t.Run("malformed body is an invalid status", func(t *testing.T) {
		w := app.postJSON("/api/books/"+book.ID+"/status", `{`, cookie)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, actions.KindInvalid, decodeAction(t, w).Result)
	})

	t.Run("unknown book is a store failure", func(t *testing.T) {
		before := countUserBooks(t, app)

		w := app.postJSON("/api/books/no-such-book/status", `{"status":"reading"}`, cookie)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		res := decodeAction(t, w)
		assert.Equal(t, actions.KindFailed, res.Result)
		assert.Equal(t, "Failed to add book. Please try again.", res.Notification.Description)
		assert.Equal(t, before, countUserBooks(t, app))
	})

	t.Run("API calls do not leave flash notifications behind", func(t *testing.T) {
		w := app.get("/", cookie)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Welcome to Booky!")
		assert.NotContains(t, w.Body.String(), "Book added!")
	})
}

func TestActionsAPI_AddReview(t *testing.T) {
	app := setupTestApp(t)
	book := app.books[0]

	t.Run("anonymous request", func(t *testing.T) {
		w := app.postJSON("/api/books/"+book.ID+"/review", `{"rating":4}`, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Please sign in to write reviews.", decodeAction(t, w).Notification.Description)
	})

	t.Run("anonymous request with an unreadable body still asks to sign in", func(t *testing.T) {
		for _, body := range []string{"", "{", `{"rating":"five"}`} {
			w := app.postJSON("/api/books/"+book.ID+"/review", body, nil)

			assert.Equal(t, http.StatusUnauthorized, w.Code, "body %q", body)
			assert.Equal(t, actions.KindAuthRequired, decodeAction(t, w).Result)
		}

		w := app.postJSON("/api/books/"+book.ID+"/status", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	cookie := app.signUp(t, "critic")

	t.Run("out of range rating", func(t *testing.T) {
		w := app.postJSON("/api/books/"+book.ID+"/review", `{"rating":6}`, cookie)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Rating must be between 1 and 5 stars.", decodeAction(t, w).Notification.Description)
	})

	t.Run("review without text is stored with NULL text", func(t *testing.T) {
		w := app.postJSON("/api/books/"+book.ID+"/review", `{"rating":3,"text":"   "}`, cookie)

		assert.Equal(t, http.StatusOK, w.Code)
		res := decodeAction(t, w)
		assert.Equal(t, "Review added!", res.Notification.Title)

		var review entities.Review
		require.NoError(t, app.db.DB.Where("book_id = ?", book.ID).First(&review).Error)
		assert.Equal(t, 3, review.Rating)
		assert.Nil(t, review.Text)
	})
}

func TestActionsForms(t *testing.T) {
	app := setupTestApp(t)
	book := app.books[0]

	t.Run("anonymous post flashes and goes back", func(t *testing.T) {
		w := app.postForm("/books/"+book.ID+"/status", url.Values{"status": {"reading"}, "next": {"/discover?q=hail"}}, nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/discover?q=hail", w.Header().Get("Location"))
		assert.Zero(t, countUserBooks(t, app))
	})

	cookie := app.signUp(t, "former")

	t.Run("status post stores the status and flashes once", func(t *testing.T) {
		w := app.postForm("/books/"+book.ID+"/status", url.Values{"status": {"read"}}, cookie)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.EqualValues(t, 1, countUserBooks(t, app))

		w = app.get("/", cookie)
		assert.Contains(t, w.Body.String(), "Book added to your read list.")

		w = app.get("/", cookie)
		assert.NotContains(t, w.Body.String(), "Book added to your read list.")
	})

	t.Run("review post with a bad rating flashes an error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/books/"+book.ID+"/review",
			strings.NewReader(url.Values{"rating": {"lots"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Referer", "http://example.com/lists")
		req.Host = "example.com"
		w := app.do(req, cookie)

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/lists", w.Header().Get("Location"))

		w = app.get("/lists", cookie)
		assert.Contains(t, w.Body.String(), "Rating must be between 1 and 5 stars.")
		assert.Contains(t, w.Body.String(), "toast-destructive")
	})

	t.Run("foreign next is ignored", func(t *testing.T) {
		w := app.postForm("/books/"+book.ID+"/status", url.Values{"status": {"reading"}, "next": {"//evil.example"}}, cookie)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

type failingRunner struct{}

func (failingRunner) AddToBooks(context.Context, string, entities.ReadingStatus) actions.Result {
	return actions.Result{
		Kind:         actions.KindFailed,
		Notification: notify.Notification{Title: "Error", Description: "Failed to add book. Please try again.", Variant: notify.VariantDestructive},
		Err:          errors.New("store down"),
	}
}

func (failingRunner) AddReview(context.Context, string, int, string) actions.Result {
	return actions.Result{
		Kind:         actions.KindFailed,
		Notification: notify.Notification{Title: "Error", Description: "Failed to add review. Please try again.", Variant: notify.VariantDestructive},
		Err:          errors.New("store down"),
	}
}

func TestActionsAPI_StoreFailure(t *testing.T) {
	controller := NewActionsController(failingRunner{})
	router := gin.New()
	router.POST("/api/books/:id/review", controller.AddReview)

	req := httptest.NewRequest(http.MethodPost, "/api/books/b1/review", strings.NewReader(`{"rating":4}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	res := decodeAction(t, w)
	assert.Equal(t, actions.KindFailed, res.Result)
	assert.Equal(t, "Failed to add review. Please try again.", res.Notification.Description)
	assert.NotContains(t, w.Body.String(), "store down")
}
