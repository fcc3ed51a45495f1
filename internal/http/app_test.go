package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booky/internal/actions"
	"github.com/mrlokans/booky/internal/audit"
	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/community"
	"github.com/mrlokans/booky/internal/config"
	"github.com/mrlokans/booky/internal/database"
	auditrepo "github.com/mrlokans/booky/internal/database/audit"
	"github.com/mrlokans/booky/internal/database/books"
	"github.com/mrlokans/booky/internal/database/profiles"
	"github.com/mrlokans/booky/internal/database/reviews"
	"github.com/mrlokans/booky/internal/database/userbooks"
	"github.com/mrlokans/booky/internal/entities"
	"github.com/mrlokans/booky/internal/notify"
)

// testApp is the full router over a fresh SQLite database, wired the way
// the server wires it, minus CSRF.
type testApp struct {
	router *gin.Engine
	db     *database.Database
	audit  *audit.Service
	books  []entities.Book
}

func setupTestApp(t *testing.T) *testApp {
	return setupTestAppWith(t, config.Actions{})
}

func setupTestAppWith(t *testing.T, throttle config.Actions) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewQuietDatabase(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.SeedSampleBooks()
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	authCfg := config.Auth{
		SessionLifetime:  24 * time.Hour,
		BcryptCost:       4,
		MaxLoginAttempts: 5,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
	sm, err := auth.NewSessionManager(sqlDB, authCfg)
	require.NoError(t, err)

	provider := auth.NewProvider(sm)
	flash := notify.NewFlash(sm)
	bookRepo := books.NewRepository(db.DB)
	shelfRepo := userbooks.NewRepository(db.DB)
	reviewRepo := reviews.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	t.Cleanup(auditService.Wait)
	provider.Subscribe(auditService.RecordSession)

	router := NewRouter(RouterConfig{
		Database:  db,
		Books:     bookRepo,
		Shelves:   shelfRepo,
		Reviews:   reviewRepo,
		Community: community.NewService(reviewRepo, profiles.NewRepository(db.DB), bookRepo, community.Config{}),
		Actions: actions.NewService(actions.Dependencies{
			Sessions:  provider,
			UserBooks: shelfRepo,
			Reviews:   reviewRepo,
			Notifier:  flash,
			Auditor:   auditService,
		}),
		Activity:       auditService,
		AuthService:    auth.NewService(db.DB, authCfg),
		Provider:       provider,
		SessionManager: sm,
		AuthConfig:     authCfg,
		Flash:          flash,
		Throttle:       throttle,
		Version:        "test",
	})

	catalog, err := bookRepo.Trending(t.Context(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, catalog)

	return &testApp{router: router, db: db, audit: auditService, books: catalog}
}

func (a *testApp) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (a *testApp) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookie)
}

func (a *testApp) postJSON(path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return a.do(req, cookie)
}

// signUp creates an account and returns its session cookie.
func (a *testApp) signUp(t *testing.T, username string) *http.Cookie {
	t.Helper()
	w := a.postForm("/auth/signup", url.Values{
		"email":            {username + "@example.com"},
		"username":         {username},
		"password":         {"correct-horse"},
		"confirm_password": {"correct-horse"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == "booky_session" {
			return c
		}
	}
	t.Fatal("no session cookie after sign-up")
	return nil
}

func (a *testApp) userID(t *testing.T, username string) string {
	t.Helper()
	var profile entities.Profile
	require.NoError(t, a.db.DB.Where("username = ?", username).First(&profile).Error)
	return profile.ID
}
