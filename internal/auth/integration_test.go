package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booky/internal/config"
	"github.com/mrlokans/booky/internal/entities"
	"github.com/mrlokans/booky/internal/notify"
)

type testApp struct {
	router   *gin.Engine
	service  *Service
	provider *Provider
	recorder *notify.Recorder
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sm, db := setupSessionManager(t)
	cfg := config.Auth{
		SessionLifetime:  24 * time.Hour,
		BcryptCost:       4,
		MaxLoginAttempts: 5,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}

	svc := NewService(db, cfg)
	provider := NewProvider(sm)
	recorder := notify.NewRecorder()
	middleware := NewMiddleware(svc, provider)
	controller := NewAuthController(svc, provider, nil, recorder, cfg)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(middleware.Handler())
	controller.RegisterRoutes(router)

	router.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	protected := router.Group("/", middleware.RequireAuth())
	protected.GET("/my-books", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c), "email": GetEmail(c)})
	})
	protected.GET("/api/my-books", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	return &testApp{router: router, service: svc, provider: provider, recorder: recorder}
}

func (a *testApp) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "booky_session" {
			return c
		}
	}
	return nil
}

func TestIntegration_ProtectedRoutesRedirect(t *testing.T) {
	app := setupTestApp(t)

	rr := app.do(httptest.NewRequest(http.MethodGet, "/my-books", nil), nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/auth?next=%2Fmy-books", rr.Header().Get("Location"))
}

func TestIntegration_ProtectedRoutesAPIReturn401(t *testing.T) {
	app := setupTestApp(t)

	rr := app.do(httptest.NewRequest(http.MethodGet, "/api/my-books", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "authentication required")

	req := httptest.NewRequest(http.MethodGet, "/my-books", nil)
	req.Header.Set("Accept", "application/json")
	rr = app.do(req, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIntegration_PublicRoutesSignedOut(t *testing.T) {
	app := setupTestApp(t)

	rr := app.do(httptest.NewRequest(http.MethodGet, "/public", nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user_id":""}`, rr.Body.String())
}

func TestIntegration_SignUpSignOutSignInFlow(t *testing.T) {
	app := setupTestApp(t)

	var events []SessionEventKind
	app.provider.Subscribe(func(e SessionEvent) { events = append(events, e.Kind) })

	// Sign up signs the new reader in
	rr := app.do(postForm("/auth/signup", url.Values{
		"email":            {"reader@example.com"},
		"username":         {"reader"},
		"password":         {"password123"},
		"confirm_password": {"password123"},
		"next":             {"/my-books"},
	}), nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/my-books", rr.Header().Get("Location"))
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)

	rr = app.do(httptest.NewRequest(http.MethodGet, "/my-books", nil), cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["user_id"])
	assert.Equal(t, "reader", body["username"])
	assert.Equal(t, "reader@example.com", body["email"])

	// Sign out
	rr = app.do(postForm("/auth/signout", nil), cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = app.do(httptest.NewRequest(http.MethodGet, "/my-books", nil), cookie)
	assert.Equal(t, http.StatusFound, rr.Code)

	// Wrong password
	rr = app.do(postForm("/auth/signin", url.Values{
		"email":    {"reader@example.com"},
		"password": {"wrong-password"},
	}), nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid email or password")

	// Sign in again, with an unsafe redirect target
	rr = app.do(postForm("/auth/signin", url.Values{
		"email":    {"reader@example.com"},
		"password": {"password123"},
		"next":     {"https://evil.example.com"},
	}), nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	require.NotNil(t, sessionCookie(rr))

	assert.Equal(t, []SessionEventKind{SessionSignedIn, SessionSignedOut, SessionSignedIn}, events)

	titles := []string{}
	for _, n := range app.recorder.Notifications() {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"Welcome to Booky!", "Welcome back!"}, titles)
}

func TestIntegration_SignUpValidation(t *testing.T) {
	app := setupTestApp(t)

	rr := app.do(postForm("/auth/signup", url.Values{
		"email":            {"reader@example.com"},
		"username":         {"reader"},
		"password":         {"password123"},
		"confirm_password": {"different123"},
	}), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Passwords do not match")

	rr = app.do(postForm("/auth/signup", url.Values{
		"email":            {"reader@example.com"},
		"username":         {"x"},
		"password":         {"password123"},
		"confirm_password": {"password123"},
	}), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Username must be 3-64 characters")

	var users int64
	app.service.db.Model(&entities.User{}).Count(&users)
	assert.Zero(t, users)
}

func TestIntegration_SignInRateLimited(t *testing.T) {
	app := setupTestApp(t)

	for i := 0; i < 5; i++ {
		app.do(postForm("/auth/signin", url.Values{
			"email":    {"ghost@example.com"},
			"password": {"nope-nope"},
		}), nil)
	}

	rr := app.do(postForm("/auth/signin", url.Values{
		"email":    {"ghost@example.com"},
		"password": {"nope-nope"},
	}), nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestIntegration_AuthPage(t *testing.T) {
	app := setupTestApp(t)

	rr := app.do(httptest.NewRequest(http.MethodGet, "/auth?mode=signup&next=/lists", nil), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var page map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, "signup", page["Mode"])
	assert.Equal(t, "/lists", page["Next"])
}

func TestIntegration_DeletedUserIsSignedOut(t *testing.T) {
	app := setupTestApp(t)

	rr := app.do(postForm("/auth/signup", url.Values{
		"email":            {"gone@example.com"},
		"username":         {"gone"},
		"password":         {"password123"},
		"confirm_password": {"password123"},
	}), nil)
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)

	require.NoError(t, app.service.db.Where("email = ?", "gone@example.com").Delete(&entities.User{}).Error)

	rr = app.do(httptest.NewRequest(http.MethodGet, "/public", nil), cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user_id":""}`, rr.Body.String())
}
