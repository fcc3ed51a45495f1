package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/notify"
	"github.com/mrlokans/booky/internal/web"
)

// hstsMaxAge is one year, in seconds.
const hstsMaxAge = 31536000

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authMiddleware := auth.NewMiddleware(cfg.AuthService, cfg.Provider)
	router.Use(authMiddleware.Handler())

	// A nil *notify.Flash must not end up inside a non-nil interface.
	var notifier notify.Notifier
	if cfg.Flash != nil {
		notifier = cfg.Flash
	}

	renderer := web.MustRenderer(pageDecorator(cfg.Flash))
	router.StaticFS("/static", web.Static())

	// Register auth routes if auth service is available
	if cfg.AuthService != nil && cfg.Provider != nil {
		authController := auth.NewAuthController(cfg.AuthService, cfg.Provider, renderer, notifier, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	if writes, ok := cfg.Actions.(WriteMonitor); ok {
		health.MonitorWrites(writes)
	}
	ui := NewUIController(cfg.Books, cfg.Shelves, cfg.Community, renderer)
	books := NewBooksController(cfg.Books, cfg.Shelves, cfg.Reviews)
	communityController := NewCommunityController(cfg.Community)
	actionsController := NewActionsController(cfg.Actions)
	throttle := NewThrottle(cfg.Throttle).Middleware(notifier)
	requireAuth := authMiddleware.RequireAuth()

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// UI routes
	router.GET("/", ui.HomePage)
	router.GET("/discover", ui.DiscoverPage)
	router.GET("/my-books", requireAuth, ui.MyBooksPage)
	router.GET("/lists", ui.ListsPage)
	router.GET("/community", ui.CommunityPage)

	// Form actions. Anonymous posts reach the action, which answers with an
	// "Authentication required" notification.
	router.POST("/books/:id/status", throttle, actionsController.SetStatusForm)
	router.POST("/books/:id/review", throttle, actionsController.ReviewForm)

	// JSON API
	api := router.Group("/api")
	api.GET("/books", books.ListBooks)
	api.GET("/books/:id", books.GetBook)
	api.GET("/community", communityController.GetCommunity)
	api.GET("/my-books", requireAuth, books.MyBooks)
	api.POST("/books/:id/status", throttle, actionsController.SetStatus)
	api.POST("/books/:id/review", throttle, actionsController.AddReview)
	if cfg.Activity != nil {
		activity := NewActivityController(cfg.Activity)
		api.GET("/activity", requireAuth, activity.ListActivity)
	}

	router.NoRoute(ui.NotFoundPage)

	return router
}
