package auth

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for reader data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyEmail    = "auth_email"
	ContextKeyUsername = "auth_username"
)

// SignInPath is where unauthenticated web requests are sent.
const SignInPath = "/auth"

// Middleware exposes the current session to Gin handlers.
type Middleware struct {
	service  *Service
	provider *Provider
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, provider *Provider) *Middleware {
	return &Middleware{
		service:  service,
		provider: provider,
	}
}

// Handler returns a Gin middleware that copies the current session, if any,
// into the Gin context. It never rejects a request; use RequireAuth for that.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := m.provider.Current(c.Request.Context())
		if session != nil && m.service != nil {
			// The account may have been removed since the session was created.
			_, err := m.service.GetUserByID(c.Request.Context(), session.UserID)
			if errors.Is(err, ErrUserNotFound) {
				log.Printf("Session for unknown user %s, signing out", session.UserID)
				_ = m.provider.SignOut(c.Request.Context())
				session = nil
			} else if err != nil {
				log.Printf("Failed to verify session user %s: %v", session.UserID, err)
			}
		}
		if session != nil {
			setSessionContext(c, session)
		}
		c.Next()
	}
}

func setSessionContext(c *gin.Context, s *Session) {
	c.Set(ContextKeyUserID, s.UserID)
	c.Set(ContextKeyEmail, s.Email)
	c.Set(ContextKeyUsername, s.Username)
}

// RequireAuth returns a middleware that rejects signed-out requests.
// API requests get a 401, browser requests are redirected to the sign-in page.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}
		if IsAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrAuthRequired.Error(),
			})
			return
		}
		c.Redirect(http.StatusFound, SignInPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// IsAPIRequest determines if this is an API request vs web browser request.
func IsAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// GetUserID retrieves the signed-in reader's ID from the context.
// Returns "" when signed out.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// GetUsername retrieves the signed-in reader's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetEmail retrieves the signed-in reader's email from the context.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

// IsAuthenticated returns true if the request carries a session.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != ""
}
