package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booky/internal/config"
	"github.com/mrlokans/booky/internal/notify"
)

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
// Returns true if the path is safe for redirect (local path only).
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}

	// Must start with /
	if !strings.HasPrefix(path, "/") {
		return false
	}

	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}

	// Reject URLs with schemes
	if strings.Contains(path, "://") {
		return false
	}

	// Reject paths with backslashes (potential bypass attempts)
	if strings.Contains(path, "\\") {
		return false
	}

	return true
}

// SanitizeRedirectPath returns a safe local redirect path, defaulting to "/" if invalid.
func SanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// Renderer draws a named HTML page. Without one the controller answers with JSON.
type Renderer interface {
	HTML(c *gin.Context, status int, name string, data gin.H)
}

const authTemplate = "auth.html"

// AuthController handles the sign-in, sign-up and sign-out endpoints.
type AuthController struct {
	service  *Service
	provider *Provider
	renderer Renderer
	notifier notify.Notifier
	limiter  *LoginLimiter
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, provider *Provider, renderer Renderer, notifier notify.Notifier, cfg config.Auth) *AuthController {
	return &AuthController{
		service:  service,
		provider: provider,
		renderer: renderer,
		notifier: notifier,
		limiter:  NewLoginLimiter(cfg),
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/auth", ac.AuthPage)
	router.POST("/auth/signin", ac.SignIn)
	router.POST("/auth/signup", ac.SignUp)
	router.POST("/auth/signout", ac.SignOut)
}

// AuthPage renders the combined sign-in / sign-up page.
func (ac *AuthController) AuthPage(c *gin.Context) {
	next := SanitizeRedirectPath(c.Query("next"))
	if IsAuthenticated(c) {
		c.Redirect(http.StatusFound, next)
		return
	}

	mode := "signin"
	if c.Query("mode") == "signup" {
		mode = "signup"
	}

	ac.render(c, http.StatusOK, gin.H{
		"Title": "Sign In",
		"Mode":  mode,
		"Next":  next,
		"Error": c.Query("error"),
	})
}

// SignIn handles the sign-in form submission.
func (ac *AuthController) SignIn(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	next := SanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	page := gin.H{
		"Title": "Sign In",
		"Mode":  "signin",
		"Next":  next,
		"Email": email,
	}

	if allowed, retryAfter := ac.limiter.Allow(clientIP, email); !allowed {
		c.Header("Retry-After", retryAfterSeconds(retryAfter))
		page["Error"] = "Too many sign-in attempts. Please try again later."
		ac.render(c, http.StatusTooManyRequests, page)
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		ac.limiter.RecordFailure(clientIP, email)
		log.Printf("Sign-in failed for %s from %s: %v", email, clientIP, err)

		page["Error"] = "Invalid email or password"
		if errors.Is(err, ErrAccountLocked) {
			page["Error"] = "Account is locked. Please try again later."
		}
		ac.render(c, http.StatusUnauthorized, page)
		return
	}
	ac.limiter.RecordSuccess(clientIP, email)

	username := ""
	if profile, err := ac.service.GetProfile(c.Request.Context(), user.ID); err == nil {
		username = profile.Username
	} else {
		log.Printf("Failed to load profile for user %s: %v", user.ID, err)
	}

	if err := ac.provider.SignIn(c.Request.Context(), Session{UserID: user.ID, Email: user.Email, Username: username}); err != nil {
		log.Printf("Failed to create session for user %s: %v", user.ID, err)
		page["Error"] = "Failed to create session"
		ac.render(c, http.StatusInternalServerError, page)
		return
	}

	ac.notify(c, notify.Notification{
		Title:       "Welcome back!",
		Description: "You are signed in as " + displayName(username, user.Email) + ".",
	})
	c.Redirect(http.StatusSeeOther, next)
}

// SignUp creates an account and signs the new reader in.
func (ac *AuthController) SignUp(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")
	next := SanitizeRedirectPath(c.PostForm("next"))

	page := gin.H{
		"Title":    "Sign Up",
		"Mode":     "signup",
		"Next":     next,
		"Email":    email,
		"Username": username,
	}

	if password != confirmPassword {
		page["Error"] = "Passwords do not match"
		ac.render(c, http.StatusBadRequest, page)
		return
	}

	user, profile, err := ac.service.SignUp(c.Request.Context(), email, username, password)
	if err != nil {
		status := http.StatusBadRequest
		errorMsg := "Failed to create account"
		switch {
		case errors.Is(err, ErrPasswordTooShort):
			errorMsg = "Password must be at least 8 characters"
		case errors.Is(err, ErrPasswordTooLong):
			errorMsg = "Password exceeds maximum length of 72 characters"
		case errors.Is(err, ErrUsernameRequired):
			errorMsg = "Username is required"
		case errors.Is(err, ErrUsernameInvalid):
			errorMsg = "Username must be 3-64 characters, alphanumeric with underscore/hyphen only"
		case errors.Is(err, ErrEmailRequired):
			errorMsg = "Email is required"
		case errors.Is(err, ErrEmailInvalid):
			errorMsg = "Invalid email format"
		case errors.Is(err, ErrPasswordRequired):
			errorMsg = "Password is required"
		case errors.Is(err, ErrUserExists):
			errorMsg = "An account with this email already exists"
			status = http.StatusConflict
		case errors.Is(err, ErrUsernameTaken):
			errorMsg = "This username is already taken"
			status = http.StatusConflict
		default:
			log.Printf("Sign-up failed for %s: %v", email, err)
			status = http.StatusInternalServerError
		}

		page["Error"] = errorMsg
		ac.render(c, status, page)
		return
	}

	if err := ac.provider.SignIn(c.Request.Context(), Session{UserID: user.ID, Email: user.Email, Username: profile.Username}); err != nil {
		log.Printf("Failed to create session for new user %s: %v", user.ID, err)
		c.Redirect(http.StatusSeeOther, SignInPath)
		return
	}

	ac.notify(c, notify.Notification{
		Title:       "Welcome to Booky!",
		Description: "Your account has been created.",
	})
	c.Redirect(http.StatusSeeOther, next)
}

// SignOut destroys the session and returns to the home page.
func (ac *AuthController) SignOut(c *gin.Context) {
	if err := ac.provider.SignOut(c.Request.Context()); err != nil {
		log.Printf("Failed to sign out: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (ac *AuthController) notify(c *gin.Context, n notify.Notification) {
	if ac.notifier != nil {
		ac.notifier.Notify(c.Request.Context(), n)
	}
}

// render renders the auth template or falls back to JSON.
func (ac *AuthController) render(c *gin.Context, status int, data gin.H) {
	if ac.renderer == nil {
		c.JSON(status, data)
		return
	}
	ac.renderer.HTML(c, status, authTemplate, data)
}

func displayName(username, email string) string {
	if username != "" {
		return username
	}
	return email
}
