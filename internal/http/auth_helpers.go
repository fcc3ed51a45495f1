package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/notify"
	"github.com/mrlokans/booky/internal/web"
)

// currentSession rebuilds the session the auth middleware copied into the
// Gin context. Returns nil for anonymous requests.
func currentSession(c *gin.Context) *auth.Session {
	if !auth.IsAuthenticated(c) {
		return nil
	}
	return &auth.Session{
		UserID:   auth.GetUserID(c),
		Email:    auth.GetEmail(c),
		Username: auth.GetUsername(c),
	}
}

// pageDecorator injects the navbar state into every rendered page: the
// signed-in reader, pending flash notifications and the CSRF form field.
// Flashes are popped here, so each one is shown exactly once.
func pageDecorator(flash *notify.Flash) web.DecorateFunc {
	return func(c *gin.Context, data gin.H) {
		if _, ok := data["Session"]; !ok {
			data["Session"] = currentSession(c)
		}
		if flash != nil {
			data["Flashes"] = flash.Pop(c.Request.Context())
		}
		data["CSRFField"] = auth.CSRFTokenField(c)
	}
}
