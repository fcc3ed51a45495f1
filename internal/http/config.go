package http

import (
	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/config"
	"github.com/mrlokans/booky/internal/database"
	"github.com/mrlokans/booky/internal/notify"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database  *database.Database
	Books     BookCatalog
	Shelves   ShelfReader
	Reviews   ReviewLister
	Actions   ActionRunner
	Community CommunityLoader
	Activity  ActivityReader // optional

	// Authentication. Without a SessionManager every request is anonymous.
	AuthService    *auth.Service
	Provider       *auth.Provider
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Flash notifications shown on the next rendered page (optional)
	Flash *notify.Flash

	// Write throttling for book actions
	Throttle config.Actions

	// Application info
	Version string
}
