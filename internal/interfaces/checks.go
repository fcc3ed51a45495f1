package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/booky/internal/actions"
	"github.com/mrlokans/booky/internal/audit"
	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/community"
	"github.com/mrlokans/booky/internal/database/books"
	"github.com/mrlokans/booky/internal/database/profiles"
	"github.com/mrlokans/booky/internal/database/reviews"
	"github.com/mrlokans/booky/internal/database/userbooks"
	"github.com/mrlokans/booky/internal/http"
	"github.com/mrlokans/booky/internal/notify"
	"github.com/mrlokans/booky/internal/scheduler"
	"github.com/mrlokans/booky/internal/tasks"
	"github.com/mrlokans/booky/internal/web"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Catalog and shelf reads served over HTTP
var _ http.BookCatalog = (*books.Repository)(nil)
var _ http.ShelfReader = (*userbooks.Repository)(nil)
var _ http.ReviewLister = (*reviews.Repository)(nil)
var _ http.ActivityReader = (*audit.Service)(nil)

// Community page sources
var _ community.ReviewSource = (*reviews.Repository)(nil)
var _ community.ProfileSource = (*profiles.Repository)(nil)
var _ community.CatalogCounter = (*books.Repository)(nil)

// =============================================================================
// Book Actions
// =============================================================================

var _ actions.SessionSource = (*auth.Provider)(nil)
var _ actions.UserBookStore = (*userbooks.Repository)(nil)
var _ actions.ReviewStore = (*reviews.Repository)(nil)
var _ actions.Auditor = (*audit.Service)(nil)
var _ actions.StatsRefresher = (*tasks.Client)(nil)

var _ http.ActionRunner = (*actions.Service)(nil)
var _ http.WriteMonitor = (*actions.Service)(nil)
var _ http.CommunityLoader = (*community.Service)(nil)

// =============================================================================
// Notifications and Rendering
// =============================================================================

var _ notify.Notifier = (*notify.Flash)(nil)
var _ notify.Notifier = (*notify.Recorder)(nil)
var _ notify.SessionStore = (*auth.SessionManager)(nil)
var _ auth.Renderer = (*web.Renderer)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.BookStatsRefresher = (*books.Repository)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.CleanupQueue = (*tasks.Client)(nil)
