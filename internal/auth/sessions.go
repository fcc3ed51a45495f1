package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/booky/internal/config"
)

// Session data keys
const (
	SessionKeyUserID   = "user_id"
	SessionKeyEmail    = "email"
	SessionKeyUsername = "username"
	SessionKeyLoginAt  = "login_at"
)

func init() {
	gob.Register(time.Time{})
}

type loadedKey struct{}

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "booky_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	// Lax so that following a link into the app keeps the reader signed in.
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// LoadContext loads the session identified by token into ctx.
// An empty token starts a fresh, anonymous session.
func (sm *SessionManager) LoadContext(ctx context.Context, token string) (context.Context, error) {
	ctx, err := sm.Load(ctx, token)
	if err != nil {
		return ctx, err
	}
	return context.WithValue(ctx, loadedKey{}, true), nil
}

// Loaded reports whether ctx carries session data. Reading session values
// from a context without it panics inside scs.
func (sm *SessionManager) Loaded(ctx context.Context) bool {
	loaded, _ := ctx.Value(loadedKey{}).(bool)
	return loaded
}
