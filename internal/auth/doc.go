// Package auth provides authentication and session handling for Booky.
//
// Readers sign up with an email, a username and a password. The account is
// stored as an entities.User (credentials) plus an entities.Profile (public
// face) sharing the same ID, created in one transaction.
//
// # Sessions
//
// Sessions are stored server-side with scs and the sqlite3store backend. The
// Provider is the single source of truth for "who is signed in": handlers and
// services receive it explicitly and never read cookies themselves.
//
//	provider := auth.NewProvider(sessionManager)
//	unsubscribe := provider.Subscribe(func(e auth.SessionEvent) { ... })
//	defer unsubscribe()
//
// Every sign-in and sign-out is broadcast synchronously to subscribers in
// subscription order.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=168h          # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Usage
//
// Extract the reader in handlers:
//
//	userID := auth.GetUserID(c) // "" when signed out
package auth
