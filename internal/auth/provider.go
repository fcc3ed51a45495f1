package auth

import (
	"context"
	"sync"
	"time"
)

// Session is the signed-in reader as seen by the rest of the application.
type Session struct {
	UserID   string
	Email    string
	Username string
	LoginAt  time.Time
}

type SessionEventKind string

const (
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
)

// SessionEvent describes a session transition. For sign-outs Session holds
// the session that just ended.
type SessionEvent struct {
	Kind    SessionEventKind
	Session Session
}

type subscriber struct {
	id int
	fn func(SessionEvent)
}

// Provider owns the current session of a request and notifies subscribers
// of every sign-in and sign-out.
type Provider struct {
	sm *SessionManager

	mu          sync.RWMutex
	nextID      int
	subscribers []subscriber
}

func NewProvider(sm *SessionManager) *Provider {
	return &Provider{sm: sm}
}

// Current returns the session carried by ctx, or nil when signed out.
func (p *Provider) Current(ctx context.Context) *Session {
	if p == nil || p.sm == nil || !p.sm.Loaded(ctx) {
		return nil
	}
	userID := p.sm.GetString(ctx, SessionKeyUserID)
	if userID == "" {
		return nil
	}
	loginAt, _ := p.sm.Get(ctx, SessionKeyLoginAt).(time.Time)
	return &Session{
		UserID:   userID,
		Email:    p.sm.GetString(ctx, SessionKeyEmail),
		Username: p.sm.GetString(ctx, SessionKeyUsername),
		LoginAt:  loginAt,
	}
}

// SignIn stores the session in ctx. The session token is renewed first to
// prevent fixation.
func (p *Provider) SignIn(ctx context.Context, s Session) error {
	if !p.sm.Loaded(ctx) {
		return ErrNoSession
	}
	if err := p.sm.RenewToken(ctx); err != nil {
		return err
	}
	if s.LoginAt.IsZero() {
		s.LoginAt = time.Now()
	}

	p.sm.Put(ctx, SessionKeyUserID, s.UserID)
	p.sm.Put(ctx, SessionKeyEmail, s.Email)
	p.sm.Put(ctx, SessionKeyUsername, s.Username)
	p.sm.Put(ctx, SessionKeyLoginAt, s.LoginAt)

	p.broadcast(SessionEvent{Kind: SessionSignedIn, Session: s})
	return nil
}

// SignOut destroys the session in ctx. Signing out without a session is a no-op.
func (p *Provider) SignOut(ctx context.Context) error {
	current := p.Current(ctx)
	if current == nil {
		return nil
	}
	if err := p.sm.Destroy(ctx); err != nil {
		return err
	}
	p.broadcast(SessionEvent{Kind: SessionSignedOut, Session: *current})
	return nil
}

// Subscribe registers fn for session events and returns a function that
// removes it again.
func (p *Provider) Subscribe(fn func(SessionEvent)) (unsubscribe func()) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subscribers = append(p.subscribers, subscriber{id: id, fn: fn})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, sub := range p.subscribers {
				if sub.id == id {
					p.subscribers = append(p.subscribers[:i:i], p.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (p *Provider) broadcast(event SessionEvent) {
	p.mu.RLock()
	subs := make([]subscriber, len(p.subscribers))
	copy(subs, p.subscribers)
	p.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(event)
	}
}
