package auth

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/booky/internal/config"
)

const (
	defaultMaxLoginAttempts = 5
	defaultLoginWindow      = 15 * time.Minute
	defaultLoginLockout     = 30 * time.Minute
)

// LoginLimiter locks out a client IP and email pair after too many failed
// sign-ins. Failures are counted from the first one in a window. Stale
// entries are dropped while recording, so no background goroutine is needed.
type LoginLimiter struct {
	mu        sync.Mutex
	failures  map[string]*loginFailures
	max       int
	window    time.Duration
	lockout   time.Duration
	now       func() time.Time
	lastPrune time.Time
}

type loginFailures struct {
	count       int
	since       time.Time
	lockedUntil time.Time
}

// NewLoginLimiter reads the sign-in limits from cfg, falling back to five
// attempts per fifteen minutes and a thirty minute lockout.
func NewLoginLimiter(cfg config.Auth) *LoginLimiter {
	l := &LoginLimiter{
		failures: make(map[string]*loginFailures),
		max:      cfg.MaxLoginAttempts,
		window:   cfg.RateLimitWindow,
		lockout:  cfg.LockoutDuration,
		now:      time.Now,
	}
	if l.max <= 0 {
		l.max = defaultMaxLoginAttempts
	}
	if l.window <= 0 {
		l.window = defaultLoginWindow
	}
	if l.lockout <= 0 {
		l.lockout = defaultLoginLockout
	}
	return l
}

func loginKey(ip, email string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(email))
}

// Allow reports whether the pair may try to sign in. While locked out it
// returns false and the time left on the lockout.
func (l *LoginLimiter) Allow(ip, email string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.failures[loginKey(ip, email)]
	if !ok {
		return true, 0
	}
	if now := l.now(); now.Before(f.lockedUntil) {
		return false, f.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed sign-in and reports whether it started a lockout.
func (l *LoginLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)

	key := loginKey(ip, email)
	f, ok := l.failures[key]
	if !ok || l.expired(f, now) {
		f = &loginFailures{since: now}
		l.failures[key] = f
	}

	f.count++
	if f.count < l.max {
		return false, 0
	}
	f.lockedUntil = now.Add(l.lockout)
	return true, l.lockout
}

// RecordSuccess forgets the pair's failures.
func (l *LoginLimiter) RecordSuccess(ip, email string) {
	l.mu.Lock()
	delete(l.failures, loginKey(ip, email))
	l.mu.Unlock()
}

// expired is true once the counting window has passed and no lockout is running.
func (l *LoginLimiter) expired(f *loginFailures, now time.Time) bool {
	return now.Sub(f.since) > l.window && !now.Before(f.lockedUntil)
}

// pruneLocked drops expired entries at most once per window. Callers hold mu.
func (l *LoginLimiter) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < l.window {
		return
	}
	l.lastPrune = now
	for key, f := range l.failures {
		if l.expired(f, now) {
			delete(l.failures, key)
		}
	}
}

// retryAfterSeconds formats d for the Retry-After header, rounding up.
func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}
