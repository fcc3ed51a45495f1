package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/config"
	"github.com/mrlokans/booky/internal/notify"
)

// visitorTTL is how long an idle visitor's limiter is kept.
const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle limits write actions per signed-in user, or per client IP for
// anonymous requests. A nil Throttle allows everything.
type Throttle struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	visitors  map[string]*visitor
	lastPrune time.Time
	now       func() time.Time
}

// NewThrottle returns nil when cfg.RateLimit disables throttling.
func NewThrottle(cfg config.Actions) *Throttle {
	if cfg.RateLimit <= 0 {
		return nil
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		limit:    rate.Limit(cfg.RateLimit),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow reports whether key may perform one more write now.
func (t *Throttle) Allow(key string) bool {
	if t == nil {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.prune(now)

	v, ok := t.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// prune drops idle visitors. Callers hold t.mu.
func (t *Throttle) prune(now time.Time) {
	if now.Sub(t.lastPrune) < visitorTTL {
		return
	}
	t.lastPrune = now
	for key, v := range t.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(t.visitors, key)
		}
	}
}

// Middleware rejects writes over the limit. API clients get a 429, form
// posts get a flash notification and are sent back.
func (t *Throttle) Middleware(notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if t.Allow(throttleKey(c)) {
			c.Next()
			return
		}

		retryAfter := 1
		if t.limit > 0 {
			retryAfter = max(1, int(1/float64(t.limit)))
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))

		if auth.IsAPIRequest(c) {
			respondError(c, http.StatusTooManyRequests, "too many requests")
			c.Abort()
			return
		}
		if notifier != nil {
			notifier.Notify(c.Request.Context(), notify.Notification{
				Title:       "Slow down",
				Description: "You're doing that too often. Please wait a moment and try again.",
				Variant:     notify.VariantDestructive,
			})
		}
		redirectBack(c)
		c.Abort()
	}
}

func throttleKey(c *gin.Context) string {
	if userID := auth.GetUserID(c); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}
