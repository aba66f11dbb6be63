package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// CleanupInterval is the interval for cleaning up stale limiters
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is the time-to-live for inactive limiters
	LimiterTTL = 10 * time.Minute
)

// RateLimiter manages per-owner token buckets
type RateLimiter struct {
	limiters  map[uuid.UUID]*limiterEntry
	mu        sync.Mutex
	perMinute int
	perSecond rate.Limit
	burstSize int
	stopCh    chan struct{}
	stopOnce  sync.Once
	onLimited func()
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter allowing requestsPerMinute with the given burst
func NewRateLimiter(requestsPerMinute int, burstSize int) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[uuid.UUID]*limiterEntry),
		perMinute: requestsPerMinute,
		perSecond: rate.Limit(float64(requestsPerMinute) / 60.0),
		burstSize: burstSize,
		stopCh:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// OnLimited registers a callback run for every rejected request
func (r *RateLimiter) OnLimited(fn func()) {
	r.onLimited = fn
}

// Reserve takes a token for ownerID. When none is available it returns false
// and how long until one is.
func (r *RateLimiter) Reserve(ownerID uuid.UUID) (bool, int, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry, exists := r.limiters[ownerID]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(r.perSecond, r.burstSize)}
		r.limiters[ownerID] = entry
	}
	entry.lastSeen = now

	if entry.limiter.AllowN(now, 1) {
		remaining := int(entry.limiter.TokensAt(now))
		if remaining < 0 {
			remaining = 0
		}
		return true, remaining, 0
	}

	missing := 1 - entry.limiter.TokensAt(now)
	wait := time.Duration(missing / float64(r.perSecond) * float64(time.Second))
	return false, 0, wait
}

// Allow reports whether ownerID may make another request now
func (r *RateLimiter) Allow(ownerID uuid.UUID) bool {
	ok, _, _ := r.Reserve(ownerID)
	return ok
}

// cleanup periodically removes stale limiters to prevent memory leaks
func (r *RateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Now())
		case <-r.stopCh:
			return
		}
	}
}

func (r *RateLimiter) evictIdle(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for ownerID, entry := range r.limiters {
		if now.Sub(entry.lastSeen) > LimiterTTL {
			delete(r.limiters, ownerID)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Msg("Cleaned up idle rate limiters")
	}
	return evicted
}

// Stop stops the cleanup goroutine
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// RateLimitMiddleware limits authenticated owners. It must run after Authenticate.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ownerID := GetOwnerID(c)
			if ownerID == uuid.Nil {
				return next(c)
			}

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(rl.perMinute))

			allowed, remaining, wait := rl.Reserve(ownerID)
			if !allowed {
				retryAfter := int(wait.Seconds() + 0.999)
				if retryAfter < 1 {
					retryAfter = 1
				}
				header.Set("X-RateLimit-Remaining", "0")
				header.Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn().
					Str("owner_id", ownerID.String()).
					Int("retry_after", retryAfter).
					Msg("Rate limit exceeded")

				if rl.onLimited != nil {
					rl.onLimited()
				}
				return problem(c, http.StatusTooManyRequests, errorTypeRateLimit, "Rate Limit Exceeded",
					fmt.Sprintf("Too many requests. Please retry after %d seconds.", retryAfter))
			}

			header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			return next(c)
		}
	}
}
