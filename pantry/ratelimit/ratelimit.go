// pantry/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dalemusser/audiencekit/httputil"
	"github.com/dalemusser/audiencekit/pantry/requestid"
	"go.uber.org/zap"
)

// Limiter is a token bucket.
type Limiter struct {
	rate     float64 // tokens per second
	burst    float64
	tokens   float64
	lastTime time.Time
}

// New returns a full bucket refilled at rate tokens per second up to burst.
func New(rate float64, burst int, now time.Time) *Limiter {
	return &Limiter{rate: rate, burst: float64(burst), tokens: float64(burst), lastTime: now}
}

// allow refills for the time since the last call and takes one token.
// Callers serialize access.
func (l *Limiter) allow(now time.Time) bool {
	if elapsed := now.Sub(l.lastTime).Seconds(); elapsed > 0 {
		l.tokens = min(l.burst, l.tokens+elapsed*l.rate)
	}
	l.lastTime = now
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// KeyLimiter keeps one bucket per key (usually a client IP). Buckets idle
// longer than ttl are dropped on a later call.
type KeyLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*Limiter
	rate      float64
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewKeyLimiter returns a per-key limiter.
func NewKeyLimiter(rate float64, burst int, ttl time.Duration) *KeyLimiter {
	return &KeyLimiter{
		buckets: make(map[string]*Limiter),
		rate:    rate,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Allow reports whether key may make one more request now.
func (kl *KeyLimiter) Allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	if now.Sub(kl.lastSweep) >= kl.ttl {
		for k, b := range kl.buckets {
			if now.Sub(b.lastTime) >= kl.ttl {
				delete(kl.buckets, k)
			}
		}
		kl.lastSweep = now
	}

	b, ok := kl.buckets[key]
	if !ok {
		b = New(kl.rate, kl.burst, now)
		kl.buckets[key] = b
	}
	return b.allow(now)
}

// Size returns the number of tracked keys.
func (kl *KeyLimiter) Size() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.buckets)
}

// ClientIP keys requests by RemoteAddr without its port. Install
// chi's RealIP first when running behind a proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the per-client limit with 429 and a
// JSON error body. rate <= 0 disables limiting.
func Middleware(rate float64, burst int, logger *zap.Logger) func(http.Handler) http.Handler {
	if rate <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := NewKeyLimiter(rate, burst, time.Hour)
	retryAfter := strconv.Itoa(max(1, int(1/rate)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			if !limiter.Allow(key) {
				logger.Info("rate limited",
					zap.String("client", key),
					zap.String("path", r.URL.Path),
					requestid.Field(r.Context()),
				)
				w.Header().Set("Retry-After", retryAfter)
				httputil.JSONError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
