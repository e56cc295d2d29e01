// Package middleware provides the HTTP middleware stack of the storefront API.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopease/pkg/response"
)

// bucket tracks a fixed-window request count for one client.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration, now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max, b.resetAt.Sub(now)
}

// Limiter is a per-client fixed-window rate limiter.
type Limiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	lastGC  time.Time
}

// NewLimiter allows max requests per window for each client IP.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{max: max, window: window, buckets: map[string]*bucket{}, lastGC: time.Now()}
}

func (l *Limiter) get(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Evict expired buckets at most once per window, inline, so no
	// background goroutine outlives the limiter.
	if now.Sub(l.lastGC) > l.window {
		for k, b := range l.buckets {
			b.mu.Lock()
			expired := now.After(b.resetAt)
			b.mu.Unlock()
			if expired {
				delete(l.buckets, k)
			}
		}
		l.lastGC = now
	}

	if b, ok := l.buckets[key]; ok {
		return b
	}
	b := &bucket{resetAt: now.Add(l.window)}
	l.buckets[key] = b
	return b
}

// Allow records one request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()
	return l.get(key, now).allow(l.max, l.window, now)
}

// Middleware enforces the limit, answering 429 with Retry-After.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := l.Allow(ClientIP(r))
		if !ok {
			secs := int(retry.Seconds())
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit returns a middleware that limits each IP to max requests per window.
// A max of 0 or less disables limiting.
//
//	r.Use(middleware.RateLimit(120, time.Minute))
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	if max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return NewLimiter(max, window).Middleware
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-Ip, or the remote
// address without its port.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
