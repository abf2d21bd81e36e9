package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token-bucket limiter keyed by client IP. Idle buckets are
// pruned lazily on each request once they exceed the retention window.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*clientBucket
	perSec   rate.Limit
	burst    int
	ttl      time.Duration
	lastScan time.Time
}

// NewRateLimiter creates a limiter allowing perSec requests per second with
// the given burst per client IP.
func NewRateLimiter(perSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*clientBucket),
		perSec:  rate.Limit(perSec),
		burst:   burst,
		ttl:     5 * time.Minute,
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastScan) > time.Minute {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) > rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.lastScan = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.perSec, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter.Allow()
}

// Middleware returns an http middleware enforcing the per-IP limit. Requests
// over the limit receive 429 with the standard error envelope.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "RATE_LIMITED",
				"message": "too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}
