// internal/handlers/middleware/ratelimit.go
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdle is how long a client's bucket survives without requests
const limiterIdle = 10 * time.Minute

// RateLimit gives every client IP a token bucket refilled at requests per
// duration that holds up to requests tokens.
func RateLimit(requests int, duration time.Duration) func(http.Handler) http.Handler {
	buckets := newClientBuckets(rate.Every(duration/time.Duration(requests)), requests)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !buckets.take(clientIP(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusTooManyRequests, `{"error":"rate limit exceeded"}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type bucket struct {
	*rate.Limiter
	seen time.Time
}

type clientBuckets struct {
	mu      sync.Mutex
	byIP    map[string]*bucket
	limit   rate.Limit
	burst   int
	sweptAt time.Time
}

func newClientBuckets(limit rate.Limit, burst int) *clientBuckets {
	return &clientBuckets{byIP: make(map[string]*bucket), limit: limit, burst: burst}
}

func (c *clientBuckets) take(ip string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.sweptAt) > limiterIdle {
		c.sweep(now)
	}

	b, ok := c.byIP[ip]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(c.limit, c.burst)}
		c.byIP[ip] = b
	}
	b.seen = now
	return b.AllowN(now, 1)
}

// sweep drops buckets idle for longer than limiterIdle. Caller holds mu.
func (c *clientBuckets) sweep(now time.Time) {
	for ip, b := range c.byIP {
		if now.Sub(b.seen) > limiterIdle {
			delete(c.byIP, ip)
		}
	}
	c.sweptAt = now
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
