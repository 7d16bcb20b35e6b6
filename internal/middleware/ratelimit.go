package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/darkiku/RfsGov/internal/obs"
)

const (
	bucketWidth = time.Minute
	// Buckets older than two widths are dropped on every call, so the map
	// holds at most the current bucket plus the two before it per active IP.
	bucketRetention = 2
)

// RateLimiter admits or rejects requests per client IP over a sliding
// window of fixed one-minute buckets. The login route has its own, much
// lower ceiling; everything else shares the general one. State is
// process-local and intentionally not shared across instances.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]map[int64]int

	loginLimit   int
	generalLimit int

	now func() time.Time
}

func NewRateLimiter(loginLimit, generalLimit int) *RateLimiter {
	return &RateLimiter{
		buckets:      make(map[string]map[int64]int),
		loginLimit:   loginLimit,
		generalLimit: generalLimit,
		now:          time.Now,
	}
}

// Handler short-circuits over-budget requests with 429 before any
// authentication logic runs.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := l.generalLimit
		if c.Path() == "/api/auth/login" {
			limit = l.loginLimit
		}

		if !l.allow(ClientIP(c), limit) {
			obs.CountRateLimited()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status":    fiber.StatusTooManyRequests,
				"error":     "Too Many Requests",
				"message":   "Rate limit exceeded. Please try again later.",
				"timestamp": l.now().UTC().Format(time.RFC3339),
			})
		}

		return c.Next()
	}
}

func (l *RateLimiter) allow(ip string, limit int) bool {
	bucket := l.now().Unix() / int64(bucketWidth.Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()

	counts, ok := l.buckets[ip]
	if !ok {
		counts = make(map[int64]int)
		l.buckets[ip] = counts
	}

	for b := range counts {
		if b < bucket-bucketRetention {
			delete(counts, b)
		}
	}

	counts[bucket]++
	return counts[bucket] <= limit
}

// ClientIP resolves the caller's address the way a reverse-proxy deployment
// needs it: first X-Forwarded-For entry, then X-Real-IP, then the socket.
func ClientIP(c *fiber.Ctx) string {
	if xff := strings.TrimSpace(c.Get("X-Forwarded-For")); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}

	if real := strings.TrimSpace(c.Get("X-Real-IP")); real != "" {
		return real
	}

	return c.IP()
}
