package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limiterApp(limiter *RateLimiter) *fiber.App {
	app := fiber.New()
	app.Use(limiter.Handler())
	app.Post("/api/auth/login", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/news", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestRateLimiter_LoginBudget(t *testing.T) {
	limiter := NewRateLimiter(3, 100)
	app := limiterApp(limiter)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiter_IPsIndependent(t *testing.T) {
	limiter := NewRateLimiter(1, 100)
	app := limiterApp(limiter)

	first := httptest.NewRequest("POST", "/api/auth/login", nil)
	first.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp, err := app.Test(first)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	blocked := httptest.NewRequest("POST", "/api/auth/login", nil)
	blocked.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp, err = app.Test(blocked)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	other := httptest.NewRequest("POST", "/api/auth/login", nil)
	other.Header.Set("X-Forwarded-For", "198.51.100.7")
	resp, err = app.Test(other)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimiter_GeneralBudgetSeparate(t *testing.T) {
	limiter := NewRateLimiter(1, 3)
	app := limiterApp(limiter)

	// Exhaust the login budget; general traffic from the same IP still
	// passes until its own ceiling.
	login := httptest.NewRequest("POST", "/api/auth/login", nil)
	login.Header.Set("X-Forwarded-For", "203.0.113.9")
	_, err := app.Test(login)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/api/news", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/news", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiter_WindowMovesOn(t *testing.T) {
	limiter := NewRateLimiter(1, 100)

	current := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return current }

	assert.True(t, limiter.allow("203.0.113.9", 1))
	assert.False(t, limiter.allow("203.0.113.9", 1))

	current = current.Add(time.Minute)
	assert.True(t, limiter.allow("203.0.113.9", 1))
}

func TestRateLimiter_PrunesOldBuckets(t *testing.T) {
	limiter := NewRateLimiter(1, 100)

	current := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return current }

	limiter.allow("203.0.113.9", 1)
	current = current.Add(10 * time.Minute)
	limiter.allow("203.0.113.9", 1)

	limiter.mu.Lock()
	assert.Len(t, limiter.buckets["203.0.113.9"], 1)
	limiter.mu.Unlock()
}

func TestRateLimiter_RetainsAtMostThreeBuckets(t *testing.T) {
	limiter := NewRateLimiter(1, 100)

	current := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return current }

	// Hit once per minute; the two trailing buckets survive, older ones go.
	for i := 0; i < 5; i++ {
		limiter.allow("203.0.113.9", 100)
		current = current.Add(time.Minute)
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.buckets["203.0.113.9"], 3)
}

func TestClientIP(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = ClientIP(c)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "first forwarded entry wins",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			want:    "203.0.113.9",
		},
		{
			name:    "real ip fallback",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:    "198.51.100.7",
		},
		{
			name:    "socket address fallback",
			headers: nil,
			want:    "0.0.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			_, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
