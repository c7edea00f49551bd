package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julilatch/rs-api/pkg/logger"
)

// RateLimiter counts requests per client over a fixed window. Extraction
// requests are expensive on the far side, so the limit is deliberately a
// blunt instrument: a full window for an IP means a 429.
type RateLimiter struct {
	mu       sync.Mutex
	counts   map[string]int
	windowAt time.Time
	rate     int
	window   time.Duration
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counts:   make(map[string]int),
		windowAt: time.Now(),
		rate:     rate,
		window:   window,
	}
}

// Allow records one request for the client and reports whether it fits in
// the current window.
func (l *RateLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.windowAt) > l.window {
		l.counts = make(map[string]int)
		l.windowAt = time.Now()
	}

	if l.counts[client] >= l.rate {
		return false
	}
	l.counts[client]++
	return true
}

// RateLimit rejects clients that exceed rate requests per window.
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			logger.Warn(c.Request.Context(), "rate limit exceeded", "client_ip", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
