package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterSet hands out one token bucket per key.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func newLimiterSet(r rate.Limit, b int) *limiterSet {
	return &limiterSet{limiters: make(map[string]*rate.Limiter), r: r, b: b}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(s.r, s.b)
		s.limiters[key] = l
	}
	return l
}

// rateLimit rejects requests beyond the per-client budget with 429.
func rateLimit(s *limiterSet, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.get(keyFunc(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ctx := c.Request.Context()
		for _, e := range c.Errors {
			log.Error(ctx, "request failed", "path", c.FullPath(), "error", e.Err)
		}
		log.Debug(ctx, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
