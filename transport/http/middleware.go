package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	maxTrackedSenders = 10000
	senderIdleAfter   = 30 * time.Minute
)

type senderLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Middleware struct {
	mu       sync.Mutex
	limiters map[string]*senderLimiter
	now      func() time.Time
}

func NewMiddleware() *Middleware {
	return &Middleware{
		limiters: make(map[string]*senderLimiter),
		now:      time.Now,
	}
}

// AllowSender returns a per-sender token bucket check. Idle senders are evicted
// once the table grows past maxTrackedSenders.
func (m *Middleware) AllowSender(r rate.Limit, b int) func(sender string) bool {
	return func(sender string) bool {
		m.mu.Lock()
		defer m.mu.Unlock()

		now := m.now()
		entry, ok := m.limiters[sender]
		if !ok {
			if len(m.limiters) >= maxTrackedSenders {
				m.evictIdle(now)
			}
			entry = &senderLimiter{limiter: rate.NewLimiter(r, b)}
			m.limiters[sender] = entry
		}
		entry.lastSeen = now
		return entry.limiter.AllowN(now, 1)
	}
}

func (m *Middleware) evictIdle(now time.Time) {
	for key, entry := range m.limiters {
		if now.Sub(entry.lastSeen) > senderIdleAfter {
			delete(m.limiters, key)
		}
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			evt = log.Error()
		case status >= http.StatusBadRequest:
			evt = log.Warn()
		}
		evt.Str("component", "http").
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// RequestSizeLimiter limits request body size.
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
