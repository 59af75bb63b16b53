package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader   = "X-Request-ID"
	requestIDKey      = "request_id"
	throttledKey      = "chat_throttled"
	DefaultChatLimit  = 30
	DefaultChatWindow = time.Minute
)

// RequestID stamps every request with an id, reusing a well-formed incoming one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// rateLimiter is a sliding-window counter keyed by client.
type rateLimiter struct {
	limit  int
	window time.Duration
	mu     sync.Mutex
	hits   map[string][]time.Time
	now    func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		return nil
	}
	return &rateLimiter{limit: limit, window: window, hits: make(map[string][]time.Time), now: time.Now}
}

func (l *rateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	queue := l.hits[key]
	cutoff := now.Add(-l.window)
	idx := 0
	for _, t := range queue {
		if t.After(cutoff) {
			break
		}
		idx++
	}
	if idx > 0 {
		queue = queue[idx:]
	}
	if len(queue) >= l.limit {
		l.hits[key] = queue
		return false
	}
	if len(queue) == 0 {
		// forget idle clients
		l.prune(cutoff)
	}
	l.hits[key] = append(queue, now)
	return true
}

func (l *rateLimiter) prune(cutoff time.Time) {
	for k, q := range l.hits {
		if len(q) == 0 || !q[len(q)-1].After(cutoff) {
			delete(l.hits, k)
		}
	}
}

// rateLimit marks clients over the chat limit. Chat is never rejected: a
// throttled request still gets the rule-based reply.
func (h *Handler) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limiter.Allow(c.ClientIP()) {
			c.Set(throttledKey, true)
		}
		c.Next()
	}
}

func throttled(c *gin.Context) bool {
	return c.GetBool(throttledKey)
}
