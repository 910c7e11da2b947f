package stressserver

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dev-kir/web-stress/internal/session"
)

// Response headers attached to every tracked endpoint.
const (
	headerResponseTime = "X-Response-Time-Ms"
	headerRequestID    = "X-Request-ID"
	headerEndpoint     = "X-Endpoint"
)

// Tracker counts requests per endpoint and stamps tracking headers on
// responses. The counter is mutated from concurrently-handled requests, so
// the total is atomic and the per-endpoint map sits behind a mutex.
type Tracker struct {
	serverID string
	total    atomic.Int64

	mu         sync.Mutex
	byEndpoint map[string]int64
}

// NewTracker creates a tracker identifying this server instance.
func NewTracker(serverID string) *Tracker {
	return &Tracker{
		serverID:   serverID,
		byEndpoint: make(map[string]int64),
	}
}

// ServerID returns the identity stamped on responses.
func (t *Tracker) ServerID() string { return t.serverID }

// Track sets the tracking headers for an endpoint and bumps its counters.
// Must be called before the response body is written.
func (t *Tracker) Track(c *gin.Context, endpoint string, start time.Time) {
	elapsed := time.Since(start)

	c.Header(session.ServerIDHeader, t.serverID)
	c.Header(headerResponseTime, fmt.Sprintf("%.2f", float64(elapsed.Microseconds())/1000))
	c.Header(headerRequestID, uuid.NewString())
	c.Header(headerEndpoint, endpoint)

	t.total.Add(1)
	t.mu.Lock()
	t.byEndpoint[endpoint]++
	t.mu.Unlock()
}

// Snapshot returns the total request count and a copy of the per-endpoint
// breakdown.
func (t *Tracker) Snapshot() (int64, map[string]int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	byEndpoint := make(map[string]int64, len(t.byEndpoint))
	for k, v := range t.byEndpoint {
		byEndpoint[k] = v
	}
	return t.total.Load(), byEndpoint
}
