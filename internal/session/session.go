// Package session drives a single simulated user through its lifecycle:
// pick endpoints, pause like a human, record what happened.
package session

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dev-kir/web-stress/internal/profile"
)

// ServerIDHeader is the response header used to identify which backend
// instance in a pool served a request.
const ServerIDHeader = "X-Server-ID"

// unknownServer is recorded when a backend does not identify itself.
const unknownServer = "unknown"

// Doer abstracts the HTTP client so tests can substitute their own transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Stats is the per-session accumulator. It is owned exclusively by the
// running session and handed off read-only once the session terminates.
type Stats struct {
	Requests          int
	Successes         int
	Errors            int
	TotalResponseTime time.Duration
	ServersHit        map[string]struct{}
}

// NewStats returns an empty accumulator.
func NewStats() Stats {
	return Stats{ServersHit: make(map[string]struct{})}
}

// Runner executes user sessions against a target base URL.
type Runner struct {
	client  Doer
	baseURL string
	headers map[string]string
	logger  *zap.Logger
}

// NewRunner creates a session runner. Extra headers are sent with every
// request (e.g. a User-Agent identifying the generator).
func NewRunner(client Doer, baseURL string, headers map[string]string, logger *zap.Logger) *Runner {
	return &Runner{
		client:  client,
		baseURL: baseURL,
		headers: headers,
		logger:  logger.Named("session"),
	}
}

// Run executes one complete session and returns its statistics. It blocks
// only on timers and network I/O, so thousands of concurrent sessions stay
// cheap. The session self-terminates on its page budget or its sampled
// deadline, whichever comes first; per-request failures never abort it.
// Cancelling ctx ends the session early at the next suspension point.
func (r *Runner) Run(ctx context.Context, id int64, p *profile.Profile) Stats {
	// Each session owns its RNG; *rand.Rand is not safe for concurrent use.
	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ (id << 17)))

	duration := p.SessionDuration.Sample(rng)
	budget := p.PagesPerSession.Sample(rng)
	start := time.Now()

	logger := r.logger.With(
		zap.Int64("session_id", id),
		zap.String("profile", p.Name),
	)
	logger.Debug("Session started",
		zap.Duration("planned_duration", duration),
		zap.Int("page_budget", budget),
	)

	stats := NewStats()
	for pages := 0; time.Since(start) < duration && pages < budget; pages++ {
		if ctx.Err() != nil {
			break
		}
		endpoint := p.PickEndpoint(rng)
		r.request(ctx, &stats, endpoint, logger)

		// Think only when another page is coming; a user does not pause
		// after leaving the site.
		if time.Since(start) < duration && pages+1 < budget {
			if !pause(ctx, p.ThinkTime.Sample(rng)) {
				break
			}
		}
	}

	logger.Debug("Session finished",
		zap.Int("requests", stats.Requests),
		zap.Int("errors", stats.Errors),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stats
}

// pause sleeps for the think-time delay, waking early on cancellation.
// It reports whether the session should continue.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// request performs one page view and records its outcome. Any failure is
// fully isolated to this one request: counted, never retried, never
// propagated.
func (r *Runner) request(ctx context.Context, stats *Stats, endpoint string, logger *zap.Logger) {
	stats.Requests++

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+endpoint, nil)
	if err != nil {
		stats.Errors++
		logger.Debug("Failed to build request", zap.String("endpoint", endpoint), zap.Error(err))
		return
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		stats.Errors++
		logger.Debug("Request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Read the whole body so transfer time is part of the measurement, and
	// so the connection can be reused.
	_, readErr := io.Copy(io.Discard, resp.Body)
	elapsed := time.Since(start)

	if readErr != nil || resp.StatusCode >= http.StatusBadRequest {
		stats.Errors++
		logger.Debug("Request completed with error",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Error(readErr),
		)
		return
	}

	stats.Successes++
	stats.TotalResponseTime += elapsed

	serverID := resp.Header.Get(ServerIDHeader)
	if serverID == "" {
		serverID = unknownServer
	}
	stats.ServersHit[serverID] = struct{}{}
}
