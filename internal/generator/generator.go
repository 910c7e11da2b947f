// Package generator maintains a target number of concurrently-active
// simulated user sessions over a wall-clock window, replacing sessions as
// they finish and draining gracefully at the end.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/dev-kir/web-stress/internal/config"
	"github.com/dev-kir/web-stress/internal/profile"
	"github.com/dev-kir/web-stress/internal/report"
	"github.com/dev-kir/web-stress/internal/session"
)

// SessionRunner is the interface the generator needs from the session
// engine. Defined here so tests can swap in instrumented fakes.
type SessionRunner interface {
	Run(ctx context.Context, id int64, p *profile.Profile) session.Stats
}

// outcome is the completion signal a session task sends back to the control
// loop. ok is false when the task died to a recovered panic, in which case
// the stats are excluded from aggregation.
type outcome struct {
	id    int64
	stats session.Stats
	ok    bool
}

// Generator is the concurrency controller. All shared state (the active set
// and the completed list) is mutated exclusively by its control loop;
// sessions communicate completion through the results channel only.
type Generator struct {
	runner   SessionRunner
	profiles *profile.Distribution
	users    int
	duration time.Duration
	tick     time.Duration
	logger   *zap.Logger
	rng      *rand.Rand
}

// New creates a generator. The profile distribution is validated here: an
// empty or all-zero distribution is a configuration fault and nothing runs.
func New(runner SessionRunner, profiles *profile.Distribution, cfg config.GeneratorConfig, logger *zap.Logger) (*Generator, error) {
	if err := profiles.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile distribution: %w", err)
	}
	if cfg.ConcurrentUsers < 1 {
		return nil, fmt.Errorf("concurrent users must be >= 1, got %d", cfg.ConcurrentUsers)
	}
	if cfg.DurationSeconds < 1 {
		return nil, fmt.Errorf("duration must be >= 1s, got %ds", cfg.DurationSeconds)
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = time.Second
	}

	return &Generator{
		runner:   runner,
		profiles: profiles,
		users:    cfg.ConcurrentUsers,
		duration: cfg.Duration(),
		tick:     tick,
		logger:   logger.Named("generator"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run executes the full generation window and returns the aggregated
// summary. Each control tick it reaps finished sessions and tops the active
// set back up to the target; once the window elapses it drains, letting
// in-flight sessions finish naturally rather than aborting them. That means
// total runtime can exceed the nominal duration by the tail of the last
// spawned sessions; callers wanting a hard cutoff must cancel ctx.
func (g *Generator) Run(ctx context.Context) (report.Summary, error) {
	g.logger.Info("Starting traffic generation",
		zap.Int("concurrent_users", g.users),
		zap.Duration("duration", g.duration),
		zap.Int("profiles", g.profiles.Len()),
	)

	start := time.Now()
	var nextID int64

	// Capacity equals the concurrency cap, so a finishing session never
	// blocks on its completion signal.
	results := make(chan outcome, g.users)
	active := make(map[int64]struct{}, g.users)
	var completed []session.Stats

	reap := func(block bool) {
		if block {
			o := <-results
			delete(active, o.id)
			if o.ok {
				completed = append(completed, o.stats)
			}
		}
		for {
			select {
			case o := <-results:
				delete(active, o.id)
				if o.ok {
					completed = append(completed, o.stats)
				}
			default:
				return
			}
		}
	}

	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()

	for time.Since(start) < g.duration && ctx.Err() == nil {
		reap(false)

		// Top up to the target. The cap is hard: never exceeded; transient
		// dips between ticks are accepted.
		for len(active) < g.users {
			id := nextID
			nextID++
			active[id] = struct{}{}
			go g.spawn(ctx, id, g.profiles.Pick(g.rng), results)
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}

	if ctx.Err() != nil {
		g.logger.Warn("Run interrupted, draining active sessions", zap.Int("active", len(active)))
	} else {
		g.logger.Info("Duration elapsed, draining active sessions", zap.Int("active", len(active)))
	}

	// Drain: no new spawns, wait for every active session to stop on its
	// own terms.
	for len(active) > 0 {
		reap(true)
	}

	summary := report.Summarize(completed)
	summary.Duration = time.Since(start)

	g.logger.Info("Traffic generation complete",
		zap.Int("sessions", summary.Sessions),
		zap.Int("requests", summary.Requests),
		zap.Duration("elapsed", summary.Duration),
	)
	return summary, nil
}

// spawn runs one session task. An unexpected fault inside the session is
// contained here: logged, reported as a failed task, and kept away from both
// the aggregate and the other sessions.
func (g *Generator) spawn(ctx context.Context, id int64, p *profile.Profile, results chan<- outcome) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Session task panicked",
				zap.Int64("session_id", id),
				zap.Any("panic", r),
			)
			results <- outcome{id: id, ok: false}
		}
	}()

	stats := g.runner.Run(ctx, id, p)
	results <- outcome{id: id, stats: stats, ok: true}
}
