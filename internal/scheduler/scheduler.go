package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/kavete/health-monitor/internal/charts"
	"github.com/kavete/health-monitor/internal/logger"
	"github.com/kavete/health-monitor/internal/models"
)

// State is the refresh loop's position in one tick cycle.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateApplying
	StateFailed
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateApplying:
		return "applying"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PayloadFetcher produces one refresh payload per call.
type PayloadFetcher interface {
	Fetch(ctx context.Context) (models.RefreshPayload, error)
}

// Applier consumes refresh payloads, typically a charts.Manager.
type Applier interface {
	Apply(p models.RefreshPayload) []charts.Update
	SetStale(stale bool)
}

// Publisher forwards applied updates, typically to the live feed.
type Publisher interface {
	Publish(dashboard string, updates []charts.Update)
}

// Scheduler drives one dashboard's refresh loop at a fixed interval:
// fetch, apply, publish. A tick arriving while a fetch is still in
// flight is skipped, so at most one fetch runs at a time. Failures are
// logged and retried on the next tick without backoff; the prior chart
// state stays untouched.
type Scheduler struct {
	name        string
	interval    time.Duration
	maxFailures int
	fetcher     PayloadFetcher
	applier     Applier
	publisher   Publisher
	log         *logger.Logger

	state    atomic.Int32
	failures atomic.Int32
}

// New creates a scheduler for one dashboard. maxFailures is the number
// of consecutive failed ticks after which the dashboard is marked
// stale; zero disables the marker.
func New(name string, interval time.Duration, maxFailures int, fetcher PayloadFetcher, applier Applier, publisher Publisher, log *logger.Logger) *Scheduler {
	return &Scheduler{
		name:        name,
		interval:    interval,
		maxFailures: maxFailures,
		fetcher:     fetcher,
		applier:     applier,
		publisher:   publisher,
		log:         log,
	}
}

// State returns the current loop state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Failures returns the current consecutive-failure count.
func (s *Scheduler) Failures() int {
	return int(s.failures.Load())
}

// Run drives the refresh loop until the context is cancelled. Each tick
// executes in its own goroutine so a slow fetch never blocks the
// ticker; the state machine guarantees overlapping ticks are dropped
// rather than stacked.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("refresh scheduler started", map[string]interface{}{
		"dashboard": s.name,
		"interval":  s.interval.String(),
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("refresh scheduler stopped", map[string]interface{}{"dashboard": s.name})
			return
		case <-ticker.C:
			go s.tick(ctx)
		}
	}
}

// tick runs one fetch-and-apply cycle: IDLE → FETCHING → (APPLYING |
// FAILED) → IDLE. If the loop is not idle the tick is a no-op.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateFetching)) {
		s.log.Debug("tick skipped, refresh already in flight", map[string]interface{}{"dashboard": s.name})
		return
	}

	payload, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.state.Store(int32(StateFailed))
		failures := int(s.failures.Add(1))
		s.log.Error("refresh fetch failed", err, map[string]interface{}{
			"dashboard": s.name,
			"failures":  failures,
		})
		if s.maxFailures > 0 && failures == s.maxFailures {
			s.log.Warn("marking dashboard stale", map[string]interface{}{
				"dashboard": s.name,
				"failures":  failures,
			})
			s.applier.SetStale(true)
		}
		s.state.Store(int32(StateIdle))
		return
	}

	s.state.Store(int32(StateApplying))
	if s.failures.Swap(0) >= int32(s.maxFailures) && s.maxFailures > 0 {
		s.applier.SetStale(false)
	}

	updates := s.applier.Apply(payload)
	if s.publisher != nil && len(updates) > 0 {
		s.publisher.Publish(s.name, updates)
	}
	s.state.Store(int32(StateIdle))
}
