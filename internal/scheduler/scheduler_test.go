package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/kavete/health-monitor/internal/charts"
	"github.com/kavete/health-monitor/internal/logger"
	"github.com/kavete/health-monitor/internal/models"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.FATAL, Output: io.Discard})
}

type fakeFetcher struct {
	mu      sync.Mutex
	fetches int
	err     error
	payload models.RefreshPayload
	started chan struct{}
	release chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context) (models.RefreshPayload, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return models.RefreshPayload{}, f.err
	}
	return f.payload, nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type fakeApplier struct {
	mu      sync.Mutex
	applied []models.RefreshPayload
	stale   bool
	updates []charts.Update
}

func (a *fakeApplier) Apply(p models.RefreshPayload) []charts.Update {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, p)
	return a.updates
}

func (a *fakeApplier) SetStale(stale bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stale = stale
}

func (a *fakeApplier) applyCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.applied)
}

func (a *fakeApplier) isStale() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stale
}

type fakePublisher struct {
	mu        sync.Mutex
	published int
}

func (p *fakePublisher) Publish(dashboard string, updates []charts.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published++
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published
}

func testPayload() models.RefreshPayload {
	v := 21.5
	return models.RefreshPayload{
		Labels: []string{"10:00:00"},
		Series: map[string][]*float64{models.SeriesTemperature: {&v}},
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateFetching, "fetching"},
		{StateApplying, "applying"},
		{StateFailed, "failed"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestTickFetchesAppliesPublishes(t *testing.T) {
	fetcher := &fakeFetcher{payload: testPayload()}
	applier := &fakeApplier{updates: []charts.Update{{Surface: "chart-temp"}}}
	publisher := &fakePublisher{}

	s := New("test", time.Second, 3, fetcher, applier, publisher, testLogger())
	s.tick(context.Background())

	if applier.applyCount() != 1 {
		t.Errorf("expected 1 apply, got %d", applier.applyCount())
	}
	if publisher.count() != 1 {
		t.Errorf("expected 1 publish, got %d", publisher.count())
	}
	if s.State() != StateIdle {
		t.Errorf("expected idle after tick, got %s", s.State())
	}
	if s.Failures() != 0 {
		t.Errorf("expected 0 failures, got %d", s.Failures())
	}
}

func TestFetchFailureLeavesChartStateUntouched(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	applier := &fakeApplier{}

	s := New("test", time.Second, 3, fetcher, applier, nil, testLogger())
	s.tick(context.Background())

	if applier.applyCount() != 0 {
		t.Errorf("apply must not run on fetch failure, ran %d times", applier.applyCount())
	}
	if s.State() != StateIdle {
		t.Errorf("expected idle for retry on next tick, got %s", s.State())
	}
	if s.Failures() != 1 {
		t.Errorf("expected 1 failure, got %d", s.Failures())
	}
}

func TestConsecutiveFailuresMarkStale(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	applier := &fakeApplier{}

	s := New("test", time.Second, 3, fetcher, applier, nil, testLogger())
	for i := 0; i < 2; i++ {
		s.tick(context.Background())
	}
	if applier.isStale() {
		t.Fatal("stale before threshold")
	}

	s.tick(context.Background())
	if !applier.isStale() {
		t.Fatal("expected stale after 3 consecutive failures")
	}

	// Recovery clears the marker and resets the counter.
	fetcher.err = nil
	fetcher.payload = testPayload()
	s.tick(context.Background())
	if applier.isStale() {
		t.Error("expected stale cleared after successful tick")
	}
	if s.Failures() != 0 {
		t.Errorf("expected failure counter reset, got %d", s.Failures())
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	applier := &fakeApplier{}

	s := New("test", time.Second, 5, fetcher, applier, nil, testLogger())
	s.tick(context.Background())
	s.tick(context.Background())

	fetcher.err = nil
	fetcher.payload = testPayload()
	s.tick(context.Background())

	if s.Failures() != 0 {
		t.Errorf("expected failure counter reset, got %d", s.Failures())
	}
	if applier.isStale() {
		t.Error("stale must not be set below the threshold")
	}
}

func TestOverlappingTickIsSkipped(t *testing.T) {
	fetcher := &fakeFetcher{
		payload: testPayload(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	applier := &fakeApplier{}

	s := New("test", time.Second, 3, fetcher, applier, nil, testLogger())

	done := make(chan struct{})
	go func() {
		s.tick(context.Background())
		close(done)
	}()
	<-fetcher.started

	// Second tick while the first fetch is still in flight.
	s.tick(context.Background())
	if got := fetcher.count(); got != 1 {
		t.Errorf("expected exactly one in-flight fetch, got %d", got)
	}

	close(fetcher.release)
	<-done

	if applier.applyCount() != 1 {
		t.Errorf("expected 1 apply, got %d", applier.applyCount())
	}
	if s.State() != StateIdle {
		t.Errorf("expected idle, got %s", s.State())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{payload: testPayload()}
	applier := &fakeApplier{}

	s := New("test", 10*time.Millisecond, 3, fetcher, applier, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}

	if fetcher.count() == 0 {
		t.Error("expected at least one fetch while running")
	}
}
