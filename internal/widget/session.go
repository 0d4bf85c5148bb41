package widget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pingboard/internal/graph"
	"pingboard/internal/models"
)

// DetailSession is one zoomed view over a single target. It owns its own
// period-scoped Series and Statistics fetches; opening and closing it never
// touches the card's poll loop.
type DetailSession struct {
	ID       string
	WidgetID string
	Target   string

	source models.DataSource

	mu          sync.Mutex
	periodHours int
	series      models.Series
	stats       *models.Statistics
	lastErr     error
	generation  uint64
	lastAccess  time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// OpenSession creates a session at the default period and runs its first
// fetch. A failed first fetch fails the open.
func OpenSession(source models.DataSource, widgetID, target string) (*DetailSession, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &DetailSession{
		ID:          uuid.NewString(),
		WidgetID:    widgetID,
		Target:      target,
		source:      source,
		periodHours: graph.DefaultDetailPeriodHours,
		lastAccess:  time.Now(),
		ctx:         ctx,
		cancel:      cancel,
	}
	if err := s.refresh(); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// SetPeriod switches the session to a supported period and re-fetches. On
// fetch failure the previous series keeps serving and the error is recorded.
func (s *DetailSession) SetPeriod(hours int) error {
	if !graph.ValidPeriod(hours) {
		return fmt.Errorf("unsupported period %d hours", hours)
	}

	s.mu.Lock()
	s.periodHours = hours
	s.mu.Unlock()

	return s.refresh()
}

// refresh fetches series and statistics for the current period. A result
// arriving after supersession or close is discarded.
func (s *DetailSession) refresh() error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	period := s.periodHours
	s.mu.Unlock()

	series, err := s.source.History(s.ctx, s.Target, period)
	var stats *models.Statistics
	if err == nil {
		stats, err = s.source.Statistics(s.ctx, s.Target, period)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.ctx.Err() != nil {
		return nil
	}
	if err != nil {
		s.lastErr = fmt.Errorf("detail fetch for %s failed: %w", s.Target, err)
		return s.lastErr
	}
	s.lastErr = nil
	s.series = series
	s.stats = stats
	return nil
}

// Snapshot returns the current series, statistics, period and last error
func (s *DetailSession) Snapshot() (models.Series, *models.Statistics, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	return s.series, s.stats, s.periodHours, s.lastErr
}

// Window resolves the session's current time window
func (s *DetailSession) Window() graph.Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.ResolveWindow(s.series, s.periodHours)
}

// Close disposes the session and cancels any in-flight fetch
func (s *DetailSession) Close() {
	s.cancel()
}

func (s *DetailSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Registry tracks open detail sessions by id and reaps abandoned ones
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*DetailSession
	maxIdle  time.Duration
}

// NewRegistry creates a registry reaping sessions idle longer than maxIdle
func NewRegistry(maxIdle time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*DetailSession),
		maxIdle:  maxIdle,
	}
}

// Open creates and registers a new session
func (r *Registry) Open(source models.DataSource, widgetID, target string) (*DetailSession, error) {
	s, err := OpenSession(source, widgetID, target)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns a session by id, nil when unknown
func (r *Registry) Get(id string) *DetailSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// Close removes a session and cancels its work
func (r *Registry) Close(id string) {
	r.mu.Lock()
	s := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

// Sweep starts a reaper that closes abandoned sessions until ctx ends
func (r *Registry) Sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweepOnce(time.Now())
		}
	}
}

func (r *Registry) sweepOnce(now time.Time) {
	r.mu.Lock()
	var expired []*DetailSession
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.maxIdle {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
}
