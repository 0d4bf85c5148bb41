package widget

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pingboard/internal/models"
)

func sessionSource() *fakeSource {
	day := make(models.Series, 3)
	week := make(models.Series, 5)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range day {
		day[i] = models.Sample{Timestamp: base.Add(time.Duration(i) * time.Hour), Reachable: true}
	}
	for i := range week {
		week[i] = models.Sample{Timestamp: base.Add(time.Duration(i) * 24 * time.Hour), Reachable: true}
	}
	return &fakeSource{
		series: map[int]models.Series{24: day, 168: week},
		stats: map[int]*models.Statistics{
			24:  {SampleCount: 3, UptimePercent: 100},
			168: {SampleCount: 5, UptimePercent: 98},
		},
	}
}

func TestSessionOpenDefaultsTo24h(t *testing.T) {
	s, err := OpenSession(sessionSource(), "w", "10.0.0.1")
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	defer s.Close()

	series, stats, period, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if period != 24 {
		t.Errorf("period = %d, want default 24", period)
	}
	if len(series) != 3 {
		t.Errorf("series length = %d, want 3", len(series))
	}
	if stats == nil || stats.SampleCount != 3 {
		t.Errorf("stats = %+v, want 24h statistics", stats)
	}
}

func TestSessionSetPeriod(t *testing.T) {
	s, err := OpenSession(sessionSource(), "w", "10.0.0.1")
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	defer s.Close()

	if err := s.SetPeriod(168); err != nil {
		t.Fatalf("SetPeriod(168) failed: %v", err)
	}
	series, stats, period, _ := s.Snapshot()
	if period != 168 || len(series) != 5 {
		t.Errorf("after SetPeriod: period = %d series = %d samples, want 168 and 5", period, len(series))
	}
	if stats == nil || stats.SampleCount != 5 {
		t.Errorf("after SetPeriod: stats = %+v, want weekly statistics", stats)
	}

	if err := s.SetPeriod(13); err == nil || !strings.Contains(err.Error(), "unsupported period") {
		t.Errorf("SetPeriod(13) = %v, want unsupported period error", err)
	}
}

func TestSessionKeepsSeriesWhenPeriodFetchFails(t *testing.T) {
	src := sessionSource()
	s, err := OpenSession(src, "w", "10.0.0.1")
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	defer s.Close()

	src.setHistoryErr(errors.New("backend down"))
	if err := s.SetPeriod(168); err == nil {
		t.Fatalf("SetPeriod() with failing source = nil, want error")
	}

	series, _, _, lastErr := s.Snapshot()
	if len(series) != 3 {
		t.Errorf("series length = %d, want previous 24h series kept", len(series))
	}
	if lastErr == nil {
		t.Errorf("Snapshot() lastErr = nil, want recorded fetch error")
	}
}

func TestSessionOpenFailure(t *testing.T) {
	src := sessionSource()
	src.setHistoryErr(errors.New("no store"))

	if _, err := OpenSession(src, "w", "10.0.0.1"); err == nil {
		t.Fatalf("OpenSession() with failing source = nil error, want failure")
	}
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(15 * time.Minute)

	s, err := r.Open(sessionSource(), "w", "10.0.0.1")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if got := r.Get(s.ID); got != s {
		t.Errorf("Get(%q) = %v, want the opened session", s.ID, got)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}

	r.Close(s.ID)
	if got := r.Get(s.ID); got != nil {
		t.Errorf("Get() after Close = %v, want nil", got)
	}
	if s.ctx.Err() == nil {
		t.Errorf("session context still live after Close")
	}
}

func TestRegistrySweepReapsIdleSessions(t *testing.T) {
	r := NewRegistry(15 * time.Minute)

	idle, err := r.Open(sessionSource(), "w", "10.0.0.1")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	fresh, err := r.Open(sessionSource(), "w", "10.0.0.2")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	// Only the idle session crosses the threshold at sweep time.
	fresh.mu.Lock()
	fresh.lastAccess = time.Now().Add(10 * time.Minute)
	fresh.mu.Unlock()

	r.sweepOnce(time.Now().Add(20 * time.Minute))

	if r.Get(idle.ID) != nil {
		t.Errorf("idle session survived sweep")
	}
	if r.Get(fresh.ID) == nil {
		t.Errorf("recently used session was reaped")
	}
}
