package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pingboard/internal/models"
)

type fakeSource struct {
	mu         sync.Mutex
	payload    *models.WidgetPayload
	err        error
	series     map[int]models.Series
	stats      map[int]*models.Statistics
	historyErr error
}

func (f *fakeSource) WidgetData(ctx context.Context, widgetID string) (*models.WidgetPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *fakeSource) History(ctx context.Context, target string, periodHours int) (models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.series[periodHours], nil
}

func (f *fakeSource) Statistics(ctx context.Context, target string, periodHours int) (*models.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats[periodHours], nil
}

func (f *fakeSource) set(p *models.WidgetPayload, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payload, f.err = p, err
}

func (f *fakeSource) setHistoryErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyErr = err
}

func payloadNamed(name string) *models.WidgetPayload {
	return &models.WidgetPayload{
		Targets:   []models.Target{{Address: "10.0.0.1", Name: name}},
		FetchedAt: time.Now(),
	}
}

func TestControllerPollStates(t *testing.T) {
	src := &fakeSource{payload: payloadNamed("first")}
	c := NewController(ControllerConfig{WidgetID: "w", Source: src, Interval: time.Minute})

	if state, payload, _ := c.Snapshot(); state != StateLoading || payload != nil {
		t.Fatalf("before first poll: state = %v payload = %v, want loading and nil", state, payload)
	}

	c.poll()
	state, payload, err := c.Snapshot()
	if state != StateData || err != nil {
		t.Fatalf("after first poll: state = %v err = %v, want data and nil", state, err)
	}
	if payload == nil || payload.Targets[0].Name != "first" {
		t.Fatalf("after first poll: payload = %+v, want first fetch", payload)
	}

	// A failing poll flips to error but keeps the stale payload visible.
	src.set(nil, errors.New("backend down"))
	c.poll()
	state, payload, err = c.Snapshot()
	if state != StateError || err == nil {
		t.Errorf("after failed poll: state = %v err = %v, want error state", state, err)
	}
	if payload == nil || payload.Targets[0].Name != "first" {
		t.Errorf("after failed poll: payload = %+v, want stale first payload", payload)
	}

	// Recovery replaces the payload again.
	src.set(payloadNamed("second"), nil)
	c.poll()
	state, payload, err = c.Snapshot()
	if state != StateData || err != nil || payload.Targets[0].Name != "second" {
		t.Errorf("after recovery: state = %v err = %v payload = %+v", state, err, payload)
	}
}

func TestControllerDiscardsSupersededFetch(t *testing.T) {
	c := NewController(ControllerConfig{WidgetID: "w", Source: &fakeSource{}})

	slow := c.beginFetch()
	fast := c.beginFetch()

	c.completeFetch(fast, payloadNamed("fast"), nil, false)
	c.completeFetch(slow, payloadNamed("slow"), nil, false)

	_, payload, _ := c.Snapshot()
	if payload == nil || payload.Targets[0].Name != "fast" {
		t.Errorf("payload = %+v, want the most recent fetch to win", payload)
	}
}

func TestControllerDiscardsFetchAfterStop(t *testing.T) {
	c := NewController(ControllerConfig{WidgetID: "w", Source: &fakeSource{}})

	gen := c.beginFetch()
	c.Stop()
	c.completeFetch(gen, payloadNamed("late"), nil, false)

	_, payload, _ := c.Snapshot()
	if payload != nil {
		t.Errorf("payload = %+v, want nil after a post-stop completion", payload)
	}
}

func TestControllerPayloadErrorField(t *testing.T) {
	src := &fakeSource{payload: payloadNamed("good")}
	c := NewController(ControllerConfig{WidgetID: "w", Source: src})
	c.poll()

	bad := payloadNamed("bad")
	bad.Error = "degraded backend"
	src.set(bad, nil)
	c.poll()

	state, payload, err := c.Snapshot()
	if state != StateError || err == nil {
		t.Errorf("state = %v err = %v, want error from payload error field", state, err)
	}
	if payload == nil || payload.Targets[0].Name != "good" {
		t.Errorf("payload = %+v, want stale good payload", payload)
	}
}

func TestControllerFallbackSource(t *testing.T) {
	primary := &fakeSource{err: errors.New("history endpoint gone")}
	fallback := &fakeSource{payload: &models.WidgetPayload{
		Targets: []models.Target{{Address: "10.0.0.1", Name: "degraded"}},
	}}
	c := NewController(ControllerConfig{
		WidgetID:         "w",
		Source:           primary,
		Fallback:         fallback,
		Interval:         time.Minute,
		FallbackInterval: 30 * time.Second,
	})

	c.poll()

	state, payload, err := c.Snapshot()
	if state != StateData || err != nil {
		t.Fatalf("state = %v err = %v, want data from fallback", state, err)
	}
	if len(payload.Targets[0].History) != 0 {
		t.Errorf("fallback target history = %d samples, want empty", len(payload.Targets[0].History))
	}
	if !c.Degraded() {
		t.Errorf("Degraded() = false, want true after fallback poll")
	}
	if got := c.nextInterval(); got != 30*time.Second {
		t.Errorf("nextInterval() = %v, want fallback interval 30s", got)
	}

	// Primary recovery restores the normal cadence.
	primary.set(payloadNamed("recovered"), nil)
	c.poll()
	if c.Degraded() {
		t.Errorf("Degraded() = true after primary recovered")
	}
	if got := c.nextInterval(); got != time.Minute {
		t.Errorf("nextInterval() = %v, want primary interval 1m", got)
	}
}

func TestControllerStartStop(t *testing.T) {
	src := &fakeSource{payload: payloadNamed("live")}
	c := NewController(ControllerConfig{WidgetID: "w", Source: src, Interval: time.Hour})
	c.Start()

	deadline := time.After(5 * time.Second)
	for {
		state, _, _ := c.Snapshot()
		if state == StateData {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("controller never reached data state")
		case <-time.After(5 * time.Millisecond):
		}
	}

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Stop() did not return")
	}
}

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("w")

	hub.Publish("w", payloadNamed("one"))
	hub.Publish("other", payloadNamed("ignored"))

	select {
	case update := <-ch:
		if update.WidgetID != "w" || update.Payload.Targets[0].Name != "one" {
			t.Errorf("update = %+v, want widget w payload one", update)
		}
	default:
		t.Fatalf("no update delivered to subscriber")
	}

	select {
	case update := <-ch:
		t.Fatalf("unexpected second update %+v", update)
	default:
	}

	cancel()
	hub.Publish("w", payloadNamed("two"))
	select {
	case update := <-ch:
		t.Fatalf("update %+v delivered after unsubscribe", update)
	default:
	}
}

func TestHubDropsWhenSubscriberLags(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("w")
	defer cancel()

	for i := 0; i < 10; i++ {
		hub.Publish("w", payloadNamed("burst"))
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered updates = %d, want full buffer %d with the rest dropped", len(ch), cap(ch))
	}
}
