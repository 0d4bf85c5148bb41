package widget

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"pingboard/internal/models"
)

// State is a controller lifecycle phase
type State string

const (
	StateLoading    State = "loading"
	StateData       State = "data"
	StateRefreshing State = "refreshing"
	StateError      State = "error"
)

// ControllerConfig wires one controller
type ControllerConfig struct {
	WidgetID         string
	Source           models.DataSource
	Fallback         models.DataSource // optional current-only source
	Interval         time.Duration
	FallbackInterval time.Duration
	Hub              *Hub // optional
}

// Controller polls one widget's data source on an interval and holds the
// latest snapshot. A poll that fails keeps the previous good payload
// visible alongside the error. Fetch completions carry a generation; only
// the most recent fetch may update state.
type Controller struct {
	widgetID string
	source   models.DataSource
	fallback models.DataSource
	hub      *Hub

	mu               sync.Mutex
	state            State
	payload          *models.WidgetPayload
	lastErr          error
	generation       uint64
	degraded         bool
	interval         time.Duration
	fallbackInterval time.Duration

	kick   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a stopped controller
func NewController(cfg ControllerConfig) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		widgetID:         cfg.WidgetID,
		source:           cfg.Source,
		fallback:         cfg.Fallback,
		hub:              cfg.Hub,
		state:            StateLoading,
		interval:         cfg.Interval,
		fallbackInterval: cfg.FallbackInterval,
		kick:             make(chan struct{}, 1),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// Start launches the poll loop. The first fetch happens immediately.
func (c *Controller) Start() {
	c.wg.Add(1)
	go c.pollLoop()
}

// Stop cancels the poll loop and any in-flight fetch, then waits for the
// loop to exit. A fetch resolving after Stop is discarded.
func (c *Controller) Stop() {
	c.cancel()
	c.wg.Wait()
}

// SetInterval changes the poll interval and reschedules the next poll
func (c *Controller) SetInterval(d time.Duration) {
	c.mu.Lock()
	c.interval = d
	c.mu.Unlock()

	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Snapshot returns the state, the last good payload and the last error.
// The payload survives error states so stale data stays visible.
func (c *Controller) Snapshot() (State, *models.WidgetPayload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.payload, c.lastErr
}

// Degraded reports whether the last poll came from the fallback source
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

func (c *Controller) pollLoop() {
	defer c.wg.Done()

	for {
		c.poll()

		timer := time.NewTimer(c.nextInterval())
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return
		case <-c.kick:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// nextInterval picks the poll cadence: the fallback interval while degraded
func (c *Controller) nextInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.degraded {
		return c.fallbackInterval
	}
	return c.interval
}

func (c *Controller) poll() {
	gen := c.beginFetch()

	payload, err := c.source.WidgetData(c.ctx, c.widgetID)
	degraded := false
	if err != nil && c.fallback != nil && c.ctx.Err() == nil {
		log.Printf("Widget %s primary source failed (%v), trying current-only fallback", c.widgetID, err)
		if fbPayload, fbErr := c.fallback.WidgetData(c.ctx, c.widgetID); fbErr == nil {
			payload, err = fbPayload, nil
			degraded = true
		}
	}

	c.completeFetch(gen, payload, err, degraded)
}

// beginFetch advances the generation and moves the state machine into its
// in-flight phase: refreshing when good data exists, loading otherwise.
func (c *Controller) beginFetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.payload != nil {
		c.state = StateRefreshing
	} else {
		c.state = StateLoading
	}
	return c.generation
}

// completeFetch applies a fetch result unless it was superseded by a newer
// fetch or the controller stopped in the meantime.
func (c *Controller) completeFetch(gen uint64, payload *models.WidgetPayload, err error, degraded bool) {
	c.mu.Lock()
	if gen != c.generation || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}

	if err == nil && payload != nil && payload.Error != "" {
		err = errors.New(payload.Error)
	}

	var publish *models.WidgetPayload
	if err != nil {
		c.state = StateError
		c.lastErr = err
		c.degraded = false
	} else {
		c.state = StateData
		c.lastErr = nil
		c.payload = payload
		c.degraded = degraded
		publish = payload
	}
	hub := c.hub
	widgetID := c.widgetID
	c.mu.Unlock()

	if publish != nil && hub != nil {
		hub.Publish(widgetID, publish)
	}
}

// Manager owns one controller per configured widget
type Manager struct {
	controllers map[string]*Controller
}

// NewManager builds controllers for every widget in cfg order
func NewManager(cfgs []ControllerConfig) *Manager {
	m := &Manager{controllers: make(map[string]*Controller)}
	for _, cfg := range cfgs {
		m.controllers[cfg.WidgetID] = NewController(cfg)
	}
	return m
}

// Controller returns the controller for a widget id, nil when unknown
func (m *Manager) Controller(widgetID string) *Controller {
	return m.controllers[widgetID]
}

// StartAll launches every controller
func (m *Manager) StartAll() {
	for _, c := range m.controllers {
		c.Start()
	}
}

// StopAll stops every controller and waits for them
func (m *Manager) StopAll() {
	for _, c := range m.controllers {
		c.Stop()
	}
}
