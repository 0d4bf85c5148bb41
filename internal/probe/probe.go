// Package probe measures target reachability. Each probe sends a short
// burst of pings and aggregates the replies into one sample: min/avg/max
// round trip, deviation as jitter, and the loss percentage. The primary
// engine uses native ICMP through go-ping; a fallback engine shells out to
// the system ping binary for processes that cannot open ICMP sockets.
package probe

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"pingboard/internal/models"
)

// Engine names accepted in configuration.
const (
	EngineICMP = "icmp"
	EngineExec = "exec"
)

// ErrSocket marks a failure to open the ICMP socket, the cue to fall back
// to the system ping binary.
var ErrSocket = errors.New("icmp socket unavailable")

// Config controls how probe bursts run.
type Config struct {
	Count      int    // pings per burst
	Privileged bool   // raw ICMP sockets instead of unprivileged UDP
	Engine     string // icmp or exec; empty selects icmp
}

// Prober runs probe bursts through the configured engine. When the native
// engine cannot open its socket it switches to the system ping binary and
// stays there.
type Prober struct {
	mu       sync.Mutex
	engine   models.ProbeEngine
	fallback models.ProbeEngine
}

// New creates a Prober for the configured engine.
func New(cfg Config) *Prober {
	count := cfg.Count
	if count <= 0 {
		count = 5
	}
	p := &Prober{}
	if cfg.Engine == EngineExec {
		p.engine = NewExecEngine(count)
		return p
	}
	p.engine = NewICMPEngine(count, cfg.Privileged)
	p.fallback = NewExecEngine(count)
	return p
}

// Probe runs one burst against the target.
func (p *Prober) Probe(ctx context.Context, target string, timeout time.Duration) (models.Sample, error) {
	p.mu.Lock()
	engine := p.engine
	fallback := p.fallback
	p.mu.Unlock()

	sample, err := engine.Probe(ctx, target, timeout)
	if err == nil || fallback == nil || !errors.Is(err, ErrSocket) {
		return sample, err
	}

	log.Printf("ICMP engine unavailable (%v), switching to system ping", err)
	p.mu.Lock()
	p.engine = fallback
	p.fallback = nil
	p.mu.Unlock()

	return fallback.Probe(ctx, target, timeout)
}
