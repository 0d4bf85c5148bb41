package monitor

import (
	"log"
	"time"
)

// probeWorker probes one target at the configured interval
func (m *Monitor) probeWorker(target string) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Probe.Interval())
	defer ticker.Stop()

	// Immediate first probe
	m.performProbe(target)

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.performProbe(target)
		}
	}
}

// performProbe runs a single burst and queues the sample for persistence
func (m *Monitor) performProbe(target string) {
	sample, err := m.engine.Probe(m.ctx, target, m.config.Probe.Timeout())
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		log.Printf("Failed to probe %s: %v", target, err)
		return
	}

	select {
	case m.results <- record{target: target, sample: sample}:
	default:
		log.Printf("Result channel full, dropping sample for %s", target)
	}
}

// processResults persists samples from the results channel
func (m *Monitor) processResults() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case r := <-m.results:
			if err := m.db.SaveSample(r.target, r.sample); err != nil {
				log.Printf("Failed to save sample for %s: %v", r.target, err)
			}
		}
	}
}
