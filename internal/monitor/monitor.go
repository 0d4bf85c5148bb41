package monitor

import (
	"context"
	"log"
	"sync"

	"pingboard/internal/config"
	"pingboard/internal/database"
	"pingboard/internal/models"
)

// record pairs a sample with the target it was measured against while it
// travels through the results channel.
type record struct {
	target string
	sample models.Sample
}

// Monitor schedules probe bursts for every configured target and persists
// the samples.
type Monitor struct {
	config  config.Config
	db      *database.DB
	engine  models.ProbeEngine
	results chan record
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a new Monitor
func New(cfg config.Config, db *database.DB, engine models.ProbeEngine) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		config:  cfg,
		db:      db,
		engine:  engine,
		results: make(chan record, 100),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins probing all configured targets
func (m *Monitor) Start() error {
	targets := m.config.Targets()
	log.Printf("Starting monitor with %d targets", len(targets))

	m.wg.Add(1)
	go m.processResults()

	for _, target := range targets {
		m.wg.Add(1)
		go m.probeWorker(target.Address)
	}

	m.wg.Add(1)
	go m.maintenanceWorker()

	log.Printf("Monitor started. Probing every %v", m.config.Probe.Interval())
	return nil
}

// Stop signals all workers to finish
func (m *Monitor) Stop() {
	log.Println("Stopping monitor...")
	m.cancel()
}

// Wait blocks until all goroutines finish
func (m *Monitor) Wait() {
	m.wg.Wait()
	log.Println("Monitor stopped")
}
