package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pingboard/internal/config"
	"pingboard/internal/database"
	"pingboard/internal/monitor"
	"pingboard/internal/probe"
	"pingboard/internal/report"
	"pingboard/internal/web"
	"pingboard/internal/widget"
)

// sessionIdleTimeout is how long a detail session may sit untouched before
// the registry sweeper closes it
const sessionIdleTimeout = 15 * time.Minute

func main() {
	opts := config.ParseFlags()

	if opts.WriteConfig {
		if err := config.WriteDefault(opts.ConfigPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		log.Printf("Wrote default configuration to %s", opts.ConfigPath)
		return
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Printf("Config file %s not found, using defaults", opts.ConfigPath)
		cfg = config.Default()
	}
	opts.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// One-shot report mode: render from the existing store and exit.
	if opts.Report {
		gen := report.NewGenerator(db, cfg)
		if _, err := gen.Generate(cfg.Report.OutputDir, cfg.Report.Hours); err != nil {
			log.Fatalf("Failed to generate report: %v", err)
		}
		return
	}

	// Initialize components
	prober := probe.New(probe.Config{
		Count:      cfg.Probe.Count,
		Privileged: cfg.Probe.Privileged,
		Engine:     cfg.Probe.Engine,
	})
	mon := monitor.New(cfg, db, prober)

	source := widget.NewStoreSource(db, cfg)
	fallback := widget.NewCurrentOnlySource(db, cfg)
	hub := widget.NewHub()

	ctrlConfigs := make([]widget.ControllerConfig, 0, len(cfg.Widgets))
	for _, w := range cfg.Widgets {
		ctrlConfigs = append(ctrlConfigs, widget.ControllerConfig{
			WidgetID:         w.ID,
			Source:           source,
			Fallback:         fallback,
			Interval:         cfg.Probe.Interval(),
			FallbackInterval: cfg.Probe.FallbackInterval(),
			Hub:              hub,
		})
	}
	manager := widget.NewManager(ctrlConfigs)

	sessions := widget.NewRegistry(sessionIdleTimeout)
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go sessions.Sweep(sweepCtx)

	server := web.New(cfg, source, manager, hub, sessions)

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := mon.Start(); err != nil {
		log.Fatalf("Failed to start monitor: %v", err)
	}
	manager.StartAll()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Web server failed: %v", err)
		}
	}()

	log.Printf("Serving %d widgets on %s", len(cfg.Widgets), cfg.Listen)

	<-sigChan
	log.Println("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Web server shutdown failed: %v", err)
	}

	manager.StopAll()
	cancelSweep()
	mon.Stop()
	mon.Wait()
}
