// Package report writes point-in-time connectivity reports: a detailed
// latency chart per target, a combined availability chart and a text
// summary, suitable as ISP evidence.
package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"pingboard/internal/config"
	"pingboard/internal/database"
)

// Generator creates report directories from the sample store
type Generator struct {
	db  *database.DB
	cfg config.Config
}

// NewGenerator creates a new report generator
func NewGenerator(db *database.DB, cfg config.Config) *Generator {
	return &Generator{db: db, cfg: cfg}
}

// Generate writes a timestamped report directory under outputDir covering
// the last hours of data and returns its path. Individual artifacts that
// fail are logged and skipped so one bad chart does not lose the rest.
func (g *Generator) Generate(outputDir string, hours int) (string, error) {
	if hours <= 0 {
		return "", fmt.Errorf("report period must be positive, got %d hours", hours)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory failed: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	reportDir := filepath.Join(outputDir, fmt.Sprintf("pingboard_report_%s", timestamp))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory failed: %w", err)
	}

	targets := g.cfg.Targets()

	if err := g.latencyCharts(reportDir, targets, hours); err != nil {
		log.Printf("Failed to generate latency charts: %v", err)
	}
	if err := g.availabilityChart(reportDir, targets, hours); err != nil {
		log.Printf("Failed to generate availability chart: %v", err)
	}
	if err := g.textSummary(reportDir, targets, hours); err != nil {
		log.Printf("Failed to generate text summary: %v", err)
	}

	log.Printf("Report generated in: %s", reportDir)
	return reportDir, nil
}
