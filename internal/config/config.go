// Package config loads the pingboard configuration from a YAML or TOML
// file, layers command line overrides on top, and validates the result.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"pingboard/internal/models"
	"pingboard/internal/probe"
)

// ProbeSettings controls the probe scheduler
type ProbeSettings struct {
	IntervalSeconds         int    `koanf:"interval_seconds" json:"interval_seconds" yaml:"interval_seconds" toml:"interval_seconds"`
	FallbackIntervalSeconds int    `koanf:"fallback_interval_seconds" json:"fallback_interval_seconds" yaml:"fallback_interval_seconds" toml:"fallback_interval_seconds"`
	TimeoutSeconds          int    `koanf:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	Count                   int    `koanf:"count" json:"count" yaml:"count" toml:"count"`
	Privileged              bool   `koanf:"privileged" json:"privileged" yaml:"privileged" toml:"privileged"`
	Engine                  string `koanf:"engine" json:"engine" yaml:"engine" toml:"engine"`
}

// Interval returns the probe interval as a duration
func (p ProbeSettings) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// FallbackInterval returns the degraded-mode poll interval as a duration
func (p ProbeSettings) FallbackInterval() time.Duration {
	return time.Duration(p.FallbackIntervalSeconds) * time.Second
}

// Timeout returns the per-burst timeout as a duration
func (p ProbeSettings) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// TargetConfig names one probed address
type TargetConfig struct {
	Address string `koanf:"address" json:"address" yaml:"address" toml:"address"`
	Name    string `koanf:"name" json:"name" yaml:"name" toml:"name"`
}

// Widget groups targets onto one dashboard card. A widget without its own
// thresholds inherits the global defaults.
type Widget struct {
	ID         string             `koanf:"id" json:"id" yaml:"id" toml:"id"`
	Name       string             `koanf:"name" json:"name" yaml:"name" toml:"name"`
	Targets    []TargetConfig     `koanf:"targets" json:"targets" yaml:"targets" toml:"targets"`
	Thresholds *models.Thresholds `koanf:"thresholds" json:"thresholds,omitempty" yaml:"thresholds,omitempty" toml:"thresholds"`
}

// RetentionSettings controls database pruning
type RetentionSettings struct {
	RawDays       int `koanf:"raw_days" json:"raw_days" yaml:"raw_days" toml:"raw_days"`
	AggregateDays int `koanf:"aggregate_days" json:"aggregate_days" yaml:"aggregate_days" toml:"aggregate_days"`
}

// ReportSettings controls report generation
type ReportSettings struct {
	OutputDir string `koanf:"output_dir" json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	Hours     int    `koanf:"hours" json:"hours" yaml:"hours" toml:"hours"`
}

// Config holds all configuration for pingboard
type Config struct {
	Listen    string            `koanf:"listen" json:"listen" yaml:"listen" toml:"listen"`
	Database  string            `koanf:"database" json:"database" yaml:"database" toml:"database"`
	Probe     ProbeSettings     `koanf:"probe" json:"probe" yaml:"probe" toml:"probe"`
	Defaults  models.Thresholds `koanf:"defaults" json:"defaults" yaml:"defaults" toml:"defaults"`
	Widgets   []Widget          `koanf:"widgets" json:"widgets" yaml:"widgets" toml:"widgets"`
	Retention RetentionSettings `koanf:"retention" json:"retention" yaml:"retention" toml:"retention"`
	Report    ReportSettings    `koanf:"report" json:"report" yaml:"report" toml:"report"`
}

// Default returns the configuration used when the file omits a setting
func Default() Config {
	return Config{
		Listen:   ":8080",
		Database: "pingboard.db",
		Probe: ProbeSettings{
			IntervalSeconds:         60,
			FallbackIntervalSeconds: 30,
			TimeoutSeconds:          5,
			Count:                   5,
			Engine:                  probe.EngineICMP,
		},
		Defaults: models.Thresholds{
			LatencyWarningMs:    100,
			LatencyCriticalMs:   500,
			LossWarningPercent:  5,
			LossCriticalPercent: 25,
			ShowJitter:          true,
			ShowPacketLoss:      true,
			ShowStatistics:      true,
			GraphHeightPx:       60,
		},
		Widgets: []Widget{
			{
				ID:   "connectivity",
				Name: "Connectivity",
				Targets: []TargetConfig{
					{Address: "8.8.8.8", Name: "Google DNS"},
					{Address: "1.1.1.1", Name: "Cloudflare DNS"},
				},
			},
		},
		Retention: RetentionSettings{RawDays: 7, AggregateDays: 90},
		Report:    ReportSettings{OutputDir: "reports", Hours: 24},
	}
}

// Load reads the config file at path, chosen by extension, on top of the
// defaults. Keys the file omits keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	var parser koanf.Parser
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}

	k := koanf.New("")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return cfg, fmt.Errorf("reading config failed: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config failed: %w", err)
	}

	for i := range cfg.Widgets {
		if cfg.Widgets[i].Thresholds == nil {
			t := cfg.Defaults
			cfg.Widgets[i].Thresholds = &t
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.Database == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Probe.IntervalSeconds <= 0 {
		return fmt.Errorf("probe interval must be positive")
	}
	if c.Probe.FallbackIntervalSeconds <= 0 {
		return fmt.Errorf("fallback interval must be positive")
	}
	if c.Probe.TimeoutSeconds <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}
	if c.Probe.Count <= 0 {
		return fmt.Errorf("probe count must be positive")
	}
	switch c.Probe.Engine {
	case "", probe.EngineICMP, probe.EngineExec:
	default:
		return fmt.Errorf("unknown probe engine %q", c.Probe.Engine)
	}
	if len(c.Widgets) == 0 {
		return fmt.Errorf("at least one widget must be configured")
	}

	seen := make(map[string]bool)
	for _, w := range c.Widgets {
		if w.ID == "" {
			return fmt.Errorf("widget id cannot be empty")
		}
		if seen[w.ID] {
			return fmt.Errorf("duplicate widget id %q", w.ID)
		}
		seen[w.ID] = true
		if len(w.Targets) == 0 {
			return fmt.Errorf("widget %q has no targets", w.ID)
		}
		for _, t := range w.Targets {
			if t.Address == "" {
				return fmt.Errorf("widget %q has a target without an address", w.ID)
			}
		}
		if w.Thresholds != nil {
			if err := validateThresholds(*w.Thresholds); err != nil {
				return fmt.Errorf("widget %q: %w", w.ID, err)
			}
		}
	}

	if err := validateThresholds(c.Defaults); err != nil {
		return err
	}
	if c.Retention.RawDays <= 0 || c.Retention.AggregateDays <= 0 {
		return fmt.Errorf("retention periods must be positive")
	}
	return nil
}

func validateThresholds(t models.Thresholds) error {
	if t.LatencyWarningMs > 0 && t.LatencyCriticalMs > 0 && t.LatencyWarningMs > t.LatencyCriticalMs {
		return fmt.Errorf("latency warning threshold above critical threshold")
	}
	if t.LossWarningPercent > 0 && t.LossCriticalPercent > 0 && t.LossWarningPercent > t.LossCriticalPercent {
		return fmt.Errorf("loss warning threshold above critical threshold")
	}
	if t.GraphHeightPx <= 0 {
		return fmt.Errorf("graph height must be positive")
	}
	return nil
}

// Targets returns the unique probed addresses across all widgets, in
// first-seen order.
func (c *Config) Targets() []TargetConfig {
	seen := make(map[string]bool)
	var targets []TargetConfig
	for _, w := range c.Widgets {
		for _, t := range w.Targets {
			if seen[t.Address] {
				continue
			}
			seen[t.Address] = true
			targets = append(targets, t)
		}
	}
	return targets
}

// WidgetByID returns the widget with the given id, nil when absent
func (c *Config) WidgetByID(id string) *Widget {
	for i := range c.Widgets {
		if c.Widgets[i].ID == id {
			return &c.Widgets[i]
		}
	}
	return nil
}
