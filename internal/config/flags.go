package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options holds the command line settings layered over the config file
type Options struct {
	ConfigPath  string
	Listen      string
	Database    string
	Report      bool
	ReportDir   string
	ReportHours int
	WriteConfig bool
}

// ParseFlags parses command-line flags
func ParseFlags() Options {
	var opts Options
	flag.StringVar(&opts.ConfigPath, "config", "pingboard.yaml", "Config file path (.yaml or .toml)")
	flag.StringVar(&opts.Listen, "listen", "", "Listen address override")
	flag.StringVar(&opts.Database, "db", "", "Database path override")
	flag.BoolVar(&opts.Report, "report", false, "Generate a report and exit")
	flag.StringVar(&opts.ReportDir, "report-dir", "", "Report output directory override")
	flag.IntVar(&opts.ReportHours, "report-hours", 0, "Report period override in hours")
	flag.BoolVar(&opts.WriteConfig, "write-config", false, "Write the default config to the -config path and exit")
	flag.Parse()
	return opts
}

// Apply layers the command line overrides onto cfg
func (o Options) Apply(cfg *Config) {
	if o.Listen != "" {
		cfg.Listen = o.Listen
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.ReportDir != "" {
		cfg.Report.OutputDir = o.ReportDir
	}
	if o.ReportHours > 0 {
		cfg.Report.Hours = o.ReportHours
	}
}

// WriteDefault writes the default configuration as YAML. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing config %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encoding default config failed: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
