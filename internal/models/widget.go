package models

import "time"

// Thresholds represents per-widget alert levels and display options
type Thresholds struct {
	LatencyWarningMs    float64 `json:"latency_warning_ms" koanf:"latency_warning_ms" yaml:"latency_warning_ms" toml:"latency_warning_ms"`
	LatencyCriticalMs   float64 `json:"latency_critical_ms" koanf:"latency_critical_ms" yaml:"latency_critical_ms" toml:"latency_critical_ms"`
	LossWarningPercent  float64 `json:"loss_warning_percent" koanf:"loss_warning_percent" yaml:"loss_warning_percent" toml:"loss_warning_percent"`
	LossCriticalPercent float64 `json:"loss_critical_percent" koanf:"loss_critical_percent" yaml:"loss_critical_percent" toml:"loss_critical_percent"`
	ShowJitter          bool    `json:"show_jitter" koanf:"show_jitter" yaml:"show_jitter" toml:"show_jitter"`
	ShowPacketLoss      bool    `json:"show_packet_loss" koanf:"show_packet_loss" yaml:"show_packet_loss" toml:"show_packet_loss"`
	ShowStatistics      bool    `json:"show_statistics" koanf:"show_statistics" yaml:"show_statistics" toml:"show_statistics"`
	GraphHeightPx       int     `json:"graph_height_px" koanf:"graph_height_px" yaml:"graph_height_px" toml:"graph_height_px"`
}

// Target represents one monitored endpoint with its latest state, history
// and per-window statistics
type Target struct {
	Address    string      `json:"target"`
	Name       string      `json:"name"`
	Current    *Sample     `json:"current,omitempty"`
	History    Series      `json:"history"`
	Statistics *Statistics `json:"statistics,omitempty"`
}

// WidgetPayload is the batch answer for one widget poll: every target with
// its history and statistics, plus the thresholds the renderers need
type WidgetPayload struct {
	Targets   []Target   `json:"targets"`
	Config    Thresholds `json:"config"`
	FetchedAt time.Time  `json:"fetched_at"`
	Error     string     `json:"error,omitempty"`
}
