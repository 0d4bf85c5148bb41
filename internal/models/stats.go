package models

import "time"

// Statistics represents aggregated metrics for one target over one window.
// The data source recomputes these per period; nothing updates them
// incrementally.
type Statistics struct {
	LatencyMin    *float64 `json:"latency_min_ms,omitempty"`
	LatencyAvg    *float64 `json:"latency_avg_ms,omitempty"`
	LatencyMax    *float64 `json:"latency_max_ms,omitempty"`
	JitterAvg     *float64 `json:"jitter_avg_ms,omitempty"`
	PacketLossAvg float64  `json:"packet_loss_avg_percent"`
	UptimePercent float64  `json:"uptime_percent"`
	OutageCount   int      `json:"outage_count"`
	SampleCount   int      `json:"sample_count"`
}

// Outage represents a contiguous run of unreachable samples
type Outage struct {
	Target        string    `json:"target"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	FailedSamples int       `json:"failed_samples"`
	Duration      string    `json:"duration"`
}
