package models

import "time"

// Sample represents a single reachability measurement for a target
type Sample struct {
	Timestamp  time.Time `json:"timestamp"`
	Reachable  bool      `json:"reachable"`
	LatencyMin *float64  `json:"latency_min_ms,omitempty"` // milliseconds
	LatencyAvg *float64  `json:"latency_avg_ms,omitempty"` // milliseconds
	LatencyMax *float64  `json:"latency_max_ms,omitempty"` // milliseconds
	Jitter     *float64  `json:"jitter_ms,omitempty"`      // milliseconds
	PacketLoss float64   `json:"packet_loss_percent"`      // percentage
}

// AvgLatency returns the plottable average latency. Latency carried by an
// unreachable sample is treated as absent.
func (s Sample) AvgLatency() (float64, bool) {
	if !s.Reachable || s.LatencyAvg == nil {
		return 0, false
	}
	return *s.LatencyAvg, true
}

// MinLatency returns the plottable minimum latency.
func (s Sample) MinLatency() (float64, bool) {
	if !s.Reachable || s.LatencyMin == nil {
		return 0, false
	}
	return *s.LatencyMin, true
}

// MaxLatency returns the plottable maximum latency.
func (s Sample) MaxLatency() (float64, bool) {
	if !s.Reachable || s.LatencyMax == nil {
		return 0, false
	}
	return *s.LatencyMax, true
}

// HasBand reports whether the sample can be drawn as a min-to-max band.
func (s Sample) HasBand() bool {
	return s.Reachable && s.LatencyMin != nil && s.LatencyMax != nil
}

// Series is an ordered sequence of samples for one target, ascending by
// timestamp. Producers do not guarantee dedup or strict ordering, so
// consumers scan defensively instead of trusting index zero.
type Series []Sample

// FirstTimestamp returns the oldest timestamp in the series.
func (s Series) FirstTimestamp() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	first := s[0].Timestamp
	for _, sample := range s[1:] {
		if sample.Timestamp.Before(first) {
			first = sample.Timestamp
		}
	}
	return first, true
}

// HasLatencyData reports whether any sample carries a max latency reading.
// This checks the literal field: backends send null latency for unreachable
// samples, so an all-unreachable series counts as having no data.
func (s Series) HasLatencyData() bool {
	for _, sample := range s {
		if sample.LatencyMax != nil {
			return true
		}
	}
	return false
}

// Float64 returns a pointer to v, for building samples with optional fields.
func Float64(v float64) *float64 {
	return &v
}
