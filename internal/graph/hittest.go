package graph

import (
	"fmt"
	"strings"
	"time"

	"pingboard/internal/models"
)

// hitTestPixelCutoff is the pixel distance a pointer may sit from a sample
// before the tooltip hides, expressed in window time by the caller's graph
// width.
const hitTestPixelCutoff = 50.0

// NearestSample maps a pointer X position on a detailed graph back to the
// closest sample in time. It returns nil when the pointer is farther from
// every sample than the smaller of 5% of the window duration and the time
// equivalent of 50 pixels: on short windows the pixel cap keeps the match
// tight, on long windows the percentage cap stops the tooltip snapping
// across a visually wide gap.
func NearestSample(pointerX float64, series models.Series, win Window, graphWidth, leftMargin float64) *models.Sample {
	if len(series) == 0 || graphWidth <= 0 || win.Duration <= 0 {
		return nil
	}

	frac := (pointerX - leftMargin) / graphWidth
	mouseTime := win.Start.Add(time.Duration(frac * float64(win.Duration)))

	best := -1
	var bestDist time.Duration
	for i, s := range series {
		d := s.Timestamp.Sub(mouseTime)
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}

	cutoff := time.Duration(float64(win.Duration) * 0.05)
	if pixel := time.Duration(float64(win.Duration) * hitTestPixelCutoff / graphWidth); pixel < cutoff {
		cutoff = pixel
	}
	if bestDist > cutoff {
		return nil
	}
	return &series[best]
}

// Tooltip is the hover payload for one sample.
type Tooltip struct {
	Timestamp  string   `json:"timestamp"`
	Offline    bool     `json:"offline"`
	LatencyAvg *float64 `json:"latency_avg_ms,omitempty"`
	LatencyMin *float64 `json:"latency_min_ms,omitempty"`
	LatencyMax *float64 `json:"latency_max_ms,omitempty"`
	Jitter     *float64 `json:"jitter_ms,omitempty"`
	PacketLoss *float64 `json:"packet_loss_percent,omitempty"`
	Text       string   `json:"text"`
}

// TooltipFor formats the hover content for one sample. An unreachable
// sample gets a terse offline marker and no latency fields, whatever values
// it carries.
func TooltipFor(s models.Sample) Tooltip {
	ts := s.Timestamp.Format("Jan 2 15:04:05")
	if !s.Reachable {
		return Tooltip{Timestamp: ts, Offline: true, Text: ts + "  offline"}
	}

	tip := Tooltip{Timestamp: ts}
	parts := []string{ts}
	if avg, ok := s.AvgLatency(); ok {
		tip.LatencyAvg = models.Float64(avg)
		parts = append(parts, "avg "+formatMs(avg))
	}
	if min, ok := s.MinLatency(); ok {
		tip.LatencyMin = models.Float64(min)
		parts = append(parts, "min "+formatMs(min))
	}
	if max, ok := s.MaxLatency(); ok {
		tip.LatencyMax = models.Float64(max)
		parts = append(parts, "max "+formatMs(max))
	}
	if s.Jitter != nil {
		tip.Jitter = models.Float64(*s.Jitter)
		parts = append(parts, "jitter "+formatMs(*s.Jitter))
	}
	if s.PacketLoss > 0 {
		tip.PacketLoss = models.Float64(s.PacketLoss)
		parts = append(parts, fmt.Sprintf("loss %.0f%%", s.PacketLoss))
	}
	tip.Text = strings.Join(parts, "  ")
	return tip
}
