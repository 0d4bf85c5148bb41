package graph

import (
	"strings"
	"testing"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"pingboard/internal/models"
)

func TestLegendFollowsThresholdToggles(t *testing.T) {
	full := models.Thresholds{
		LatencyWarningMs:  100,
		LatencyCriticalMs: 500,
		ShowPacketLoss:    true,
	}

	var labels []string
	for _, e := range Legend(full) {
		labels = append(labels, e.Label)
	}
	joined := strings.Join(labels, ", ")
	for _, want := range []string{
		"average latency",
		"min/max range",
		"offline",
		"warning (100 ms)",
		"critical (500 ms)",
		"packet loss",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("legend %q missing %q", joined, want)
		}
	}

	bare := Legend(models.Thresholds{})
	if len(bare) != 3 {
		t.Errorf("legend without thresholds has %d entries, want 3", len(bare))
	}
	for _, e := range bare {
		if strings.HasPrefix(e.Label, "warning") || strings.HasPrefix(e.Label, "critical") || e.Label == "packet loss" {
			t.Errorf("legend without thresholds contains %q", e.Label)
		}
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		name string
		in   drawing.Color
		want string
	}{
		{"opaque", drawing.Color{R: 218, G: 54, B: 51, A: 255}, "#da3633"},
		{"translucent", drawing.Color{R: 0, G: 116, B: 217, A: 90}, "#0074d95a"},
	}

	for _, tt := range tests {
		if got := hexColor(tt.in); got != tt.want {
			t.Errorf("hexColor(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
