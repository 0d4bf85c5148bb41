package graph

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"pingboard/internal/models"
)

// LegendEntry describes one drawable element of the detailed graph for
// hosts that render their own legend chrome.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend lists the detailed graph's elements under the given thresholds
// and display toggles.
func Legend(t models.Thresholds) []LegendEntry {
	entries := []LegendEntry{
		{Label: "average latency", Color: hexColor(colorAvgLine)},
		{Label: "min/max range", Color: hexColor(colorAvgLine.WithAlpha(faintLineAlpha))},
		{Label: "offline", Color: hexColor(ColorCritical)},
	}
	if t.LatencyWarningMs > 0 {
		entries = append(entries, LegendEntry{
			Label: fmt.Sprintf("warning (%s)", formatMs(t.LatencyWarningMs)),
			Color: hexColor(ColorWarning),
		})
	}
	if t.LatencyCriticalMs > 0 {
		entries = append(entries, LegendEntry{
			Label: fmt.Sprintf("critical (%s)", formatMs(t.LatencyCriticalMs)),
			Color: hexColor(ColorCritical),
		})
	}
	if t.ShowPacketLoss {
		entries = append(entries, LegendEntry{Label: "packet loss", Color: hexColor(colorLossDot)})
	}
	return entries
}

func hexColor(c drawing.Color) string {
	if c.A != 255 {
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
