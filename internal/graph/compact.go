package graph

import (
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"pingboard/internal/models"
)

// RenderCompact repaints the surface as the small card graph: a min-to-max
// band per sample colored by its average against the thresholds, full-height
// critical bars for unreachable samples, a continuous average line that
// lifts the pen across gaps, loss dots whose opacity tracks the loss
// percentage, and dashed threshold markers. Samples occupy equal-width slots
// left to right; timestamp-proportional placement belongs to the detailed
// renderer. The call is a pure function of its arguments and keeps no state
// between repaints.
func RenderCompact(r chart.Renderer, width, height int, series models.Series, t models.Thresholds) {
	if width <= 0 || height <= 0 {
		return
	}
	font := loadFont()
	fillRect(r, 0, 0, width, height, colorBackground)

	if !series.HasLatencyData() {
		drawCenteredText(r, font, "no data", width/2, height/2, 10, colorMuted)
		return
	}

	maxLat := scaleMax(series, t.LatencyWarningMs)
	slotW := float64(width) / float64(len(series))

	var segs [][]point
	var seg []point
	var dots []lossPoint

	for i, s := range series {
		x0 := int(math.Round(float64(i) * slotW))
		x1 := int(math.Round(float64(i+1) * slotW))
		if x1 <= x0 {
			x1 = x0 + 1
		}
		cx := (x0 + x1) / 2

		if !s.Reachable {
			fillRect(r, x0, 0, x1, height, ColorCritical)
			if len(seg) > 0 {
				segs = append(segs, seg)
				seg = nil
			}
			continue
		}

		if t.ShowJitter && s.HasBand() {
			minV, _ := s.MinLatency()
			maxV, _ := s.MaxLatency()
			yTop := latencyY(maxV, maxLat, 0, height)
			yBottom := latencyY(minV, maxLat, 0, height)
			band := StatusColor(bandLevel(s), t)
			fillRect(r, x0, yTop, x1, yBottom, band.WithAlpha(bandAlpha))
		}

		if avg, ok := s.AvgLatency(); ok {
			y := latencyY(avg, maxLat, 0, height)
			seg = append(seg, point{cx, y})
			if t.ShowPacketLoss && s.PacketLoss > 0 {
				dots = append(dots, lossPoint{x: cx, y: y, loss: s.PacketLoss})
			}
		} else if len(seg) > 0 {
			segs = append(segs, seg)
			seg = nil
		}
	}
	if len(seg) > 0 {
		segs = append(segs, seg)
	}

	strokeSegments(r, segs, colorAvgLine, 1.5)
	for _, d := range dots {
		drawLossDot(r, d.x, d.y, d.loss)
	}

	thresholdLine(r, 0, width, t.LatencyWarningMs, maxLat, 0, height, ColorWarning)
	thresholdLine(r, 0, width, t.LatencyCriticalMs, maxLat, 0, height, ColorCritical)
}

type lossPoint struct {
	x, y int
	loss float64
}
