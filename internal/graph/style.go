package graph

import (
	"fmt"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pingboard/internal/models"
)

// Status colors shared by both renderers.
var (
	ColorOK       = drawing.Color{R: 46, G: 160, B: 67, A: 255}
	ColorWarning  = drawing.Color{R: 212, G: 153, B: 34, A: 255}
	ColorCritical = drawing.Color{R: 218, G: 54, B: 51, A: 255}

	colorAvgLine    = drawing.Color{R: 0, G: 116, B: 217, A: 255}
	colorLossDot    = drawing.Color{R: 128, G: 0, B: 128, A: 255}
	colorAxis       = drawing.Color{R: 110, G: 128, B: 139, A: 255}
	colorGrid       = drawing.Color{R: 200, G: 200, B: 200, A: 255}
	colorText       = drawing.Color{R: 51, G: 51, B: 51, A: 255}
	colorMuted      = drawing.Color{R: 150, G: 150, B: 150, A: 255}
	colorBackground = drawing.ColorWhite
)

const (
	bandAlpha      = 140
	thresholdAlpha = 110
	faintLineAlpha = 90
	lossDotRadius  = 2.0
)

// StatusColor maps an average latency against the thresholds to the ok,
// warning or critical color. Thresholds at or below zero are disabled.
func StatusColor(avgMs float64, t models.Thresholds) drawing.Color {
	switch {
	case t.LatencyCriticalMs > 0 && avgMs >= t.LatencyCriticalMs:
		return ColorCritical
	case t.LatencyWarningMs > 0 && avgMs >= t.LatencyWarningMs:
		return ColorWarning
	default:
		return ColorOK
	}
}

// lossAlpha scales loss dot opacity with the loss percentage, from faint at
// a trace of loss to fully opaque at total loss.
func lossAlpha(lossPercent float64) uint8 {
	if lossPercent < 0 {
		lossPercent = 0
	}
	if lossPercent > 100 {
		lossPercent = 100
	}
	a := 64 + lossPercent*1.91
	if a > 255 {
		a = 255
	}
	return uint8(a)
}

// scaleMax returns the top of the latency scale: the largest plottable max
// latency in the series, floored at the warning threshold so the warning
// line is always on scale.
func scaleMax(series models.Series, warningMs float64) float64 {
	max := warningMs
	for _, s := range series {
		if v, ok := s.MaxLatency(); ok && v > max {
			max = v
		}
	}
	if max <= 0 {
		max = 1
	}
	return max
}

// latencyY maps a latency value into surface coordinates, zero latency on
// the bottom edge and maxLatency on the top.
func latencyY(v, maxLatency float64, top, bottom int) int {
	if maxLatency <= 0 {
		return bottom
	}
	y := float64(bottom) - v/maxLatency*float64(bottom-top)
	if y < float64(top) {
		y = float64(top)
	}
	if y > float64(bottom) {
		y = float64(bottom)
	}
	return int(math.Round(y))
}

// bandLevel is the latency a band is judged by when picking its status
// color: the average when present, otherwise the band midpoint.
func bandLevel(s models.Sample) float64 {
	if avg, ok := s.AvgLatency(); ok {
		return avg
	}
	min, _ := s.MinLatency()
	max, _ := s.MaxLatency()
	return (min + max) / 2
}

// formatMs renders a latency value for labels and tooltips.
func formatMs(v float64) string {
	if v != 0 && v < 10 {
		return fmt.Sprintf("%.1f ms", v)
	}
	return fmt.Sprintf("%.0f ms", v)
}

type point struct {
	x, y int
}

// loadFont returns the default chart font, or nil when unavailable, in
// which case text is skipped rather than failing the whole render.
func loadFont() *truetype.Font {
	f, err := chart.GetDefaultFont()
	if err != nil {
		return nil
	}
	return f
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color) {
	r.SetFillColor(c)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()
}

// strokePath draws one connected polyline. An isolated point gets a short
// horizontal tick so a lone sample between gaps still leaves a mark.
func strokePath(r chart.Renderer, pts []point, c drawing.Color, width float64) {
	if len(pts) == 0 {
		return
	}
	r.SetStrokeColor(c)
	r.SetStrokeWidth(width)
	r.SetStrokeDashArray(nil)
	if len(pts) == 1 {
		r.MoveTo(pts[0].x-1, pts[0].y)
		r.LineTo(pts[0].x+1, pts[0].y)
		r.Stroke()
		return
	}
	r.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		r.LineTo(p.x, p.y)
	}
	r.Stroke()
}

// strokeSegments draws a pen-lift polyline: each segment is connected, gaps
// between segments are never bridged.
func strokeSegments(r chart.Renderer, segs [][]point, c drawing.Color, width float64) {
	for _, seg := range segs {
		strokePath(r, seg, c, width)
	}
}

func strokeLine(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color, width float64) {
	r.SetStrokeColor(c)
	r.SetStrokeWidth(width)
	r.SetStrokeDashArray(nil)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.Stroke()
}

func strokeDashedLine(r chart.Renderer, x0, x1, y int, c drawing.Color) {
	r.SetStrokeColor(c)
	r.SetStrokeWidth(1)
	r.SetStrokeDashArray([]float64{4, 3})
	r.MoveTo(x0, y)
	r.LineTo(x1, y)
	r.Stroke()
	r.SetStrokeDashArray(nil)
}

// thresholdLine draws one dashed low-opacity threshold marker, skipped when
// the value is disabled or falls off the current scale.
func thresholdLine(r chart.Renderer, x0, x1 int, value, maxLatency float64, top, bottom int, c drawing.Color) {
	if value <= 0 || value > maxLatency {
		return
	}
	y := latencyY(value, maxLatency, top, bottom)
	strokeDashedLine(r, x0, x1, y, c.WithAlpha(thresholdAlpha))
}

func drawLossDot(r chart.Renderer, x, y int, lossPercent float64) {
	r.SetFillColor(colorLossDot.WithAlpha(lossAlpha(lossPercent)))
	r.Circle(lossDotRadius, x, y)
	r.Fill()
}

func drawCenteredText(r chart.Renderer, font *truetype.Font, body string, cx, cy int, size float64, c drawing.Color) {
	if font == nil {
		return
	}
	r.SetFont(font)
	r.SetFontSize(size)
	r.SetFontColor(c)
	box := r.MeasureText(body)
	r.Text(body, cx-box.Width()/2, cy+box.Height()/2)
}

func drawRightAlignedText(r chart.Renderer, font *truetype.Font, body string, right, y int, size float64, c drawing.Color) {
	if font == nil {
		return
	}
	r.SetFont(font)
	r.SetFontSize(size)
	r.SetFontColor(c)
	box := r.MeasureText(body)
	r.Text(body, right-box.Width(), y)
}
