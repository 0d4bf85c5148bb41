package graph

import (
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"pingboard/internal/models"
)

// Layout of the detailed surface. The left margin carries Y labels, the
// bottom margin X labels.
const (
	MarginLeft   = 60
	MarginRight  = 20
	MarginTop    = 20
	MarginBottom = 40

	yGridlines = 5

	minSlotWidth = 2.0
	maxSlotWidth = 20.0
)

// DetailedOptions carries the period and thresholds for a detailed render.
type DetailedOptions struct {
	PeriodHours int
	Thresholds  models.Thresholds
}

// RenderDetailed repaints the surface as the zoomed graph: labeled Y
// gridlines with 1.1x headroom over the observed maximum, period-scaled X
// labels, dashed thresholds, faint min and max outlines, the bold average
// line, unreachable bars and loss dots. Sample X positions are proportional
// to their timestamps inside the window; samples that fall outside the
// drawable area are skipped but still count toward slot width. An empty
// series keeps the full chrome and shows a placeholder message, so the
// layout holds steady while data loads. Like the compact renderer this is a
// pure function of its arguments.
func RenderDetailed(r chart.Renderer, width, height int, series models.Series, win Window, opts DetailedOptions) {
	if width <= MarginLeft+MarginRight || height <= MarginTop+MarginBottom || win.Duration <= 0 {
		return
	}
	t := opts.Thresholds
	font := loadFont()

	graphW := width - MarginLeft - MarginRight
	plotTop := MarginTop
	plotBottom := height - MarginBottom
	plotRight := width - MarginRight

	fillRect(r, 0, 0, width, height, colorBackground)

	maxLat := scaleMax(series, t.LatencyWarningMs) * 1.1

	for i := 0; i < yGridlines; i++ {
		v := maxLat * float64(yGridlines-1-i) / float64(yGridlines-1)
		y := latencyY(v, maxLat, plotTop, plotBottom)
		strokeLine(r, MarginLeft, y, plotRight, y, colorGrid, 1)
		drawRightAlignedText(r, font, formatMs(v), MarginLeft-8, y+4, 10, colorText)
	}

	labelCount := XLabelCount(opts.PeriodHours)
	layout := LabelFormat(opts.PeriodHours)
	for i := 0; i < labelCount; i++ {
		frac := float64(i) / float64(labelCount-1)
		x := MarginLeft + int(math.Round(frac*float64(graphW)))
		ts := win.Start.Add(time.Duration(frac * float64(win.Duration)))
		strokeLine(r, x, plotBottom, x, plotBottom+4, colorAxis, 1)
		drawCenteredText(r, font, ts.Format(layout), x, plotBottom+18, 10, colorText)
	}

	strokeLine(r, MarginLeft, plotTop, MarginLeft, plotBottom, colorAxis, 1)
	strokeLine(r, MarginLeft, plotBottom, plotRight, plotBottom, colorAxis, 1)

	thresholdLine(r, MarginLeft, plotRight, t.LatencyWarningMs, maxLat, plotTop, plotBottom, ColorWarning)
	thresholdLine(r, MarginLeft, plotRight, t.LatencyCriticalMs, maxLat, plotTop, plotBottom, ColorCritical)

	if len(series) == 0 {
		drawCenteredText(r, font, "no data for this period", MarginLeft+graphW/2, (plotTop+plotBottom)/2, 11, colorMuted)
		return
	}

	slotW := float64(graphW) / float64(len(series))
	if slotW < minSlotWidth {
		slotW = minSlotWidth
	}
	if slotW > maxSlotWidth {
		slotW = maxSlotWidth
	}
	halfSlot := int(math.Round(slotW / 2))
	if halfSlot < 1 {
		halfSlot = 1
	}

	var minSegs, avgSegs, maxSegs [][]point
	var minSeg, avgSeg, maxSeg []point
	var dots []lossPoint

	flush := func() {
		if len(minSeg) > 0 {
			minSegs = append(minSegs, minSeg)
			minSeg = nil
		}
		if len(avgSeg) > 0 {
			avgSegs = append(avgSegs, avgSeg)
			avgSeg = nil
		}
		if len(maxSeg) > 0 {
			maxSegs = append(maxSegs, maxSeg)
			maxSeg = nil
		}
	}

	for _, s := range series {
		frac := float64(s.Timestamp.Sub(win.Start)) / float64(win.Duration)
		fx := float64(MarginLeft) + frac*float64(graphW)
		if fx < float64(MarginLeft) || fx > float64(plotRight) {
			flush()
			continue
		}
		x := int(math.Round(fx))

		if !s.Reachable {
			fillRect(r, x-halfSlot, plotTop, x+halfSlot, plotBottom, ColorCritical)
			flush()
			continue
		}

		if t.ShowJitter && s.HasBand() {
			minV, _ := s.MinLatency()
			maxV, _ := s.MaxLatency()
			yTop := latencyY(maxV, maxLat, plotTop, plotBottom)
			yBottom := latencyY(minV, maxLat, plotTop, plotBottom)
			band := StatusColor(bandLevel(s), t)
			fillRect(r, x-halfSlot, yTop, x+halfSlot, yBottom, band.WithAlpha(bandAlpha))
		}

		if v, ok := s.MinLatency(); ok {
			minSeg = append(minSeg, point{x, latencyY(v, maxLat, plotTop, plotBottom)})
		} else if len(minSeg) > 0 {
			minSegs = append(minSegs, minSeg)
			minSeg = nil
		}
		if v, ok := s.MaxLatency(); ok {
			maxSeg = append(maxSeg, point{x, latencyY(v, maxLat, plotTop, plotBottom)})
		} else if len(maxSeg) > 0 {
			maxSegs = append(maxSegs, maxSeg)
			maxSeg = nil
		}
		if avg, ok := s.AvgLatency(); ok {
			y := latencyY(avg, maxLat, plotTop, plotBottom)
			avgSeg = append(avgSeg, point{x, y})
			if t.ShowPacketLoss && s.PacketLoss > 0 {
				dots = append(dots, lossPoint{x: x, y: y, loss: s.PacketLoss})
			}
		} else if len(avgSeg) > 0 {
			avgSegs = append(avgSegs, avgSeg)
			avgSeg = nil
		}
	}
	flush()

	faint := colorAvgLine.WithAlpha(faintLineAlpha)
	strokeSegments(r, minSegs, faint, 1)
	strokeSegments(r, maxSegs, faint, 1)
	strokeSegments(r, avgSegs, colorAvgLine, 2)
	for _, d := range dots {
		drawLossDot(r, d.x, d.y, d.loss)
	}
}
