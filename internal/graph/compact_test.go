package graph

import (
	"bytes"
	"testing"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"pingboard/internal/models"
)

func testThresholds() models.Thresholds {
	return models.Thresholds{
		LatencyWarningMs:    100,
		LatencyCriticalMs:   500,
		LossWarningPercent:  5,
		LossCriticalPercent: 25,
		ShowJitter:          true,
		ShowPacketLoss:      true,
		ShowStatistics:      true,
		GraphHeightPx:       60,
	}
}

func reachableSample(ts time.Time, min, avg, max float64) models.Sample {
	return models.Sample{
		Timestamp:  ts,
		Reachable:  true,
		LatencyMin: models.Float64(min),
		LatencyAvg: models.Float64(avg),
		LatencyMax: models.Float64(max),
	}
}

func unreachableSample(ts time.Time) models.Sample {
	return models.Sample{Timestamp: ts, Reachable: false, PacketLoss: 100}
}

func TestRenderCompactNoData(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		series models.Series
	}{
		{"empty series", nil},
		{"only unreachable samples", models.Series{
			unreachableSample(base),
			unreachableSample(base.Add(time.Minute)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			RenderCompact(rec, 300, 60, tt.series, testThresholds())
			if !rec.hasText("no data") {
				t.Errorf("expected a centered no data label, texts = %v", rec.texts)
			}
			if got := rec.strokesRGB(colorAvgLine); len(got) != 0 {
				t.Errorf("expected no average line strokes, got %d", len(got))
			}
		})
	}
}

func TestRenderCompactGapLiftsPen(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	series := models.Series{
		reachableSample(base, 8, 10, 12),
		unreachableSample(base.Add(time.Minute)),
		reachableSample(base.Add(2*time.Minute), 18, 20, 22),
	}

	rec := &recorder{}
	RenderCompact(rec, 300, 60, series, testThresholds())

	avg := rec.strokesRGB(colorAvgLine)
	if len(avg) != 2 {
		t.Fatalf("expected 2 disjoint average segments, got %d", len(avg))
	}
	for _, s := range avg {
		min, max := s.xRange()
		if min < 100 && max >= 100 || min < 200 && max >= 200 {
			t.Errorf("average segment x range [%d,%d] bridges the unreachable slot", min, max)
		}
	}
}

func TestRenderCompactUnreachablePriority(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stray := unreachableSample(base.Add(time.Minute))
	stray.LatencyMin = models.Float64(30)
	stray.LatencyAvg = models.Float64(40)
	stray.LatencyMax = models.Float64(50)
	series := models.Series{
		reachableSample(base, 8, 10, 12),
		stray,
		reachableSample(base.Add(2*time.Minute), 18, 20, 22),
	}

	rec := &recorder{}
	RenderCompact(rec, 300, 60, series, testThresholds())

	var bar *fillOp
	for _, f := range rec.fillsRGB(ColorCritical) {
		f := f
		minX, minY, maxX, maxY := f.bounds()
		if minX == 100 && maxX == 200 && minY == 0 && maxY == 60 {
			bar = &f
		}
	}
	if bar == nil {
		t.Fatalf("expected a full-height critical bar over the middle slot")
	}

	for _, s := range rec.strokesRGB(colorAvgLine) {
		min, max := s.xRange()
		if min >= 100 && max <= 200 {
			t.Errorf("average line plotted inside the unreachable slot at [%d,%d]", min, max)
		}
	}
	for _, c := range []struct {
		name  string
		fills []fillOp
	}{{"ok", rec.fillsRGB(ColorOK)}, {"warning", rec.fillsRGB(ColorWarning)}} {
		for _, f := range c.fills {
			minX, _, maxX, _ := f.bounds()
			if minX >= 100 && maxX <= 200 {
				t.Errorf("%s band drawn for an unreachable sample at [%d,%d]", c.name, minX, maxX)
			}
		}
	}
}

func TestRenderCompactThresholdColors(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	series := models.Series{
		reachableSample(base, 40, 50, 60),
		reachableSample(base.Add(time.Minute), 140, 150, 160),
		reachableSample(base.Add(2*time.Minute), 590, 600, 610),
	}

	rec := &recorder{}
	RenderCompact(rec, 300, 60, series, testThresholds())

	tests := []struct {
		name   string
		fills  []fillOp
		slotX0 int
		slotX1 int
	}{
		{"ok band in first slot", rec.fillsRGB(ColorOK), 0, 100},
		{"warning band in second slot", rec.fillsRGB(ColorWarning), 100, 200},
		{"critical band in third slot", rec.fillsRGB(ColorCritical), 200, 300},
	}
	for _, tt := range tests {
		found := false
		for _, f := range tt.fills {
			minX, _, maxX, _ := f.bounds()
			if minX >= tt.slotX0 && maxX <= tt.slotX1 {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %s", tt.name)
		}
	}

	warnDashed := 0
	for _, s := range rec.strokesRGB(ColorWarning) {
		if s.dashed {
			warnDashed++
		}
	}
	if warnDashed != 1 {
		t.Errorf("expected 1 dashed warning threshold line, got %d", warnDashed)
	}
	critDashed := 0
	for _, s := range rec.strokesRGB(ColorCritical) {
		if s.dashed {
			critDashed++
		}
	}
	if critDashed != 1 {
		t.Errorf("expected 1 dashed critical threshold line, got %d", critDashed)
	}
}

func TestRenderCompactLossDots(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	series := models.Series{
		reachableSample(base, 8, 10, 12),
		reachableSample(base.Add(time.Minute), 8, 10, 12),
		reachableSample(base.Add(2*time.Minute), 8, 10, 12),
	}
	series[1].PacketLoss = 5
	series[2].PacketLoss = 40

	rec := &recorder{}
	RenderCompact(rec, 300, 60, series, testThresholds())

	if len(rec.circles) != 2 {
		t.Fatalf("expected 2 loss dots, got %d", len(rec.circles))
	}
	low, high := rec.circles[0], rec.circles[1]
	if low.x != 150 || high.x != 250 {
		t.Errorf("loss dots at x=%d,%d, want 150,250", low.x, high.x)
	}
	if low.color.A >= high.color.A {
		t.Errorf("loss dot opacity should grow with loss: 5%% -> %d, 40%% -> %d", low.color.A, high.color.A)
	}
}

func TestRenderCompactDisplayToggles(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	series := models.Series{reachableSample(base, 8, 10, 12)}
	series[0].PacketLoss = 30

	th := testThresholds()
	th.ShowJitter = false
	th.ShowPacketLoss = false

	rec := &recorder{}
	RenderCompact(rec, 300, 60, series, th)

	if got := rec.fillsRGB(ColorOK); len(got) != 0 {
		t.Errorf("jitter band drawn with ShowJitter off: %d fills", len(got))
	}
	if len(rec.circles) != 0 {
		t.Errorf("loss dot drawn with ShowPacketLoss off: %d circles", len(rec.circles))
	}
	if got := rec.strokesRGB(colorAvgLine); len(got) != 1 {
		t.Errorf("expected the average line regardless of toggles, got %d strokes", len(got))
	}
}

func TestRenderCompactIdempotent(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	series := models.Series{
		reachableSample(base, 8, 10, 12),
		unreachableSample(base.Add(time.Minute)),
		reachableSample(base.Add(2*time.Minute), 18, 20, 22),
	}
	series[2].PacketLoss = 12

	render := func() []byte {
		r, err := chart.PNG(200, 50)
		if err != nil {
			t.Fatalf("PNG renderer: %v", err)
		}
		RenderCompact(r, 200, 50, series, testThresholds())
		var buf bytes.Buffer
		if err := r.Save(&buf); err != nil {
			t.Fatalf("save: %v", err)
		}
		return buf.Bytes()
	}

	if !bytes.Equal(render(), render()) {
		t.Errorf("two compact renders of identical input differ")
	}
}
