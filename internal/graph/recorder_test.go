package graph

import (
	"io"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// recorder implements chart.Renderer and records drawing operations so
// tests can assert on strokes, fills, dots and labels without decoding
// pixels.
type recorder struct {
	strokeColor drawing.Color
	fillColor   drawing.Color
	strokeWidth float64
	dash        []float64
	path        []point

	strokes []strokeOp
	fills   []fillOp
	circles []circleOp
	texts   []textOp
}

type strokeOp struct {
	pts    []point
	color  drawing.Color
	width  float64
	dashed bool
}

type fillOp struct {
	pts   []point
	color drawing.Color
}

type circleOp struct {
	x, y   int
	radius float64
	color  drawing.Color
}

type textOp struct {
	body string
	x, y int
}

var _ chart.Renderer = (*recorder)(nil)

func (rec *recorder) ResetStyle() {
	rec.strokeColor = drawing.Color{}
	rec.fillColor = drawing.Color{}
	rec.strokeWidth = 0
	rec.dash = nil
}

func (rec *recorder) GetDPI() float64                        { return 92 }
func (rec *recorder) SetDPI(float64)                         {}
func (rec *recorder) SetClassName(string)                    {}
func (rec *recorder) SetStrokeColor(c drawing.Color)         { rec.strokeColor = c }
func (rec *recorder) SetFillColor(c drawing.Color)           { rec.fillColor = c }
func (rec *recorder) SetStrokeWidth(w float64)               { rec.strokeWidth = w }
func (rec *recorder) SetStrokeDashArray(dash []float64)      { rec.dash = dash }
func (rec *recorder) MoveTo(x, y int)                        { rec.path = []point{{x, y}} }
func (rec *recorder) LineTo(x, y int)                        { rec.path = append(rec.path, point{x, y}) }
func (rec *recorder) QuadCurveTo(cx, cy, x, y int)           { rec.path = append(rec.path, point{x, y}) }
func (rec *recorder) ArcTo(cx, cy int, rx, ry, s, d float64) {}
func (rec *recorder) SetFont(*truetype.Font)                 {}
func (rec *recorder) SetFontColor(drawing.Color)             {}
func (rec *recorder) SetFontSize(float64)                    {}
func (rec *recorder) TextRotation(float64)                   {}
func (rec *recorder) ClearTextRotation()                     {}
func (rec *recorder) Save(io.Writer) error                   { return nil }

func (rec *recorder) Close() {
	if len(rec.path) > 0 {
		rec.path = append(rec.path, rec.path[0])
	}
}

func (rec *recorder) Stroke() {
	if len(rec.path) > 0 {
		rec.strokes = append(rec.strokes, strokeOp{
			pts:    append([]point(nil), rec.path...),
			color:  rec.strokeColor,
			width:  rec.strokeWidth,
			dashed: len(rec.dash) > 0,
		})
	}
	rec.path = nil
}

func (rec *recorder) Fill() {
	if len(rec.path) > 0 {
		rec.fills = append(rec.fills, fillOp{
			pts:   append([]point(nil), rec.path...),
			color: rec.fillColor,
		})
	}
	rec.path = nil
}

func (rec *recorder) FillStroke() {
	if len(rec.path) > 0 {
		rec.fills = append(rec.fills, fillOp{pts: append([]point(nil), rec.path...), color: rec.fillColor})
		rec.strokes = append(rec.strokes, strokeOp{
			pts:    append([]point(nil), rec.path...),
			color:  rec.strokeColor,
			width:  rec.strokeWidth,
			dashed: len(rec.dash) > 0,
		})
	}
	rec.path = nil
}

func (rec *recorder) Circle(radius float64, x, y int) {
	rec.circles = append(rec.circles, circleOp{x: x, y: y, radius: radius, color: rec.fillColor})
}

func (rec *recorder) Text(body string, x, y int) {
	rec.texts = append(rec.texts, textOp{body: body, x: x, y: y})
}

func (rec *recorder) MeasureText(body string) chart.Box {
	return chart.Box{Right: 7 * len(body), Bottom: 12, IsSet: true}
}

func sameRGB(a, b drawing.Color) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}

func (rec *recorder) strokesRGB(c drawing.Color) []strokeOp {
	var out []strokeOp
	for _, s := range rec.strokes {
		if sameRGB(s.color, c) {
			out = append(out, s)
		}
	}
	return out
}

func (rec *recorder) fillsRGB(c drawing.Color) []fillOp {
	var out []fillOp
	for _, f := range rec.fills {
		if sameRGB(f.color, c) {
			out = append(out, f)
		}
	}
	return out
}

func (rec *recorder) hasText(body string) bool {
	for _, t := range rec.texts {
		if t.body == body {
			return true
		}
	}
	return false
}

func (op strokeOp) xRange() (int, int) {
	min, max := op.pts[0].x, op.pts[0].x
	for _, p := range op.pts[1:] {
		if p.x < min {
			min = p.x
		}
		if p.x > max {
			max = p.x
		}
	}
	return min, max
}

func (op fillOp) bounds() (minX, minY, maxX, maxY int) {
	minX, minY = op.pts[0].x, op.pts[0].y
	maxX, maxY = minX, minY
	for _, p := range op.pts[1:] {
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}
	}
	return minX, minY, maxX, maxY
}
