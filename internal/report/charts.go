package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pingboard/internal/config"
	"pingboard/internal/graph"
	"pingboard/internal/models"
)

const (
	reportChartWidth  = 1200
	reportChartHeight = 400
)

// latencyCharts writes one detailed latency graph per target
func (g *Generator) latencyCharts(dir string, targets []config.TargetConfig, hours int) error {
	for _, target := range targets {
		series, err := g.db.History(target.Address, hours)
		if err != nil {
			return fmt.Errorf("loading history for %s failed: %w", target.Address, err)
		}

		win := graph.ResolveWindow(series, hours)
		opts := graph.DetailedOptions{PeriodHours: hours, Thresholds: g.cfg.Defaults}

		img, err := chart.PNG(reportChartWidth, reportChartHeight)
		if err != nil {
			return err
		}
		graph.RenderDetailed(img, reportChartWidth, reportChartHeight, series, win, opts)

		filename := filepath.Join(dir, fmt.Sprintf("latency_%s.png", sanitizeFilename(target.Address)))
		file, err := os.Create(filename)
		if err != nil {
			return err
		}
		if err := img.Save(file); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

// availabilityChart writes a combined hourly uptime chart across all targets
func (g *Generator) availabilityChart(dir string, targets []config.TargetConfig, hours int) error {
	var allSeries []chart.Series
	colorIndex := 0

	for _, target := range targets {
		series, err := g.db.History(target.Address, hours)
		if err != nil {
			return fmt.Errorf("loading history for %s failed: %w", target.Address, err)
		}

		timestamps, values := hourlyUptime(series)
		if len(timestamps) < 2 {
			// go-chart needs two points to draw a line.
			continue
		}

		allSeries = append(allSeries, chart.TimeSeries{
			Name: target.Address,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(colorIndex),
				StrokeWidth: 2,
			},
			XValues: timestamps,
			YValues: values,
		})
		colorIndex++
	}

	if len(allSeries) == 0 {
		return nil
	}

	ch := chart.Chart{
		Title: "Availability (hourly)",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  reportChartWidth,
		Height: reportChartHeight,
		XAxis: chart.XAxis{
			Name: "Time",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: chart.TimeHourValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Uptime %",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 100,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Series: allSeries,
	}
	ch.Elements = []chart.Renderable{
		chart.Legend(&ch),
	}

	file, err := os.Create(filepath.Join(dir, "availability.png"))
	if err != nil {
		return err
	}
	defer file.Close()

	return ch.Render(chart.PNG, file)
}

// hourlyUptime buckets a series by hour and returns per-bucket uptime
// percentages in chronological order
func hourlyUptime(series models.Series) ([]time.Time, []float64) {
	type bucket struct {
		total     int
		reachable int
	}
	buckets := make(map[time.Time]*bucket)

	for _, s := range series {
		hour := s.Timestamp.Truncate(time.Hour)
		b := buckets[hour]
		if b == nil {
			b = &bucket{}
			buckets[hour] = b
		}
		b.total++
		if s.Reachable {
			b.reachable++
		}
	}

	hoursSorted := make([]time.Time, 0, len(buckets))
	for hour := range buckets {
		hoursSorted = append(hoursSorted, hour)
	}
	sort.Slice(hoursSorted, func(i, j int) bool { return hoursSorted[i].Before(hoursSorted[j]) })

	values := make([]float64, 0, len(hoursSorted))
	for _, hour := range hoursSorted {
		b := buckets[hour]
		values = append(values, float64(b.reachable)/float64(b.total)*100)
	}
	return hoursSorted, values
}

// sanitizeFilename replaces dots and special characters for safe filenames
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		".", "_",
		":", "_",
		"/", "_",
		"\\", "_",
		" ", "_",
	)
	return replacer.Replace(s)
}
