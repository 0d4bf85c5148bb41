package graph

import (
	"time"

	"pingboard/internal/models"
)

// Periods lists the selectable window lengths in hours: 1h, 6h, 24h, 7d,
// 30d, 90d and 365d.
var Periods = []int{1, 6, 24, 168, 720, 2160, 8760}

// DefaultDetailPeriodHours is the period a freshly opened detail view shows.
const DefaultDetailPeriodHours = 24

// Window is the time span a graph draws.
type Window struct {
	Start    time.Time
	Duration time.Duration
}

// End returns the exclusive end of the window.
func (w Window) End() time.Time {
	return w.Start.Add(w.Duration)
}

// ResolveWindow computes the visible window for a series and period. A
// non-empty series anchors the window to its oldest sample, so a 7 day view
// spans a full 7 days from the earliest data the source returned rather than
// from wall clock now. An empty series yields a placeholder window ending at
// now so axes can still render.
func ResolveWindow(series models.Series, periodHours int) Window {
	return resolveWindowAt(series, periodHours, time.Now())
}

func resolveWindowAt(series models.Series, periodHours int, now time.Time) Window {
	d := time.Duration(periodHours) * time.Hour
	if first, ok := series.FirstTimestamp(); ok {
		return Window{Start: first, Duration: d}
	}
	return Window{Start: now.Add(-d), Duration: d}
}

// ValidPeriod reports whether hours is one of the selectable periods.
func ValidPeriod(hours int) bool {
	for _, p := range Periods {
		if p == hours {
			return true
		}
	}
	return false
}

// LabelFormat returns the axis label layout for a period. A single format
// is either unreadable at short spans or repeats itself at long ones, so the
// precision steps down as the window grows.
func LabelFormat(periodHours int) string {
	switch {
	case periodHours <= 1:
		return "15:04:05"
	case periodHours <= 24:
		return "15:04"
	case periodHours <= 168:
		return "Mon 15:04"
	case periodHours <= 720:
		return "Jan 2"
	default:
		return "Jan 2006"
	}
}

// XLabelCount returns how many X axis labels the detailed renderer places
// for a period.
func XLabelCount(periodHours int) int {
	switch {
	case periodHours <= 168:
		return 6
	case periodHours <= 720:
		return 7
	default:
		return 8
	}
}
