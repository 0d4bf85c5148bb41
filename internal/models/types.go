package models

import (
	"context"
	"time"
)

// SampleStore defines operations for sample persistence and aggregation
type SampleStore interface {
	SaveSample(target string, sample Sample) error
	History(target string, periodHours int) (Series, error)
	Latest(target string) (*Sample, error)
	StatisticsFor(target string, periodHours int) (*Statistics, error)
	Outages(target string, periodHours int) ([]Outage, error)
	Close() error
}

// ProbeEngine executes one probe (a short burst of pings) against a target
type ProbeEngine interface {
	Probe(ctx context.Context, target string, timeout time.Duration) (Sample, error)
}

// DataSource is what a widget controller polls. WidgetData returns the full
// batch payload; History and Statistics back the period-specific fetches of
// a zoomed detail view.
type DataSource interface {
	WidgetData(ctx context.Context, widgetID string) (*WidgetPayload, error)
	History(ctx context.Context, target string, periodHours int) (Series, error)
	Statistics(ctx context.Context, target string, periodHours int) (*Statistics, error)
}
