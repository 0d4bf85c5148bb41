package widget

import (
	"context"
	"fmt"
	"time"

	"pingboard/internal/config"
	"pingboard/internal/graph"
	"pingboard/internal/models"
)

// StoreSource serves widget payloads straight from the sample store. It is
// the history-aware primary source: every target carries its trailing
// history and per-window statistics.
type StoreSource struct {
	store       models.SampleStore
	cfg         config.Config
	periodHours int
}

// NewStoreSource creates the primary data source. Card histories cover the
// default detail period.
func NewStoreSource(store models.SampleStore, cfg config.Config) *StoreSource {
	return &StoreSource{store: store, cfg: cfg, periodHours: graph.DefaultDetailPeriodHours}
}

// WidgetData builds the batch payload for one widget
func (s *StoreSource) WidgetData(ctx context.Context, widgetID string) (*models.WidgetPayload, error) {
	w := s.cfg.WidgetByID(widgetID)
	if w == nil {
		return nil, fmt.Errorf("unknown widget %q", widgetID)
	}

	payload := &models.WidgetPayload{
		Config:    widgetThresholds(s.cfg, w),
		FetchedAt: time.Now(),
	}

	for _, t := range w.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		target := models.Target{Address: t.Address, Name: t.Name}

		history, err := s.store.History(t.Address, s.periodHours)
		if err != nil {
			return nil, fmt.Errorf("loading history for %s failed: %w", t.Address, err)
		}
		target.History = history

		current, err := s.store.Latest(t.Address)
		if err != nil {
			return nil, fmt.Errorf("loading current sample for %s failed: %w", t.Address, err)
		}
		target.Current = current

		stats, err := s.store.StatisticsFor(t.Address, s.periodHours)
		if err != nil {
			return nil, fmt.Errorf("loading statistics for %s failed: %w", t.Address, err)
		}
		target.Statistics = stats

		payload.Targets = append(payload.Targets, target)
	}

	return payload, nil
}

// History serves a detail session's period-scoped series
func (s *StoreSource) History(ctx context.Context, target string, periodHours int) (models.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.History(target, periodHours)
}

// Statistics serves a detail session's period-scoped aggregates
func (s *StoreSource) Statistics(ctx context.Context, target string, periodHours int) (*models.Statistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.StatisticsFor(target, periodHours)
}

// CurrentOnlySource is the degraded data source: the latest sample per
// target, no history, no statistics. Controllers polling it leave the
// compact renderer on its "no data" path.
type CurrentOnlySource struct {
	store models.SampleStore
	cfg   config.Config
}

// NewCurrentOnlySource creates the fallback data source
func NewCurrentOnlySource(store models.SampleStore, cfg config.Config) *CurrentOnlySource {
	return &CurrentOnlySource{store: store, cfg: cfg}
}

// WidgetData builds a payload of current samples with empty histories
func (s *CurrentOnlySource) WidgetData(ctx context.Context, widgetID string) (*models.WidgetPayload, error) {
	w := s.cfg.WidgetByID(widgetID)
	if w == nil {
		return nil, fmt.Errorf("unknown widget %q", widgetID)
	}

	payload := &models.WidgetPayload{
		Config:    widgetThresholds(s.cfg, w),
		FetchedAt: time.Now(),
	}

	for _, t := range w.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, err := s.store.Latest(t.Address)
		if err != nil {
			return nil, fmt.Errorf("loading current sample for %s failed: %w", t.Address, err)
		}
		payload.Targets = append(payload.Targets, models.Target{
			Address: t.Address,
			Name:    t.Name,
			Current: current,
		})
	}

	return payload, nil
}

// History always comes back empty in degraded mode
func (s *CurrentOnlySource) History(ctx context.Context, target string, periodHours int) (models.Series, error) {
	return nil, ctx.Err()
}

// Statistics are unavailable in degraded mode
func (s *CurrentOnlySource) Statistics(ctx context.Context, target string, periodHours int) (*models.Statistics, error) {
	return nil, ctx.Err()
}

func widgetThresholds(cfg config.Config, w *config.Widget) models.Thresholds {
	if w.Thresholds != nil {
		return *w.Thresholds
	}
	return cfg.Defaults
}
