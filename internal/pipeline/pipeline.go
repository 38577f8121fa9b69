// Package pipeline runs one dashboard selection end to end: filter the
// dataset, rank counties, join geometry, build store markers, and hand the
// result to the export and report sinks.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/dataset"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// StoreMapExporter persists the store map of a selection.
type StoreMapExporter interface {
	WriteStoreMap(view domain.View) error
}

// ReportPublisher forwards a selection summary to downstream consumers.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report domain.SelectionReport) error
}

// Dashboard serves selections over a loaded dataset.
type Dashboard struct {
	dataset   *dataset.Dataset
	clock     clockwork.Clock
	topN      int
	exporter  StoreMapExporter
	publisher ReportPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Dashboard. exporter and publisher may be nil to disable them.
func New(ds *dataset.Dataset, clock clockwork.Clock, topN int, exporter StoreMapExporter, publisher ReportPublisher, logger *slog.Logger, metrics *observability.Metrics) *Dashboard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	return &Dashboard{
		dataset:   ds,
		clock:     clock,
		topN:      topN,
		exporter:  exporter,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// TopN is the ranking size.
func (d *Dashboard) TopN() int { return d.topN }

// Categories lists the selectable categories.
func (d *Dashboard) Categories() []string { return d.dataset.Categories() }

// Brands lists the brands selectable within category.
func (d *Dashboard) Brands(category string) []string { return d.dataset.Brands(category) }

// Select computes the view for (category, brand). A selection that matches
// nothing yields an empty view, not an error. The store map is exported and
// the report published on the way out; failures there are only logged.
func (d *Dashboard) Select(ctx context.Context, category, brand string) (domain.View, error) {
	view, unmatched, err := d.compute(ctx, category, brand)
	if err != nil {
		return domain.View{}, err
	}

	d.exportStoreMap(view)
	d.publishReport(ctx, view, unmatched)
	return view, nil
}

// Preview computes the view for (category, brand) without touching the sinks.
func (d *Dashboard) Preview(ctx context.Context, category, brand string) (domain.View, error) {
	view, _, err := d.compute(ctx, category, brand)
	return view, err
}

func (d *Dashboard) compute(ctx context.Context, category, brand string) (domain.View, []string, error) {
	if err := ctx.Err(); err != nil {
		return domain.View{}, nil, err
	}
	start := d.clock.Now()

	subset := domain.FilterByBrand(domain.FilterByCategory(d.dataset.Sales(), category), brand)
	ranked := domain.TopCounties(subset, d.topN)
	shapes, unmatched := domain.JoinCounties(ranked, d.dataset.Counties())
	markers := domain.StoreMarkers(subset)

	view := domain.View{
		Category:    category,
		Brand:       brand,
		TopCounties: ranked,
		Choropleth:  shapes,
		Markers:     markers,
		MapCenter:   d.dataset.MapCenter(),
		GeneratedAt: d.clock.Now().UTC(),
	}

	d.metrics.SelectionsTotal.Inc()
	d.metrics.SelectionDuration.Observe(d.clock.Since(start).Seconds())
	if len(subset) == 0 {
		d.metrics.EmptySelections.Inc()
	}
	if len(unmatched) > 0 {
		d.metrics.JoinUnmatchedCounties.Add(float64(len(unmatched)))
		d.logger.Debug("ranked counties without geometry",
			"category", category,
			"brand", brand,
			"counties", unmatched,
		)
	}

	d.logger.Info("selection computed",
		"category", category,
		"brand", brand,
		"records", len(subset),
		"counties", len(ranked),
		"shapes", len(shapes),
		"markers", len(markers),
		"duration", d.clock.Since(start).Round(time.Microsecond),
	)
	return view, unmatched, nil
}

func (d *Dashboard) exportStoreMap(view domain.View) {
	if d.exporter == nil {
		return
	}
	if err := d.exporter.WriteStoreMap(view); err != nil {
		d.metrics.MapExportErrors.Inc()
		d.logger.Warn("store map export failed", "brand", view.Brand, "error", err)
	}
}

func (d *Dashboard) publishReport(ctx context.Context, view domain.View, unmatched []string) {
	if d.publisher == nil {
		return
	}
	report := domain.SelectionReport{
		ID:                uuid.NewString(),
		Category:          view.Category,
		Brand:             view.Brand,
		GeneratedAt:       view.GeneratedAt,
		TopCounties:       view.TopCounties,
		MarkerCount:       len(view.Markers),
		UnmatchedCounties: unmatched,
	}
	if err := d.publisher.PublishReport(ctx, report); err != nil {
		d.metrics.ReportPublishErrors.Inc()
		d.logger.Warn("selection report publish failed",
			"report_id", report.ID,
			"category", report.Category,
			"brand", report.Brand,
			"error", err,
		)
		return
	}
	d.metrics.ReportsPublished.Inc()
}
