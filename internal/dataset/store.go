package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/observability"
	"golang.org/x/sync/errgroup"
)

// SalesSource reads the raw sales records.
type SalesSource interface {
	ReadSales(ctx context.Context) ([]domain.SalesRecord, error)
	Path() string
}

// CountySource reads the county boundaries.
type CountySource interface {
	ReadCounties(ctx context.Context) ([]domain.CountyGeometry, error)
	Path() string
}

// Options enables the optional load-time enrichments.
type Options struct {
	// Geocoder fills in coordinates for stores without them. Nil disables geocoding.
	Geocoder     domain.Geocoder
	GeocodeState string
	// GeocodeWorkers bounds concurrent geocoding lookups. Defaults to 4.
	GeocodeWorkers int
	// ResolveMissingCounty names the county of records that have coordinates
	// but no county.
	ResolveMissingCounty bool
}

var errNotLoaded = errors.New("dataset not loaded")

// Store loads the sales and county inputs at most once and caches them for
// the life of the process. Failed reads are not cached, so a later call retries.
type Store struct {
	salesSrc  SalesSource
	countySrc CountySource
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics

	salesMu sync.Mutex
	sales   []domain.SalesRecord

	countyMu sync.Mutex
	counties []domain.CountyGeometry

	loadMu  sync.Mutex
	dataset atomic.Pointer[Dataset]
}

// NewStore creates a Store over the given sources.
func NewStore(sales SalesSource, counties CountySource, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if opts.GeocodeWorkers <= 0 {
		opts.GeocodeWorkers = 4
	}
	return &Store{
		salesSrc:  sales,
		countySrc: counties,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// Sales returns the raw sales records, reading the source on first use.
func (s *Store) Sales(ctx context.Context) ([]domain.SalesRecord, error) {
	s.salesMu.Lock()
	defer s.salesMu.Unlock()

	if s.sales != nil {
		return s.sales, nil
	}
	records, err := s.salesSrc.ReadSales(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.SalesRecord{}
	}
	s.sales = records
	return s.sales, nil
}

// Counties returns the county geometries, reading the source on first use.
func (s *Store) Counties(ctx context.Context) ([]domain.CountyGeometry, error) {
	s.countyMu.Lock()
	defer s.countyMu.Unlock()

	if s.counties != nil {
		return s.counties, nil
	}
	geometries, err := s.countySrc.ReadCounties(ctx)
	if err != nil {
		return nil, err
	}
	if geometries == nil {
		geometries = []domain.CountyGeometry{}
	}
	s.counties = geometries
	return s.counties, nil
}

// Load reads both inputs concurrently, applies the configured enrichments and
// returns the Dataset. Later calls return the same Dataset.
func (s *Store) Load(ctx context.Context) (*Dataset, error) {
	if ds := s.dataset.Load(); ds != nil {
		return ds, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if ds := s.dataset.Load(); ds != nil {
		return ds, nil
	}

	start := time.Now()

	var sales []domain.SalesRecord
	var counties []domain.CountyGeometry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.Sales(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		counties, err = s.Counties(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	enriched := sales
	if s.opts.Geocoder != nil {
		var err error
		enriched, err = geocodeMissing(ctx, enriched, s.opts.Geocoder, s.opts.GeocodeState, s.opts.GeocodeWorkers, s.logger)
		if err != nil {
			return nil, err
		}
	}
	if s.opts.ResolveMissingCounty {
		enriched = resolveMissingCounties(enriched, NewCountyIndex(counties), s.logger)
	}

	ds := New(enriched, counties)
	s.dataset.Store(ds)

	elapsed := time.Since(start)
	s.metrics.DatasetLoadDuration.Observe(elapsed.Seconds())
	s.metrics.DatasetRecords.Set(float64(len(ds.Sales())))
	s.metrics.DatasetCounties.Set(float64(len(ds.Counties())))
	s.logger.Info("dataset loaded",
		"sales_path", s.salesSrc.Path(),
		"county_path", s.countySrc.Path(),
		"records", len(ds.Sales()),
		"counties", len(ds.Counties()),
		"categories", len(ds.Categories()),
		"duration", elapsed,
	)
	return ds, nil
}

// Dataset returns the loaded Dataset, or nil before Load succeeds.
func (s *Store) Dataset() *Dataset {
	return s.dataset.Load()
}

// CheckReadiness returns nil once the dataset has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s.dataset.Load() == nil {
		return errNotLoaded
	}
	return nil
}
