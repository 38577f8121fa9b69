package dataset

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// geocodeMissing returns a copy of records with unlocated stores forward
// geocoded. Concurrent lookups of one query share a call and a failed query is
// not retried within the load. Lookup failures only mark the record; the error
// return is reserved for context cancellation.
func geocodeMissing(ctx context.Context, records []domain.SalesRecord, geocoder domain.Geocoder, state string, workers int, logger *slog.Logger) ([]domain.SalesRecord, error) {
	out := make([]domain.SalesRecord, len(records))
	memo := newMemoGeocoder(geocoder)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, r := range records {
		if r.Located {
			out[i] = domain.EnrichStoreLocation(gctx, r, memo, state, logger)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = domain.EnrichStoreLocation(gctx, r, memo, state, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var forward, failed int
	for _, r := range out {
		switch r.LocationSource {
		case domain.LocationForward:
			forward++
		case domain.LocationFailed:
			failed++
		}
	}
	logger.Info("store geocoding complete",
		"lookups", memo.lookups(),
		"geocoded", forward,
		"failed", failed,
	)
	return out, nil
}

// resolveMissingCounties returns a copy of records where located records with
// an empty county take the name of the county containing them.
func resolveMissingCounties(records []domain.SalesRecord, idx *CountyIndex, logger *slog.Logger) []domain.SalesRecord {
	out := make([]domain.SalesRecord, len(records))
	var resolved, unresolved int
	for i, r := range records {
		if r.County == "" && r.Located {
			if name, ok := idx.Locate(r.Geo); ok {
				r.County = name
				resolved++
			} else {
				unresolved++
			}
		}
		out[i] = r
	}
	if resolved+unresolved > 0 {
		logger.Info("county resolution complete", "resolved", resolved, "unresolved", unresolved)
	}
	return out
}

type failedLookup struct {
	result domain.GeocodingResult
	err    error
}

// memoGeocoder collapses concurrent lookups of the same query into one call
// and remembers failed or empty answers for the duration of one load.
// Successful answers are left to the wrapped geocoder's own cache.
type memoGeocoder struct {
	inner domain.Geocoder
	group singleflight.Group

	mu     sync.Mutex
	seen   map[string]struct{}
	failed map[string]failedLookup
}

func newMemoGeocoder(inner domain.Geocoder) *memoGeocoder {
	return &memoGeocoder{
		inner:  inner,
		seen:   make(map[string]struct{}),
		failed: make(map[string]failedLookup),
	}
}

func (m *memoGeocoder) ForwardGeocode(ctx context.Context, query, state string) (domain.GeocodingResult, error) {
	key := query + "|" + state

	m.mu.Lock()
	m.seen[key] = struct{}{}
	if f, ok := m.failed[key]; ok {
		m.mu.Unlock()
		return f.result, f.err
	}
	m.mu.Unlock()

	type answer struct {
		result domain.GeocodingResult
		err    error
	}
	v, _, _ := m.group.Do(key, func() (any, error) {
		result, err := m.inner.ForwardGeocode(ctx, query, state)
		if (err != nil || (result.Lat == 0 && result.Lon == 0)) && ctx.Err() == nil {
			m.mu.Lock()
			m.failed[key] = failedLookup{result: result, err: err}
			m.mu.Unlock()
		}
		return answer{result: result, err: err}, nil
	})
	a := v.(answer)
	return a.result, a.err
}

// lookups reports the number of distinct queries seen.
func (m *memoGeocoder) lookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}
