package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ForwardGeocode(_ context.Context, _, _ string) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 41.6, Lon: -93.6, PlaceName: "Des Moines", FormattedAddress: "Des Moines, IA"},
	}
	metrics := testMetrics()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.ForwardGeocode(context.Background(), "Hy-Vee, Polk County", "IA")
	require.NoError(t, err)
	assert.Equal(t, "Des Moines", r1.PlaceName)

	r2, err := cached.ForwardGeocode(context.Background(), "Hy-Vee, Polk County", "IA")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{PlaceName: "Place", FormattedAddress: "Place, IA"},
	}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "Ames", "IA")
	_, _ = cached.ForwardGeocode(context.Background(), "Ames", "NE")
	_, _ = cached.ForwardGeocode(context.Background(), "Boone", "IA")

	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 3, cached.Len())
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "nowhere", "IA")
	_, _ = cached.ForwardGeocode(context.Background(), "nowhere", "IA")

	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, cached.Len())
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.ForwardGeocode(context.Background(), "Ames", "IA")
	require.Error(t, err)
	assert.Zero(t, cached.Len())
}

func TestCachedGeocoder_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "somewhere"}}
	cached := NewCachedGeocoder(inner, 2, testMetrics())
	ctx := context.Background()

	_, _ = cached.ForwardGeocode(ctx, "a", "IA")
	_, _ = cached.ForwardGeocode(ctx, "b", "IA")
	_, _ = cached.ForwardGeocode(ctx, "a", "IA") // promote "a"
	_, _ = cached.ForwardGeocode(ctx, "c", "IA") // evicts "b"
	assert.Equal(t, 3, inner.calls)

	_, _ = cached.ForwardGeocode(ctx, "a", "IA")
	assert.Equal(t, 3, inner.calls, "a should still be cached")

	_, _ = cached.ForwardGeocode(ctx, "b", "IA")
	assert.Equal(t, 4, inner.calls, "b should have been evicted")
}

func TestNewCachedGeocoder_NonPositiveSize(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "x"}}
	cached := NewCachedGeocoder(inner, 0, testMetrics())

	_, err := cached.ForwardGeocode(context.Background(), "a", "IA")
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Len())
}
