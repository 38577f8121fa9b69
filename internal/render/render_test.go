package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func square(name string, x, y float64) domain.CountyGeometry {
	ring := orb.Ring{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}
	return domain.CountyGeometry{Name: name, Boundary: orb.MultiPolygon{{ring}}}
}

func testShapes() []domain.CountyShape {
	return []domain.CountyShape{
		{Geometry: square("Polk", -93.5, 41.5), BottlesSold: 12345},
		{Geometry: square("Linn", -91.5, 42), BottlesSold: 800},
		{Geometry: square("Scott", -90.5, 41.5), BottlesSold: 50},
	}
}

func testView() domain.View {
	return domain.View{
		Category: "Canadian Whiskies",
		Brand:    "Black Velvet",
		TopCounties: []domain.CountyTotal{
			{County: "Polk", BottlesSold: 12345},
			{County: "Linn", BottlesSold: 800},
		},
		Markers: []domain.StoreMarker{
			{
				StoreName:   "Hy-Vee #3",
				County:      "Polk",
				SaleDollars: decimal.RequireFromString("123.456"),
				Lat:         41.6,
				Lon:         -93.6,
				Popup:       "Store: Hy-Vee #3<br>County: Polk<br>Sales: $123.46",
			},
		},
		MapCenter:   domain.Geo{Lat: 41.6, Lon: -93.6},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestChoroplethTitle(t *testing.T) {
	assert.Equal(t, "Top 10 Counties for Black Velvet Sales", ChoroplethTitle("Black Velvet", 10))
}

func TestChoropleth(t *testing.T) {
	p, err := Choropleth("Black Velvet", 10, testShapes())
	require.NoError(t, err)
	assert.Equal(t, "Top 10 Counties for Black Velvet Sales", p.Title.Text)
}

func TestChoropleth_Empty(t *testing.T) {
	p, err := Choropleth("Black Velvet", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, "Top 10 Counties for Black Velvet Sales", p.Title.Text)
}

func TestLegendLabel(t *testing.T) {
	assert.Equal(t, "Polk (12,345)", legendLabel("Polk", 12345))
}

func TestWriteChoroplethPNG(t *testing.T) {
	for name, shapes := range map[string][]domain.CountyShape{
		"shapes": testShapes(),
		"empty":  nil,
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteChoroplethPNG(&buf, "Black Velvet", 10, shapes))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Positive(t, img.Bounds().Dx())
			assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())
		})
	}
}

func TestColorScale_LowIsBlueHighIsRed(t *testing.T) {
	cmap := colorScale(testShapes())

	lo, err := cmap.At(50)
	require.NoError(t, err)
	hi, err := cmap.At(12345)
	require.NoError(t, err)

	lr, _, lb, _ := lo.RGBA()
	hr, _, hb, _ := hi.RGBA()
	assert.Greater(t, lb, lr)
	assert.Greater(t, hr, hb)
}

func TestColorScale_SingleValue(t *testing.T) {
	cmap := colorScale([]domain.CountyShape{{BottlesSold: 7}})
	_, err := cmap.At(7)
	require.NoError(t, err)
}

func TestPolygonRings_HoleReversed(t *testing.T) {
	outer := orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	hole := orb.Ring{{1, 1}, {2, 1}, {2, 2}, {1, 2}, {1, 1}}

	rings := polygonRings(orb.Polygon{outer, hole})
	require.Len(t, rings, 2)

	x, y := rings[1].XY(1)
	assert.Equal(t, []float64{1, 2}, []float64{x, y})
	assert.Equal(t, orb.Ring{{1, 1}, {2, 1}, {2, 2}, {1, 2}, {1, 1}}, hole, "input is not modified")
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "12,345", FormatCount(12345))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}

func TestRenderStoreMap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStoreMap(&buf, NewStoreMapData(testView(), 0)))
	doc := buf.String()

	assert.Contains(t, doc, "leaflet@1.9.4")
	assert.Contains(t, doc, "L.circleMarker")
	assert.Regexp(t, `setView\(center,\s*7\s*\)`, doc)
	assert.Contains(t, doc, "41.6")
	assert.Contains(t, doc, "-93.6")
	assert.Regexp(t, `maxWidth:\s*300\s*}`, doc)
	assert.Contains(t, doc, `"latitude":41.6`)
	assert.Contains(t, doc, "Hy-Vee #3")
}

func TestRenderStoreMap_EscapesScriptContent(t *testing.T) {
	view := testView()
	view.Markers[0].Popup = "</script><script>alert(1)</script>"

	var buf bytes.Buffer
	require.NoError(t, RenderStoreMap(&buf, NewStoreMapData(view, 9)))
	doc := buf.String()

	assert.Regexp(t, `setView\(center,\s*9\s*\)`, doc)
	assert.Equal(t, 2, strings.Count(doc, "</script>"), "only the two template script tags close")
}

func TestRenderStoreMap_NoMarkers(t *testing.T) {
	view := testView()
	view.Markers = nil

	var buf bytes.Buffer
	require.NoError(t, RenderStoreMap(&buf, NewStoreMapData(view, 0)))
	assert.Contains(t, buf.String(), "const markers = []")
}

func TestStoreMapWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store_map.html")
	w := NewStoreMapWriter(path, 7)
	assert.Equal(t, path, w.Path())

	require.NoError(t, w.WriteStoreMap(testView()))
	first, err := w.ReadStoreMap()
	require.NoError(t, err)
	assert.Contains(t, string(first), "Hy-Vee #3")

	view := testView()
	view.Markers[0].StoreName = "Fareway"
	view.Markers[0].Popup = "Store: Fareway"
	require.NoError(t, w.WriteStoreMap(view))

	second, err := w.ReadStoreMap()
	require.NoError(t, err)
	assert.Contains(t, string(second), "Fareway")
	assert.NotContains(t, string(second), "Hy-Vee #3")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestStoreMapWriter_MissingDirectory(t *testing.T) {
	w := NewStoreMapWriter(filepath.Join(t.TempDir(), "missing", "store_map.html"), 7)
	require.Error(t, w.WriteStoreMap(testView()))
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, testView()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(TopCountiesSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Rank", "County", "Bottles Sold"},
		{"1", "Polk", "12345"},
		{"2", "Linn", "800"},
	}, rows)

	stores, err := f.GetRows(StoresSheet)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, []string{"Store", "County", "Sale Dollars", "Latitude", "Longitude"}, stores[0])
	assert.Equal(t, "Hy-Vee #3", stores[1][0])
	assert.Equal(t, "123.46", stores[1][2])
}
