package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
)

// Store map marker style.
const (
	DefaultZoom         = 7
	MarkerRadius        = 4
	MarkerStroke        = "blue"
	MarkerFill          = "red"
	MarkerFillOpacity   = 0.6
	PopupMaxWidthPixels = 300
)

//go:embed templates/store_map.html.tmpl
var storeMapSource string

var storeMapTemplate = template.Must(template.New("store_map").Parse(storeMapSource))

// StoreMapData is the input of the store map document.
type StoreMapData struct {
	Title   string
	Center  domain.Geo
	Zoom    int
	Markers []domain.StoreMarker

	Radius        int
	Stroke        string
	Fill          string
	FillOpacity   float64
	PopupMaxWidth int
}

// NewStoreMapData fills in the fixed marker style for a view.
func NewStoreMapData(view domain.View, zoom int) StoreMapData {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	markers := view.Markers
	if markers == nil {
		markers = []domain.StoreMarker{}
	}
	return StoreMapData{
		Title:         fmt.Sprintf("%s stores", view.Brand),
		Center:        view.MapCenter,
		Zoom:          zoom,
		Markers:       markers,
		Radius:        MarkerRadius,
		Stroke:        MarkerStroke,
		Fill:          MarkerFill,
		FillOpacity:   MarkerFillOpacity,
		PopupMaxWidth: PopupMaxWidthPixels,
	}
}

// RenderStoreMap writes the standalone Leaflet document to w.
func RenderStoreMap(w io.Writer, data StoreMapData) error {
	if err := storeMapTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render store map: %w", err)
	}
	return nil
}

// StoreMapWriter saves the store map of the latest selection to a fixed
// path. Each write goes to a temp file that is renamed into place, so readers
// never see a partial document.
type StoreMapWriter struct {
	path string
	zoom int
	mu   sync.Mutex
}

// NewStoreMapWriter creates a writer for the document at path.
func NewStoreMapWriter(path string, zoom int) *StoreMapWriter {
	return &StoreMapWriter{path: path, zoom: zoom}
}

// Path returns the document location.
func (s *StoreMapWriter) Path() string { return s.path }

// WriteStoreMap renders view and atomically replaces the document.
func (s *StoreMapWriter) WriteStoreMap(view domain.View) error {
	var buf bytes.Buffer
	if err := RenderStoreMap(&buf, NewStoreMapData(view, s.zoom)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store map: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store map: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp store map: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store map: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename store map: %w", err)
	}
	return nil
}

// ReadStoreMap returns the current document.
func (s *StoreMapWriter) ReadStoreMap() ([]byte, error) {
	return os.ReadFile(s.path)
}
