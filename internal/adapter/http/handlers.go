package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/render"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := pageQuery{
		Category: r.URL.Query().Get("category"),
		Brand:    r.URL.Query().Get("brand"),
	}
	if err := s.validator.validate(q); err != nil {
		s.writeError(w, err)
		return
	}

	page := indexPage{Categories: s.deps.Dashboard.Categories()}
	page.Category = pick(page.Categories, q.Category)
	page.Brands = s.deps.Dashboard.Brands(page.Category)
	page.Brand = pick(page.Brands, q.Brand)
	page.TopN = s.deps.Dashboard.TopN()
	page.HasStoreMap = s.deps.StoreMap != nil

	if page.Brand != "" {
		view, err := s.deps.Dashboard.Select(r.Context(), page.Category, page.Brand)
		if err != nil {
			s.writeError(w, err)
			return
		}
		page.View = &view
		page.ChoroplethURL = "/choropleth.png?" + selectionValues(page.Category, page.Brand).Encode()
		page.WorkbookURL = "/api/selection.xlsx?" + selectionValues(page.Category, page.Brand).Encode()
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		s.writeError(w, fmt.Errorf("render page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (s *Server) handleChoropleth(w http.ResponseWriter, r *http.Request) {
	view, ok := s.preview(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.WriteChoroplethPNG(&buf, view.Brand, s.deps.Dashboard.TopN(), view.Choropleth); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (s *Server) handleStoreMap(w http.ResponseWriter, r *http.Request) {
	if s.deps.StoreMap == nil {
		http.NotFound(w, r)
		return
	}
	doc, err := s.deps.StoreMap.ReadStoreMap()
	if errors.Is(err, fs.ErrNotExist) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no store map exported yet"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(doc) //nolint:errcheck // client went away
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Dashboard.Categories())
}

func (s *Server) handleBrands(w http.ResponseWriter, r *http.Request) {
	q := brandsQuery{Category: r.URL.Query().Get("category")}
	if err := s.validator.validate(q); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Dashboard.Brands(q.Category))
}

func (s *Server) handleBrandSearch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Brands == nil {
		http.NotFound(w, r)
		return
	}

	q := brandSearchQuery{
		Category: r.URL.Query().Get("category"),
		Text:     r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, &validationError{Fields: map[string]string{"limit": "must be an integer"}})
			return
		}
		q.Limit = limit
	}
	if err := s.validator.validate(q); err != nil {
		s.writeError(w, err)
		return
	}

	hits, err := s.deps.Brands.Search(r.Context(), q.Category, q.Text, q.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	q, ok := s.selectionQuery(w, r)
	if !ok {
		return
	}
	view, err := s.deps.Dashboard.Select(r.Context(), q.Category, q.Brand)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSelectionWorkbook(w http.ResponseWriter, r *http.Request) {
	view, ok := s.preview(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.WriteWorkbook(&buf, view); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="top_counties.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (s *Server) selectionQuery(w http.ResponseWriter, r *http.Request) (selectionQuery, bool) {
	q := selectionQuery{
		Category: r.URL.Query().Get("category"),
		Brand:    r.URL.Query().Get("brand"),
	}
	if err := s.validator.validate(q); err != nil {
		s.writeError(w, err)
		return q, false
	}
	return q, true
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) (domain.View, bool) {
	q, ok := s.selectionQuery(w, r)
	if !ok {
		return domain.View{}, false
	}
	view, err := s.deps.Dashboard.Preview(r.Context(), q.Category, q.Brand)
	if err != nil {
		s.writeError(w, err)
		return domain.View{}, false
	}
	return view, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *validationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
		return
	}
	s.logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// pick returns want when it is one of options, else the first option.
func pick(options []string, want string) string {
	for _, o := range options {
		if o == want {
			return want
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

func selectionValues(category, brand string) url.Values {
	return url.Values{"category": {category}, "brand": {brand}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
