package http

import (
	_ "embed"
	"html/template"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/render"
)

//go:embed templates/index.html.tmpl
var indexSource string

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"count": render.FormatCount,
	"rank":  func(i int) int { return i + 1 },
}).Parse(indexSource))

type indexPage struct {
	Categories []string
	Brands     []string
	Category   string
	Brand      string
	TopN       int

	View          *domain.View
	ChoroplethURL string
	WorkbookURL   string
	HasStoreMap   bool
}
