package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

const (
	fieldCategory = "category"
	fieldBrand    = "brand"
)

// buildIndexMapping maps one document per (category, brand) pair. Category
// is matched exactly; brand is tokenized and lowercased without stemming so
// names like "Tito's Handmade" stay recognizable.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = keyword.Name
	categoryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt(fieldCategory, categoryFieldMapping)

	brandFieldMapping := bleve.NewTextFieldMapping()
	brandFieldMapping.Analyzer = simple.Name
	brandFieldMapping.Store = true
	docMapping.AddFieldMappingsAt(fieldBrand, brandFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
