// Package search provides brand type-ahead within a category.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit is the number of hits returned when the caller asks for none.
const DefaultLimit = 20

const batchSize = 500

// Catalog lists the brands sold in each category.
type Catalog interface {
	Categories() []string
	Brands(category string) []string
}

// BrandHit is one brand matching a query.
type BrandHit struct {
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Score    float64 `json:"score"`
}

// BrandIndex is an in-memory full-text index of brands. Safe for concurrent use.
type BrandIndex struct {
	index   bleve.Index
	catalog Catalog
	logger  *slog.Logger
}

// NewBrandIndex indexes every (category, brand) pair of catalog.
func NewBrandIndex(catalog Catalog, logger *slog.Logger) (*BrandIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create brand index: %w", err)
	}

	count := 0
	batch := index.NewBatch()
	for _, category := range catalog.Categories() {
		for _, brand := range catalog.Brands(category) {
			doc := map[string]any{fieldCategory: category, fieldBrand: brand}
			if err := batch.Index(docID(category, brand), doc); err != nil {
				return nil, fmt.Errorf("batch index %s/%s: %w", category, brand, err)
			}
			count++
			if batch.Size() >= batchSize {
				if err := index.Batch(batch); err != nil {
					return nil, fmt.Errorf("commit brand batch: %w", err)
				}
				batch.Reset()
			}
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return nil, fmt.Errorf("commit brand batch: %w", err)
		}
	}

	logger.Info("brand index built", "documents", count)
	return &BrandIndex{index: index, catalog: catalog, logger: logger}, nil
}

// Close releases the index.
func (b *BrandIndex) Close() error {
	return b.index.Close()
}

// DocumentCount returns the number of indexed (category, brand) pairs.
func (b *BrandIndex) DocumentCount() (uint64, error) {
	return b.index.DocCount()
}

// Search returns up to limit brands in category matching text, best first.
// Text matches whole words, word prefixes, and single-character typos. An
// empty text lists the category's brands in dataset order.
func (b *BrandIndex) Search(ctx context.Context, category, text string, limit int) ([]BrandHit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	text = strings.TrimSpace(text)
	if text == "" {
		brands := b.catalog.Brands(category)
		hits := make([]BrandHit, 0, min(limit, len(brands)))
		for _, brand := range brands[:min(limit, len(brands))] {
			hits = append(hits, BrandHit{Category: category, Brand: brand})
		}
		return hits, nil
	}

	req := bleve.NewSearchRequestOptions(buildBrandQuery(category, text), limit, 0, false)
	req.Fields = []string{fieldCategory, fieldBrand}
	req.SortBy([]string{"-_score", fieldBrand})

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute brand search: %w", err)
	}

	hits := make([]BrandHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := BrandHit{Category: category, Score: h.Score}
		if s, ok := h.Fields[fieldBrand].(string); ok {
			hit.Brand = s
		}
		hits = append(hits, hit)
	}
	b.logger.Debug("brand search", "category", category, "query", text, "hits", len(hits), "took", res.Took)
	return hits, nil
}

func buildBrandQuery(category, text string) query.Query {
	categoryQuery := bleve.NewTermQuery(category)
	categoryQuery.SetField(fieldCategory)

	textQueries := []query.Query{}

	match := bleve.NewMatchQuery(text)
	match.SetField(fieldBrand)
	match.SetBoost(3.0)
	textQueries = append(textQueries, match)

	words := strings.Fields(strings.ToLower(text))
	last := words[len(words)-1]

	fuzzy := bleve.NewFuzzyQuery(last)
	fuzzy.SetFuzziness(1)
	fuzzy.SetField(fieldBrand)
	fuzzy.SetBoost(0.8)
	textQueries = append(textQueries, fuzzy)

	prefix := bleve.NewPrefixQuery(last)
	prefix.SetField(fieldBrand)
	prefix.SetBoost(1.5)
	textQueries = append(textQueries, prefix)

	return bleve.NewConjunctionQuery(categoryQuery, bleve.NewDisjunctionQuery(textQueries...))
}

func docID(category, brand string) string {
	return category + "\x1f" + brand
}
