// Package catalog provides product browsing and local fuzzy filtering
// over the storefront catalog.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"

	"github.com/tiketto/tiketto/internal/domain"
)

// FilterResult is a catalog match with highlight metadata.
type FilterResult struct {
	Product        domain.Product
	MatchedIndexes []int // Character positions that matched, for highlighting
	Score          int
}

// productIndex implements sahilm/fuzzy.Source over the cached
// products for zero-allocation matching.
type productIndex struct {
	products   []domain.Product
	lowerNames []string // Pre-computed lowercase names
}

func (idx *productIndex) String(i int) string { return idx.lowerNames[i] }
func (idx *productIndex) Len() int            { return len(idx.products) }

// Service caches the product list and answers local filter queries.
// Products are refreshed from the server; filtering never hits the
// network.
type Service struct {
	client domain.CatalogClient
	logger *slog.Logger

	mu    sync.RWMutex
	index *productIndex
}

// NewService creates a catalog service over client.
func NewService(client domain.CatalogClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		logger: logger,
		index:  &productIndex{},
	}
}

// Refresh fetches the catalog in the active language and rebuilds the
// filter index.
func (s *Service) Refresh(ctx context.Context) ([]domain.Product, error) {
	products, err := s.client.GetProducts(ctx)
	if err != nil {
		s.logger.Error("failed to fetch catalog", "error", err)
		return nil, err
	}

	lowerNames := make([]string, len(products))
	for i, p := range products {
		lowerNames[i] = strings.ToLower(p.Name)
	}

	s.mu.Lock()
	s.index = &productIndex{products: products, lowerNames: lowerNames}
	s.mu.Unlock()

	s.logger.Debug("catalog refreshed", "count", len(products))
	return products, nil
}

// Products returns the cached catalog.
func (s *Service) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]domain.Product, len(s.index.products))
	copy(products, s.index.products)
	return products
}

// Product returns the cached product with the given id, if present.
func (s *Service) Product(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.index.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Filter matches query against cached product names, returning results
// best-first with matched character positions for highlighting.
func (s *Service) Filter(query string) []FilterResult {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil
	}

	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()

	matches := sahilm.FindFrom(query, idx)

	results := make([]FilterResult, len(matches))
	for i, match := range matches {
		results[i] = FilterResult{
			Product:        idx.products[match.Index],
			MatchedIndexes: match.MatchedIndexes,
			Score:          match.Score,
		}
	}
	return results
}

// Suggest returns product names loosely matching query, ranked by edit
// distance. Used for the "did you mean" line when Filter comes back
// empty.
func (s *Service) Suggest(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()

	ranks := fuzzy.RankFindNormalizedFold(query, idx.lowerNames)
	sort.Sort(ranks)

	names := make([]string, 0, len(ranks))
	for _, rank := range ranks {
		names = append(names, idx.products[rank.OriginalIndex].Name)
	}
	return names
}
