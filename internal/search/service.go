package search

import (
	"context"
	"log/slog"

	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/store"
)

// Service runs listing searches.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService creates a search service.
func NewService(s *store.Store, logger *slog.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Search returns one page of active listings matching q and the total number
// of matches. Store failures come back as QUERY errors; public callers are
// expected to degrade to an empty page.
func (s *Service) Search(ctx context.Context, q models.SearchQuery) (models.SearchPage, error) {
	q = q.Normalized()
	lq := Build(q)

	items, err := s.store.SearchListings(ctx, lq)
	if err != nil {
		return models.SearchPage{}, err
	}
	total, err := s.store.CountListings(ctx, lq)
	if err != nil {
		return models.SearchPage{}, err
	}

	s.logger.Debug("search executed",
		"text", q.Text,
		"category_id", q.CategoryID,
		"subcategory_id", q.SubcategoryID,
		"page", q.Page,
		"page_size", q.PageSize,
		"results", len(items),
		"total", total,
	)
	return models.NewSearchPage(items, total, q.Page, q.PageSize), nil
}
