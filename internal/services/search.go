package services

import (
	"context"
	"log/slog"

	"github.com/campusorient/discovery-sync/internal/api"
	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// SearchService wraps the combined free-text + structured-filter
// search endpoint.
type SearchService struct {
	client *api.Client
	logger *slog.Logger
}

// NewSearchService constructs a SearchService.
func NewSearchService(client *api.Client, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{client: client, logger: logger}
}

// Search issues one global search composed from the query snapshot.
// A blank query (no term, no filters) short-circuits with an empty
// result and no network call.
func (s *SearchService) Search(ctx context.Context, q model.SearchQuery) (model.SearchResults, error) {
	if q.Filters.IsZero() {
		return emptyResults(), nil
	}

	var out model.SearchResults
	if err := s.client.Get(ctx, "/search/global", q.Values(), &out); err != nil {
		s.logger.ErrorContext(ctx, "global search failed",
			"error", err, "error_class", api.Classify(err))
		return model.SearchResults{}, err
	}

	if out.Universities == nil {
		out.Universities = []model.University{}
	}
	if out.Programs == nil {
		out.Programs = []model.Program{}
	}
	return out, nil
}

// GlobalSearch is the term-first convenience entry point.
func (s *SearchService) GlobalSearch(ctx context.Context, term string, filters model.SearchFilters) (model.SearchResults, error) {
	filters.Query = term
	return s.Search(ctx, model.SearchQuery{Filters: filters})
}

func emptyResults() model.SearchResults {
	return model.SearchResults{
		Universities: []model.University{},
		Programs:     []model.Program{},
	}
}
