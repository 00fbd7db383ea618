// Package searchstate composes the current free-text term and
// structured filter selections into exactly one outbound search per
// mutation, with last-request-wins ordering: a result arriving for a
// superseded filter state is discarded, never displayed.
package searchstate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// Filter keys accepted by SetFilter.
const (
	FilterLocation    = "location"
	FilterDegreeLevel = "degree_level"
	FilterLanguage    = "language"
	FilterTuitionMin  = "tuition_min"
	FilterTuitionMax  = "tuition_max"
)

// Dispatcher issues one composed search. SearchService implements it.
type Dispatcher interface {
	Search(ctx context.Context, q model.SearchQuery) (model.SearchResults, error)
}

// Machine holds the live term/filter/page state and the most recent
// non-superseded result set.
type Machine struct {
	dispatch Dispatcher
	logger   *slog.Logger
	limit    int

	mu      sync.Mutex
	filters model.SearchFilters
	page    int
	seq     uint64
	results model.SearchResults
	err     error

	onResults func(model.SearchResults, error)
}

// Option customizes a Machine.
type Option func(*Machine)

// WithLimit overrides the page size.
func WithLimit(limit int) Option {
	return func(m *Machine) { m.limit = limit }
}

// WithOnResults installs a callback invoked for every accepted result
// (UI re-render hook). Superseded results never reach it.
func WithOnResults(fn func(model.SearchResults, error)) Option {
	return func(m *Machine) { m.onResults = fn }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// New constructs a Machine on page 1 with no filters set.
func New(dispatch Dispatcher, opts ...Option) *Machine {
	m := &Machine{
		dispatch: dispatch,
		logger:   slog.Default(),
		limit:    model.DefaultPageSize,
		page:     1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetFilter mutates one filter dimension, synchronously resets the
// pagination cursor to page 1, and triggers exactly one fetch carrying
// the full current filter set.
func (m *Machine) SetFilter(ctx context.Context, key, value string) error {
	apply, err := filterMutation(key, value)
	if err != nil {
		return err
	}
	m.mutate(ctx, apply, true)
	return nil
}

// SubmitSearch sets the free-text term and triggers a fetch. The term
// is part of Snapshot so the search stays bookmarkable.
func (m *Machine) SubmitSearch(ctx context.Context, term string) {
	m.mutate(ctx, func(f *model.SearchFilters) { f.Query = term }, true)
}

// SetPage moves the pagination cursor without touching filters.
func (m *Machine) SetPage(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	m.mu.Lock()
	m.page = page
	m.mu.Unlock()
	m.mutate(ctx, func(*model.SearchFilters) {}, false)
}

// Refresh re-dispatches the current state unchanged.
func (m *Machine) Refresh(ctx context.Context) {
	m.mutate(ctx, func(*model.SearchFilters) {}, false)
}

// Results returns the latest accepted result set and its error.
func (m *Machine) Results() (model.SearchResults, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results, m.err
}

// Snapshot serializes the current term, filters and page for a
// shareable URL.
func (m *Machine) Snapshot() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.SearchQuery{Filters: m.filters, Page: m.page, Limit: m.limit}.Values()
}

// mutate applies one state change and dispatches the composed query.
// The mutation, the page reset and the query snapshot share one
// critical section so no dispatch ever carries a half-applied state.
func (m *Machine) mutate(ctx context.Context, apply func(*model.SearchFilters), resetPage bool) {
	m.mu.Lock()
	apply(&m.filters)
	if resetPage {
		m.page = 1
	}
	m.seq++
	seq := m.seq
	q := model.SearchQuery{Filters: m.filters, Page: m.page, Limit: m.limit}
	m.mu.Unlock()

	go m.run(ctx, seq, q)
}

// run resolves one dispatched query. A result for anything but the most
// recent sequence number is dropped on arrival; the socket is not
// canceled, its resolution is simply ignored.
func (m *Machine) run(ctx context.Context, seq uint64, q model.SearchQuery) {
	res, err := m.dispatch.Search(ctx, q)

	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		m.logger.DebugContext(ctx, "discarding superseded search result",
			"seq", seq, "latest", m.seq)
		return
	}
	m.results, m.err = res, err
	cb := m.onResults
	m.mu.Unlock()

	if cb != nil {
		cb(res, err)
	}
}

func filterMutation(key, value string) (func(*model.SearchFilters), error) {
	switch key {
	case FilterLocation:
		return func(f *model.SearchFilters) { f.Location = value }, nil
	case FilterDegreeLevel:
		return func(f *model.SearchFilters) { f.DegreeLevel = value }, nil
	case FilterLanguage:
		return func(f *model.SearchFilters) { f.Language = value }, nil
	case FilterTuitionMin, FilterTuitionMax:
		var bound *int
		if value != "" {
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("filter %s: %w", key, err)
			}
			bound = &n
		}
		if key == FilterTuitionMin {
			return func(f *model.SearchFilters) { f.TuitionMin = bound }, nil
		}
		return func(f *model.SearchFilters) { f.TuitionMax = bound }, nil
	default:
		return nil, fmt.Errorf("unknown filter key %q", key)
	}
}
