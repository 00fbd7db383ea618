//revive:disable-next-line:var-naming // shared domain package name used across the project
package model

import (
	"net/url"
	"strconv"
	"strings"
)

// SearchFilters is the structured half of a global search: the
// free-text term plus the filter dimensions the metadata advertises.
type SearchFilters struct {
	Query       string
	Location    string
	DegreeLevel string
	Language    string
	TuitionMin  *int
	TuitionMax  *int
}

// Values serializes the filters into backend query parameters. Empty
// dimensions are left out entirely.
func (f SearchFilters) Values() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(f.Query); q != "" {
		v.Set("q", q)
	}
	if f.Location != "" {
		v.Set("location", f.Location)
	}
	if f.DegreeLevel != "" {
		v.Set("degree_level", f.DegreeLevel)
	}
	if f.Language != "" {
		v.Set("language", f.Language)
	}
	if f.TuitionMin != nil {
		v.Set("tuition_min", strconv.Itoa(*f.TuitionMin))
	}
	if f.TuitionMax != nil {
		v.Set("tuition_max", strconv.Itoa(*f.TuitionMax))
	}
	return v
}

// IsZero reports whether no term and no filter is set.
func (f SearchFilters) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" &&
		f.Location == "" && f.DegreeLevel == "" && f.Language == "" &&
		f.TuitionMin == nil && f.TuitionMax == nil
}

// SearchQuery is one fully composed search request: the current filter
// snapshot plus the pagination cursor captured at dispatch time.
type SearchQuery struct {
	Filters SearchFilters
	Page    int
	Limit   int
}

// Values flattens the query into a single query-string.
func (q SearchQuery) Values() url.Values {
	v := q.Filters.Values()
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// SearchResults is the combined payload of a global search.
type SearchResults struct {
	Universities []University   `json:"universities"`
	Programs     []Program      `json:"programs"`
	Metadata     SearchMetadata `json:"metadata"`
}

// SearchMetadata carries the currently valid filter choices so filter
// widgets can be populated from live data.
type SearchMetadata struct {
	FiltersAvailable AvailableFilters `json:"filters_available"`
	Analysis         string           `json:"analysis,omitempty"`
}

// AvailableFilters enumerates the live filter dimensions.
// DegreeLevels maps the stored value to its display label.
type AvailableFilters struct {
	Locations    []string          `json:"locations"`
	DegreeLevels map[string]string `json:"degree_levels"`
	TuitionRange TuitionRange      `json:"tuition_range"`
	Languages    []string          `json:"languages,omitempty"`
}

// TuitionRange is the observed min/max tuition across results. Nil ends
// mean the dimension had no data.
type TuitionRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}
