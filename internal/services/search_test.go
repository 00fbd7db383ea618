package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

func TestSearchService_BlankQuerySkipsNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc := NewSearchService(newServiceClient(t, srv.URL), nil)

	res, err := svc.Search(context.Background(), model.SearchQuery{
		Filters: model.SearchFilters{Query: "   "},
	})
	require.NoError(t, err)

	assert.Equal(t, int32(0), calls.Load())
	assert.NotNil(t, res.Universities)
	assert.NotNil(t, res.Programs)
	assert.Empty(t, res.Universities)
	assert.Empty(t, res.Programs)
}

func TestSearchService_FilterOnlyQueryStillSearches(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/global", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("location"))
		assert.False(t, r.URL.Query().Has("q"))
		_, _ = w.Write([]byte(`{
			"universities": [{"id": 1, "name": "Université de Paris"}],
			"programs": []
		}`))
	}))
	defer srv.Close()

	svc := NewSearchService(newServiceClient(t, srv.URL), nil)

	res, err := svc.Search(context.Background(), model.SearchQuery{
		Filters: model.SearchFilters{Location: "Paris"},
	})
	require.NoError(t, err)
	require.Len(t, res.Universities, 1)
	assert.Equal(t, "Université de Paris", res.Universities[0].Name)
}

func TestSearchService_NormalizesNilSlices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"metadata": {"filters_available": {"locations": [], "degree_levels": {}, "tuition_range": {"min": null, "max": null}}}}`))
	}))
	defer srv.Close()

	svc := NewSearchService(newServiceClient(t, srv.URL), nil)

	res, err := svc.Search(context.Background(), model.SearchQuery{
		Filters: model.SearchFilters{Query: "philo"},
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Universities)
	assert.NotNil(t, res.Programs)
}

func TestSearchService_GlobalSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "informatique", r.URL.Query().Get("q"))
		assert.Equal(t, "master", r.URL.Query().Get("degree_level"))
		_, _ = w.Write([]byte(`{
			"universities": [],
			"programs": [{"id": 7, "name": "Master Informatique", "degree_level": "master"}],
			"metadata": {"filters_available": {"locations": ["Paris"], "degree_levels": {"master": "Master"}, "tuition_range": {"min": 243, "max": 3770}}}
		}`))
	}))
	defer srv.Close()

	svc := NewSearchService(newServiceClient(t, srv.URL), nil)

	res, err := svc.GlobalSearch(context.Background(), "informatique", model.SearchFilters{DegreeLevel: "master"})
	require.NoError(t, err)
	require.Len(t, res.Programs, 1)
	assert.Equal(t, "Master Informatique", res.Programs[0].Name)
	assert.Equal(t, []string{"Paris"}, res.Metadata.FiltersAvailable.Locations)
	require.NotNil(t, res.Metadata.FiltersAvailable.TuitionRange.Min)
	assert.Equal(t, 243, *res.Metadata.FiltersAvailable.TuitionRange.Min)
}
