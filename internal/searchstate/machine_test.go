package searchstate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// dispatcherStub records every dispatched query and lets each call
// block until the test releases it, so resolution order is scripted.
type dispatcherStub struct {
	mu       sync.Mutex
	queries  []model.SearchQuery
	resolve  map[int]chan model.SearchResults
	blockAll bool
}

func newDispatcherStub(blockAll bool) *dispatcherStub {
	return &dispatcherStub{resolve: map[int]chan model.SearchResults{}, blockAll: blockAll}
}

func (d *dispatcherStub) Search(_ context.Context, q model.SearchQuery) (model.SearchResults, error) {
	d.mu.Lock()
	idx := len(d.queries)
	d.queries = append(d.queries, q)
	var ch chan model.SearchResults
	if d.blockAll {
		ch = make(chan model.SearchResults, 1)
		d.resolve[idx] = ch
	}
	d.mu.Unlock()

	if ch == nil {
		return model.SearchResults{}, nil
	}
	return <-ch, nil
}

// waitForQueries blocks until n queries have been dispatched.
func (d *dispatcherStub) waitForQueries(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		d.mu.Lock()
		got := len(d.queries)
		d.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d dispatched queries", n)
}

func (d *dispatcherStub) query(i int) model.SearchQuery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queries[i]
}

func (d *dispatcherStub) release(i int, res model.SearchResults) {
	d.mu.Lock()
	ch := d.resolve[i]
	d.mu.Unlock()
	ch <- res
}

// resultWaiter turns the onResults callback into a channel.
type resultWaiter struct {
	ch chan model.SearchResults
}

func newResultWaiter() *resultWaiter {
	return &resultWaiter{ch: make(chan model.SearchResults, 16)}
}

func (w *resultWaiter) callback(res model.SearchResults, _ error) {
	w.ch <- res
}

func (w *resultWaiter) next(t *testing.T) model.SearchResults {
	t.Helper()
	select {
	case res := <-w.ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an accepted result")
		return model.SearchResults{}
	}
}

func universitiesNamed(names ...string) model.SearchResults {
	out := model.SearchResults{Programs: []model.Program{}}
	for i, n := range names {
		out.Universities = append(out.Universities, model.University{ID: int64(i + 1), Name: n})
	}
	return out
}

func TestMachine_SetFilterDispatchesFullState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stub := newDispatcherStub(false)
	waiter := newResultWaiter()
	m := New(stub, WithOnResults(waiter.callback))

	m.SubmitSearch(ctx, "droit")
	waiter.next(t)
	require.NoError(t, m.SetFilter(ctx, FilterLocation, "Paris"))
	waiter.next(t)

	stub.waitForQueries(t, 2)
	q := stub.query(1)
	assert.Equal(t, "droit", q.Filters.Query)
	assert.Equal(t, "Paris", q.Filters.Location)
	assert.Equal(t, 1, q.Page)
}

func TestMachine_SetFilterResetsPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stub := newDispatcherStub(false)
	waiter := newResultWaiter()
	m := New(stub, WithOnResults(waiter.callback))

	m.SetPage(ctx, 3)
	waiter.next(t)
	require.NoError(t, m.SetFilter(ctx, FilterDegreeLevel, "master"))
	waiter.next(t)

	stub.waitForQueries(t, 2)
	assert.Equal(t, 3, stub.query(0).Page)

	q := stub.query(1)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, "master", q.Filters.DegreeLevel)
}

func TestMachine_SetPageKeepsFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stub := newDispatcherStub(false)
	waiter := newResultWaiter()
	m := New(stub, WithOnResults(waiter.callback))

	require.NoError(t, m.SetFilter(ctx, FilterLanguage, "Anglais"))
	waiter.next(t)
	m.SetPage(ctx, 2)
	waiter.next(t)

	stub.waitForQueries(t, 2)
	q := stub.query(1)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, "Anglais", q.Filters.Language)
}

func TestMachine_LastRequestWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stub := newDispatcherStub(true)
	waiter := newResultWaiter()
	m := New(stub, WithOnResults(waiter.callback))

	m.SubmitSearch(ctx, "paris")
	stub.waitForQueries(t, 1)
	m.SubmitSearch(ctx, "lyon")
	stub.waitForQueries(t, 2)

	// The newer request resolves first, then the stale one arrives.
	stub.release(1, universitiesNamed("Université de Lyon"))
	got := waiter.next(t)
	require.Len(t, got.Universities, 1)
	assert.Equal(t, "Université de Lyon", got.Universities[0].Name)

	stub.release(0, universitiesNamed("Université de Paris"))

	// The stale resolution never becomes visible.
	assert.Never(t, func() bool {
		res, _ := m.Results()
		return len(res.Universities) > 0 && res.Universities[0].Name == "Université de Paris"
	}, 200*time.Millisecond, 20*time.Millisecond)

	res, err := m.Results()
	require.NoError(t, err)
	assert.Equal(t, "Université de Lyon", res.Universities[0].Name)
}

func TestMachine_StaleResultSkipsCallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stub := newDispatcherStub(true)
	waiter := newResultWaiter()
	m := New(stub, WithOnResults(waiter.callback))

	m.SubmitSearch(ctx, "a")
	stub.waitForQueries(t, 1)
	m.SubmitSearch(ctx, "b")
	stub.waitForQueries(t, 2)

	stub.release(1, universitiesNamed("B"))
	first := waiter.next(t)
	assert.Equal(t, "B", first.Universities[0].Name)

	stub.release(0, universitiesNamed("A"))

	select {
	case res := <-waiter.ch:
		t.Fatalf("superseded result reached the callback: %+v", res)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestMachine_RefreshRedispatchesCurrentState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stub := newDispatcherStub(false)
	waiter := newResultWaiter()
	m := New(stub, WithOnResults(waiter.callback), WithLimit(12))

	require.NoError(t, m.SetFilter(ctx, FilterLocation, "Paris"))
	waiter.next(t)
	m.Refresh(ctx)
	waiter.next(t)

	stub.waitForQueries(t, 2)
	assert.Equal(t, stub.query(0), stub.query(1))
	assert.Equal(t, 12, stub.query(1).Limit)
}

func TestMachine_SetFilterParsesTuitionBounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stub := newDispatcherStub(false)
	waiter := newResultWaiter()
	m := New(stub, WithOnResults(waiter.callback))

	require.NoError(t, m.SetFilter(ctx, FilterTuitionMin, "500"))
	waiter.next(t)
	require.NoError(t, m.SetFilter(ctx, FilterTuitionMax, ""))
	waiter.next(t)

	stub.waitForQueries(t, 2)
	q := stub.query(1)
	require.NotNil(t, q.Filters.TuitionMin)
	assert.Equal(t, 500, *q.Filters.TuitionMin)
	assert.Nil(t, q.Filters.TuitionMax)
}

func TestMachine_SetFilterRejectsBadInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stub := newDispatcherStub(false)
	m := New(stub)

	assert.Error(t, m.SetFilter(ctx, "unknown", "x"))
	assert.Error(t, m.SetFilter(ctx, FilterTuitionMin, "abc"))

	// Rejected mutations dispatch nothing.
	time.Sleep(50 * time.Millisecond)
	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.Empty(t, stub.queries)
}

func TestMachine_SnapshotSerializesState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stub := newDispatcherStub(false)
	waiter := newResultWaiter()
	m := New(stub, WithOnResults(waiter.callback))

	m.SubmitSearch(ctx, "droit")
	waiter.next(t)
	require.NoError(t, m.SetFilter(ctx, FilterLocation, "Paris"))
	waiter.next(t)
	m.SetPage(ctx, 2)
	waiter.next(t)

	v := m.Snapshot()
	assert.Equal(t, "droit", v.Get("q"))
	assert.Equal(t, "Paris", v.Get("location"))
	assert.Equal(t, "2", v.Get("page"))
}
