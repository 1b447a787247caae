// internal/fanout/coordinator_test.go
package fanout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "omnisearch/internal/common/errors"
	"omnisearch/internal/common/logger"
	"omnisearch/internal/sources"
)

// ==========================
// Test Helper Functions
// ==========================

type stubClient struct {
	id     sources.SourceID
	items  []sources.SourceItem
	err    error
	delay  time.Duration
	onCall func()
}

func (s *stubClient) ID() sources.SourceID { return s.id }

func (s *stubClient) Fetch(ctx context.Context, q sources.Query) ([]sources.SourceItem, error) {
	if s.onCall != nil {
		s.onCall()
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.items, s.err
}

func sixteenStubs(err error) []sources.Client {
	clients := make([]sources.Client, 0, len(sources.All))
	for _, id := range sources.All {
		clients = append(clients, &stubClient{id: id, err: err})
	}
	return clients
}

func newCoordinator(t testing.TB, clients []sources.Client, timeout time.Duration) *Coordinator {
	t.Helper()
	return New(clients, Config{PerSourceTimeout: timeout}, logger.NewTestLogger(t))
}

// ==========================
// Aggregate Completeness Tests
// ==========================

func TestRun_EverySourceHasExactlyOneEntry(t *testing.T) {
	clients := []sources.Client{
		&stubClient{id: sources.SourceWikipedia, items: []sources.SourceItem{{Title: "ok"}}},
		&stubClient{id: sources.SourceGitHub, err: apperrors.NewBadStatusError(500)},
		&stubClient{id: sources.SourceWeather, delay: time.Second},
	}

	agg, err := newCoordinator(t, clients, 50*time.Millisecond).Run(context.Background(), sources.Query{Text: "q"})
	require.NoError(t, err)

	assert.Len(t, agg.Results, len(clients))
	assert.Equal(t, []sources.SourceID{sources.SourceWikipedia, sources.SourceGitHub, sources.SourceWeather}, agg.Order)
	assert.Equal(t, sources.StatusSuccess, agg.Results[sources.SourceWikipedia].Status)
	assert.Equal(t, sources.StatusFailure, agg.Results[sources.SourceGitHub].Status)
	assert.Equal(t, sources.StatusTimedOut, agg.Results[sources.SourceWeather].Status)
}

func TestRun_AllFailedStillComplete(t *testing.T) {
	agg, err := newCoordinator(t, sixteenStubs(apperrors.NewBadStatusError(503)), time.Second).
		Run(context.Background(), sources.Query{Text: "q"})
	require.NoError(t, err)

	assert.Len(t, agg.Results, len(sources.All))
	assert.Empty(t, agg.Succeeded())
	for id, res := range agg.Results {
		assert.Equal(t, sources.StatusFailure, res.Status, "source %s", id)
	}
}

// ==========================
// Timing Tests
// ==========================

func TestRun_SlowSourcesDoNotStack(t *testing.T) {
	// Every source hangs; the join must still return in roughly one
	// timeout, not sixteen.
	clients := make([]sources.Client, 0, len(sources.All))
	for _, id := range sources.All {
		clients = append(clients, &stubClient{id: id, delay: time.Minute})
	}

	timeout := 100 * time.Millisecond
	start := time.Now()
	agg, err := newCoordinator(t, clients, timeout).Run(context.Background(), sources.Query{Text: "q"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 10*timeout, "join must be bounded by the slowest source, not the sum")
	for id, res := range agg.Results {
		assert.Equal(t, sources.StatusTimedOut, res.Status, "source %s", id)
	}
}

func TestRun_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newCoordinator(t, sixteenStubs(nil), time.Second).Run(ctx, sources.Query{Text: "q"})
	assert.ErrorIs(t, err, context.Canceled)
}

// ==========================
// Concurrency Tests
// ==========================

func TestRun_TwoQueriesOverlap(t *testing.T) {
	// Both runs park inside their fetches at the same time, proving the
	// coordinator does not serialize distinct queries.
	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0
	release := make(chan struct{})

	clients := []sources.Client{&stubClient{
		id: sources.SourceWikipedia,
		onCall: func() {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()
			<-release
			mu.Lock()
			inFlight--
			mu.Unlock()
		},
	}}
	coordinator := newCoordinator(t, clients, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := coordinator.Run(context.Background(), sources.Query{Text: "q"})
			assert.NoError(t, err)
		}()
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return maxInFlight == 2
	}, time.Second, 5*time.Millisecond, "both runs should be in flight together")
	close(release)
	wg.Wait()
}

type gaugeClient struct {
	id       sources.SourceID
	mu       *sync.Mutex
	inFlight *int
	maxSeen  *int
}

func (g *gaugeClient) ID() sources.SourceID { return g.id }

func (g *gaugeClient) Fetch(ctx context.Context, q sources.Query) ([]sources.SourceItem, error) {
	g.mu.Lock()
	*g.inFlight++
	if *g.inFlight > *g.maxSeen {
		*g.maxSeen = *g.inFlight
	}
	g.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	g.mu.Lock()
	*g.inFlight--
	g.mu.Unlock()
	return nil, nil
}

func TestRun_MaxParallelLimitsConcurrency(t *testing.T) {
	var (
		mu          sync.Mutex
		inFlight    int
		maxInFlight int
	)
	clients := make([]sources.Client, 0, 8)
	for _, id := range sources.All[:8] {
		clients = append(clients, &gaugeClient{id: id, mu: &mu, inFlight: &inFlight, maxSeen: &maxInFlight})
	}

	coordinator := New(clients, Config{PerSourceTimeout: time.Second, MaxParallel: 2}, logger.NewNoOpLogger())
	_, err := coordinator.Run(context.Background(), sources.Query{Text: "q"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, maxInFlight, 2)
}
