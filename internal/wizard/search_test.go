package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab-bio/omics-console/internal/models"
)

// blockingSearcher holds every request until its release channel fires,
// so tests can control response ordering.
type blockingSearcher struct {
	mu      sync.Mutex
	calls   []string
	release map[string]chan []models.Organism
}

func newBlockingSearcher() *blockingSearcher {
	return &blockingSearcher{release: make(map[string]chan []models.Organism)}
}

func (b *blockingSearcher) expect(query string) chan []models.Organism {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan []models.Organism, 1)
	b.release[query] = ch
	return ch
}

func (b *blockingSearcher) SearchOrganisms(ctx context.Context, query string, _ models.Kingdom) ([]models.Organism, error) {
	b.mu.Lock()
	b.calls = append(b.calls, query)
	ch := b.release[query]
	b.mu.Unlock()

	if ch == nil {
		return nil, nil
	}
	select {
	case organisms := <-ch:
		return organisms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *blockingSearcher) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func waitForResults(t *testing.T, results <-chan []models.Organism) []models.Organism {
	t.Helper()

	select {
	case organisms := <-results:
		return organisms
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search results")
		return nil
	}
}

func TestShortQueryClearsWithoutRequest(t *testing.T) {
	backend := newBlockingSearcher()
	published := make(chan []models.Organism, 8)
	searcher := NewSearcher(SearcherParams{
		Client:    backend,
		OnResults: func(organisms []models.Organism) { published <- organisms },
	})

	searcher.Input(context.Background(), "o", models.KingdomPlant)

	assert.Empty(t, waitForResults(t, published))
	assert.Zero(t, backend.callCount())
	assert.Empty(t, searcher.Results())
}

func TestSearchAppliesCurrentResponse(t *testing.T) {
	backend := newBlockingSearcher()
	release := backend.expect("oryza")
	published := make(chan []models.Organism, 8)
	searcher := NewSearcher(SearcherParams{
		Client:    backend,
		OnResults: func(organisms []models.Organism) { published <- organisms },
	})

	searcher.Input(context.Background(), "oryza", models.KingdomPlant)
	release <- []models.Organism{{ID: 9, ScientificName: "Oryza sativa", Kingdom: models.KingdomPlant}}

	organisms := waitForResults(t, published)
	require.Len(t, organisms, 1)
	assert.Equal(t, "Oryza sativa", organisms[0].ScientificName)
	assert.Len(t, searcher.Results(), 1)
}

func TestStaleResponseNeverOverwritesNewer(t *testing.T) {
	backend := newBlockingSearcher()
	first := backend.expect("or")
	second := backend.expect("ory")
	published := make(chan []models.Organism, 8)
	searcher := NewSearcher(SearcherParams{
		Client:    backend,
		OnResults: func(organisms []models.Organism) { published <- organisms },
	})

	searcher.Input(context.Background(), "or", models.KingdomPlant)
	searcher.Input(context.Background(), "ory", models.KingdomPlant)

	// Newer query answers first.
	second <- []models.Organism{{ID: 2, ScientificName: "Oryza rufipogon"}}
	organisms := waitForResults(t, published)
	require.Len(t, organisms, 1)
	assert.Equal(t, "Oryza rufipogon", organisms[0].ScientificName)

	// The older request was cancelled when the newer keystroke arrived; even
	// if it had answered, a stale token is discarded.
	first <- []models.Organism{{ID: 1, ScientificName: "Orchis"}}
	searcher.apply(1, []models.Organism{{ID: 1, ScientificName: "Orchis"}})

	results := searcher.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "Oryza rufipogon", results[0].ScientificName)
}

func TestNewKeystrokeCancelsInFlightRequest(t *testing.T) {
	backend := newBlockingSearcher()
	backend.expect("aspergillus")
	second := backend.expect("penicillium")
	published := make(chan []models.Organism, 8)
	searcher := NewSearcher(SearcherParams{
		Client:    backend,
		OnResults: func(organisms []models.Organism) { published <- organisms },
	})

	ctx := context.Background()
	searcher.Input(ctx, "aspergillus", models.KingdomFungus)

	// Wait for the first request to be issued before superseding it.
	require.Eventually(t, func() bool { return backend.callCount() == 1 },
		2*time.Second, 5*time.Millisecond)

	searcher.Input(ctx, "penicillium", models.KingdomFungus)
	second <- []models.Organism{{ID: 5, ScientificName: "Penicillium"}}

	organisms := waitForResults(t, published)
	require.Len(t, organisms, 1)
	assert.Equal(t, "Penicillium", organisms[0].ScientificName)
}

func TestEmptyResponseClearsPreviousResults(t *testing.T) {
	backend := newBlockingSearcher()
	release := backend.expect("oryza")
	published := make(chan []models.Organism, 8)
	searcher := NewSearcher(SearcherParams{
		Client:    backend,
		OnResults: func(organisms []models.Organism) { published <- organisms },
	})

	searcher.Input(context.Background(), "oryza", models.KingdomPlant)
	release <- []models.Organism{{ID: 9, ScientificName: "Oryza sativa"}}
	waitForResults(t, published)

	// A later lookup with no hits clears the previous ones.
	searcher.Input(context.Background(), "zzzz", models.KingdomPlant)
	require.Eventually(t, func() bool { return len(searcher.Results()) == 0 },
		2*time.Second, 5*time.Millisecond)
}

func TestMissingKingdomClearsWithoutRequest(t *testing.T) {
	backend := newBlockingSearcher()
	searcher := NewSearcher(SearcherParams{Client: backend})

	searcher.Input(context.Background(), "oryza", "")

	assert.Zero(t, backend.callCount())
	assert.Empty(t, searcher.Results())
}
