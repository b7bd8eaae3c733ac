package wizard

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/reslab-bio/omics-console/internal/models"
)

type organismSearcher interface {
	SearchOrganisms(ctx context.Context, query string, kingdom models.Kingdom) ([]models.Organism, error)
}

// Searcher debounces organism lookups as the user types. Every keystroke
// bumps a token and cancels the previous in-flight request; a response is
// applied only while its token is still current, so stale results can never
// overwrite newer ones regardless of network ordering.
type Searcher struct {
	client   organismSearcher
	log      *zap.Logger
	debounce time.Duration
	minLen   int

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	results []models.Organism

	onResults func([]models.Organism)
}

// SearcherParams groups constructor dependencies.
type SearcherParams struct {
	Client   organismSearcher
	Logger   *zap.Logger
	Debounce time.Duration
	MinLen   int

	// OnResults is invoked whenever the current result set changes,
	// including when it is cleared. Optional.
	OnResults func([]models.Organism)
}

// NewSearcher builds a searcher. MinLen defaults to 2.
func NewSearcher(params SearcherParams) *Searcher {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	minLen := params.MinLen
	if minLen <= 0 {
		minLen = 2
	}
	return &Searcher{
		client:    params.Client,
		log:       logger,
		debounce:  params.Debounce,
		minLen:    minLen,
		onResults: params.OnResults,
	}
}

// Input records a keystroke. A query shorter than the minimum clears the
// results without issuing any request.
func (s *Searcher) Input(ctx context.Context, query string, kingdom models.Kingdom) {
	s.mu.Lock()
	s.seq++
	token := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if utf8.RuneCountInString(query) < s.minLen || kingdom == "" {
		s.results = nil
		s.mu.Unlock()
		s.publish(nil)
		return
	}
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go s.fetch(reqCtx, token, query, kingdom)
}

// Results returns the current result set.
func (s *Searcher) Results() []models.Organism {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Stop cancels any in-flight lookup.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) fetch(ctx context.Context, token uint64, query string, kingdom models.Kingdom) {
	if s.debounce > 0 {
		timer := time.NewTimer(s.debounce)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	organisms, err := s.client.SearchOrganisms(ctx, query, kingdom)
	if err != nil {
		if ctx.Err() != nil {
			// Superseded by a newer keystroke.
			return
		}
		s.log.Warn("organism search failed", zap.String("query", query), zap.Error(err))
		organisms = nil
	}
	s.apply(token, organisms)
}

// apply installs a response if and only if its token is still current.
func (s *Searcher) apply(token uint64, organisms []models.Organism) {
	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		return
	}
	s.results = organisms
	s.mu.Unlock()
	s.publish(organisms)
}

func (s *Searcher) publish(organisms []models.Organism) {
	if s.onResults != nil {
		s.onResults(organisms)
	}
}
