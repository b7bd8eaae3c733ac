package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reslab-bio/omics-console/internal/models"
)

type qcFetcher interface {
	LatestFastQC(ctx context.Context, sampleID int64) (*models.FastQCReport, error)
}

// Poller refreshes QC state for samples with an unfinished job. One owner
// goroutine runs at a fixed interval; ticks execute sequentially so a slow
// backend can never stack concurrent sweeps. The loop stops itself once the
// running set drains.
type Poller struct {
	session  *Session
	fetch    qcFetcher
	log      *zap.Logger
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// PollerParams groups constructor dependencies.
type PollerParams struct {
	Session  *Session
	Fetcher  qcFetcher
	Logger   *zap.Logger
	Interval time.Duration
}

// NewPoller builds a poller. Interval defaults to 5 seconds.
func NewPoller(params PollerParams) *Poller {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		session:  params.Session,
		fetch:    params.Fetcher,
		log:      logger,
		interval: interval,
	}
}

// Sync reconciles the poller with the session: starts the loop when any
// sample has an unfinished job, leaves an already-running loop alone.
// Call it after any action that can add to the running set.
func (p *Poller) Sync(ctx context.Context) {
	if len(p.session.RunningSamples()) == 0 {
		return
	}
	p.Start(ctx)
}

// Start launches the polling loop. Idempotent while a loop is live.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(loopCtx, p.done)
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Running reports whether the loop is live.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if remaining := p.Sweep(ctx); remaining == 0 {
				p.release(done)
				return
			}
		}
	}
}

// release clears the ownership slot when the loop exits on its own. Only the
// loop that still owns the slot may clear it.
func (p *Poller) release(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == done {
		p.cancel = nil
		p.done = nil
	}
}

// Sweep polls every sample with an unfinished job once and returns how many
// remain unfinished afterwards.
func (p *Poller) Sweep(ctx context.Context) int {
	for _, sampleID := range p.session.RunningSamples() {
		if ctx.Err() != nil {
			break
		}
		report, err := p.fetch.LatestFastQC(ctx, sampleID)
		if err != nil && ctx.Err() != nil {
			break
		}
		p.session.applyPoll(sampleID, report, err)
	}
	return len(p.session.RunningSamples())
}
