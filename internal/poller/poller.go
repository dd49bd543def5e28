package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/metrics"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
	"github.com/preston-bernstein/screen-inventory-service/internal/store"
)

const defaultInterval = 5 * time.Minute

// Ingester accepts refreshed batches.
type Ingester interface {
	AddInventory(ctx context.Context, records []ssp.Record) (store.BatchResult, error)
}

// Poller refreshes every feed source on an interval and merges the results into the store.
// Failures are classified; the poller never retries within a cycle.
type Poller struct {
	sources  []providers.FeedSource
	ingester Ingester
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool
	exited   chan struct{}

	statusMu sync.RWMutex
	status   Status
	perSrc   map[string]*SourceStatus
}

// Status describes the recent health of the refresh loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the poller has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// SourceStatus tracks one feed source.
type SourceStatus struct {
	Name                string             `json:"name"`
	Disabled            bool               `json:"disabled"`
	ConsecutiveFailures int                `json:"consecutiveFailures"`
	LastError           string             `json:"lastError,omitempty"`
	LastDecision        providers.Decision `json:"lastDecision"`
	LastAttempt         time.Time          `json:"lastAttempt"`
	LastSuccess         time.Time          `json:"lastSuccess"`
	NotBefore           time.Time          `json:"notBefore"`
	Records             int                `json:"records"`
}

// New constructs a Poller with sane defaults.
func New(sources []providers.FeedSource, ingester Ingester, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	perSrc := make(map[string]*SourceStatus, len(sources))
	for _, src := range sources {
		perSrc[src.Name()] = &SourceStatus{Name: src.Name()}
	}
	return &Poller{
		sources:  sources,
		ingester: ingester,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
		perSrc:   perSrc,
	}
}

// Start begins polling until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.ticker = time.NewTicker(p.interval)
	p.startMu.Unlock()

	go func() {
		defer close(p.exited)
		logging.Info(p.logger, "poller started",
			slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()),
			logging.FieldCount, len(p.sources),
		)
		// Initial fetch to warm the inventory on boot.
		p.RefreshOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.done:
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.ticker.C:
				p.RefreshOnce(ctx)
			}
		}
	}()
}

// Stop halts the polling loop and waits for an in-flight cycle to finish or ctx to end.
func (p *Poller) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.done)
	})
	p.startMu.Lock()
	started := p.started
	p.startMu.Unlock()
	if !started {
		return nil
	}
	select {
	case <-p.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshOnce runs one cycle over every enabled source whose retry window has passed.
func (p *Poller) RefreshOnce(ctx context.Context) {
	start := time.Now()
	now := p.now()
	p.recordAttempt(now)

	attempted, failed := 0, 0
	var lastErr error
	for _, src := range p.sources {
		if ctx.Err() != nil {
			break
		}
		if !p.due(src.Name(), now) {
			continue
		}
		attempted++
		if err := p.refreshSource(ctx, src); err != nil {
			failed++
			lastErr = err
		}
	}

	if attempted == 0 {
		return
	}
	var cycleErr error
	if failed == attempted {
		cycleErr = lastErr
	}
	p.metrics.RecordPollerCycle(time.Since(start), cycleErr)
	if cycleErr != nil {
		p.recordFailure(cycleErr, now)
		return
	}
	p.recordSuccess(now)
}

func (p *Poller) refreshSource(ctx context.Context, src providers.FeedSource) error {
	name := src.Name()
	start := time.Now()
	records, err := src.FetchBatch(ctx)
	p.metrics.RecordFetch(name, time.Since(start), err)
	if err == nil {
		var res store.BatchResult
		res, err = p.ingester.AddInventory(ctx, records)
		if err == nil {
			p.sourceSucceeded(name, res.Converted)
			logging.Info(p.logger, "source refreshed",
				logging.FieldSource, name,
				logging.FieldConverted, res.Converted,
				logging.FieldFailed, res.Failed(),
				logging.FieldDurationMS, time.Since(start).Milliseconds(),
			)
			return nil
		}
	}

	decision := providers.Classify(err)
	if rl, ok := providers.AsRateLimitError(err); ok {
		p.metrics.RecordRateLimit(name, rl.RetryAfter)
	} else if decision.Class == providers.ClassRateLimited {
		p.metrics.RecordRateLimit(name, decision.RetryAfter)
	}
	p.metrics.RecordSourceFailure(name, string(decision.Class), string(decision.Fallback))
	p.sourceFailed(name, err, decision)

	args := []any{
		logging.FieldSource, name,
		logging.FieldClass, string(decision.Class),
		logging.FieldFallback, string(decision.Fallback),
	}
	if decision.ShouldRetry {
		args = append(args, logging.FieldRetryAfter, decision.RetryAfter.String())
	}
	switch decision.Fallback {
	case providers.FallbackDisableSource:
		logging.Error(p.logger, "source disabled until re-enabled", err, args...)
	case providers.FallbackUseCached:
		logging.Warn(p.logger, "source refresh failed, serving cached inventory", append(args, "error", err)...)
	default:
		logging.Warn(p.logger, "source refresh failed, cycle ignored", append(args, "error", err)...)
	}
	return err
}

// due reports whether a source should be fetched in the cycle starting at now.
func (p *Poller) due(name string, now time.Time) bool {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	st, ok := p.perSrc[name]
	if !ok {
		return true
	}
	if st.Disabled {
		return false
	}
	return st.NotBefore.IsZero() || !now.Before(st.NotBefore)
}

func (p *Poller) sourceSucceeded(name string, records int) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	st := p.sourceLocked(name)
	now := p.now()
	st.ConsecutiveFailures = 0
	st.LastError = ""
	st.LastDecision = providers.Decision{}
	st.LastAttempt = now
	st.LastSuccess = now
	st.NotBefore = time.Time{}
	st.Records = records
}

func (p *Poller) sourceFailed(name string, err error, d providers.Decision) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	st := p.sourceLocked(name)
	now := p.now()
	st.ConsecutiveFailures++
	st.LastError = err.Error()
	st.LastDecision = d
	st.LastAttempt = now
	st.NotBefore = time.Time{}
	if d.Fallback == providers.FallbackDisableSource {
		st.Disabled = true
	}
	// Past MaxRetries the source waits for its next regular cycle.
	if d.ShouldRetry && st.ConsecutiveFailures <= d.MaxRetries {
		st.NotBefore = now.Add(d.RetryAfter)
	}
}

func (p *Poller) sourceLocked(name string) *SourceStatus {
	st, ok := p.perSrc[name]
	if !ok {
		st = &SourceStatus{Name: name}
		p.perSrc[name] = st
	}
	return st
}

// Enable re-enables a source disabled after an authentication failure.
func (p *Poller) Enable(name string) bool {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	st, ok := p.perSrc[name]
	if !ok {
		return false
	}
	st.Disabled = false
	st.ConsecutiveFailures = 0
	st.NotBefore = time.Time{}
	logging.Info(p.logger, "source re-enabled", logging.FieldSource, name)
	return true
}

// Sources returns a snapshot of per-source state, in configuration order.
func (p *Poller) Sources() []SourceStatus {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	out := make([]SourceStatus, 0, len(p.sources))
	for _, src := range p.sources {
		if st, ok := p.perSrc[src.Name()]; ok {
			out = append(out, *st)
		}
	}
	return out
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
