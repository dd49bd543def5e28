package metrics

import (
	"sync"
	"time"
)

type sourceStats struct {
	batches          int
	converted        int
	failed           int
	fetches          int
	fetchErrors      int
	rateLimitHits    int
	lastRetryAfter   time.Duration
	lastFetchLatency time.Duration
	lastFallback     string
}

// Recorder captures lightweight, in-memory ingestion metrics and mirrors them to
// OpenTelemetry instruments when Setup enabled them. A nil *Recorder is a no-op.
type Recorder struct {
	mu               sync.Mutex
	stats            map[string]*sourceStats
	sweeps           int
	evicted          int
	subscriberErrors int
	integrityIssues  int
	published        int
	publishErrors    int
	otel             *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*sourceStats),
		otel:  otel,
	}
}

// RecordBatch tracks one AddInventory call for a source.
func (r *Recorder) RecordBatch(source string, converted, failed, warnings, errs int) {
	if r == nil {
		return
	}
	r.update(source, func(s *sourceStats) {
		s.batches++
		s.converted += converted
		s.failed += failed
	})
	if r.otel != nil {
		r.otel.recordBatch(source, converted, failed, warnings, errs)
	}
}

// RecordFetch counts a feed fetch and stores the last observed latency.
func (r *Recorder) RecordFetch(source string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.update(source, func(s *sourceStats) {
		s.fetches++
		s.lastFetchLatency = duration
		if err != nil {
			s.fetchErrors++
		}
	})
	if r.otel != nil {
		r.otel.recordFetch(source, duration, err)
	}
}

// RecordRateLimit tracks that a source hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(source string, retryAfter time.Duration) {
	if r == nil {
		return
	}
	r.update(source, func(s *sourceStats) {
		s.rateLimitHits++
		if retryAfter > 0 {
			s.lastRetryAfter = retryAfter
		}
	})
	if r.otel != nil {
		r.otel.recordRateLimit(source, retryAfter)
	}
}

// RecordSourceFailure tracks a classified refresh failure and the fallback taken.
func (r *Recorder) RecordSourceFailure(source, class, fallback string) {
	if r == nil {
		return
	}
	r.update(source, func(s *sourceStats) {
		s.lastFallback = fallback
	})
	if r.otel != nil {
		r.otel.recordSourceFailure(source, class, fallback)
	}
}

// RecordSweep tracks one staleness sweep and how many entries it evicted.
func (r *Recorder) RecordSweep(duration time.Duration, evicted int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.sweeps++
	r.evicted += evicted
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordSweep(duration, evicted)
	}
}

// RecordSubscriberError counts a listener that panicked during notification.
func (r *Recorder) RecordSubscriberError() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.subscriberErrors++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.subscriberErrors, 1)
	}
}

// RecordNotification counts an inventory event published to downstream consumers.
func (r *Recorder) RecordNotification(kind string, err error) {
	if r == nil {
		return
	}
	status := "ok"
	r.mu.Lock()
	if err != nil {
		r.publishErrors++
		status = "error"
	} else {
		r.published++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordNotification(kind, status)
	}
}

// RecordIntegrityViolations counts cross-record invariant violations found after a merge.
func (r *Recorder) RecordIntegrityViolations(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.mu.Lock()
	r.integrityIssues += n
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCounter(r.otel.integrityViolations, int64(n))
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks refresh cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

// InventoryCounts reports the live store size for the observable gauge.
type InventoryCounts func() (external, local int)

// ObserveInventory registers an observable gauge reading the store size on each collection.
func (r *Recorder) ObserveInventory(counts InventoryCounts) error {
	if r == nil || r.otel == nil || counts == nil {
		return nil
	}
	return r.otel.observeInventory(counts)
}

// Snapshot is a copy of the current stats for one source.
type Snapshot struct {
	Batches          int
	Converted        int
	Failed           int
	Fetches          int
	FetchErrors      int
	RateLimitHits    int
	LastRetryAfter   time.Duration
	LastFetchLatency time.Duration
	LastFallback     string
}

func (r *Recorder) Snapshot(source string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[source]
	if !ok || s == nil {
		return Snapshot{}
	}
	return Snapshot{
		Batches:          s.batches,
		Converted:        s.converted,
		Failed:           s.failed,
		Fetches:          s.fetches,
		FetchErrors:      s.fetchErrors,
		RateLimitHits:    s.rateLimitHits,
		LastRetryAfter:   s.lastRetryAfter,
		LastFetchLatency: s.lastFetchLatency,
		LastFallback:     s.lastFallback,
	}
}

// Totals is a copy of the store-wide counters.
type Totals struct {
	Sweeps           int
	Evicted          int
	SubscriberErrors int
	IntegrityIssues  int
	Published        int
	PublishErrors    int
}

func (r *Recorder) Totals() Totals {
	if r == nil {
		return Totals{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return Totals{
		Sweeps:           r.sweeps,
		Evicted:          r.evicted,
		SubscriberErrors: r.subscriberErrors,
		IntegrityIssues:  r.integrityIssues,
		Published:        r.published,
		PublishErrors:    r.publishErrors,
	}
}

func (r *Recorder) update(source string, fn func(*sourceStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[source]
	if !ok {
		s = &sourceStats{}
		r.stats[source] = s
	}
	fn(s)
}
