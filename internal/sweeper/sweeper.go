package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/metrics"
)

const defaultInterval = 5 * time.Minute

// Target is the inventory the sweeper evicts stale entries from.
type Target interface {
	SweepStale() int
}

// Sweeper runs SweepStale on a fixed interval.
type Sweeper struct {
	target   Target
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
}

// Status describes the recent activity of the sweep loop.
type Status struct {
	Running      bool
	Sweeps       int
	LastSweep    time.Time
	LastEvicted  int
	TotalEvicted int
}

// IsReady reports whether the loop is running and has swept at least once.
func (s Status) IsReady() bool {
	return s.Running && !s.LastSweep.IsZero()
}

// New constructs a Sweeper. A non-positive interval selects the 5 minute default.
func New(target Target, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{
		target:   target,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

// Start begins sweeping until the context is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.ticker = time.NewTicker(s.interval)
	s.startMu.Unlock()

	s.setRunning(true)
	go func() {
		defer close(s.exited)
		defer s.setRunning(false)
		logging.Info(s.logger, "sweeper started", slog.Int64(logging.FieldDurationMS, s.interval.Milliseconds()))
		s.SweepOnce()

		for {
			select {
			case <-ctx.Done():
				s.stopTicker()
				logging.Info(s.logger, "sweeper stopped")
				return
			case <-s.done:
				s.stopTicker()
				logging.Info(s.logger, "sweeper stopped")
				return
			case <-s.ticker.C:
				s.SweepOnce()
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit or ctx to end. Safe to call more than once.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.startMu.Lock()
	started := s.started
	s.startMu.Unlock()
	if !started {
		return nil
	}
	select {
	case <-s.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepOnce runs a single sweep and returns the number of evicted entries.
func (s *Sweeper) SweepOnce() int {
	if s.target == nil {
		return 0
	}
	start := time.Now()
	evicted := s.target.SweepStale()
	s.metrics.RecordSweep(time.Since(start), evicted)

	s.statusMu.Lock()
	s.status.Sweeps++
	s.status.LastSweep = s.now()
	s.status.LastEvicted = evicted
	s.status.TotalEvicted += evicted
	s.statusMu.Unlock()

	if evicted > 0 {
		logging.Info(s.logger, "stale inventory swept",
			logging.FieldCount, evicted,
			logging.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	return evicted
}

// Status returns a snapshot of the sweeper's recent activity.
func (s *Sweeper) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Sweeper) setRunning(running bool) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = running
}

func (s *Sweeper) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
}
