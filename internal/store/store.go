package store

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/adapter"
	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/metrics"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
	"github.com/preston-bernstein/screen-inventory-service/internal/validation"
)

// DefaultFreshnessWindow is how long an external entry survives without being refreshed.
const DefaultFreshnessWindow = 30 * time.Minute

// LocalSourceName is reported in Stats for local entries without a source name.
const LocalSourceName = "local"

// Options configures a Store. Zero values select defaults.
type Options struct {
	Names           adapter.SourceNamer
	Now             func() time.Time
	FreshnessWindow time.Duration
	Logger          *slog.Logger
	Metrics         *metrics.Recorder
}

// Store is the in-memory aggregated inventory of external and local screens.
type Store struct {
	mu      sync.RWMutex
	screens []screens.Screen
	index   map[string]int

	converter *adapter.Converter
	now       func() time.Time
	freshness time.Duration
	logger    *slog.Logger
	metrics   *metrics.Recorder

	subMu   sync.Mutex
	subs    []subscription
	nextSub SubscriptionID

	// seq is guarded by mu; pending and draining by pendingMu.
	seq       uint64
	pendingMu sync.Mutex
	pending   []Event
	draining  bool

	closed    atomic.Bool
	closeOnce sync.Once
}

// New constructs an empty Store.
func New(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	freshness := opts.FreshnessWindow
	if freshness <= 0 {
		freshness = DefaultFreshnessWindow
	}
	return &Store{
		index:     make(map[string]int),
		converter: adapter.NewConverter(opts.Names, now),
		now:       now,
		freshness: freshness,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// FreshnessWindow returns the configured staleness threshold.
func (s *Store) FreshnessWindow() time.Duration {
	return s.freshness
}

type sourceTally struct {
	converted, failed, warnings, errors int
}

// AddInventory validates and converts each record, isolating per-record failures, then
// merges the converted screens replacing any entries with the same identifier. A non-empty
// batch that converts nothing returns a *BatchError; an empty batch is a no-op.
func (s *Store) AddInventory(ctx context.Context, records []ssp.Record) (BatchResult, error) {
	logger := logging.FromContext(ctx, s.logger)
	if s.closed.Load() {
		return BatchResult{}, ErrClosed
	}
	result := BatchResult{Received: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	tallies := make(map[string]*sourceTally)
	tally := func(source string) *sourceTally {
		t, ok := tallies[source]
		if !ok {
			t = &sourceTally{}
			tallies[source] = t
		}
		return t
	}

	converted := make([]screens.Screen, 0, len(records))
	// origins[k] lists the record indexes that produced converted[k].
	origins := make([]recordOrigin, 0, len(records))
	position := make(map[string]int, len(records))
	reject := func(from recordOrigin, screen screens.Screen, owner string) {
		err := &CollisionError{ScreenID: screen.ID, Owner: owner, SourceID: screen.Source.ID}
		t := tally(screen.Source.ID)
		for _, index := range from.indexes {
			t.failed++
			result.Failures = append(result.Failures, RecordFailure{
				Index:    index,
				SourceID: screen.Source.ID,
				VenueID:  from.venue,
				Err:      err,
			})
			logging.Warn(logger, "record skipped",
				logging.FieldRecordIndex, index,
				logging.FieldSource, screen.Source.ID,
				"error", err,
			)
		}
		result.Violations = append(result.Violations, IntegrityViolation{
			ScreenID: screen.ID,
			Field:    "id",
			Message:  err.Error(),
		})
	}
	for i, rec := range records {
		if rec.DecodeErr != nil {
			tally(rec.SourceID).failed++
			result.Failures = append(result.Failures, RecordFailure{
				Index:    i,
				SourceID: rec.SourceID,
				VenueID:  rec.VenueID(),
				Err:      rec.DecodeErr,
			})
			logging.Warn(logger, "record skipped",
				logging.FieldRecordIndex, i,
				logging.FieldSource, rec.SourceID,
				"error", rec.DecodeErr,
			)
			continue
		}
		res := validation.Validate(rec)
		t := tally(res.Sanitized.SourceID)
		t.warnings += len(res.Warnings)
		t.errors += len(res.Errors)
		result.Warnings += len(res.Warnings)
		result.Errors += len(res.Errors)
		logIssues(logger, i, res)

		screen, err := s.converter.Convert(res.Sanitized)
		if err != nil {
			t.failed++
			result.Failures = append(result.Failures, RecordFailure{
				Index:    i,
				SourceID: res.Sanitized.SourceID,
				VenueID:  res.Sanitized.VenueID,
				Err:      err,
			})
			logging.Warn(logger, "record skipped",
				logging.FieldRecordIndex, i,
				logging.FieldSource, res.Sanitized.SourceID,
				"error", err,
			)
			continue
		}
		for _, v := range adapter.CheckCanonical(screen) {
			logging.Warn(logger, "canonical invariant violated",
				logging.FieldScreenID, screen.ID,
				logging.FieldField, v.Field,
				"detail", v.Message,
			)
		}

		from := recordOrigin{indexes: []int{i}, venue: res.Sanitized.VenueID}
		if at, dup := position[screen.ID]; dup {
			if owner := converted[at].Source.ID; owner != screen.Source.ID {
				reject(from, screen, owner)
				continue
			}
			t.converted++
			converted[at] = screen
			origins[at].indexes = append(origins[at].indexes, i)
			result.Collapsed++
			continue
		}
		t.converted++
		position[screen.ID] = len(converted)
		origins = append(origins, from)
		converted = append(converted, screen)
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return BatchResult{}, ErrClosed
	}
	// An identifier stays with the source that stored it first.
	kept := converted[:0]
	for k, screen := range converted {
		if at, ok := s.index[screen.ID]; ok {
			if owner := s.screens[at].Source.ID; owner != screen.Source.ID {
				tally(screen.Source.ID).converted -= len(origins[k].indexes)
				result.Collapsed -= len(origins[k].indexes) - 1
				reject(origins[k], screen, owner)
				delete(position, screen.ID)
				continue
			}
		}
		kept = append(kept, screen)
	}
	converted = kept
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Index < result.Failures[j].Index
	})
	result.Converted = len(converted) + result.Collapsed

	if len(converted) == 0 {
		s.mu.Unlock()
		s.recordTallies(tallies)
		s.reportViolations(logger, result.Violations)
		err := &BatchError{Received: len(records), Failures: result.Failures}
		logging.Error(logger, "inventory batch produced nothing", err,
			logging.FieldBatchSize, len(records),
			logging.FieldFailed, len(result.Failures),
		)
		return result, err
	}

	next := make([]screens.Screen, 0, len(s.screens)+len(converted))
	for _, existing := range s.screens {
		if _, replaced := position[existing.ID]; replaced {
			result.Replaced++
			continue
		}
		next = append(next, existing)
	}
	next = append(next, converted...)
	result.Added = len(converted) - result.Replaced
	s.setLocked(next)
	result.Violations = append(result.Violations, checkIntegrity(s.screens)...)
	total := len(s.screens)
	s.queueLocked(EventAdded)
	s.mu.Unlock()

	s.recordTallies(tallies)
	s.reportViolations(logger, result.Violations)
	s.flush()

	logging.Info(logger, "inventory batch merged",
		logging.FieldBatchSize, len(records),
		logging.FieldConverted, result.Converted,
		logging.FieldFailed, len(result.Failures),
		"added", result.Added,
		"replaced", result.Replaced,
		logging.FieldTotal, total,
	)
	return result, nil
}

type recordOrigin struct {
	indexes []int
	venue   string
}

func (s *Store) recordTallies(tallies map[string]*sourceTally) {
	for source, t := range tallies {
		s.metrics.RecordBatch(source, t.converted, t.failed, t.warnings, t.errors)
	}
}

func logIssues(logger *slog.Logger, index int, res validation.Result) {
	for _, issue := range res.Warnings {
		logging.Warn(logger, "record field defaulted",
			logging.FieldRecordIndex, index,
			logging.FieldSource, res.Sanitized.SourceID,
			logging.FieldField, issue.Path,
			"detail", issue.Message,
		)
	}
	for _, issue := range res.Errors {
		logging.Warn(logger, "record field invalid",
			logging.FieldRecordIndex, index,
			logging.FieldSource, res.Sanitized.SourceID,
			logging.FieldField, issue.Path,
			"code", string(issue.Code),
			"detail", issue.Message,
		)
	}
}

func (s *Store) reportViolations(logger *slog.Logger, violations []IntegrityViolation) {
	if len(violations) == 0 {
		return
	}
	s.metrics.RecordIntegrityViolations(len(violations))
	for _, v := range violations {
		logging.Warn(logger, "inventory integrity violation",
			logging.FieldScreenID, v.ScreenID,
			logging.FieldField, v.Field,
			"detail", v.Message,
		)
	}
}

// normalizeLocal gives local screens the canonical guarantees the converter gives
// external ones.
func normalizeLocal(item screens.Screen, now time.Time) screens.Screen {
	item.Source.External = false
	if item.Source.ID == "" {
		item.Source.ID = LocalSourceName
	}
	if item.Source.LastUpdated.IsZero() {
		item.Source.LastUpdated = now
	}
	item.Name = adapter.SanitizeText(item.Name)
	item.Location = adapter.SanitizeText(item.Location)
	item.LocationDetail.Address = adapter.SanitizeText(item.LocationDetail.Address)
	item.LocationDetail.City = adapter.SanitizeText(item.LocationDetail.City)
	if !(item.Price >= 0) || math.IsInf(item.Price, 1) {
		item.Price = 0
	}
	if !item.Coordinates.Valid() {
		item.Coordinates = screens.UnknownCoordinates
	}
	item.Rating = screens.ClampRating(item.Rating)
	return item
}

// PutLocal stores locally-operated screens, replacing entries with the same identifier.
// Screens without an identifier are skipped. It returns the number stored.
func (s *Store) PutLocal(items ...screens.Screen) int {
	if s.closed.Load() || len(items) == 0 {
		return 0
	}
	now := s.now().UTC()
	incoming := make(map[string]int, len(items))
	local := make([]screens.Screen, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			logging.Warn(s.logger, "local screen without id skipped", "name", item.Name)
			continue
		}
		item = normalizeLocal(item, now)
		if at, dup := incoming[item.ID]; dup {
			local[at] = item
			continue
		}
		incoming[item.ID] = len(local)
		local = append(local, item)
	}
	if len(local) == 0 {
		return 0
	}

	s.mu.Lock()
	next := make([]screens.Screen, 0, len(s.screens)+len(local))
	for _, existing := range s.screens {
		if _, replaced := incoming[existing.ID]; !replaced {
			next = append(next, existing)
		}
	}
	s.setLocked(append(next, local...))
	violations := checkIntegrity(s.screens)
	total := len(s.screens)
	s.queueLocked(EventLocal)
	s.mu.Unlock()

	s.reportViolations(s.logger, violations)
	s.flush()
	logging.Info(s.logger, "local inventory stored", logging.FieldCount, len(local), logging.FieldTotal, total)
	return len(local)
}

// RemoveBySource removes every entry whose source id matches and returns how many were removed.
func (s *Store) RemoveBySource(sourceID string) int {
	return s.removeWhere(EventRemoved, func(sc screens.Screen) bool {
		return sc.Source.ID == sourceID
	})
}

// ClearExternalOnly removes every externally-sourced entry.
func (s *Store) ClearExternalOnly() int {
	return s.removeWhere(EventCleared, func(sc screens.Screen) bool {
		return sc.Source.External
	})
}

// ClearAll removes every entry.
func (s *Store) ClearAll() int {
	return s.removeWhere(EventCleared, func(screens.Screen) bool { return true })
}

// SweepStale evicts external entries last updated longer ago than the freshness window.
// Local entries are always retained.
func (s *Store) SweepStale() int {
	cutoff := s.now().Add(-s.freshness)
	return s.removeWhere(EventSwept, func(sc screens.Screen) bool {
		return sc.Source.External && sc.Source.LastUpdated.Before(cutoff)
	})
}

// removeWhere deletes matching entries and notifies subscribers only when something changed.
func (s *Store) removeWhere(kind EventKind, match func(screens.Screen) bool) int {
	if s.closed.Load() {
		return 0
	}
	s.mu.Lock()
	kept := make([]screens.Screen, 0, len(s.screens))
	for _, sc := range s.screens {
		if !match(sc) {
			kept = append(kept, sc)
		}
	}
	removed := len(s.screens) - len(kept)
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.setLocked(kept)
	total := len(s.screens)
	s.queueLocked(kind)
	s.mu.Unlock()

	s.flush()
	logging.Info(s.logger, "inventory entries removed",
		logging.FieldEvent, string(kind),
		logging.FieldCount, removed,
		logging.FieldTotal, total,
	)
	return removed
}

// setLocked replaces the inventory and rebuilds the id index. Callers hold s.mu.
func (s *Store) setLocked(next []screens.Screen) {
	s.screens = next
	s.index = make(map[string]int, len(next))
	for i, sc := range next {
		if _, dup := s.index[sc.ID]; !dup {
			s.index[sc.ID] = i
		}
	}
}

// Close releases the inventory and every subscriber. It is safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.mu.Lock()
		s.screens = nil
		s.index = make(map[string]int)
		s.mu.Unlock()
		s.closeSubscriptions()
		logging.Info(s.logger, "inventory store closed")
	})
	return nil
}
