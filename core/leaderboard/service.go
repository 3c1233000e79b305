package leaderboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/educlara/educlara/core"
)

// Service is the stateful owner of the board for a single viewer: the
// canonical snapshot, the filter/sort state and the refresh schedule. The
// presentation layer reads Entries() and drives the setters.
//
// Snapshot mutation is always whole-snapshot replacement under the mutex.
// Cycles are tagged with a monotonic sequence number; a resolving cycle
// that is no longer the latest issued is silently discarded, so a stale
// slow cycle can never clobber a newer one.
type Service struct {
	agg      *Aggregator
	logger   core.Logger
	interval time.Duration

	issued uint64 // atomic; last issued cycle sequence

	mu       sync.Mutex
	scope    TimeScope
	viewerID string
	state    ViewState
	snapshot Snapshot
}

func NewService(agg *Aggregator, logger core.Logger, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Service{
		agg:      agg,
		logger:   logger,
		interval: interval,
		scope:    ScopeAllTime,
		state:    DefaultViewState(),
	}
}

// Start runs the fixed-interval refresh loop until ctx is done. An initial
// cycle runs immediately.
func (s *Service) Start(ctx context.Context) {
	s.Refresh(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh runs one aggregation cycle and applies the result unless a newer
// cycle has been issued in the meantime.
func (s *Service) Refresh(ctx context.Context) {
	seq := atomic.AddUint64(&s.issued, 1)

	s.mu.Lock()
	scope, viewerID := s.scope, s.viewerID
	s.mu.Unlock()

	started := time.Now()
	snap := s.agg.BuildSnapshot(ctx, scope, viewerID)
	snap.Seq = seq

	if seq != atomic.LoadUint64(&s.issued) {
		observeStaleCycle()
		return
	}
	observeCycle(snap, time.Since(started).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Seq < s.snapshot.Seq {
		observeStaleCycle()
		return
	}
	s.snapshot = snap
}

// SetScope switches the quiz-completion window and re-runs the cycle.
func (s *Service) SetScope(ctx context.Context, scope TimeScope) {
	if !scope.Valid() {
		scope = ScopeAllTime
	}
	s.mu.Lock()
	changed := s.scope != scope
	s.scope = scope
	s.mu.Unlock()
	if changed {
		s.Refresh(ctx)
	}
}

// SetViewer changes whose entry is marked as the current viewer and
// re-runs the cycle.
func (s *Service) SetViewer(ctx context.Context, viewerID string) {
	s.mu.Lock()
	changed := s.viewerID != viewerID
	s.viewerID = viewerID
	s.mu.Unlock()
	if changed {
		s.Refresh(ctx)
	}
}

// SetSearch updates the display-name filter. Derivation only, no re-fetch.
func (s *Service) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Search = query
}

// SortBy selects a sort column with toggle semantics. Derivation only.
func (s *Service) SortBy(col SortColumn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SortBy(col)
}

// Scope returns the active time scope.
func (s *Service) Scope() TimeScope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// State returns the active filter/sort state.
func (s *Service) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the currently held canonical snapshot.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Entries derives the visible, ranked list from the current snapshot and
// filter/sort state.
func (s *Service) Entries() []Entry {
	s.mu.Lock()
	snap, state := s.snapshot, s.state
	s.mu.Unlock()
	return DeriveView(snap.Entries, state)
}

// Entry surfaces the full detail record for one user on the board, looked
// up in the canonical snapshot (pre-filter, so a searched-away entry is
// still reachable from a detail panel).
func (s *Service) Entry(userID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.snapshot.Entries {
		if e.UserID == userID {
			return e, true
		}
	}
	return Entry{}, false
}
