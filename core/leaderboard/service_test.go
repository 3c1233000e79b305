package leaderboard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/educlara/educlara/core/leaderboard"
	"github.com/educlara/educlara/storage/database/inmem"
	"github.com/educlara/educlara/tests"
)

// countingPoints counts primary-feed fetches so tests can tell a refresh
// from a pure re-derivation.
type countingPoints struct {
	leaderboard.PointsFeed

	mu    sync.Mutex
	calls int
}

func (f *countingPoints) QualifyingPoints(ctx context.Context) ([]leaderboard.PointsRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.PointsFeed.QualifyingPoints(ctx)
}

func (f *countingPoints) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// gatedPoints blocks its first fetch until released, to simulate a slow
// cycle overtaken by a faster one.
type gatedPoints struct {
	leaderboard.PointsFeed

	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *gatedPoints) QualifyingPoints(ctx context.Context) ([]leaderboard.PointsRecord, error) {
	var gated bool
	f.once.Do(func() { gated = true })
	if gated {
		close(f.entered)
		<-f.release
	}
	return f.PointsFeed.QualifyingPoints(ctx)
}

func newService(t *testing.T, feeds leaderboard.Feeds) *leaderboard.Service {
	logger := testutil.NewLogger(t)
	return leaderboard.NewService(leaderboard.NewAggregator(feeds, logger), logger, time.Minute)
}

func TestService_RefreshReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := inmemdb.NewStore()
	testutil.SeedUser(store, "u1", "Amelia Clarke", 500, 0, 0)
	testutil.SeedUser(store, "u2", "Noah Patel", 300, 0, 0)
	svc := newService(t, store.Feeds())

	svc.Refresh(ctx)
	assert.Equal(t, []string{"u1", "u2"}, entryIDs(svc.Entries()))

	// u2 drops to zero points; the next cycle must not leave a residue
	store.SetPoints("u2", 0)
	svc.Refresh(ctx)
	assert.Equal(t, []string{"u1"}, entryIDs(svc.Entries()))
}

// A slow cycle that resolves after a newer one was issued is discarded.
func TestService_StaleCycleDiscarded(t *testing.T) {
	ctx := context.Background()
	store := inmemdb.NewStore()
	testutil.SeedUser(store, "u1", "Amelia Clarke", 500, 0, 0)

	gate := &gatedPoints{
		PointsFeed: store,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	feeds := store.Feeds()
	feeds.Points = gate
	svc := newService(t, feeds)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Refresh(ctx) // slow cycle, blocked in the feed
	}()
	<-gate.entered

	// the fast cycle sees fresher data and lands first
	testutil.SeedUser(store, "u2", "Noah Patel", 300, 0, 0)
	svc.Refresh(ctx)
	assert.Equal(t, []string{"u1", "u2"}, entryIDs(svc.Entries()))
	fresh := svc.Snapshot()

	close(gate.release)
	<-done

	// the slow cycle resolved against the old data and must not clobber
	assert.Equal(t, fresh.Seq, svc.Snapshot().Seq)
	assert.Equal(t, []string{"u1", "u2"}, entryIDs(svc.Entries()))
}

func TestService_ScopeAndViewerTriggerRefresh(t *testing.T) {
	ctx := context.Background()
	store := inmemdb.NewStore()
	testutil.SeedUser(store, "u1", "Amelia Clarke", 500, 0, 0)

	counter := &countingPoints{PointsFeed: store}
	feeds := store.Feeds()
	feeds.Points = counter
	svc := newService(t, feeds)

	svc.Refresh(ctx)
	assert.Equal(t, 1, counter.count())

	svc.SetScope(ctx, leaderboard.ScopeWeek)
	assert.Equal(t, leaderboard.ScopeWeek, svc.Scope())
	assert.Equal(t, 2, counter.count())

	// unchanged scope is a no-op
	svc.SetScope(ctx, leaderboard.ScopeWeek)
	assert.Equal(t, 2, counter.count())

	// an invalid scope falls back to all-time, which is a change here
	svc.SetScope(ctx, leaderboard.TimeScope("fortnight"))
	assert.Equal(t, leaderboard.ScopeAllTime, svc.Scope())
	assert.Equal(t, 3, counter.count())

	svc.SetViewer(ctx, "u1")
	assert.Equal(t, 4, counter.count())
	svc.SetViewer(ctx, "u1")
	assert.Equal(t, 4, counter.count())
}

// Search and sort act on the held snapshot only.
func TestService_SearchAndSortDoNotRefetch(t *testing.T) {
	ctx := context.Background()
	store := inmemdb.NewStore()
	testutil.SeedUser(store, "u1", "Amelia Clarke", 500, 5, 0)
	testutil.SeedUser(store, "u2", "Noah Patel", 300, 9, 0)

	counter := &countingPoints{PointsFeed: store}
	feeds := store.Feeds()
	feeds.Points = counter
	svc := newService(t, feeds)
	svc.Refresh(ctx)

	svc.SetSearch("noah")
	assert.Equal(t, []string{"u2"}, entryIDs(svc.Entries()))
	assert.Equal(t, 1, svc.Entries()[0].Rank)

	svc.SetSearch("")
	svc.SortBy(leaderboard.SortStreak)
	assert.Equal(t, []string{"u2", "u1"}, entryIDs(svc.Entries()))
	svc.SortBy(leaderboard.SortStreak)
	assert.Equal(t, []string{"u1", "u2"}, entryIDs(svc.Entries()))

	assert.Equal(t, 1, counter.count())
}

// Entry looks up the canonical snapshot, so a searched-away user is still
// reachable for a detail panel.
func TestService_EntryLookup(t *testing.T) {
	ctx := context.Background()
	store := inmemdb.NewStore()
	testutil.SeedUser(store, "u1", "Amelia Clarke", 500, 0, 0)
	testutil.SeedUser(store, "u2", "Noah Patel", 300, 0, 0)
	svc := newService(t, store.Feeds())
	svc.Refresh(ctx)
	svc.SetSearch("amelia")

	e, ok := svc.Entry("u2")
	assert.True(t, ok)
	assert.Equal(t, "Noah Patel", e.DisplayName)

	_, ok = svc.Entry("ghost")
	assert.False(t, ok)
}

func entryIDs(entries []leaderboard.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.UserID)
	}
	return out
}
