package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/educlara/educlara/core"
)

// Aggregator runs one fetch-join-assemble cycle against the six upstream
// feeds. It is stateless and safe for concurrent use; snapshot ownership
// lives in Service (single viewer) and Cache (shared HTTP surface).
//
// Failure policy: nothing propagates past this boundary. A failing primary
// feed yields an empty snapshot; a failing secondary feed degrades the
// affected fields to their defaults for that cycle.
type Aggregator struct {
	feeds  Feeds
	logger core.Logger
	now    func() time.Time
}

func NewAggregator(feeds Feeds, logger core.Logger) *Aggregator {
	return &Aggregator{
		feeds:  feeds,
		logger: logger,
		now:    time.Now,
	}
}

// BuildSnapshot produces the canonical snapshot for one cycle. Entries are
// assembled in points-feed order (points descending) and carry no rank;
// ranks are assigned by view derivation over the visible list.
func (a *Aggregator) BuildSnapshot(ctx context.Context, scope TimeScope, viewerID string) Snapshot {
	now := a.now().UTC()
	snap := Snapshot{
		Scope:    scope,
		ViewerID: viewerID,
		TakenAt:  now,
		Entries:  []Entry{},
	}

	// Feed 1 defines the universe of qualifying users. "No data" and
	// "fetch failed" are treated identically: an empty board.
	points, err := a.feeds.Points.QualifyingPoints(ctx)
	if err != nil {
		a.logger.Warn("leaderboard: points feed failed, serving empty board", err)
		return snap
	}
	if len(points) == 0 {
		return snap
	}

	userIDs := make([]string, 0, len(points))
	for _, rec := range points {
		userIDs = append(userIDs, rec.UserID)
	}

	streaks := a.fetchStreaks(ctx, userIDs)
	badges := a.fetchBadgeCounts(ctx, userIDs)
	quizzes := a.fetchQuizCounts(ctx, userIDs, scope.CutoffFrom(now))
	activity := a.fetchActivity(ctx, userIDs)
	profiles := a.fetchProfiles(ctx, userIDs)

	snap.Entries = make([]Entry, 0, len(points))
	for _, rec := range points {
		entry := Entry{
			UserID:           rec.UserID,
			DisplayName:      profiles[rec.UserID].DisplayName(),
			Points:           rec.TotalPoints,
			CurrentStreak:    streaks[rec.UserID],
			BadgesEarned:     badges[rec.UserID],
			QuizzesCompleted: quizzes[rec.UserID],
			IsCurrentViewer:  viewerID != "" && rec.UserID == viewerID,
		}
		if act, ok := activity[rec.UserID]; ok {
			entry.TopSubject = act.topSubject
			entry.MocksCompleted = act.mocksCompleted
			if !act.lastActiveAt.IsZero() {
				last := act.lastActiveAt
				entry.LastActiveAt = &last
			}
		}
		snap.Entries = append(snap.Entries, entry)
	}
	return snap
}

// fetchStreaks fans out one lookup per qualifying user. A failed lookup is
// isolated to that user and defaults their streak to 0.
func (a *Aggregator) fetchStreaks(ctx context.Context, userIDs []string) map[string]int {
	streaks := make(map[string]int, len(userIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range userIDs {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := a.feeds.Streaks.CurrentStreak(ctx, id)
			if err != nil {
				a.logger.Debug("leaderboard: streak lookup failed for "+id, err)
				return
			}
			mu.Lock()
			streaks[id] = n
			mu.Unlock()
		}()
	}
	wg.Wait()
	return streaks
}

func (a *Aggregator) fetchBadgeCounts(ctx context.Context, userIDs []string) map[string]int {
	records, err := a.feeds.Achievements.AchievementsByUser(ctx, userIDs)
	if err != nil {
		a.logger.Warn("leaderboard: achievements feed failed, defaulting badge counts", err)
		return nil
	}
	counts := make(map[string]int, len(userIDs))
	for _, rec := range records {
		counts[rec.UserID]++
	}
	return counts
}

func (a *Aggregator) fetchQuizCounts(ctx context.Context, userIDs []string, since time.Time) map[string]int {
	records, err := a.feeds.Quizzes.CompletionsByUser(ctx, userIDs, since)
	if err != nil {
		a.logger.Warn("leaderboard: quiz feed failed, defaulting quiz counts", err)
		return nil
	}
	counts := make(map[string]int, len(userIDs))
	for _, rec := range records {
		counts[rec.UserID]++
	}
	return counts
}

type activityProjection struct {
	lastActiveAt   time.Time
	topSubject     string
	mocksCompleted int
}

// fetchActivity reduces the newest-first activity feed into per-user
// projections: the most recent timestamp, the first non-empty subject, and
// a mock-exam tally.
func (a *Aggregator) fetchActivity(ctx context.Context, userIDs []string) map[string]activityProjection {
	records, err := a.feeds.Activity.RecentActivity(ctx, userIDs)
	if err != nil {
		a.logger.Warn("leaderboard: activity feed failed, omitting enrichment", err)
		return nil
	}
	projections := make(map[string]activityProjection, len(userIDs))
	for _, rec := range records {
		proj := projections[rec.UserID]
		if proj.lastActiveAt.IsZero() {
			proj.lastActiveAt = rec.CreatedAt
		}
		if proj.topSubject == "" && rec.Subject != "" {
			proj.topSubject = rec.Subject
		}
		if rec.Type == ActivityMockExam {
			proj.mocksCompleted++
		}
		projections[rec.UserID] = proj
	}
	return projections
}

func (a *Aggregator) fetchProfiles(ctx context.Context, userIDs []string) map[string]Profile {
	records, err := a.feeds.Profiles.ProfilesByID(ctx, userIDs)
	if err != nil {
		a.logger.Warn("leaderboard: profile feed failed, defaulting display names", err)
		return nil
	}
	profiles := make(map[string]Profile, len(records))
	for _, p := range records {
		profiles[p.ID] = p
	}
	return profiles
}
