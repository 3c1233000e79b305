package inmemdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/educlara/educlara/core/leaderboard"
)

// Store is an in-memory implementation of all six leaderboard feeds, used
// by tests and local development without Postgres. Reads are guarded by a
// RWMutex; the Fail* hooks inject feed failures for degradation tests.
type Store struct {
	mu           sync.RWMutex
	profiles     map[string]leaderboard.Profile
	points       []leaderboard.PointsRecord
	streaks      map[string]int
	achievements []leaderboard.AchievementRecord
	quizzes      []leaderboard.QuizRecord
	activity     []leaderboard.ActivityRecord

	// failure injection
	FailPoints       error
	FailStreaks      map[string]error
	FailAchievements error
	FailQuizzes      error
	FailActivity     error
	FailProfiles     error
}

var (
	_ leaderboard.PointsFeed      = (*Store)(nil)
	_ leaderboard.StreakFeed      = (*Store)(nil)
	_ leaderboard.AchievementFeed = (*Store)(nil)
	_ leaderboard.QuizFeed        = (*Store)(nil)
	_ leaderboard.ActivityFeed    = (*Store)(nil)
	_ leaderboard.ProfileFeed     = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		profiles:    make(map[string]leaderboard.Profile),
		streaks:     make(map[string]int),
		FailStreaks: make(map[string]error),
	}
}

// Feeds bundles the store as the aggregator's upstream collaborators.
func (s *Store) Feeds() leaderboard.Feeds {
	return leaderboard.Feeds{
		Points:       s,
		Streaks:      s,
		Achievements: s,
		Quizzes:      s,
		Activity:     s,
		Profiles:     s,
	}
}

// Fixture setters

func (s *Store) SetProfile(p leaderboard.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *Store) SetPoints(userID string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.points {
		if s.points[i].UserID == userID {
			s.points[i].TotalPoints = total
			return
		}
	}
	s.points = append(s.points, leaderboard.PointsRecord{UserID: userID, TotalPoints: total})
}

func (s *Store) SetStreak(userID string, days int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaks[userID] = days
}

func (s *Store) AddAchievement(userID string, earnedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.achievements = append(s.achievements, leaderboard.AchievementRecord{UserID: userID, EarnedAt: earnedAt})
}

func (s *Store) AddQuizCompletion(userID, subjectID string, completedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes = append(s.quizzes, leaderboard.QuizRecord{UserID: userID, SubjectID: subjectID, CompletedAt: completedAt})
}

func (s *Store) AddActivity(rec leaderboard.ActivityRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, rec)
}

// Feed implementations

func (s *Store) QualifyingPoints(_ context.Context) ([]leaderboard.PointsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailPoints != nil {
		return nil, s.FailPoints
	}
	out := make([]leaderboard.PointsRecord, 0, len(s.points))
	for _, rec := range s.points {
		if rec.TotalPoints > 0 {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPoints > out[j].TotalPoints })
	return out, nil
}

func (s *Store) CurrentStreak(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.FailStreaks[userID]; err != nil {
		return 0, err
	}
	return s.streaks[userID], nil
}

func (s *Store) AchievementsByUser(_ context.Context, userIDs []string) ([]leaderboard.AchievementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailAchievements != nil {
		return nil, s.FailAchievements
	}
	ids := idSet(userIDs)
	out := make([]leaderboard.AchievementRecord, 0, len(s.achievements))
	for _, rec := range s.achievements {
		if ids[rec.UserID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) CompletionsByUser(_ context.Context, userIDs []string, since time.Time) ([]leaderboard.QuizRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailQuizzes != nil {
		return nil, s.FailQuizzes
	}
	ids := idSet(userIDs)
	out := make([]leaderboard.QuizRecord, 0, len(s.quizzes))
	for _, rec := range s.quizzes {
		if !ids[rec.UserID] {
			continue
		}
		if !since.IsZero() && rec.CompletedAt.Before(since) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) RecentActivity(_ context.Context, userIDs []string) ([]leaderboard.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailActivity != nil {
		return nil, s.FailActivity
	}
	ids := idSet(userIDs)
	out := make([]leaderboard.ActivityRecord, 0, len(s.activity))
	for _, rec := range s.activity {
		if ids[rec.UserID] {
			out = append(out, rec)
		}
	}
	// newest first, as the contract requires
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ProfilesByID(_ context.Context, userIDs []string) ([]leaderboard.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailProfiles != nil {
		return nil, s.FailProfiles
	}
	out := make([]leaderboard.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		if p, ok := s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func idSet(userIDs []string) map[string]bool {
	ids := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		ids[id] = true
	}
	return ids
}
