package leaderboard

import (
	"context"
	"time"
)

type (
	PointsRecord struct {
		UserID      string
		TotalPoints int
	}

	AchievementRecord struct {
		UserID   string
		EarnedAt time.Time
	}

	QuizRecord struct {
		UserID      string
		SubjectID   string
		CompletedAt time.Time
	}

	ActivityRecord struct {
		UserID    string
		Type      string
		Subject   string
		CreatedAt time.Time
	}
)

// ActivityMockExam marks a completed mock exam in the activity feed.
const ActivityMockExam = "mock_exam"

type (
	// PointsFeed is the primary feed; it defines the universe of qualifying
	// users (total points > 0), ordered by points descending.
	PointsFeed interface {
		QualifyingPoints(ctx context.Context) ([]PointsRecord, error)
	}

	// StreakFeed is a per-user lookup, independently callable per user.
	StreakFeed interface {
		CurrentStreak(ctx context.Context, userID string) (int, error)
	}

	// AchievementFeed returns one record per badge earned, scoped to the
	// given users.
	AchievementFeed interface {
		AchievementsByUser(ctx context.Context, userIDs []string) ([]AchievementRecord, error)
	}

	// QuizFeed returns quiz completions scoped to the given users. A zero
	// `since` means no lower bound.
	QuizFeed interface {
		CompletionsByUser(ctx context.Context, userIDs []string, since time.Time) ([]QuizRecord, error)
	}

	// ActivityFeed returns activity records scoped to the given users,
	// ordered newest first.
	ActivityFeed interface {
		RecentActivity(ctx context.Context, userIDs []string) ([]ActivityRecord, error)
	}

	// ProfileFeed resolves identity records for the given users.
	ProfileFeed interface {
		ProfilesByID(ctx context.Context, userIDs []string) ([]Profile, error)
	}

	// Feeds bundles the six upstream collaborators of the aggregator.
	Feeds struct {
		Points       PointsFeed
		Streaks      StreakFeed
		Achievements AchievementFeed
		Quizzes      QuizFeed
		Activity     ActivityFeed
		Profiles     ProfileFeed
	}
)
