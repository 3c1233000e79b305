package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/educlara/educlara/core/leaderboard"
)

// LeaderboardRepository implements the six leaderboard feeds over Postgres.
// Per-user tallies happen in the aggregator; queries here only fetch and
// scope raw records to the qualifying population.
type LeaderboardRepository struct {
	db *sqlx.DB
}

var (
	_ leaderboard.PointsFeed      = (*LeaderboardRepository)(nil)
	_ leaderboard.StreakFeed      = (*LeaderboardRepository)(nil)
	_ leaderboard.AchievementFeed = (*LeaderboardRepository)(nil)
	_ leaderboard.QuizFeed        = (*LeaderboardRepository)(nil)
	_ leaderboard.ActivityFeed    = (*LeaderboardRepository)(nil)
	_ leaderboard.ProfileFeed     = (*LeaderboardRepository)(nil)
)

func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// Feeds bundles the repository as the aggregator's upstream collaborators.
func (repo *LeaderboardRepository) Feeds() leaderboard.Feeds {
	return leaderboard.Feeds{
		Points:       repo,
		Streaks:      repo,
		Achievements: repo,
		Quizzes:      repo,
		Activity:     repo,
		Profiles:     repo,
	}
}

type pointsRow struct {
	UserID      string `db:"user_id"`
	TotalPoints int    `db:"total_points"`
}

func (repo *LeaderboardRepository) QualifyingPoints(ctx context.Context) ([]leaderboard.PointsRecord, error) {
	const q = `SELECT user_id, total_points FROM user_points WHERE total_points > 0 ORDER BY total_points DESC`
	var rows []pointsRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying qualifying points")
	}
	records := make([]leaderboard.PointsRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, leaderboard.PointsRecord{UserID: row.UserID, TotalPoints: row.TotalPoints})
	}
	return records, nil
}

func (repo *LeaderboardRepository) CurrentStreak(ctx context.Context, userID string) (int, error) {
	const q = `SELECT current_streak FROM user_streaks WHERE user_id = $1`
	var streak int
	if err := repo.db.GetContext(ctx, &streak, q, userID); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil // absent is not an error
		}
		return 0, errors.Wrapf(err, "querying streak for %s", userID)
	}
	return streak, nil
}

type achievementRow struct {
	UserID   string    `db:"user_id"`
	EarnedAt time.Time `db:"earned_at"`
}

func (repo *LeaderboardRepository) AchievementsByUser(ctx context.Context, userIDs []string) ([]leaderboard.AchievementRecord, error) {
	const q = `SELECT user_id, earned_at FROM user_achievements WHERE user_id = ANY($1)`
	var rows []achievementRow
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(userIDs)); err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	records := make([]leaderboard.AchievementRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, leaderboard.AchievementRecord{UserID: row.UserID, EarnedAt: row.EarnedAt})
	}
	return records, nil
}

type quizRow struct {
	UserID      string         `db:"user_id"`
	SubjectID   sql.NullString `db:"subject_id"`
	CompletedAt time.Time      `db:"completed_at"`
}

func (repo *LeaderboardRepository) CompletionsByUser(ctx context.Context, userIDs []string, since time.Time) ([]leaderboard.QuizRecord, error) {
	q := `SELECT user_id, subject_id, completed_at FROM quiz_completions WHERE user_id = ANY($1)`
	args := []interface{}{pq.Array(userIDs)}
	if !since.IsZero() {
		q += ` AND completed_at >= $2`
		args = append(args, since)
	}

	var rows []quizRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying quiz completions")
	}
	records := make([]leaderboard.QuizRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, leaderboard.QuizRecord{
			UserID:      row.UserID,
			SubjectID:   row.SubjectID.String,
			CompletedAt: row.CompletedAt,
		})
	}
	return records, nil
}

type activityRow struct {
	UserID    string    `db:"user_id"`
	Type      string    `db:"activity_type"`
	Subject   string    `db:"subject"`
	CreatedAt time.Time `db:"created_at"`
}

func (repo *LeaderboardRepository) RecentActivity(ctx context.Context, userIDs []string) ([]leaderboard.ActivityRecord, error) {
	const q = `
		SELECT user_id, activity_type, COALESCE(metadata->>'subject', '') AS subject, created_at
		FROM user_activity
		WHERE user_id = ANY($1)
		ORDER BY created_at DESC`
	var rows []activityRow
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(userIDs)); err != nil {
		return nil, errors.Wrap(err, "querying activity")
	}
	records := make([]leaderboard.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, leaderboard.ActivityRecord{
			UserID:    row.UserID,
			Type:      row.Type,
			Subject:   row.Subject,
			CreatedAt: row.CreatedAt,
		})
	}
	return records, nil
}

type profileRow struct {
	ID       string         `db:"id"`
	FullName sql.NullString `db:"full_name"`
	Username sql.NullString `db:"username"`
	Email    sql.NullString `db:"email"`
}

func (repo *LeaderboardRepository) ProfilesByID(ctx context.Context, userIDs []string) ([]leaderboard.Profile, error) {
	const q = `SELECT id, full_name, username, email FROM profiles WHERE id = ANY($1)`
	var rows []profileRow
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(userIDs)); err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	profiles := make([]leaderboard.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, leaderboard.Profile{
			ID:       row.ID,
			FullName: row.FullName.String,
			Username: row.Username.String,
			Email:    row.Email.String,
		})
	}
	return profiles, nil
}
