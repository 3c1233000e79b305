package testutil

import (
	"testing"
	"time"

	"github.com/educlara/educlara/core"
	"github.com/educlara/educlara/core/leaderboard"
	"github.com/educlara/educlara/storage/database/inmem"
)

// Logger routes app logs to the test log.
type Logger struct {
	t *testing.T
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger {
	return &Logger{t: t}
}

func (l Logger) output(level, msg string, args []interface{}) {
	l.t.Helper()
	l.t.Logf("%s: %s %v", level, msg, args)
}

func (l Logger) Debug(msg string, args ...interface{}) { l.output("DEBUG", msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { l.output("INFO", msg, args) }
func (l Logger) Warn(msg string, args ...interface{})  { l.output("WARN", msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { l.output("ERROR", msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) {
	l.t.Helper()
	l.t.Fatalf("FATAL: %s %v", msg, args)
}

// SeedUser registers a complete demo user in the in-memory store.
func SeedUser(
	store *inmemdb.Store,
	id, fullName string,
	points, streak, badges int,
	quizTimes ...time.Time,
) {
	store.SetProfile(leaderboard.Profile{ID: id, FullName: fullName})
	store.SetPoints(id, points)
	if streak > 0 {
		store.SetStreak(id, streak)
	}
	for i := 0; i < badges; i++ {
		store.AddAchievement(id, time.Now().UTC().AddDate(0, 0, -i))
	}
	for _, ts := range quizTimes {
		store.AddQuizCompletion(id, "maths", ts)
	}
}
