package leaderboard_test

import (
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/educlara/educlara/core/leaderboard"
)

func digestSnapshot() leaderboard.Snapshot {
	return leaderboard.Snapshot{
		Scope:   leaderboard.ScopeWeek,
		TakenAt: time.Now().UTC(),
		Entries: []leaderboard.Entry{
			{UserID: "u1", DisplayName: "Amelia Clarke", Points: 500, CurrentStreak: 5, QuizzesCompleted: 2},
			{UserID: "u2", DisplayName: "Noah Patel", Points: 300, CurrentStreak: 9, QuizzesCompleted: 7},
			{UserID: "u3", DisplayName: "Olivia Hassan", Points: 120, CurrentStreak: 1, QuizzesCompleted: 4},
		},
	}
}

func TestBuildDigest(t *testing.T) {
	to := []mail.Address{{Name: "Amelia Clarke", Address: "amelia@test.uk"}}

	msg, ok, err := leaderboard.BuildDigest(digestSnapshot(), 10, to)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, to, msg.To)
	assert.True(t, msg.HasRecipients())
	assert.True(t, msg.HasContent())

	assert.Contains(t, msg.TextContent, "week's")
	assert.Contains(t, msg.TextContent, "#1  Amelia Clarke - 500 pts")
	assert.Contains(t, msg.TextContent, "#2  Noah Patel")
	assert.Contains(t, msg.HTMLContent, "<strong>Amelia Clarke</strong>")
}

func TestBuildDigest_TopTruncation(t *testing.T) {
	msg, ok, err := leaderboard.BuildDigest(digestSnapshot(), 2, nil)
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.Contains(t, msg.TextContent, "Amelia Clarke")
	assert.Contains(t, msg.TextContent, "Noah Patel")
	assert.NotContains(t, msg.TextContent, "Olivia Hassan")
}

func TestBuildDigest_AllTimeWording(t *testing.T) {
	snap := digestSnapshot()
	snap.Scope = leaderboard.ScopeAllTime

	msg, ok, err := leaderboard.BuildDigest(snap, 10, nil)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, msg.TextContent, "term's")
	assert.NotContains(t, msg.TextContent, "week's")
}

// An empty board sends nothing.
func TestBuildDigest_EmptySnapshot(t *testing.T) {
	msg, ok, err := leaderboard.BuildDigest(leaderboard.Snapshot{}, 10, nil)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, msg)
}
