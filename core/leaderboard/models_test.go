package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfile_DisplayName(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{name: "full name wins", profile: Profile{FullName: "Amelia Clarke", Username: "amelia", Email: "a@test.uk"}, want: "Amelia Clarke"},
		{name: "username next", profile: Profile{Username: "amelia", Email: "a@test.uk"}, want: "amelia"},
		{name: "email local part next", profile: Profile{Email: "amelia.c@test.uk"}, want: "amelia.c"},
		{name: "whitespace full name skipped", profile: Profile{FullName: "   ", Username: "amelia"}, want: "amelia"},
		{name: "empty profile is anonymous", profile: Profile{}, want: AnonymousName},
		{name: "bare @ is anonymous", profile: Profile{Email: "@test.uk"}, want: AnonymousName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.DisplayName())
		})
	}
}

func TestTimeScope_CutoffFrom(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -7), ScopeWeek.CutoffFrom(now))
	assert.True(t, ScopeAllTime.CutoffFrom(now).IsZero())
}

func TestTimeScope_Valid(t *testing.T) {
	assert.True(t, ScopeWeek.Valid())
	assert.True(t, ScopeAllTime.Valid())
	assert.False(t, TimeScope("fortnight").Valid())
}
