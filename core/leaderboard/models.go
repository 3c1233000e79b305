package leaderboard

import (
	"strings"
	"time"
)

// AnonymousName is displayed when a profile carries no usable identity at all.
const AnonymousName = "Anonymous User"

// TimeScope bounds the quiz-completion count. It never affects points,
// streaks or badges.
type TimeScope string

const (
	ScopeWeek    TimeScope = "week"
	ScopeAllTime TimeScope = "all"
)

func (s TimeScope) Valid() bool {
	return s == ScopeWeek || s == ScopeAllTime
}

// CutoffFrom returns the lower time bound applied to quiz completions.
// The zero time means no bound.
func (s TimeScope) CutoffFrom(now time.Time) time.Time {
	if s == ScopeWeek {
		return now.AddDate(0, 0, -7)
	}
	return time.Time{}
}

// SortColumn is one of the user-sortable entry columns.
type SortColumn string

const (
	SortPoints  SortColumn = "points"
	SortStreak  SortColumn = "streak"
	SortQuizzes SortColumn = "quizzes"
)

func (c SortColumn) Valid() bool {
	return c == SortPoints || c == SortStreak || c == SortQuizzes
}

// Entry is one ranked row of the leaderboard. Entries are derived, never
// persisted; Rank is the 1-indexed position in the currently visible list.
type Entry struct {
	Rank             int        `json:"rank"`
	UserID           string     `json:"user_id"`
	DisplayName      string     `json:"display_name"`
	Points           int        `json:"points"`
	CurrentStreak    int        `json:"current_streak"`
	BadgesEarned     int        `json:"badges_earned"`
	QuizzesCompleted int        `json:"quizzes_completed"`
	IsCurrentViewer  bool       `json:"is_current_viewer"`
	TopSubject       string     `json:"top_subject,omitempty"`
	MocksCompleted   int        `json:"mocks_completed,omitempty"`
	LastActiveAt     *time.Time `json:"last_active_at,omitempty"`
}

// Snapshot is the complete aggregated entry set produced by one fetch cycle.
// It is replaced wholesale on every cycle, never mutated in place.
type Snapshot struct {
	Seq      uint64    `json:"-"`
	Scope    TimeScope `json:"scope"`
	ViewerID string    `json:"-"`
	TakenAt  time.Time `json:"taken_at"`
	Entries  []Entry   `json:"entries"`
}

// Profile is the identity record used for display-name resolution.
type Profile struct {
	ID       string
	FullName string
	Username string
	Email    string
}

// DisplayName resolves the name shown on the board: full name, then
// username, then the email local part, then AnonymousName.
func (p Profile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	if uname := strings.TrimSpace(p.Username); uname != "" {
		return uname
	}
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	return AnonymousName
}
