package leaderboard

import (
	"sort"
	"strings"
)

// ViewState is the user-driven filter/sort state applied on top of a
// snapshot. Changing it never triggers a re-fetch, only a re-derivation.
type ViewState struct {
	Search    string
	Column    SortColumn
	Ascending bool
}

// DefaultViewState sorts by points, descending, unfiltered.
func DefaultViewState() ViewState {
	return ViewState{Column: SortPoints}
}

// SortBy applies the column toggle semantics: selecting the active column
// flips the direction, selecting a new column resets to descending.
func (st *ViewState) SortBy(col SortColumn) {
	if col == st.Column {
		st.Ascending = !st.Ascending
		return
	}
	st.Column = col
	st.Ascending = false
}

// DeriveView produces the visible list from a snapshot's entries:
// filter, stable sort, then contiguous 1-indexed ranks. The input slice is
// not modified.
func DeriveView(entries []Entry, st ViewState) []Entry {
	view := Filter(entries, st.Search)
	SortEntries(view, st.Column, st.Ascending)
	Rank(view)
	return view
}

// Filter returns the entries whose display name contains the query,
// case-insensitively. An empty query keeps everything. The result is always
// a fresh slice.
func Filter(entries []Entry, query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if query == "" || strings.Contains(strings.ToLower(e.DisplayName), query) {
			out = append(out, e)
		}
	}
	return out
}

// SortEntries stably sorts entries in place by the given column and
// direction. Ties keep their snapshot order (points descending).
func SortEntries(entries []Entry, col SortColumn, ascending bool) {
	key := func(e Entry) int {
		switch col {
		case SortStreak:
			return e.CurrentStreak
		case SortQuizzes:
			return e.QuizzesCompleted
		default:
			return e.Points
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if ascending {
			return key(entries[i]) < key(entries[j])
		}
		return key(entries[i]) > key(entries[j])
	})
}

// Rank reassigns contiguous 1-indexed ranks over the visible list. Ranks
// are never carried over from a previous derivation.
func Rank(entries []Entry) {
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// MarkViewer stamps IsCurrentViewer on the matching entry, clearing it
// everywhere else. Ranking order is never changed for the viewer.
func MarkViewer(entries []Entry, viewerID string) {
	for i := range entries {
		entries[i].IsCurrentViewer = viewerID != "" && entries[i].UserID == viewerID
	}
}
