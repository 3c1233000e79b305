package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/educlara/educlara/apps/api/echo"
	"github.com/educlara/educlara/core/leaderboard"
	"github.com/educlara/educlara/storage/database/inmem"
	"github.com/educlara/educlara/tests"
)

// seedBoard registers a small board with known field values:
// Amelia leads on points, Noah on streak, Olivia has no secondary data.
func seedBoard(store *inmemdb.Store) {
	now := time.Now().UTC()
	testutil.SeedUser(store, "u-amelia", "Amelia Clarke", 500, 5, 2,
		now.AddDate(0, 0, -1), now.AddDate(0, 0, -20))
	testutil.SeedUser(store, "u-noah", "Noah Patel", 300, 9, 1,
		now.AddDate(0, 0, -2))
	testutil.SeedUser(store, "u-olivia", "Olivia Hassan", 120, 0, 0)
}

func entry(rank int, id, name string, pts, streak, badges, quizzes int) leaderboard.Entry {
	return leaderboard.Entry{
		Rank:             rank,
		UserID:           id,
		DisplayName:      name,
		Points:           pts,
		CurrentStreak:    streak,
		BadgesEarned:     badges,
		QuizzesCompleted: quizzes,
	}
}

func boardPath(params map[string]string) string {
	v := make(url.Values)
	for k, val := range params {
		v.Add(k, val)
	}
	if len(v) == 0 {
		return "/v1/leaderboard"
	}
	return "/v1/leaderboard?" + v.Encode()
}

func Test_leaderboardApi_query(t *testing.T) {
	app, store := setup(t)
	seedBoard(store)

	tests := []struct {
		name        string
		params      map[string]string
		wantScope   leaderboard.TimeScope
		wantEntries []leaderboard.Entry
	}{
		{
			name:      "Default: all-time, points descending",
			wantScope: leaderboard.ScopeAllTime,
			wantEntries: []leaderboard.Entry{
				entry(1, "u-amelia", "Amelia Clarke", 500, 5, 2, 2),
				entry(2, "u-noah", "Noah Patel", 300, 9, 1, 1),
				entry(3, "u-olivia", "Olivia Hassan", 120, 0, 0, 0),
			},
		},
		{
			name:      "Week scope narrows quiz counts only",
			params:    map[string]string{"scope": "week"},
			wantScope: leaderboard.ScopeWeek,
			wantEntries: []leaderboard.Entry{
				entry(1, "u-amelia", "Amelia Clarke", 500, 5, 2, 1),
				entry(2, "u-noah", "Noah Patel", 300, 9, 1, 1),
				entry(3, "u-olivia", "Olivia Hassan", 120, 0, 0, 0),
			},
		},
		{
			name:      "Sort by streak",
			params:    map[string]string{"sort": "streak"},
			wantScope: leaderboard.ScopeAllTime,
			wantEntries: []leaderboard.Entry{
				entry(1, "u-noah", "Noah Patel", 300, 9, 1, 1),
				entry(2, "u-amelia", "Amelia Clarke", 500, 5, 2, 2),
				entry(3, "u-olivia", "Olivia Hassan", 120, 0, 0, 0),
			},
		},
		{
			name:      "Sort by streak ascending",
			params:    map[string]string{"sort": "streak", "dir": "asc"},
			wantScope: leaderboard.ScopeAllTime,
			wantEntries: []leaderboard.Entry{
				entry(1, "u-olivia", "Olivia Hassan", 120, 0, 0, 0),
				entry(2, "u-amelia", "Amelia Clarke", 500, 5, 2, 2),
				entry(3, "u-noah", "Noah Patel", 300, 9, 1, 1),
			},
		},
		{
			name:      "Search filters then re-ranks",
			params:    map[string]string{"search": "ol"},
			wantScope: leaderboard.ScopeAllTime,
			wantEntries: []leaderboard.Entry{
				entry(1, "u-olivia", "Olivia Hassan", 120, 0, 0, 0),
			},
		},
		{
			name:        "Search with no match is an empty 200",
			params:      map[string]string{"search": "zzz"},
			wantScope:   leaderboard.ScopeAllTime,
			wantEntries: []leaderboard.Entry{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, boardPath(tt.params))
			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			var resp echoapi.LeaderboardResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json.Unmarshal() failed: %v", err)
			}
			assert.Equal(t, tt.wantScope, resp.Scope)
			assert.Equal(t, len(tt.wantEntries), resp.Total)
			assert.Equal(t, tt.wantEntries, resp.Entries)
		})
	}
}

func Test_leaderboardApi_query_validation(t *testing.T) {
	app, store := setup(t)
	seedBoard(store)

	tests := []httpTest{
		{
			name: "Invalid scope", path: boardPath(map[string]string{"scope": "fortnight"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"scope": "must be one of: week all"}),
		},
		{
			name: "Invalid sort column", path: boardPath(map[string]string{"sort": "badges"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"sort": "must be one of: points streak quizzes"}),
		},
		{
			name: "Invalid direction", path: boardPath(map[string]string{"dir": "up"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"dir": "must be one of: asc desc"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_leaderboardApi_query_viewerMarking(t *testing.T) {
	app, store := setup(t)
	seedBoard(store)

	run := func(t *testing.T, token string) echoapi.LeaderboardResponse {
		req, rec := newAuthRequest(http.MethodGet, "/v1/leaderboard", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.LeaderboardResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		return resp
	}

	t.Run("Valid token marks my row", func(t *testing.T) {
		resp := run(t, getToken(t, "u-noah"))
		for _, e := range resp.Entries {
			assert.Equal(t, e.UserID == "u-noah", e.IsCurrentViewer)
		}
	})

	t.Run("Anonymous marks nothing", func(t *testing.T) {
		resp := run(t, "")
		for _, e := range resp.Entries {
			assert.False(t, e.IsCurrentViewer)
		}
	})

	t.Run("Garbage token degrades to anonymous", func(t *testing.T) {
		resp := run(t, "not.a.jwt")
		for _, e := range resp.Entries {
			assert.False(t, e.IsCurrentViewer)
		}
	})
}

// The primary feed failing must surface as a normal 200 with an empty board.
func Test_leaderboardApi_query_degradedBoard(t *testing.T) {
	app, store := setup(t)
	seedBoard(store)
	store.FailPoints = errors.New("connection refused")

	req, rec := newRequest(http.MethodGet, "/v1/leaderboard")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp echoapi.LeaderboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	assert.Equal(t, 0, resp.Total)
	assert.Empty(t, resp.Entries)
}

func Test_leaderboardApi_retrieve(t *testing.T) {
	app, store := setup(t)
	seedBoard(store)

	t.Run("Found", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/leaderboard/entries/u-noah")
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var e leaderboard.Entry
		if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		// detail comes from the canonical snapshot, which carries no rank
		assert.Equal(t, entry(0, "u-noah", "Noah Patel", 300, 9, 1, 1), e)
	})

	t.Run("Viewer stamped on own entry", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/leaderboard/entries/u-noah", getToken(t, "u-noah"))
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var e leaderboard.Entry
		if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		assert.True(t, e.IsCurrentViewer)
	})

	t.Run("Unknown user", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		}
		req, rec := newRequest(http.MethodGet, "/v1/leaderboard/entries/ghost")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Off-board user", func(t *testing.T) {
		// zero points means not on the board at all, filter state aside
		store2 := inmemdb.NewStore()
		testutil.SeedUser(store2, "u-idle", "Idle Ida", 0, 4, 2)
		app2, _ := setupWith(t, store2)
		req, rec := newRequest(http.MethodGet, "/v1/leaderboard/entries/u-idle")
		app2.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
