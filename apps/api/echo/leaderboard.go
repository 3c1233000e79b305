package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educlara/educlara/core/leaderboard"
)

type leaderboardApi struct {
	board    *leaderboard.Cache
	validate *validator.Validate
}

func registerLeaderboardAPI(g *echo.Group, board *leaderboard.Cache, validate *validator.Validate) {
	api := leaderboardApi{
		board:    board,
		validate: validate,
	}

	lg := g.Group("/leaderboard")
	lg.GET("", api.query)
	lg.GET("/entries/:id", api.retrieve)
}

type leaderboardQuery struct {
	Scope  string `query:"scope" json:"scope" validate:"omitempty,oneof=week all"`
	Sort   string `query:"sort" json:"sort" validate:"omitempty,oneof=points streak quizzes"`
	Dir    string `query:"dir" json:"dir" validate:"omitempty,oneof=asc desc"`
	Search string `query:"search" json:"search"`
}

func (q leaderboardQuery) scope() leaderboard.TimeScope {
	if q.Scope == "" {
		return leaderboard.ScopeAllTime
	}
	return leaderboard.TimeScope(q.Scope)
}

func (q leaderboardQuery) viewState() leaderboard.ViewState {
	st := leaderboard.DefaultViewState()
	if q.Sort != "" {
		st.Column = leaderboard.SortColumn(q.Sort)
	}
	st.Ascending = q.Dir == "asc"
	st.Search = q.Search
	return st
}

type LeaderboardResponse struct {
	Scope   leaderboard.TimeScope `json:"scope"`
	TakenAt time.Time             `json:"taken_at"`
	Total   int                   `json:"total"`
	Entries []leaderboard.Entry   `json:"entries"`
}

// Handlers

// query serves the visible board: cached snapshot for the scope, derived
// per request from the filter/sort params, viewer marked from the optional
// bearer token. An empty board is a normal 200, never an error.
func (api *leaderboardApi) query(ctx echo.Context) error {
	var data leaderboardQuery
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to leaderboardQuery")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	snap := api.board.Get(ctx.Request().Context(), data.scope())
	entries := leaderboard.DeriveView(snap.Entries, data.viewState())
	leaderboard.MarkViewer(entries, viewerID(ctx))

	return ctx.JSON(http.StatusOK, LeaderboardResponse{
		Scope:   snap.Scope,
		TakenAt: snap.TakenAt,
		Total:   len(entries),
		Entries: entries,
	})
}

// retrieve serves the full entry detail for the side panel. The lookup runs
// against the canonical snapshot, so an entry hidden by a search filter is
// still reachable.
func (api *leaderboardApi) retrieve(ctx echo.Context) error {
	var data leaderboardQuery
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to leaderboardQuery")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	snap := api.board.Get(ctx.Request().Context(), data.scope())
	userID := ctx.Param("id")
	for _, entry := range snap.Entries {
		if entry.UserID == userID {
			entry.IsCurrentViewer = userID == viewerID(ctx)
			return ctx.JSON(http.StatusOK, entry)
		}
	}
	return errHttpNotFound
}
