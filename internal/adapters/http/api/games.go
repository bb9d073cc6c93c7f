package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/wolfwise/internal/adapters/cache"
	service "github.com/okian/wolfwise/internal/app"
	"github.com/okian/wolfwise/internal/domain/lineup"
	"github.com/okian/wolfwise/internal/domain/model"
)

// GameDependencies defines what the game handlers need.
type GameDependencies interface {
	RefreshGame(ctx context.Context, gameID string) (service.EnqueueResult, error)
	LatestResult(gameID string) (lineup.Result, bool)
}

// GamesHandler handles per-game requests.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

type lineupsResponse struct {
	GameID        string                 `json:"game_id"`
	Lineups       []model.LineupSnapshot `json:"lineups"`
	Snapshots     int                    `json:"snapshots"`
	Anomalies     []model.Anomaly        `json:"anomalies"`
	Repairs       int                    `json:"repairs"`
	Resets        int                    `json:"resets"`
	FallbackTeams []string               `json:"fallback_teams,omitempty"`
}

// HandleRefresh handles POST /games/{gameID}/refresh.
func (h *GamesHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh_game"
	res, err := h.deps.RefreshGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeEnqueue(w, op, res)
}

// HandleGetLineups handles GET /games/{gameID}/lineups.
func (h *GamesHandler) HandleGetLineups(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_lineups"
	gameID := chi.URLParam(r, "gameID")
	res, ok := h.deps.LatestResult(gameID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	anomalies := res.Anomalies
	if anomalies == nil {
		anomalies = []model.Anomaly{}
	}
	writeJSON(w, http.StatusOK, lineupsResponse{
		GameID:        gameID,
		Lineups:       cache.Latest(res.Snapshots),
		Snapshots:     len(res.Snapshots),
		Anomalies:     anomalies,
		Repairs:       res.Repairs,
		Resets:        res.Resets,
		FallbackTeams: res.FallbackTeams,
	})
}

// writeServiceError translates service errors to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidGameID):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
