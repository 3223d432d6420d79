// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/tally/internal/gamescfg"
)

// GamesHandler serves the merged game configuration bundle.
type GamesHandler struct {
	bundle *gamescfg.Bundle
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(bundle *gamescfg.Bundle) *GamesHandler {
	return &GamesHandler{bundle: bundle}
}

// HandleGames handles GET /games.json requests.
func (h *GamesHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	const op = "api.games"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.bundle == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, h.bundle)
}
