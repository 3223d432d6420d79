// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/tally/internal/domain/model"
)

// AdminHandler serves the operator endpoints: the full ledger listing, the
// score reset and the compaction trigger. These are maintenance entry
// points, not part of the submission surface.
type AdminHandler struct {
	deps Dependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps Dependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

// allDataResponse bundles the joined ledger with per-game raw counts. The
// counts include superseded records: an activity counter, not a leaderboard.
type allDataResponse struct {
	Scores []model.ScoreRow `json:"scores"`
	Stats  map[string]int   `json:"stats"`
}

// HandleAllData handles GET /api/admin/all-data requests.
func (h *AdminHandler) HandleAllData(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_all_data"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats, records, err := h.deps.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, allDataResponse{Scores: records, Stats: stats})
}

// HandleReset handles DELETE /api/admin/data requests.
func (h *AdminHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_reset"
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	deleted, err := h.deps.ResetScores(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}

// HandleCompact handles POST /api/admin/compact requests.
func (h *AdminHandler) HandleCompact(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_compact"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	deleted, err := h.deps.Compact(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
