// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/tally/internal/domain/model"
)

// ScoreHandler handles score submissions.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandlePostScore handles POST /api/score requests.
// Responds 201 {status:"created"} on a new record and 200
// {status:"already_exists"} on an idempotent retry; both are success for
// the submitting client.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	status, err := h.deps.Submit(r.Context(), req.submission())
	if err != nil {
		writeLedgerError(w, op, err)
		return
	}
	code := http.StatusCreated
	if status == model.SubmitAlreadyExists {
		code = http.StatusOK
	}
	writeJSON(w, code, statusResponse{Status: status})
}
