// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// EntitiesHandler serves the entity directory.
type EntitiesHandler struct {
	deps Dependencies
}

// NewEntitiesHandler creates a new entities handler.
func NewEntitiesHandler(deps Dependencies) *EntitiesHandler {
	return &EntitiesHandler{deps: deps}
}

// entityRequest mirrors the registration JSON for POST /api/entities.
type entityRequest struct {
	Name  string `json:"name"`
	Kind  string `json:"type"`
	Group string `json:"troop_number"`
}

// HandleEntities handles GET and POST /api/entities requests.
func (h *EntitiesHandler) HandleEntities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleRegister(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *EntitiesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_entities"
	entities, err := h.deps.Entities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entities)
}

func (h *EntitiesHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_entity"
	var req entityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	kind := model.EntityKind(strings.TrimSpace(req.Kind))
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Group) == "" || !kind.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entity, err := h.deps.AddEntity(r.Context(), req.Name, kind, req.Group)
	if err != nil {
		writeLedgerError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}
