// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/flatten"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/gamescfg"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit performs the idempotent ledger write.
	Submit(ctx context.Context, sub model.Submission) (model.SubmitStatus, error)

	// ListAll returns per-game raw counts plus the joined ledger records.
	ListAll(ctx context.Context) (map[string]int, []model.ScoreRow, error)

	// ExportFlat produces the flattened tabular export.
	ExportFlat(ctx context.Context) (flatten.Table, error)

	// Compact removes superseded records, returning the deleted count.
	Compact(ctx context.Context) (int64, error)

	// ResetScores clears the ledger.
	ResetScores(ctx context.Context) (int64, error)

	// Entity directory access.
	Entities(ctx context.Context) ([]model.Entity, error)
	AddEntity(ctx context.Context, name string, kind model.EntityKind, group string) (model.Entity, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	scoreHandler    *ScoreHandler
	entitiesHandler *EntitiesHandler
	adminHandler    *AdminHandler
	exportHandler   *ExportHandler
	gamesHandler    *GamesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, games *gamescfg.Bundle) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		scoreHandler:    NewScoreHandler(deps),
		entitiesHandler: NewEntitiesHandler(deps),
		adminHandler:    NewAdminHandler(deps),
		exportHandler:   NewExportHandler(deps),
		gamesHandler:    NewGamesHandler(games),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/games.json", MetricsMiddleware(s.gamesHandler.HandleGames, "games"))
	mux.HandleFunc("/api/score", MetricsMiddleware(s.scoreHandler.HandlePostScore, "score"))
	mux.HandleFunc("/api/entities", MetricsMiddleware(s.entitiesHandler.HandleEntities, "entities"))
	mux.HandleFunc("/api/admin/all-data", MetricsMiddleware(s.adminHandler.HandleAllData, "admin_all_data"))
	mux.HandleFunc("/api/admin/data", MetricsMiddleware(s.adminHandler.HandleReset, "admin_reset"))
	mux.HandleFunc("/api/admin/compact", MetricsMiddleware(s.adminHandler.HandleCompact, "admin_compact"))
	mux.HandleFunc("/api/admin/export.csv", MetricsMiddleware(s.exportHandler.HandleExportCSV, "admin_export"))
}

// scoreRequest mirrors the submission JSON accepted by POST /api/score.
type scoreRequest struct {
	UUID         string          `json:"uuid"`
	GameID       string          `json:"game_id"`
	EntityID     int64           `json:"entity_id"`
	ScorePayload json.RawMessage `json:"score_payload"`
	Timestamp    int64           `json:"timestamp"`
	JudgeName    string          `json:"judge_name"`
	JudgeEmail   string          `json:"judge_email"`
	JudgeUnit    string          `json:"judge_unit"`
}

func (s scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(s.UUID) == "":
		return errors.New("missing uuid")
	case strings.TrimSpace(s.GameID) == "":
		return errors.New("missing game_id")
	case s.EntityID == 0:
		return errors.New("missing entity_id")
	case len(s.ScorePayload) == 0:
		return errors.New("missing score_payload")
	}
	return nil
}

func (s scoreRequest) submission() model.Submission {
	return model.Submission{
		SubmissionID: s.UUID,
		GameID:       s.GameID,
		EntityID:     s.EntityID,
		Payload:      s.ScorePayload,
		RecordedAt:   s.Timestamp,
		JudgeEmail:   s.JudgeEmail,
		JudgeName:    s.JudgeName,
		JudgeUnit:    s.JudgeUnit,
	}
}

type statusResponse struct {
	Status model.SubmitStatus `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeLedgerError translates repository sentinel kinds to status codes.
func writeLedgerError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidSubmission):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, repository.ErrEntityNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
