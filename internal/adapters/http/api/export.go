// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
	"time"
)

// ExportHandler serves the flattened CSV export.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleExportCSV handles GET /api/admin/export.csv requests. The ledger
// produces the tabular data; this boundary only adds the content type and
// download filename.
func (h *ExportHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_export"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	table, err := h.deps.ExportFlat(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	var sb strings.Builder
	table.WriteCSV(&sb)

	filename := "camporee_scores_" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sb.String()))
}
