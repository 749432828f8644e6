package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/bakeboard/internal/domain/transfer"
)

// TransferDependencies covers export and import.
type TransferDependencies interface {
	Export(ctx context.Context) (transfer.Payload, error)
	Import(ctx context.Context, payload transfer.Payload, mode string) (transfer.Report, error)
}

// TransferHandler handles full-state export and import.
type TransferHandler struct {
	deps TransferDependencies
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(deps TransferDependencies) *TransferHandler {
	return &TransferHandler{deps: deps}
}

// HandleExport handles GET /api/export requests.
func (h *TransferHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	payload, err := h.deps.Export(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="bakeboard-export.json"`)
	writeJSON(w, http.StatusOK, payload)
}

// HandleImport handles POST /api/import?mode=replace|merge requests.
func (h *TransferHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var payload transfer.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	mode := transfer.NormalizeMode(r.URL.Query().Get("mode"))
	report, err := h.deps.Import(r.Context(), payload, mode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
