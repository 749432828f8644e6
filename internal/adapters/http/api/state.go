package api

import (
	"context"
	"net/http"

	"github.com/okian/bakeboard/internal/domain/model"
)

// StateDependencies exposes the snapshot read used by polling clients.
type StateDependencies interface {
	Snapshot(ctx context.Context) (model.Snapshot, error)
}

// StateHandler serves the full state snapshot.
type StateHandler struct {
	deps StateDependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps StateDependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleState handles GET /api/state requests.
func (h *StateHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	snap, err := h.deps.Snapshot(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
