package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/bakeboard/internal/domain/settings"
)

// SettingsDependencies covers the bulk settings update.
type SettingsDependencies interface {
	UpdateSettings(ctx context.Context, updates map[string]any) (settings.Settings, error)
}

// SettingsHandler handles settings updates.
type SettingsHandler struct {
	deps SettingsDependencies
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(deps SettingsDependencies) *SettingsHandler {
	return &SettingsHandler{deps: deps}
}

// HandleSettings handles PUT /api/settings requests. The body is a flat
// key/value object; recognized keys are coerced, the rest pass through.
func (h *SettingsHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	out, err := h.deps.UpdateSettings(r.Context(), updates)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
