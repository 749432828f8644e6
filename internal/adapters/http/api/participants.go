package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/bakeboard/internal/domain/model"
)

// ParticipantDependencies covers the participant and dessert commands.
type ParticipantDependencies interface {
	UpsertParticipant(ctx context.Context, name string, active bool) (model.Participant, error)
	SetParticipantActive(ctx context.Context, id int64, active bool) error
	DeleteParticipant(ctx context.Context, id int64) error
	UpsertDessert(ctx context.Context, participantID int64, name, description, category string) error
}

// ParticipantsHandler handles participant and dessert requests.
type ParticipantsHandler struct {
	deps ParticipantDependencies
}

// NewParticipantsHandler creates a new participants handler.
func NewParticipantsHandler(deps ParticipantDependencies) *ParticipantsHandler {
	return &ParticipantsHandler{deps: deps}
}

type participantRequest struct {
	Name   string `json:"name" validate:"required"`
	Active *bool  `json:"active"`
}

type participantPatchRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type dessertRequest struct {
	Name        string `json:"dessert_name" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// HandleCollection handles POST /api/participants requests.
func (h *ParticipantsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	p, err := h.deps.UpsertParticipant(r.Context(), req.Name, active)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleItem dispatches /api/participants/{id} and
// /api/participants/{id}/dessert requests.
func (h *ParticipantsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/participants/")
	idStr, sub, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", nil)
		return
	}

	switch {
	case sub == "dessert" && r.Method == http.MethodPut:
		h.handleDessert(w, r, id)
	case sub == "" && r.Method == http.MethodPatch:
		h.handlePatch(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *ParticipantsHandler) handlePatch(w http.ResponseWriter, r *http.Request, id int64) {
	var req participantPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "validation_failed", nil)
		return
	}
	if err := h.deps.SetParticipantActive(r.Context(), id, *req.Active); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ParticipantsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.deps.DeleteParticipant(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ParticipantsHandler) handleDessert(w http.ResponseWriter, r *http.Request, id int64) {
	var req dessertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}
	if err := h.deps.UpsertDessert(r.Context(), id, req.Name, req.Description, req.Category); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
