package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/bakeboard/internal/domain/admission"
)

// ScoreDependencies covers the score commands.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, req admission.Request) (int64, error)
	DeleteScore(ctx context.Context, id int64) error
}

// ScoresHandler handles score submission and removal.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

type scoreRequest struct {
	ParticipantID int64              `json:"participant_id" validate:"required,gt=0"`
	JudgeName     string             `json:"judge_name" validate:"required"`
	Criteria      map[string]float64 `json:"criteria" validate:"required"`
	Comment       string             `json:"comment"`
}

type scoreResponse struct {
	Status  string `json:"status"`
	ScoreID int64  `json:"score_id"`
}

// HandleCollection handles POST /api/scores requests.
func (h *ScoresHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}
	id, err := h.deps.SubmitScore(r.Context(), admission.Request{
		ParticipantID: req.ParticipantID,
		JudgeName:     req.JudgeName,
		Criteria:      req.Criteria,
		Comment:       req.Comment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Status: "ok", ScoreID: id})
}

// HandleItem handles DELETE /api/scores/{id} requests.
func (h *ScoresHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/scores/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", nil)
		return
	}
	if err := h.deps.DeleteScore(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
