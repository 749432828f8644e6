package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/bakeboard/internal/adapters/repository"
	"github.com/okian/bakeboard/internal/domain/admission"
	"github.com/okian/bakeboard/pkg/logger"
)

// writeDomainError maps rejections from the service onto HTTP statuses:
// malformed input is 400, policy gates are 409 except unknown_participant
// which is 404, missing rows are 404, anything else is 500. Internal
// failures are logged with full detail but surface to clients as the
// generic status text only.
func writeDomainError(w http.ResponseWriter, err error) {
	if admission.IsValidation(err) {
		writeError(w, http.StatusBadRequest, "validation_failed", err)
		return
	}
	switch admission.PolicyReason(err) {
	case admission.ReasonVotingClosed, admission.ReasonDuplicateVote:
		writeError(w, http.StatusConflict, admission.PolicyReason(err), err)
		return
	case admission.ReasonUnknownParticipant:
		writeError(w, http.StatusNotFound, admission.ReasonUnknownParticipant, err)
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeInternalError(w, err)
}

// writeInternalError hides the failure detail from the client.
func writeInternalError(w http.ResponseWriter, err error) {
	logger.Named("api").Error(context.Background(), "request failed", logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", nil)
}
