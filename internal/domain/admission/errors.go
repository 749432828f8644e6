package admission

import (
	"errors"
	"fmt"
)

// Policy rejection reasons. Clients render different messages per reason.
const (
	ReasonVotingClosed       = "voting_closed"
	ReasonDuplicateVote      = "duplicate_vote"
	ReasonUnknownParticipant = "unknown_participant"
)

// ValidationError rejects a malformed submission before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// PolicyError rejects a well-formed submission that a gate refuses.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy rejected: %s", e.Reason)
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPolicy reports whether err is a policy rejection, optionally returning
// the reason through AsPolicy.
func IsPolicy(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}

// PolicyReason extracts the rejection reason, or "" when err is not a
// policy rejection.
func PolicyReason(err error) string {
	var pe *PolicyError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}
