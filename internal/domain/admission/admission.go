// Package admission validates and gates score submissions before they are
// committed to the store.
package admission

import (
	"strings"

	"github.com/okian/bakeboard/internal/domain/settings"
)

// Request carries one score submission through the gates.
type Request struct {
	ParticipantID int64
	JudgeName     string
	Criteria      map[string]float64
	Comment       string
}

// Normalize trims free-text fields and checks required ones.
// Returns a *ValidationError when the submission is malformed.
func (r *Request) Normalize() error {
	r.JudgeName = strings.TrimSpace(r.JudgeName)
	r.Comment = strings.TrimSpace(r.Comment)
	if r.JudgeName == "" {
		return &ValidationError{Field: "judge_name", Reason: "required"}
	}
	if r.ParticipantID <= 0 {
		return &ValidationError{Field: "participant_id", Reason: "required"}
	}
	return nil
}

// Check applies the policy gates under the current settings. alreadyScored
// reports whether this judge already has a committed score for this
// participant. Returns a *PolicyError when a gate rejects the submission.
func Check(s settings.Settings, alreadyScored bool) error {
	if !s.VotingOpen {
		return &PolicyError{Reason: ReasonVotingClosed}
	}
	if !s.AllowMultipleScoresPerJudge && alreadyScored {
		return &PolicyError{Reason: ReasonDuplicateVote}
	}
	return nil
}
