package admission_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/bakeboard/internal/domain/admission"
	"github.com/okian/bakeboard/internal/domain/settings"
)

func TestNormalize(t *testing.T) {
	Convey("Given a submission with padded fields", t, func() {
		req := admission.Request{
			ParticipantID: 7,
			JudgeName:     "  Maribel  ",
			Comment:       " lovely crumb ",
		}

		Convey("When normalizing", func() {
			err := req.Normalize()

			Convey("Then fields are trimmed", func() {
				So(err, ShouldBeNil)
				So(req.JudgeName, ShouldEqual, "Maribel")
				So(req.Comment, ShouldEqual, "lovely crumb")
			})
		})
	})

	Convey("Given a submission with a blank judge name", t, func() {
		req := admission.Request{ParticipantID: 7, JudgeName: "   "}

		err := req.Normalize()

		Convey("Then it is rejected as a validation error", func() {
			So(err, ShouldNotBeNil)
			So(admission.IsValidation(err), ShouldBeTrue)
			So(admission.IsPolicy(err), ShouldBeFalse)
		})
	})

	Convey("Given a submission with no participant id", t, func() {
		req := admission.Request{JudgeName: "Maribel"}

		err := req.Normalize()

		Convey("Then it is rejected as a validation error", func() {
			So(admission.IsValidation(err), ShouldBeTrue)
		})
	})
}

func TestCheck(t *testing.T) {
	Convey("Given voting is closed", t, func() {
		s := settings.Default()
		s.VotingOpen = false

		err := admission.Check(s, false)

		Convey("Then any submission is rejected with voting_closed", func() {
			So(admission.IsPolicy(err), ShouldBeTrue)
			So(admission.PolicyReason(err), ShouldEqual, admission.ReasonVotingClosed)
		})
	})

	Convey("Given multiple scores per judge are disallowed", t, func() {
		s := settings.Default()

		Convey("When the judge has already scored this participant", func() {
			err := admission.Check(s, true)

			Convey("Then the duplicate is rejected", func() {
				So(admission.PolicyReason(err), ShouldEqual, admission.ReasonDuplicateVote)
			})
		})

		Convey("When the judge has not scored yet", func() {
			So(admission.Check(s, false), ShouldBeNil)
		})
	})

	Convey("Given multiple scores per judge are allowed", t, func() {
		s := settings.Default()
		s.AllowMultipleScoresPerJudge = true

		Convey("Then a repeat submission passes", func() {
			So(admission.Check(s, true), ShouldBeNil)
		})
	})
}

func TestErrorTaxonomy(t *testing.T) {
	Convey("Given wrapped domain errors", t, func() {
		ve := fmt.Errorf("submit: %w", &admission.ValidationError{Field: "judge_name", Reason: "required"})
		pe := fmt.Errorf("submit: %w", &admission.PolicyError{Reason: admission.ReasonUnknownParticipant})

		Convey("Then the taxonomy survives wrapping", func() {
			So(admission.IsValidation(ve), ShouldBeTrue)
			So(admission.IsPolicy(pe), ShouldBeTrue)
			So(admission.PolicyReason(pe), ShouldEqual, admission.ReasonUnknownParticipant)
		})

		Convey("And the two kinds stay distinguishable", func() {
			So(admission.IsPolicy(ve), ShouldBeFalse)
			So(admission.IsValidation(pe), ShouldBeFalse)
		})
	})
}
