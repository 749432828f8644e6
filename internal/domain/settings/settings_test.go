package settings_test

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/bakeboard/internal/domain/settings"
)

func TestDecode(t *testing.T) {
	Convey("Given empty registry rows", t, func() {
		s := settings.Decode(map[string]string{})

		Convey("Then defaults are applied", func() {
			So(s.CompetitionName, ShouldEqual, "2025 Holiday Bakeoff")
			So(s.VotingOpen, ShouldBeTrue)
			So(s.AllowMultipleScoresPerJudge, ShouldBeFalse)
			So(s.Criteria, ShouldHaveLength, 4)
			So(s.Criteria[0].Key, ShouldEqual, "taste")
		})
	})

	Convey("Given populated rows", t, func() {
		s := settings.Decode(map[string]string{
			"competition_name":                "Spring Pie-Off",
			"theme":                           "easter",
			"voting_open":                     "no",
			"allow_multiple_scores_per_judge": "YES",
			"criteria":                        `[{"key":"crust","label":"Crust","max":5,"weight":2}]`,
			"mystery_key":                     "opaque-value",
		})

		Convey("Then typed values are coerced", func() {
			So(s.CompetitionName, ShouldEqual, "Spring Pie-Off")
			So(s.VotingOpen, ShouldBeFalse)
			So(s.AllowMultipleScoresPerJudge, ShouldBeTrue)
			So(s.Criteria, ShouldHaveLength, 1)
			So(s.Criteria[0].EffectiveWeight(), ShouldEqual, 2.0)
		})

		Convey("And unrecognized keys land in Extra", func() {
			So(s.Extra["mystery_key"], ShouldEqual, "opaque-value")
		})
	})

	Convey("Given a corrupt criteria value", t, func() {
		s := settings.Decode(map[string]string{"criteria": "{not json"})

		Convey("Then the default template is used", func() {
			So(s.Criteria, ShouldHaveLength, 4)
			So(s.Criteria[3].Key, ShouldEqual, "holiday_spirit")
		})
	})
}

func TestEncodeRoundTrip(t *testing.T) {
	Convey("Given settings with extras", t, func() {
		s := settings.Default()
		s.VotingOpen = false
		s.Extra = map[string]string{"venue": "community hall"}

		rows := s.Encode()

		Convey("Then booleans serialize losslessly", func() {
			So(rows["voting_open"], ShouldEqual, "false")
			So(rows["allow_multiple_scores_per_judge"], ShouldEqual, "false")
		})

		Convey("And decoding the rows reproduces the settings", func() {
			back := settings.Decode(rows)
			So(back.VotingOpen, ShouldBeFalse)
			So(back.CompetitionName, ShouldEqual, s.CompetitionName)
			So(back.Criteria, ShouldResemble, s.Criteria)
			So(back.Extra["venue"], ShouldEqual, "community hall")
		})
	})
}

func TestParseBool(t *testing.T) {
	Convey("Given assorted stored values", t, func() {
		truthy := []string{"1", "true", "TRUE", " yes ", "y", "on"}
		falsy := []string{"", "0", "false", "off", "nope"}

		Convey("Then truthy forms parse true", func() {
			for _, v := range truthy {
				So(settings.ParseBool(v), ShouldBeTrue)
			}
		})

		Convey("And everything else parses false", func() {
			for _, v := range falsy {
				So(settings.ParseBool(v), ShouldBeFalse)
			}
		})
	})
}

func TestSet(t *testing.T) {
	Convey("Given default settings", t, func() {
		s := settings.Default()

		Convey("When setting recognized keys with loose types", func() {
			s.Set("voting_open", "off")
			s.Set("competition_name", "Autumn Tart Trials")
			s.Set("criteria", []any{
				map[string]any{"key": "glaze", "label": "Glaze", "max": 10, "weight": 1.5},
			})

			Convey("Then values are coerced into the typed form", func() {
				So(s.VotingOpen, ShouldBeFalse)
				So(s.CompetitionName, ShouldEqual, "Autumn Tart Trials")
				So(s.Criteria, ShouldHaveLength, 1)
				So(s.Criteria[0].Key, ShouldEqual, "glaze")
			})
		})

		Convey("When setting corrupt criteria", func() {
			s.Set("criteria", "not-a-list")

			Convey("Then the default template is restored", func() {
				So(s.Criteria, ShouldHaveLength, 4)
			})
		})

		Convey("When setting an unrecognized key", func() {
			s.Set("dj_name", "DJ Crumble")

			Convey("Then it is kept opaquely", func() {
				So(s.Extra["dj_name"], ShouldEqual, "DJ Crumble")
			})
		})
	})
}

func TestWeights(t *testing.T) {
	Convey("Given criteria with explicit, zero, and absent weights", t, func() {
		double, none := 2.0, 0.0
		s := settings.Settings{Criteria: []settings.Criterion{
			{Key: "taste", Weight: &double},
			{Key: "presentation"},
			{Key: "creativity", Weight: &none},
		}}

		w := s.Weights()

		Convey("Then only absent weights default to 1.0", func() {
			So(w["taste"], ShouldEqual, 2.0)
			So(w["presentation"], ShouldEqual, 1.0)
			So(w["creativity"], ShouldEqual, 0.0)
		})
	})
}

func TestJSONRoundTrip(t *testing.T) {
	Convey("Given settings marshalled to the flat map shape", t, func() {
		s := settings.Default()
		s.Theme = "winter"
		s.Extra = map[string]string{"venue": "gym"}

		raw, err := json.Marshal(s)
		So(err, ShouldBeNil)

		Convey("Then the document carries typed values", func() {
			var doc map[string]any
			So(json.Unmarshal(raw, &doc), ShouldBeNil)
			So(doc["theme"], ShouldEqual, "winter")
			So(doc["voting_open"], ShouldEqual, true)
			So(doc["venue"], ShouldEqual, "gym")
		})

		Convey("And unmarshalling reproduces the settings", func() {
			var back settings.Settings
			So(json.Unmarshal(raw, &back), ShouldBeNil)
			So(back.Theme, ShouldEqual, "winter")
			So(back.VotingOpen, ShouldBeTrue)
			So(back.Criteria, ShouldResemble, s.Criteria)
			So(back.Extra["venue"], ShouldEqual, "gym")
		})
	})
}
