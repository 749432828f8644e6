// Package settings models the typed competition configuration layered over
// the store's flat key/value registry.
package settings

import (
	"encoding/json"
	"sort"
	"strings"
)

// Recognized registry keys. Anything else is passed through opaquely.
const (
	KeyCompetitionName = "competition_name"
	KeyTheme           = "theme"
	KeyCriteria        = "criteria"
	KeyVotingOpen      = "voting_open"
	KeyAllowMultiple   = "allow_multiple_scores_per_judge"
)

// Criterion is one named, weighted judging dimension. A nil Weight means
// the criterion was configured without one; an explicit zero is honored
// and removes the criterion from weighted totals.
type Criterion struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Max    int      `json:"max"`
	Weight *float64 `json:"weight,omitempty"`
}

// EffectiveWeight resolves the configured weight, defaulting to 1.0 only
// when no weight was set at all.
func (c Criterion) EffectiveWeight() float64 {
	if c.Weight == nil {
		return 1.0
	}
	return *c.Weight
}

func floatPtr(v float64) *float64 { return &v }

// Settings is the typed view of the registry with defaults applied.
// Extra holds unrecognized keys round-tripped verbatim.
type Settings struct {
	CompetitionName             string
	Theme                       string
	Criteria                    []Criterion
	VotingOpen                  bool
	AllowMultipleScoresPerJudge bool
	Extra                       map[string]string
}

// Default returns the settings seeded into a fresh store.
func Default() Settings {
	return Settings{
		CompetitionName:             "2025 Holiday Bakeoff",
		Theme:                       "christmas",
		Criteria:                    DefaultCriteria(),
		VotingOpen:                  true,
		AllowMultipleScoresPerJudge: false,
	}
}

// DefaultCriteria returns the fixed four-criterion template used when the
// stored criteria value is absent or corrupt.
func DefaultCriteria() []Criterion {
	return []Criterion{
		{Key: "taste", Label: "Taste", Max: 10, Weight: floatPtr(1.0)},
		{Key: "presentation", Label: "Presentation", Max: 10, Weight: floatPtr(1.0)},
		{Key: "creativity", Label: "Creativity", Max: 10, Weight: floatPtr(1.0)},
		{Key: "holiday_spirit", Label: "Holiday Spirit", Max: 10, Weight: floatPtr(1.0)},
	}
}

// ParseBool coerces a stored registry value to a boolean.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Decode builds typed settings from raw registry rows, applying defaults
// for missing keys. A corrupt criteria value falls back to the default
// template rather than failing.
func Decode(rows map[string]string) Settings {
	s := Default()
	for k, v := range rows {
		switch k {
		case KeyCompetitionName:
			s.CompetitionName = v
		case KeyTheme:
			s.Theme = v
		case KeyVotingOpen:
			s.VotingOpen = ParseBool(v)
		case KeyAllowMultiple:
			s.AllowMultipleScoresPerJudge = ParseBool(v)
		case KeyCriteria:
			var crit []Criterion
			if err := json.Unmarshal([]byte(v), &crit); err == nil && len(crit) > 0 {
				s.Criteria = crit
			}
		default:
			if s.Extra == nil {
				s.Extra = make(map[string]string)
			}
			s.Extra[k] = v
		}
	}
	return s
}

// Encode renders the typed settings back to registry row form.
func (s Settings) Encode() map[string]string {
	rows := map[string]string{
		KeyCompetitionName: s.CompetitionName,
		KeyTheme:           s.Theme,
		KeyVotingOpen:      formatBool(s.VotingOpen),
		KeyAllowMultiple:   formatBool(s.AllowMultipleScoresPerJudge),
	}
	crit := s.Criteria
	if len(crit) == 0 {
		crit = DefaultCriteria()
	}
	raw, err := json.Marshal(crit)
	if err != nil {
		raw, _ = json.Marshal(DefaultCriteria())
	}
	rows[KeyCriteria] = string(raw)
	for k, v := range s.Extra {
		rows[k] = v
	}
	return rows
}

// Set applies one key/value update. Values for recognized keys are coerced
// to their typed form; unrecognized keys round-trip through Extra. A corrupt
// criteria value resets to the default template instead of erroring.
func (s *Settings) Set(key string, value any) {
	switch key {
	case KeyCompetitionName:
		s.CompetitionName = coerceString(value)
	case KeyTheme:
		s.Theme = coerceString(value)
	case KeyVotingOpen:
		s.VotingOpen = coerceBool(value)
	case KeyAllowMultiple:
		s.AllowMultipleScoresPerJudge = coerceBool(value)
	case KeyCriteria:
		s.Criteria = coerceCriteria(value)
	default:
		if s.Extra == nil {
			s.Extra = make(map[string]string)
		}
		s.Extra[key] = coerceString(value)
	}
}

// Weights maps criterion key to effective weight.
func (s Settings) Weights() map[string]float64 {
	out := make(map[string]float64, len(s.Criteria))
	for _, c := range s.Criteria {
		out[c.Key] = c.EffectiveWeight()
	}
	return out
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return ParseBool(t)
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return false
}

func coerceCriteria(v any) []Criterion {
	raw, err := json.Marshal(v)
	if err != nil {
		return DefaultCriteria()
	}
	var crit []Criterion
	if err := json.Unmarshal(raw, &crit); err != nil || len(crit) == 0 {
		return DefaultCriteria()
	}
	return crit
}

// MarshalJSON renders the flat map shape used by snapshots and exports:
// recognized keys typed, extras verbatim.
func (s Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 5+len(s.Extra))
	out[KeyCompetitionName] = s.CompetitionName
	out[KeyTheme] = s.Theme
	crit := s.Criteria
	if len(crit) == 0 {
		crit = DefaultCriteria()
	}
	out[KeyCriteria] = crit
	out[KeyVotingOpen] = s.VotingOpen
	out[KeyAllowMultiple] = s.AllowMultipleScoresPerJudge
	for k, v := range s.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the flat map shape, coercing recognized keys and
// keeping the rest opaque. Missing keys keep their defaults.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Default()
	// Apply in sorted key order so repeated decodes behave identically.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var v any
		if err := json.Unmarshal(raw[k], &v); err != nil {
			continue
		}
		s.Set(k, v)
	}
	return nil
}
