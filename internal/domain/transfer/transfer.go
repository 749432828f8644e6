// Package transfer serializes the full dataset to a portable payload and
// restores it, reconciling references by participant name when identifiers
// are absent.
package transfer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/bakeboard/internal/domain/model"
	"github.com/okian/bakeboard/internal/domain/settings"
	"github.com/okian/bakeboard/pkg/metrics"
)

// Import modes.
const (
	ModeReplace = "replace"
	ModeMerge   = "merge"
)

// Skip reasons recorded in the import report.
const (
	ReasonInvalidEntry          = "invalid_entry"
	ReasonUnresolvedParticipant = "unresolved_participant"
	ReasonStoreRejected         = "store_rejected"
)

var validate = validator.New() //nolint:gochecknoglobals // shared stateless validator

// Tx is the slice of store operations the reconciler needs. The SQLite
// repository's transaction satisfies it.
type Tx interface {
	ClearAll() error
	Settings() (settings.Settings, error)
	PutSettings(s settings.Settings) error
	ListParticipants() ([]model.Participant, error)
	UpsertParticipant(name string, active bool) (model.Participant, bool, error)
	UpsertDessert(participantID int64, name, description, category string) error
	InsertScore(participantID int64, judgeName string, criteria map[string]float64, comment string) (int64, error)
	ListDesserts() ([]model.Dessert, error)
	ListScores() ([]model.Score, error)
	RecentEvents(limit int) ([]model.Event, error)
	AppendEvent(eventType string, payload map[string]any)
}

// ParticipantEntry is one participant in the portable payload. A missing
// active flag means active.
type ParticipantEntry struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required"`
	Active    *bool     `json:"active,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// DessertEntry resolves its owner by id when present, else by name.
type DessertEntry struct {
	ID              int64     `json:"id,omitempty"`
	ParticipantID   int64     `json:"participant_id,omitempty"`
	ParticipantName string    `json:"participant_name,omitempty"`
	Name            string    `json:"dessert_name" validate:"required"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
}

// ScoreEntry resolves its owner by id when present, else by name.
type ScoreEntry struct {
	ID              int64              `json:"id,omitempty"`
	ParticipantID   int64              `json:"participant_id,omitempty"`
	ParticipantName string             `json:"participant_name,omitempty"`
	JudgeName       string             `json:"judge_name" validate:"required"`
	Criteria        map[string]float64 `json:"criteria"`
	Comment         string             `json:"comment"`
	CreatedAt       time.Time          `json:"created_at,omitzero"`
}

// Payload is the portable document produced by Export and accepted by
// Import. Settings stay raw so a merge can apply only the keys present.
type Payload struct {
	ExportedAt   time.Time          `json:"exported_at"`
	Participants []ParticipantEntry `json:"participants"`
	Desserts     []DessertEntry     `json:"desserts"`
	Scores       []ScoreEntry       `json:"scores"`
	Settings     json.RawMessage    `json:"settings,omitempty"`
	Events       []model.Event      `json:"events"`
}

// SkippedEntry records one entry the import dropped, and why.
type SkippedEntry struct {
	Section string `json:"section"`
	Ref     string `json:"ref"`
	Reason  string `json:"reason"`
}

// Report is the per-entry outcome of an import.
type Report struct {
	Mode            string         `json:"mode"`
	Participants    int            `json:"participants_imported"`
	Desserts        int            `json:"desserts_imported"`
	Scores          int            `json:"scores_imported"`
	SettingsApplied bool           `json:"settings_applied"`
	Skipped         []SkippedEntry `json:"skipped,omitempty"`
}

// NormalizeMode maps unrecognized modes to replace.
func NormalizeMode(mode string) string {
	if strings.ToLower(strings.TrimSpace(mode)) == ModeMerge {
		return ModeMerge
	}
	return ModeReplace
}

// Export produces the full portable dump, including up to eventLimit
// recent audit events.
func Export(tx Tx, eventLimit int) (Payload, error) {
	participants, err := tx.ListParticipants()
	if err != nil {
		return Payload{}, fmt.Errorf("export participants: %w", err)
	}
	desserts, err := tx.ListDesserts()
	if err != nil {
		return Payload{}, fmt.Errorf("export desserts: %w", err)
	}
	scores, err := tx.ListScores()
	if err != nil {
		return Payload{}, fmt.Errorf("export scores: %w", err)
	}
	cfg, err := tx.Settings()
	if err != nil {
		return Payload{}, fmt.Errorf("export settings: %w", err)
	}
	rawSettings, err := json.Marshal(cfg)
	if err != nil {
		return Payload{}, fmt.Errorf("export settings: %w", err)
	}
	events, err := tx.RecentEvents(eventLimit)
	if err != nil {
		return Payload{}, fmt.Errorf("export events: %w", err)
	}

	p := Payload{
		ExportedAt: time.Now().UTC(),
		Settings:   rawSettings,
		Events:     events,
	}
	for _, part := range participants {
		active := part.Active
		p.Participants = append(p.Participants, ParticipantEntry{
			ID: part.ID, Name: part.Name, Active: &active, CreatedAt: part.CreatedAt,
		})
	}
	for _, d := range desserts {
		p.Desserts = append(p.Desserts, DessertEntry{
			ID: d.ID, ParticipantID: d.ParticipantID, ParticipantName: d.ParticipantName,
			Name: d.Name, Description: d.Description, Category: d.Category, CreatedAt: d.CreatedAt,
		})
	}
	for _, s := range scores {
		p.Scores = append(p.Scores, ScoreEntry{
			ID: s.ID, ParticipantID: s.ParticipantID, ParticipantName: s.ParticipantName,
			JudgeName: s.JudgeName, Criteria: s.Criteria, Comment: s.Comment, CreatedAt: s.CreatedAt,
		})
	}
	return p, nil
}

// Import applies a payload in replace or merge mode. Entries that fail
// validation or cannot resolve a participant are skipped with a reason and
// the rest proceed; only store-level failures abort the transaction.
func Import(tx Tx, payload Payload, mode string) (Report, error) {
	mode = NormalizeMode(mode)
	report := Report{Mode: mode}

	if mode == ModeReplace {
		if err := tx.ClearAll(); err != nil {
			return report, fmt.Errorf("import clear: %w", err)
		}
	}

	if err := importSettings(tx, payload.Settings, &report); err != nil {
		return report, err
	}
	if err := importParticipants(tx, payload.Participants, &report); err != nil {
		return report, err
	}

	idx, err := participantIndex(tx)
	if err != nil {
		return report, err
	}
	if err := importDesserts(tx, payload.Desserts, idx, &report); err != nil {
		return report, err
	}
	if err := importScores(tx, payload.Scores, idx, &report); err != nil {
		return report, err
	}

	tx.AppendEvent(model.EventImportCompleted, map[string]any{
		"mode":         mode,
		"participants": report.Participants,
		"desserts":     report.Desserts,
		"scores":       report.Scores,
		"skipped":      len(report.Skipped),
	})
	return report, nil
}

// importSettings lays the payload's settings keys over the current
// registry. Only keys present in the document change.
func importSettings(tx Tx, raw json.RawMessage, report *Report) error {
	if len(raw) == 0 {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		report.skip("settings", "settings", ReasonInvalidEntry)
		return nil
	}
	cfg, err := tx.Settings()
	if err != nil {
		return fmt.Errorf("import settings: %w", err)
	}
	for k, v := range doc {
		cfg.Set(k, v)
	}
	if err := tx.PutSettings(cfg); err != nil {
		return fmt.Errorf("import settings: %w", err)
	}
	report.SettingsApplied = true
	return nil
}

func importParticipants(tx Tx, entries []ParticipantEntry, report *Report) error {
	for i, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if err := validate.Struct(e); err != nil {
			report.skip("participants", entryRef(e.Name, i), ReasonInvalidEntry)
			continue
		}
		active := true
		if e.Active != nil {
			active = *e.Active
		}
		if _, _, err := tx.UpsertParticipant(e.Name, active); err != nil {
			report.skip("participants", e.Name, ReasonStoreRejected)
			continue
		}
		report.Participants++
		metrics.RecordImportEntry("participants", "imported")
	}
	return nil
}

func importDesserts(tx Tx, entries []DessertEntry, idx map[string]int64, report *Report) error {
	ids := idSet(idx)
	for i, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if err := validate.Struct(e); err != nil {
			report.skip("desserts", entryRef(e.Name, i), ReasonInvalidEntry)
			continue
		}
		pid, ok := resolveParticipant(e.ParticipantID, e.ParticipantName, idx, ids)
		if !ok {
			report.skip("desserts", e.Name, ReasonUnresolvedParticipant)
			continue
		}
		if err := tx.UpsertDessert(pid, e.Name, strings.TrimSpace(e.Description), strings.TrimSpace(e.Category)); err != nil {
			report.skip("desserts", e.Name, ReasonStoreRejected)
			continue
		}
		report.Desserts++
		metrics.RecordImportEntry("desserts", "imported")
	}
	return nil
}

func importScores(tx Tx, entries []ScoreEntry, idx map[string]int64, report *Report) error {
	ids := idSet(idx)
	for i, e := range entries {
		e.JudgeName = strings.TrimSpace(e.JudgeName)
		if err := validate.Struct(e); err != nil {
			report.skip("scores", entryRef(e.JudgeName, i), ReasonInvalidEntry)
			continue
		}
		pid, ok := resolveParticipant(e.ParticipantID, e.ParticipantName, idx, ids)
		if !ok {
			report.skip("scores", e.JudgeName, ReasonUnresolvedParticipant)
			continue
		}
		if _, err := tx.InsertScore(pid, e.JudgeName, e.Criteria, strings.TrimSpace(e.Comment)); err != nil {
			report.skip("scores", e.JudgeName, ReasonStoreRejected)
			continue
		}
		report.Scores++
		metrics.RecordImportEntry("scores", "imported")
	}
	return nil
}

// resolveParticipant prefers an explicit id that exists, then falls back
// to the (just-imported) participant name.
func resolveParticipant(id int64, name string, idx map[string]int64, ids map[int64]struct{}) (int64, bool) {
	if id > 0 {
		if _, ok := ids[id]; ok {
			return id, true
		}
	}
	pid, ok := idx[strings.TrimSpace(name)]
	return pid, ok
}

func participantIndex(tx Tx) (map[string]int64, error) {
	participants, err := tx.ListParticipants()
	if err != nil {
		return nil, fmt.Errorf("index participants: %w", err)
	}
	idx := make(map[string]int64, len(participants))
	for _, p := range participants {
		idx[p.Name] = p.ID
	}
	return idx, nil
}

func idSet(idx map[string]int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(idx))
	for _, id := range idx {
		out[id] = struct{}{}
	}
	return out
}

func entryRef(name string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("#%d", index)
}

func (r *Report) skip(section, ref, reason string) {
	r.Skipped = append(r.Skipped, SkippedEntry{Section: section, Ref: ref, Reason: reason})
	metrics.RecordImportEntry(section, "skipped")
}
