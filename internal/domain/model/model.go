// Package model defines the entities persisted and served by the scoring service.
package model

import (
	"time"

	"github.com/okian/bakeboard/internal/domain/settings"
)

// Audit event types appended to the event log.
const (
	EventParticipantAdded   = "participant_added"
	EventParticipantUpdated = "participant_updated"
	EventParticipantDeleted = "participant_deleted"
	EventDessertUpserted    = "dessert_upserted"
	EventScoreAdded         = "score_added"
	EventScoreDeleted       = "score_deleted"
	EventSettingsUpdated    = "settings_updated"
	EventImportCompleted    = "import_completed"
)

// Participant is a contestant in the competition.
type Participant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Dessert is a participant's single entry. At most one per participant.
type Dessert struct {
	ID              int64     `json:"id"`
	ParticipantID   int64     `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Name            string    `json:"dessert_name"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"created_at"`
}

// Score is one judge's submission for one participant. The criteria map
// shape is defined by the active criteria configuration, not the schema.
type Score struct {
	ID              int64              `json:"id"`
	ParticipantID   int64              `json:"participant_id"`
	ParticipantName string             `json:"participant_name"`
	JudgeName       string             `json:"judge_name"`
	Criteria        map[string]float64 `json:"criteria"`
	Comment         string             `json:"comment"`
	CreatedAt       time.Time          `json:"created_at"`
}

// Event is one append-only audit log entry. Never referenced by other
// entities and never replayed.
type Event struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// Row is one derived leaderboard standing. Recomputed on every read,
// never persisted.
type Row struct {
	ParticipantID int64              `json:"participant_id"`
	Name          string             `json:"name"`
	Active        bool               `json:"active"`
	NumScores     int                `json:"num_scores"`
	Totals        map[string]float64 `json:"totals"`
	WeightedTotal float64            `json:"weighted_total"`
}

// Snapshot is the complete, internally consistent state bundle delivered
// to observers on connect and after every mutation.
type Snapshot struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	Settings     settings.Settings `json:"settings"`
	Participants []Participant     `json:"participants"`
	Desserts     []Dessert         `json:"desserts"`
	Leaderboard  []Row             `json:"leaderboard"`
	Scores       []Score           `json:"scores"`
	Events       []Event           `json:"events"`
}
