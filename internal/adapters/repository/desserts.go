package repository

import (
	"fmt"

	"github.com/okian/bakeboard/internal/domain/model"
)

// ListDesserts returns every dessert joined with its owner's name, in the
// same order the participant list uses.
func (t *Tx) ListDesserts() ([]model.Dessert, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT d.id, d.participant_id, p.name, d.dessert_name, d.description, d.category, d.created_at
		FROM desserts d
		JOIN participants p ON p.id = d.participant_id
		ORDER BY p.active DESC, p.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list desserts: %w", err)
	}
	defer rows.Close()

	var out []model.Dessert
	for rows.Next() {
		var d model.Dessert
		var created string
		if err := rows.Scan(&d.ID, &d.ParticipantID, &d.ParticipantName,
			&d.Name, &d.Description, &d.Category, &created); err != nil {
			return nil, fmt.Errorf("scan dessert: %w", err)
		}
		d.CreatedAt = parseTime(created)
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpsertDessert inserts or replaces a participant's single dessert entry.
// The UNIQUE(participant_id) constraint enforces one dessert per
// participant; a conflict updates in place.
func (t *Tx) UpsertDessert(participantID int64, name, description, category string) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO desserts (participant_id, dessert_name, description, category, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(participant_id) DO UPDATE SET
			dessert_name = excluded.dessert_name,
			description = excluded.description,
			category = excluded.category`,
		participantID, name, description, category, formatTime(nowUTC()))
	if err != nil {
		return fmt.Errorf("upsert dessert: %w", err)
	}
	return nil
}
