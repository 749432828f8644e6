package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/okian/bakeboard/internal/domain/model"
)

// ListParticipants returns every participant, active first then name
// ascending. This ordering seeds leaderboard insertion order.
func (t *Tx) ListParticipants() ([]model.Participant, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		"SELECT id, name, active, created_at FROM participants ORDER BY active DESC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetParticipant loads one participant by id.
func (t *Tx) GetParticipant(id int64) (model.Participant, error) {
	row := t.tx.QueryRowContext(t.ctx,
		"SELECT id, name, active, created_at FROM participants WHERE id = ?", id)
	return scanParticipantRow(row)
}

// GetParticipantByName loads one participant by its unique name.
func (t *Tx) GetParticipantByName(name string) (model.Participant, error) {
	row := t.tx.QueryRowContext(t.ctx,
		"SELECT id, name, active, created_at FROM participants WHERE name = ?", name)
	return scanParticipantRow(row)
}

// UpsertParticipant inserts a participant by name, or updates the active
// flag when the name already exists. Returns the stored row and whether it
// was newly created.
func (t *Tx) UpsertParticipant(name string, active bool) (model.Participant, bool, error) {
	existing, err := t.GetParticipantByName(name)
	switch {
	case err == nil:
		if _, err := t.tx.ExecContext(t.ctx,
			"UPDATE participants SET active = ? WHERE id = ?", boolToInt(active), existing.ID); err != nil {
			return model.Participant{}, false, fmt.Errorf("update participant: %w", err)
		}
		existing.Active = active
		return existing, false, nil
	case errors.Is(err, ErrNotFound):
		now := nowUTC()
		res, err := t.tx.ExecContext(t.ctx,
			"INSERT INTO participants (name, active, created_at) VALUES (?, ?, ?)",
			name, boolToInt(active), formatTime(now))
		if err != nil {
			return model.Participant{}, false, fmt.Errorf("insert participant: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return model.Participant{}, false, fmt.Errorf("participant id: %w", err)
		}
		return model.Participant{ID: id, Name: name, Active: active, CreatedAt: now}, true, nil
	default:
		return model.Participant{}, false, err
	}
}

// SetParticipantActive flips the active flag. Returns the participant as
// stored after the update.
func (t *Tx) SetParticipantActive(id int64, active bool) (model.Participant, error) {
	p, err := t.GetParticipant(id)
	if err != nil {
		return model.Participant{}, err
	}
	if _, err := t.tx.ExecContext(t.ctx,
		"UPDATE participants SET active = ? WHERE id = ?", boolToInt(active), id); err != nil {
		return model.Participant{}, fmt.Errorf("set participant active: %w", err)
	}
	p.Active = active
	return p, nil
}

// DeleteParticipant removes a participant; the dessert and scores cascade.
// Returns the deleted row for event payloads.
func (t *Tx) DeleteParticipant(id int64) (model.Participant, error) {
	p, err := t.GetParticipant(id)
	if err != nil {
		return model.Participant{}, err
	}
	if _, err := t.tx.ExecContext(t.ctx, "DELETE FROM participants WHERE id = ?", id); err != nil {
		return model.Participant{}, fmt.Errorf("delete participant: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(r rowScanner) (model.Participant, error) {
	var p model.Participant
	var active int
	var created string
	if err := r.Scan(&p.ID, &p.Name, &active, &created); err != nil {
		return model.Participant{}, fmt.Errorf("scan participant: %w", err)
	}
	p.Active = active != 0
	p.CreatedAt = parseTime(created)
	return p, nil
}

func scanParticipantRow(row *sql.Row) (model.Participant, error) {
	p, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Participant{}, ErrNotFound
		}
		return model.Participant{}, err
	}
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
