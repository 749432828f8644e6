package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/bakeboard/internal/domain/model"
)

// ListScores returns every score newest first, each annotated with its
// participant's name.
func (t *Tx) ListScores() ([]model.Score, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT s.id, s.participant_id, p.name, s.judge_name, s.criteria_json, s.comment, s.created_at
		FROM scores s
		JOIN participants p ON p.id = s.participant_id
		ORDER BY s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []model.Score
	for rows.Next() {
		var s model.Score
		var criteriaJSON, created string
		if err := rows.Scan(&s.ID, &s.ParticipantID, &s.ParticipantName,
			&s.JudgeName, &criteriaJSON, &s.Comment, &created); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		if err := json.Unmarshal([]byte(criteriaJSON), &s.Criteria); err != nil {
			// A corrupt criteria blob yields an empty mapping; the row still
			// counts toward the judge's submissions.
			s.Criteria = map[string]float64{}
		}
		s.CreatedAt = parseTime(created)
		out = append(out, s)
	}
	return out, rows.Err()
}

// JudgeHasScored reports whether judge already has a committed score for
// the participant. Judge names match exactly after trimming by the caller.
func (t *Tx) JudgeHasScored(judgeName string, participantID int64) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT 1 FROM scores WHERE judge_name = ? AND participant_id = ? LIMIT 1",
		judgeName, participantID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("judge has scored: %w", err)
	}
	return true, nil
}

// InsertScore persists one score row and returns its id.
func (t *Tx) InsertScore(participantID int64, judgeName string, criteria map[string]float64, comment string) (int64, error) {
	if criteria == nil {
		criteria = map[string]float64{}
	}
	raw, err := json.Marshal(criteria)
	if err != nil {
		return 0, fmt.Errorf("marshal criteria: %w", err)
	}
	res, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO scores (participant_id, judge_name, criteria_json, comment, created_at) VALUES (?, ?, ?, ?, ?)",
		participantID, judgeName, string(raw), comment, formatTime(nowUTC()))
	if err != nil {
		return 0, fmt.Errorf("insert score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("score id: %w", err)
	}
	return id, nil
}

// DeleteScore removes one score, returning the deleted row for event
// payloads.
func (t *Tx) DeleteScore(id int64) (model.Score, error) {
	var s model.Score
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT id, participant_id, judge_name FROM scores WHERE id = ?", id).
		Scan(&s.ID, &s.ParticipantID, &s.JudgeName)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Score{}, ErrNotFound
	}
	if err != nil {
		return model.Score{}, fmt.Errorf("get score: %w", err)
	}
	if _, err := t.tx.ExecContext(t.ctx, "DELETE FROM scores WHERE id = ?", id); err != nil {
		return model.Score{}, fmt.Errorf("delete score: %w", err)
	}
	return s, nil
}
