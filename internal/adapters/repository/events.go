package repository

import (
	"encoding/json"
	"fmt"

	"github.com/okian/bakeboard/internal/domain/model"
	"github.com/okian/bakeboard/pkg/logger"
	"github.com/okian/bakeboard/pkg/metrics"
)

// AppendEvent records one audit entry. Failures are logged and swallowed:
// the log exists for observability only and must never fail the enclosing
// mutation.
func (t *Tx) AppendEvent(eventType string, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordEventAppendFailure()
		t.log.Warn(t.ctx, "dropping audit event with unencodable payload",
			logger.String("type", eventType), logger.Error(err))
		return
	}
	_, err = t.tx.ExecContext(t.ctx,
		"INSERT INTO events (event_type, payload_json, created_at) VALUES (?, ?, ?)",
		eventType, string(raw), formatTime(nowUTC()))
	if err != nil {
		metrics.RecordEventAppendFailure()
		t.log.Warn(t.ctx, "audit event append failed",
			logger.String("type", eventType), logger.Error(err))
		return
	}
	metrics.RecordEventAppended()
}

// RecentEvents returns the most recent limit events, newest first. Rows
// with corrupt payloads are skipped rather than failing the read.
func (t *Tx) RecentEvents(limit int) ([]model.Event, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		"SELECT id, event_type, payload_json, created_at FROM events ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		var payloadJSON, created string
		if err := rows.Scan(&e.ID, &e.Type, &payloadJSON, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(payloadJSON), &e.Payload); err != nil {
			t.log.Debug(t.ctx, "skipping event with corrupt payload", logger.Int64("id", e.ID))
			continue
		}
		e.CreatedAt = parseTime(created)
		out = append(out, e)
	}
	return out, rows.Err()
}
