package repository

import (
	"fmt"

	"github.com/okian/bakeboard/internal/domain/settings"
)

// Settings loads the typed settings with defaults applied.
func (t *Tx) Settings() (settings.Settings, error) {
	rows, err := t.tx.QueryContext(t.ctx, "SELECT k, v FROM settings")
	if err != nil {
		return settings.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return settings.Settings{}, fmt.Errorf("scan setting: %w", err)
		}
		raw[k] = v
	}
	if err := rows.Err(); err != nil {
		return settings.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings.Decode(raw), nil
}

// PutSettingRow upserts one raw registry row.
func (t *Tx) PutSettingRow(key, value string) error {
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO settings (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v",
		key, value)
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

// PutSettings writes the full typed settings back to the registry.
func (t *Tx) PutSettings(s settings.Settings) error {
	for k, v := range s.Encode() {
		if err := t.PutSettingRow(k, v); err != nil {
			return err
		}
	}
	return nil
}
