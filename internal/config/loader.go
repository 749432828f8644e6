package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BAKEBOARD_CONFIG is set
//  3. env (prefix BAKEBOARD_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("BAKEBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like BAKEBOARD_DB_PATH map to db_path; underscores are
	// preserved to match the koanf tags on the struct.
	envProvider := env.Provider("BAKEBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "bakeboard_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(cfg.DBPath) == "":
		return nil, fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case cfg.SnapshotEventLimit < 1:
		return nil, fmt.Errorf("%w: snapshot_event_limit must be positive", ErrInvalidConfig)
	case cfg.ExportEventLimit < 1:
		return nil, fmt.Errorf("%w: export_event_limit must be positive", ErrInvalidConfig)
	case cfg.BroadcastBuffer < 1:
		return nil, fmt.Errorf("%w: broadcast_buffer must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
