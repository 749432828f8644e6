// Package repository provides SQLite-backed persistence for the scoring
// service. All reads and writes run inside transactions obtained from
// Update (serialized writer) or View (consistent reader).
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/bakeboard/internal/domain/settings"
	"github.com/okian/bakeboard/pkg/logger"
	"github.com/okian/bakeboard/pkg/metrics"
)

const busyTimeoutMS = 5000

// Store owns the SQLite handle. A single connection plus a writer mutex
// gives the single-writer discipline the workload calls for.
type Store struct {
	db *sql.DB
	mu sync.Mutex

	path string
	seed bool
	log  logger.Logger
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithoutSeed skips seeding default settings into a fresh database.
func WithoutSeed() Option {
	return func(s *Store) {
		s.seed = false
	}
}

// Open opens (creating if necessary) and migrates the store at path.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: path is required", ErrOpen)
	}

	s := &Store{path: filepath.Clean(path), seed: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("store")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create data dir: %w", ErrOpen, err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=%d&_synchronous=NORMAL",
		s.path, busyTimeoutMS)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	// One connection keeps writers serialized and lets readers observe a
	// stable view without cross-connection WAL races.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrOpen, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: enable foreign keys: %w", ErrOpen, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %w", ErrOpen, err)
	}

	s.db = db
	if s.seed {
		if err := s.seedSettings(context.Background()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: seed settings: %w", ErrOpen, err)
		}
	}
	return s, nil
}

// seedSettings writes the default registry into an empty settings table.
func (s *Store) seedSettings(ctx context.Context) error {
	return s.Update(ctx, func(tx *Tx) error {
		var count int
		if err := tx.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM settings").Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.PutSettings(settings.Default())
	})
}

// Update runs fn inside a writer transaction. The transaction commits when
// fn returns nil and rolls back otherwise, so a validation or policy
// rejection leaves the store unchanged.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() { metrics.ObserveStoreTx("update", time.Since(start)) }()

	return s.run(ctx, fn, false)
}

// View runs fn inside a read-only transaction, giving snapshot assembly a
// transactionally consistent view.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	start := time.Now()
	defer func() { metrics.ObserveStoreTx("view", time.Since(start)) }()

	return s.run(ctx, fn, true)
}

func (s *Store) run(ctx context.Context, fn func(tx *Tx) error, readOnly bool) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	t := &Tx{ctx: ctx, tx: tx, log: s.log}
	if err := fn(t); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Tx exposes typed operations over one open transaction.
type Tx struct {
	ctx context.Context
	tx  *sql.Tx
	log logger.Logger
}

// ClearAll wipes every table. Used by replace-mode import.
func (t *Tx) ClearAll() error {
	for _, table := range []string{"scores", "desserts", "participants", "settings", "events"} {
		if _, err := t.tx.ExecContext(t.ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
