// Package service provides the core scoring service that implements the
// dependencies required by the HTTP API and the broadcast hub.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/bakeboard/internal/adapters/broadcast"
	"github.com/okian/bakeboard/internal/adapters/repository"
	"github.com/okian/bakeboard/internal/domain/leaderboard"
	"github.com/okian/bakeboard/internal/domain/model"
	"github.com/okian/bakeboard/pkg/logger"
	"github.com/okian/bakeboard/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultSnapshotEventLimit = 60
	defaultExportEventLimit   = 500
	defaultObserverBuffer     = 16
)

// Service orchestrates the store, the aggregation core, and the broadcast
// hub behind the inbound command surface.
type Service struct {
	mu sync.Mutex

	store    *repository.Store
	notifier *broadcast.Notifier
	hub      *broadcast.Hub

	snapshotEventLimit int
	exportEventLimit   int
	observerBuffer     int

	started bool
	log     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSnapshotEventLimit caps the recent-events section of snapshots.
func WithSnapshotEventLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.snapshotEventLimit = n
		}
	}
}

// WithExportEventLimit caps the events section of export payloads.
func WithExportEventLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.exportEventLimit = n
		}
	}
}

// WithObserverBuffer bounds each observer's pending-snapshot queue.
func WithObserverBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.observerBuffer = n
		}
	}
}

// New constructs a Service over an open store.
func New(store *repository.Store, opts ...Option) *Service {
	s := &Service{
		store:              store,
		snapshotEventLimit: defaultSnapshotEventLimit,
		exportEventLimit:   defaultExportEventLimit,
		observerBuffer:     defaultObserverBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("service")
	}
	return s
}

// Start wires the notifier and hub. Idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.notifier = broadcast.NewNotifier()
	s.hub = broadcast.NewHub(s, s.notifier,
		broadcast.WithObserverBuffer(s.observerBuffer),
		broadcast.WithLogger(s.log.Named("broadcast")),
	)
	s.started = true
	s.log.Info(ctx, "scoring service started",
		logger.Int("snapshotEventLimit", s.snapshotEventLimit),
		logger.Int("exportEventLimit", s.exportEventLimit),
	)
	return nil
}

// Run consumes mutation signals and fans snapshots out until ctx is
// canceled. Call after Start.
func (s *Service) Run(ctx context.Context) error {
	return s.hub.Run(ctx)
}

// Subscribe registers an observer for snapshot pushes. The current
// snapshot is delivered immediately.
func (s *Service) Subscribe(ctx context.Context, conn broadcast.Conn) (string, error) {
	return s.hub.Subscribe(ctx, conn)
}

// Unsubscribe drops an observer.
func (s *Service) Unsubscribe(id string) {
	s.hub.Unsubscribe(id)
}

// notifyMutation signals the hub that state changed.
func (s *Service) notifyMutation(action string) {
	metrics.RecordMutation(action)
	if s.notifier != nil {
		s.notifier.Notify()
	}
}

// Snapshot assembles the full state bundle inside one read transaction,
// so no concurrent mutation can be partially reflected.
func (s *Service) Snapshot(ctx context.Context) (model.Snapshot, error) {
	start := time.Now()
	defer func() { metrics.ObserveSnapshotBuild(time.Since(start)) }()

	var snap model.Snapshot
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		cfg, err := tx.Settings()
		if err != nil {
			return err
		}
		participants, err := tx.ListParticipants()
		if err != nil {
			return err
		}
		desserts, err := tx.ListDesserts()
		if err != nil {
			return err
		}
		scores, err := tx.ListScores()
		if err != nil {
			return err
		}
		events, err := tx.RecentEvents(s.snapshotEventLimit)
		if err != nil {
			return err
		}
		snap = model.Snapshot{
			GeneratedAt:  time.Now().UTC(),
			Settings:     cfg,
			Participants: participants,
			Desserts:     desserts,
			Leaderboard:  leaderboard.Compute(cfg.Criteria, participants, scores),
			Scores:       scores,
			Events:       events,
		}
		return nil
	})
	if err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}
