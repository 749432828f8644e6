// Package simjudge drives a running scoring service with simulated judges:
// it seeds participants and desserts over the HTTP API, fires concurrent
// score submissions with varied judge temperaments, and reports the
// resulting leaderboard.
package simjudge

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/bakeboard/internal/domain/model"
	"github.com/okian/bakeboard/pkg/logger"
)

// Run executes one full simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Participants < 1 || cfg.Judges < 1 || cfg.Workers < 1 {
		return fmt.Errorf("participants, judges, and workers must all be positive")
	}

	log := logger.Named("simjudge")
	c := newClient(cfg)
	stats := &Stats{StartTime: time.Now()}

	ids, err := seedParticipants(ctx, cfg, c, stats)
	if err != nil {
		return err
	}

	var snap model.Snapshot
	if err := c.getJSON(ctx, "/api/state", &snap); err != nil {
		return fmt.Errorf("fetch state: %w", err)
	}
	keys := make([]string, 0, len(snap.Settings.Criteria))
	for _, crit := range snap.Settings.Criteria {
		keys = append(keys, crit.Key)
	}
	if len(keys) == 0 {
		return fmt.Errorf("service reports no scoring criteria")
	}

	subs := generateSubmissions(cfg, ids, keys)
	stats.Generated = len(subs)
	submitAll(ctx, cfg, c, subs, stats)

	if err := c.getJSON(ctx, "/api/state", &snap); err != nil {
		return fmt.Errorf("fetch final state: %w", err)
	}
	reportResults(ctx, log, stats, snap)
	return nil
}

// seedParticipants registers cfg.Participants entrants, each with a dessert.
func seedParticipants(ctx context.Context, cfg *Config, c *client, stats *Stats) ([]int64, error) {
	log := logger.Named("simjudge")
	log.Info(ctx, "seeding participants", logger.Int("count", cfg.Participants))

	ids := make([]int64, 0, cfg.Participants)
	for i := 0; i < cfg.Participants; i++ {
		name := participantName(i)
		var created model.Participant
		status, err := c.postJSON(ctx, "/api/participants", map[string]any{"name": name}, &created)
		if err != nil {
			return nil, fmt.Errorf("seed participant %q: %w", name, err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("seed participant %q: status %d", name, status)
		}

		dessert, category := dessertFor(i)
		path := fmt.Sprintf("/api/participants/%d/dessert", created.ID)
		if status, err := c.putJSON(ctx, path, map[string]any{
			"dessert_name": dessert,
			"category":     category,
		}); err != nil || status != http.StatusOK {
			return nil, fmt.Errorf("seed dessert for %q: status %d err %v", name, status, err)
		}
		ids = append(ids, created.ID)
	}
	stats.ParticipantsSeeded = len(ids)
	return ids, nil
}

func reportResults(ctx context.Context, log logger.Logger, stats *Stats, snap model.Snapshot) {
	log.Info(ctx, "simulation complete",
		logger.Int("participants", stats.ParticipantsSeeded),
		logger.Int("generated", stats.Generated),
		logger.Int("successful", stats.Successful),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)
	top := snap.Leaderboard
	if len(top) > 5 {
		top = top[:5]
	}
	for i, row := range top {
		log.Info(ctx, "leaderboard standing",
			logger.Int("rank", i+1),
			logger.String("name", row.Name),
			logger.Float64("weighted_total", row.WeightedTotal),
			logger.Int("num_scores", row.NumScores),
		)
	}
}
