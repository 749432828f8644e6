package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/bakeboard/internal/adapters/repository"
	"github.com/okian/bakeboard/internal/domain/admission"
	"github.com/okian/bakeboard/internal/domain/model"
	"github.com/okian/bakeboard/internal/domain/settings"
	"github.com/okian/bakeboard/internal/domain/transfer"
	"github.com/okian/bakeboard/pkg/logger"
	"github.com/okian/bakeboard/pkg/metrics"
)

// UpsertParticipant adds a participant by name or updates the active flag
// of an existing one.
func (s *Service) UpsertParticipant(ctx context.Context, name string, active bool) (model.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Participant{}, &admission.ValidationError{Field: "name", Reason: "required"}
	}

	var p model.Participant
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		var created bool
		var err error
		p, created, err = tx.UpsertParticipant(name, active)
		if err != nil {
			return err
		}
		if created {
			tx.AppendEvent(model.EventParticipantAdded, map[string]any{"name": name})
		} else {
			tx.AppendEvent(model.EventParticipantUpdated, map[string]any{"name": name, "active": active})
		}
		return nil
	})
	if err != nil {
		return model.Participant{}, fmt.Errorf("upsert participant: %w", err)
	}
	s.notifyMutation("upsert_participant")
	return p, nil
}

// SetParticipantActive flips a participant's active flag by id.
func (s *Service) SetParticipantActive(ctx context.Context, id int64, active bool) error {
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		p, err := tx.SetParticipantActive(id, active)
		if err != nil {
			return err
		}
		tx.AppendEvent(model.EventParticipantUpdated, map[string]any{"id": id, "name": p.Name, "active": active})
		return nil
	})
	if err != nil {
		return mapNotFound(err, "set participant active")
	}
	s.notifyMutation("set_participant_active")
	return nil
}

// DeleteParticipant removes a participant; its dessert and scores cascade.
func (s *Service) DeleteParticipant(ctx context.Context, id int64) error {
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		p, err := tx.DeleteParticipant(id)
		if err != nil {
			return err
		}
		tx.AppendEvent(model.EventParticipantDeleted, map[string]any{"id": id, "name": p.Name})
		return nil
	})
	if err != nil {
		return mapNotFound(err, "delete participant")
	}
	s.notifyMutation("delete_participant")
	return nil
}

// UpsertDessert sets or replaces a participant's single dessert entry.
func (s *Service) UpsertDessert(ctx context.Context, participantID int64, name, description, category string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &admission.ValidationError{Field: "dessert_name", Reason: "required"}
	}

	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		if _, err := tx.GetParticipant(participantID); err != nil {
			return err
		}
		if err := tx.UpsertDessert(participantID, name, strings.TrimSpace(description), strings.TrimSpace(category)); err != nil {
			return err
		}
		tx.AppendEvent(model.EventDessertUpserted, map[string]any{"participant_id": participantID, "dessert_name": name})
		return nil
	})
	if err != nil {
		return mapNotFound(err, "upsert dessert")
	}
	s.notifyMutation("upsert_dessert")
	return nil
}

// SubmitScore validates and commits one score submission under the current
// settings. Validation, policy checks, the write, and the audit append all
// happen in one transaction; a rejection leaves the store unchanged.
func (s *Service) SubmitScore(ctx context.Context, req admission.Request) (int64, error) {
	if err := req.Normalize(); err != nil {
		metrics.RecordScoreRejected("validation")
		return 0, err
	}

	var scoreID int64
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := tx.Settings()
		if err != nil {
			return err
		}
		if _, err := tx.GetParticipant(req.ParticipantID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &admission.PolicyError{Reason: admission.ReasonUnknownParticipant}
			}
			return err
		}
		scored, err := tx.JudgeHasScored(req.JudgeName, req.ParticipantID)
		if err != nil {
			return err
		}
		if err := admission.Check(cfg, scored); err != nil {
			return err
		}
		scoreID, err = tx.InsertScore(req.ParticipantID, req.JudgeName, req.Criteria, req.Comment)
		if err != nil {
			return err
		}
		tx.AppendEvent(model.EventScoreAdded, map[string]any{
			"participant_id": req.ParticipantID,
			"judge_name":     req.JudgeName,
			"score_id":       scoreID,
		})
		return nil
	})
	if err != nil {
		if reason := admission.PolicyReason(err); reason != "" {
			metrics.RecordScoreRejected(reason)
		}
		return 0, err
	}

	metrics.RecordScoreSubmitted()
	s.notifyMutation("submit_score")
	return scoreID, nil
}

// DeleteScore removes one score by id.
func (s *Service) DeleteScore(ctx context.Context, id int64) error {
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		sc, err := tx.DeleteScore(id)
		if err != nil {
			return err
		}
		tx.AppendEvent(model.EventScoreDeleted, map[string]any{
			"score_id":       id,
			"participant_id": sc.ParticipantID,
			"judge_name":     sc.JudgeName,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete score: %w", err)
	}
	s.notifyMutation("delete_score")
	return nil
}

// UpdateSettings applies a bulk key/value update and returns the resulting
// typed settings.
func (s *Service) UpdateSettings(ctx context.Context, updates map[string]any) (settings.Settings, error) {
	if len(updates) == 0 {
		return settings.Settings{}, &admission.ValidationError{Field: "settings", Reason: "empty"}
	}

	var out settings.Settings
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		cfg, err := tx.Settings()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(updates))
		for k, v := range updates {
			cfg.Set(k, v)
			keys = append(keys, k)
		}
		if err := tx.PutSettings(cfg); err != nil {
			return err
		}
		tx.AppendEvent(model.EventSettingsUpdated, map[string]any{"keys": keys})
		out = cfg
		return nil
	})
	if err != nil {
		return settings.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	s.notifyMutation("update_settings")
	return out, nil
}

// Export produces the portable full dump.
func (s *Service) Export(ctx context.Context) (transfer.Payload, error) {
	var payload transfer.Payload
	err := s.store.View(ctx, func(tx *repository.Tx) error {
		var err error
		payload, err = transfer.Export(tx, s.exportEventLimit)
		return err
	})
	if err != nil {
		return transfer.Payload{}, err
	}
	return payload, nil
}

// Import restores a payload in replace or merge mode and returns the
// per-entry report.
func (s *Service) Import(ctx context.Context, payload transfer.Payload, mode string) (transfer.Report, error) {
	var report transfer.Report
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		var err error
		report, err = transfer.Import(tx, payload, mode)
		return err
	})
	if err != nil {
		return report, err
	}
	s.log.Info(ctx, "import completed",
		logger.String("mode", report.Mode),
		logger.Int("participants", report.Participants),
		logger.Int("desserts", report.Desserts),
		logger.Int("scores", report.Scores),
		logger.Int("skipped", len(report.Skipped)),
	)
	s.notifyMutation("import")
	return report, nil
}

// mapNotFound converts a store not-found into the unknown-participant
// policy rejection so clients can tell it apart from internal failures.
func mapNotFound(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &admission.PolicyError{Reason: admission.ReasonUnknownParticipant}
	}
	return fmt.Errorf("%s: %w", op, err)
}
