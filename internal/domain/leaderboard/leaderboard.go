// Package leaderboard computes ranked standings from committed scores and
// the active criteria configuration.
package leaderboard

import (
	"math"
	"sort"

	"github.com/okian/bakeboard/internal/domain/model"
	"github.com/okian/bakeboard/internal/domain/settings"
)

// Compute folds every score into one row per participant and ranks the
// result. Participants must arrive in store order (active first, then name
// ascending); ties keep that order. Scores referencing unknown participant
// ids contribute nothing. A criterion configured with an explicit zero
// weight stays at zero; only an absent weight defaults to 1.0.
func Compute(criteria []settings.Criterion, participants []model.Participant, scores []model.Score) []model.Row {
	weights := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		weights[c.Key] = c.EffectiveWeight()
	}

	rows := make([]model.Row, len(participants))
	index := make(map[int64]int, len(participants))
	for i, p := range participants {
		rows[i] = model.Row{
			ParticipantID: p.ID,
			Name:          p.Name,
			Active:        p.Active,
			Totals:        make(map[string]float64),
		}
		index[p.ID] = i
	}

	for _, s := range scores {
		i, ok := index[s.ParticipantID]
		if !ok {
			continue
		}
		rows[i].NumScores++
		for k, v := range s.Criteria {
			rows[i].Totals[k] += v
		}
	}

	for i := range rows {
		n := rows[i].NumScores
		if n <= 0 {
			continue
		}
		var weighted float64
		for k, total := range rows[i].Totals {
			// Keys absent from the active criteria are tolerated in the
			// running totals but never contribute to the weighted total.
			w, ok := weights[k]
			if !ok {
				continue
			}
			weighted += (total / float64(n)) * w
		}
		rows[i].WeightedTotal = round3(weighted)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		ra, rb := rows[a], rows[b]
		if ra.Active != rb.Active {
			return ra.Active
		}
		if ra.WeightedTotal != rb.WeightedTotal {
			return ra.WeightedTotal > rb.WeightedTotal
		}
		return ra.NumScores > rb.NumScores
	})
	return rows
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
