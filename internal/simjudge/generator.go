package simjudge

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Baking-themed name pools for seeded data.
var (
	bakerNames = []string{
		"Maple Lane Bakers", "The Flour Patch", "Sugar & Spruce", "Crumb Collective",
		"Knead to Know", "Rolling Pin Society", "The Proof Is Here", "Butter Believers",
		"Whisk Takers", "Dough Re Mi", "The Caramel Corner", "Frosted Tips",
		"Batter Days Ahead", "The Gingerbread Guild", "Pies Before Guys", "Scone Cold",
	}
	dessertNames = []string{
		"Yule Log", "Gingerbread House", "Peppermint Bark Brownies", "Stollen",
		"Eggnog Cheesecake", "Cranberry Linzer Torte", "Spiced Pear Galette",
		"Chocolate Babka", "Panettone", "Sticky Toffee Pudding", "Mince Pies",
		"Buche de Noel", "Cardamom Buns", "Fig Pudding", "Snowball Cookies",
		"Candy Cane Macarons",
	}
	categories = []string{"cake", "cookie", "pie", "bread", "showpiece"}
	comments   = []string{
		"", "", "wonderful texture", "a bit dry", "would eat again",
		"stunning presentation", "needs more spice", "perfectly balanced",
	}
)

const randomFloatDivisor = 1000000

// Score distribution tiers, so leaderboards come out looking contested
// rather than uniform.
const (
	tierCount       = 4
	tierGenerousMin = 7.0
	tierGenerousRng = 3.0
	tierAverageMin  = 4.0
	tierAverageRng  = 4.0
	tierHarshMin    = 1.0
	tierHarshRng    = 4.0
	tierWideMin     = 1.0
	tierWideRng     = 9.0
)

func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// participantName returns a unique seeded name for index i.
func participantName(i int) string {
	base := bakerNames[i%len(bakerNames)]
	if i < len(bakerNames) {
		return base
	}
	return fmt.Sprintf("%s #%d", base, i/len(bakerNames)+1)
}

// dessertFor returns the dessert name and category for participant index i.
func dessertFor(i int) (string, string) {
	return dessertNames[i%len(dessertNames)], categories[i%len(categories)]
}

// generateSubmissions produces one submission per judge per participant,
// with per-judge scoring temperament so totals spread out.
func generateSubmissions(cfg *Config, ids []int64, criteriaKeys []string) []Submission {
	subs := make([]Submission, 0, len(ids)*cfg.Judges)
	for j := 0; j < cfg.Judges; j++ {
		judge := fmt.Sprintf("judge-%02d", j+1)
		tier := randomIndex(tierCount)
		for _, id := range ids {
			values := make(map[string]float64, len(criteriaKeys))
			for _, key := range criteriaKeys {
				values[key] = roundHalf(tierValue(tier))
			}
			subs = append(subs, Submission{
				ParticipantID: id,
				JudgeName:     judge,
				Criteria:      values,
				Comment:       comments[randomIndex(len(comments))],
			})
		}
	}
	return subs
}

func tierValue(tier int) float64 {
	switch tier {
	case 0:
		return tierGenerousMin + randomFloat()*tierGenerousRng
	case 1:
		return tierAverageMin + randomFloat()*tierAverageRng
	case 2:
		return tierHarshMin + randomFloat()*tierHarshRng
	default:
		return tierWideMin + randomFloat()*tierWideRng
	}
}

// roundHalf snaps a value to the nearest 0.5, the granularity real judges
// tend to use.
func roundHalf(v float64) float64 {
	return float64(int(v*2+0.5)) / 2
}
