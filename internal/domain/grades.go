package domain

import "strings"

// MaxFinalScore is the top of the grading scale.
const MaxFinalScore = 100

type gradeTier struct {
	min  int
	info RankInfo
}

// gradeTiers is ordered from the highest band down; the last tier starts at 0.
var gradeTiers = []gradeTier{
	{90, RankInfo{Rank: "S", Title: "Motion Master", Description: "You could spec a servo axis in your sleep.", Badge: "trophy"}},
	{70, RankInfo{Rank: "A", Title: "Drive Engineer", Description: "Solid command of actuator selection.", Badge: "gear-gold"}},
	{50, RankInfo{Rank: "B", Title: "System Integrator", Description: "Good instincts, a few gaps in the details.", Badge: "gear-silver"}},
	{30, RankInfo{Rank: "C", Title: "Apprentice", Description: "You know the parts; the pairings need practice.", Badge: "gear-bronze"}},
	{0, RankInfo{Rank: "D", Title: "Newcomer", Description: "Every expert started here. Visit the booth demo!", Badge: "bolt"}},
}

// GetRankInfo maps a final score to its grade tier. Scores outside
// [0, MaxFinalScore] are clamped.
func GetRankInfo(finalScore int) RankInfo {
	if finalScore > MaxFinalScore {
		finalScore = MaxFinalScore
	}
	if finalScore < 0 {
		finalScore = 0
	}
	for _, tier := range gradeTiers {
		if finalScore >= tier.min {
			return tier.info
		}
	}
	return gradeTiers[len(gradeTiers)-1].info
}

// MaskName keeps the first and last character and hides the rest,
// e.g. "Alice" -> "A***e".
func MaskName(name string) string {
	r := []rune(strings.TrimSpace(name))
	switch len(r) {
	case 0:
		return ""
	case 1:
		return string(r[0]) + "***"
	}
	return string(r[0]) + "***" + string(r[len(r)-1])
}
