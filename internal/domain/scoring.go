package domain

// ScoreTable maps each difficulty tier to the points a correct answer earns.
type ScoreTable map[Difficulty]int

// DefaultScoreTable is used when the config does not override it.
func DefaultScoreTable() ScoreTable {
	return ScoreTable{
		DifficultyEasy:   10,
		DifficultyMedium: 20,
		DifficultyHard:   30,
	}
}

// Validate checks that every tier is mapped and points strictly increase with severity.
func (t ScoreTable) Validate() error {
	prev := 0
	for _, d := range Difficulties {
		points, ok := t[d]
		if !ok {
			return Configurationf("missing points for difficulty %q", d)
		}
		if points <= prev {
			return Configurationf("points for %q must be greater than %d, got %d", d, prev, points)
		}
		prev = points
	}
	return nil
}

// CalculateScore returns the points earned for one answer.
func (t ScoreTable) CalculateScore(isCorrect bool, difficulty Difficulty) int {
	if !isCorrect {
		return 0
	}
	return t[difficulty]
}
