package domain

import (
	"errors"
	"testing"
)

func TestCalculateScore(t *testing.T) {
	table := DefaultScoreTable()
	cases := []struct {
		correct    bool
		difficulty Difficulty
		want       int
	}{
		{true, DifficultyEasy, 10},
		{true, DifficultyMedium, 20},
		{true, DifficultyHard, 30},
		{false, DifficultyHard, 0},
		{true, Difficulty("legendary"), 0},
	}
	for _, tc := range cases {
		if got := table.CalculateScore(tc.correct, tc.difficulty); got != tc.want {
			t.Fatalf("CalculateScore(%v, %s) = %d, want %d", tc.correct, tc.difficulty, got, tc.want)
		}
	}
}

func TestScoreTableValidate(t *testing.T) {
	if err := DefaultScoreTable().Validate(); err != nil {
		t.Fatalf("default table: %v", err)
	}
	flat := ScoreTable{DifficultyEasy: 10, DifficultyMedium: 10, DifficultyHard: 30}
	if err := flat.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for flat tiers, got %v", err)
	}
	missing := ScoreTable{DifficultyEasy: 10, DifficultyMedium: 20}
	if err := missing.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for missing tier, got %v", err)
	}
}

func TestDefaultBlueprintMaxScore(t *testing.T) {
	table := DefaultScoreTable()
	total := 0
	for _, slot := range DefaultBlueprint() {
		total += table[slot.Difficulty]
	}
	if total != MaxFinalScore {
		t.Fatalf("expected blueprint max %d, got %d", MaxFinalScore, total)
	}
}
