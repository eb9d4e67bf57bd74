package app

import (
	"context"

	"actuator-quiz/internal/domain"
)

// Observer receives game events for metrics.
type Observer interface {
	GameStarted()
	AnswerRecorded(answer domain.UserAnswer)
	ResultSubmitted(outcome string)
	Participants(n int64)
}

// Result outcomes reported to Observer.ResultSubmitted.
const (
	OutcomeRanked    = "ranked"
	OutcomeUnranked  = "unranked"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

type nopObserver struct{}

func (nopObserver) GameStarted()                     {}
func (nopObserver) AnswerRecorded(domain.UserAnswer) {}
func (nopObserver) ResultSubmitted(string)           {}
func (nopObserver) Participants(int64)               {}

// ResultNotifier delivers a finished game's result to the participant.
type ResultNotifier interface {
	NotifyResult(ctx context.Context, identity domain.UserIdentity, session domain.GameSession, result GameResult) error
}
