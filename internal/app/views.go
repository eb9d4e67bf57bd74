package app

import "actuator-quiz/internal/domain"

// QuestionView is a question as shown to the participant, without its answer.
type QuestionView struct {
	ID               string              `json:"id"`
	Type             domain.QuestionType `json:"type"`
	ApplicationName  string              `json:"applicationName"`
	Difficulty       domain.Difficulty   `json:"difficulty"`
	Prompt           string              `json:"prompt"`
	Options          []string            `json:"options,omitempty"`
	MaxPoints        int                 `json:"maxPoints"`
	TimeLimitSeconds int                 `json:"timeLimitSeconds"`
}

// AnswerView is the feedback for one recorded answer.
type AnswerView struct {
	QuestionIndex  int                `json:"questionIndex"`
	QuestionID     string             `json:"questionId"`
	SelectedAnswer string             `json:"selectedAnswer"`
	IsCorrect      bool               `json:"isCorrect"`
	CorrectAnswer  string             `json:"correctAnswer"`
	PointsEarned   int                `json:"pointsEarned"`
	TimedOut       bool               `json:"timedOut,omitempty"`
	Explanation    domain.Explanation `json:"explanation"`
	Completed      bool               `json:"completed"`
	Result         *GameResult        `json:"result,omitempty"`
}

// SessionView is the participant-facing state of a session.
type SessionView struct {
	ID                   string              `json:"id"`
	UserID               string              `json:"userId"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	TotalQuestions       int                 `json:"totalQuestions"`
	Question             *QuestionView       `json:"question,omitempty"`
	RemainingMs          int64               `json:"remainingMs"`
	Answers              []domain.UserAnswer `json:"answers"`
	Completed            bool                `json:"completed"`
	TotalScore           *int                `json:"totalScore,omitempty"`
	FinalScore           *int                `json:"finalScore,omitempty"`
	CompletionTimeMs     *int64              `json:"completionTimeMs,omitempty"`
	Result               *GameResult         `json:"result,omitempty"`
}

func newQuestionView(q domain.Question) QuestionView {
	return QuestionView{
		ID:               q.ID,
		Type:             q.Type,
		ApplicationName:  q.ApplicationName,
		Difficulty:       q.Difficulty,
		Prompt:           q.Prompt,
		Options:          append([]string(nil), q.Options...),
		MaxPoints:        q.MaxPoints,
		TimeLimitSeconds: q.TimeLimitSeconds,
	}
}

func newAnswerView(adv Advance) AnswerView {
	return AnswerView{
		QuestionID:     adv.Question.ID,
		SelectedAnswer: adv.Answer.SelectedAnswer,
		IsCorrect:      adv.Answer.IsCorrect,
		CorrectAnswer:  adv.Question.CorrectAnswer,
		PointsEarned:   adv.Answer.PointsEarned,
		TimedOut:       adv.Answer.TimedOut,
		Explanation:    adv.Question.Explanation,
		Completed:      adv.Completed,
	}
}

func newSessionView(t *Tracker) SessionView {
	snap := t.Snapshot()
	view := SessionView{
		ID:                   snap.ID,
		UserID:               snap.UserID,
		CurrentQuestionIndex: snap.CurrentQuestionIndex,
		TotalQuestions:       len(snap.Questions),
		RemainingMs:          t.Remaining().Milliseconds(),
		Answers:              snap.Answers,
		Completed:            snap.Completed(),
		TotalScore:           snap.TotalScore,
		FinalScore:           snap.FinalScore,
		CompletionTimeMs:     snap.CompletionTimeMs,
	}
	if !view.Completed {
		q := newQuestionView(snap.Questions[snap.CurrentQuestionIndex])
		view.Question = &q
	}
	if result, ok := t.Result(); ok {
		view.Result = &result
	}
	return view
}
