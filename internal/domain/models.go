package domain

import "time"

// Category groups catalog components.
type Category string

const (
	CategoryMotor   Category = "motor"
	CategoryGearbox Category = "gearbox"
	CategoryEncoder Category = "encoder"
	CategoryDrive   Category = "drive"
	CategoryBearing Category = "bearing"
)

// QuestionType is the answer format of a question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeTrueFalse      QuestionType = "true-false"
)

// Difficulty is the severity tier that drives point values.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers from least to most severe.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Answers accepted for true-false questions.
const (
	AnswerTrue  = "O"
	AnswerFalse = "X"
)

// Component is an immutable catalog entry.
type Component struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    Category `json:"category" yaml:"category"`
	Icon        string   `json:"icon" yaml:"icon"`
	Description string   `json:"description" yaml:"description"`
}

// CompatibilityRule lists the component ids an application requires.
type CompatibilityRule struct {
	Application string   `json:"application" yaml:"application"`
	Requires    []string `json:"requires" yaml:"requires"`
}

// Explanation is shown after a question has been answered.
type Explanation struct {
	Correct           string   `json:"correct" yaml:"correct"`
	Improvements      []string `json:"improvements" yaml:"improvements"`
	RealWorldExamples []string `json:"realWorldExamples" yaml:"realWorldExamples"`
}

// Question is a template from the question bank.
type Question struct {
	ID               string       `json:"id" yaml:"id"`
	Type             QuestionType `json:"type" yaml:"type"`
	ApplicationName  string       `json:"applicationName" yaml:"applicationName"`
	Difficulty       Difficulty   `json:"difficulty" yaml:"difficulty"`
	Prompt           string       `json:"prompt" yaml:"prompt"`
	Options          []string     `json:"options,omitempty" yaml:"options"`
	CorrectAnswer    string       `json:"correctAnswer" yaml:"correctAnswer"`
	MaxPoints        int          `json:"maxPoints" yaml:"maxPoints"`
	TimeLimitSeconds int          `json:"timeLimitSeconds" yaml:"timeLimitSeconds"`
	Explanation      Explanation  `json:"explanation" yaml:"explanation"`
}

// TimeLimit returns the countdown for the question.
func (q Question) TimeLimit() time.Duration {
	return time.Duration(q.TimeLimitSeconds) * time.Second
}

// ValidAnswer reports whether answer is a well-formed choice for q. The empty
// answer is accepted and represents "nothing selected".
func (q Question) ValidAnswer(answer string) bool {
	if answer == "" {
		return true
	}
	switch q.Type {
	case TypeTrueFalse:
		return answer == AnswerTrue || answer == AnswerFalse
	case TypeMultipleChoice:
		if len(answer) != 1 {
			return false
		}
		idx := int(answer[0] - 'A')
		return idx >= 0 && idx < len(q.Options)
	}
	return false
}

// QuestionBank is the pool sessions are drawn from.
type QuestionBank struct {
	ID        string     `json:"id" yaml:"id"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// UserAnswer is appended once per question and never mutated.
type UserAnswer struct {
	QuestionID     string     `json:"questionId"`
	SelectedAnswer string     `json:"selectedAnswer"`
	IsCorrect      bool       `json:"isCorrect"`
	Difficulty     Difficulty `json:"difficulty"`
	PointsEarned   int        `json:"pointsEarned"`
	Timestamp      time.Time  `json:"timestamp"`
	TimedOut       bool       `json:"timedOut,omitempty"`
}

// GameSession is one play-through. It is terminal once EndTime is set.
type GameSession struct {
	ID                   string       `json:"id"`
	UserID               string       `json:"userId"`
	Questions            []Question   `json:"questions"`
	CurrentQuestionIndex int          `json:"currentQuestionIndex"`
	Answers              []UserAnswer `json:"answers"`
	StartTime            time.Time    `json:"startTime"`
	EndTime              *time.Time   `json:"endTime,omitempty"`
	TotalScore           *int         `json:"totalScore,omitempty"`
	FinalScore           *int         `json:"finalScore,omitempty"`
	CompletionTimeMs     *int64       `json:"completionTimeMs,omitempty"`
	LastAnsweredQuestion *Question    `json:"lastAnsweredQuestion,omitempty"`
	LastSelectedAnswer   *string      `json:"lastSelectedAnswer,omitempty"`
	LastIsCorrect        *bool        `json:"lastIsCorrect,omitempty"`
}

// Completed reports whether every question has been answered.
func (s *GameSession) Completed() bool {
	return s.EndTime != nil
}

// PointsTotal sums the points earned over all answers.
func (s *GameSession) PointsTotal() int {
	total := 0
	for _, a := range s.Answers {
		total += a.PointsEarned
	}
	return total
}

// CorrectCount counts the correctly answered questions.
func (s *GameSession) CorrectCount() int {
	n := 0
	for _, a := range s.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// UserIdentity is a registered participant.
type UserIdentity struct {
	ID      string `json:"id" validate:"required,max=64"`
	Name    string `json:"name" validate:"required,max=100"`
	Company string `json:"company" validate:"max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
}

// ResultRecord is the aggregate written once per completed session.
type ResultRecord struct {
	SessionID        string
	UserID           string
	Score            int
	FinalScore       int
	CompletionTimeMs int64
	SuccessRate      string
	Answers          []UserAnswer
	PlayedAt         time.Time
}

// RankedRow is one row of a day-scoped ranking query.
type RankedRow struct {
	ResultID         string
	PlayerName       string
	Company          string
	Score            int
	CompletionTimeMs int64
	FinalScore       int
	PlayedAt         time.Time
}

// LeaderboardEntry is derived at query time, never stored.
type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	PlayerName       string    `json:"playerName"`
	Company          string    `json:"company"`
	Score            int       `json:"score"`
	CompletionTimeMs int64     `json:"completionTimeMs"`
	FinalScore       int       `json:"finalScore"`
	PlayedAt         time.Time `json:"playedAt"`
}

// RankInfo is the letter grade derived from a final score.
type RankInfo struct {
	Rank        string `json:"rank"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Badge       string `json:"badge"`
}
