package app

import (
	"sync"
	"time"

	"actuator-quiz/internal/domain"
)

// MinCompletionTime is the floor applied to a finished session's duration.
const MinCompletionTime = time.Second

// AnswerChecker grades a selection against the question as it was served.
type AnswerChecker interface {
	CheckAnswer(q domain.Question, selected string) (bool, error)
}

// Stopper is the part of *time.Timer the tracker needs.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f after d. It matches time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Stopper

func realAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Advance describes one recorded answer.
type Advance struct {
	Answer    domain.UserAnswer
	Question  domain.Question
	Completed bool
}

// GameResult is attached to a tracker once its session has been finalized.
type GameResult struct {
	Entry domain.LeaderboardEntry `json:"entry"`
	Grade domain.RankInfo         `json:"grade"`
	// Degraded is set when the result could not be persisted or ranked.
	Degraded bool `json:"degraded,omitempty"`
}

// Tracker drives one GameSession from the first question to completion.
// Answers are accepted strictly in order; when a question's countdown runs out
// the current selection is submitted as if the player had pressed submit.
type Tracker struct {
	mu       sync.Mutex
	session  *domain.GameSession
	identity domain.UserIdentity
	checker  AnswerChecker
	scores   domain.ScoreTable
	now      func() time.Time
	after    AfterFunc

	timer     Stopper
	deadline  time.Time
	selected  string
	onTimeout func(*Tracker, Advance)
	result    *GameResult
}

// TrackerOption customizes a Tracker.
type TrackerOption func(*Tracker)

// WithTrackerClock overrides time.Now.
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// WithAfterFunc overrides time.AfterFunc for the countdown.
func WithAfterFunc(after AfterFunc) TrackerOption {
	return func(t *Tracker) { t.after = after }
}

// WithTimeoutHandler is called, outside the tracker lock, after a countdown
// auto-submitted an answer.
func WithTimeoutHandler(fn func(*Tracker, Advance)) TrackerOption {
	return func(t *Tracker) { t.onTimeout = fn }
}

func NewTracker(session *domain.GameSession, identity domain.UserIdentity, checker AnswerChecker, scores domain.ScoreTable, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		session:  session,
		identity: identity,
		checker:  checker,
		scores:   scores,
		now:      time.Now,
		after:    realAfterFunc,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the session id.
func (t *Tracker) ID() string {
	return t.session.ID
}

// Identity returns the participant playing this session.
func (t *Tracker) Identity() domain.UserIdentity {
	return t.identity
}

// Start arms the countdown for the current question.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session.Completed() || t.timer != nil {
		return
	}
	t.armLocked()
}

// Stop cancels any running countdown.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Select records the answer currently highlighted for question index.
func (t *Tracker) Select(index int, answer string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkTurnLocked(index); err != nil {
		return err
	}
	if !t.session.Questions[index].ValidAnswer(answer) {
		return domain.Validationf("answer %q is not a choice of question %d", answer, index)
	}
	t.selected = answer
	return nil
}

// Submit records the answer for question index.
func (t *Tracker) Submit(index int, answer string) (Advance, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.submitLocked(index, answer, false)
}

// Remaining returns the time left on the current question's countdown.
func (t *Tracker) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session.Completed() || t.deadline.IsZero() {
		return 0
	}
	if left := t.deadline.Sub(t.now()); left > 0 {
		return left
	}
	return 0
}

// Snapshot returns a deep copy of the session.
func (t *Tracker) Snapshot() domain.GameSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copySession(t.session)
}

// SetResult attaches the finalized result.
func (t *Tracker) SetResult(r GameResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result = &r
}

// Result returns the finalized result, if any.
func (t *Tracker) Result() (GameResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result == nil {
		return GameResult{}, false
	}
	return *t.result, true
}

func (t *Tracker) expire(index int) {
	t.mu.Lock()
	if t.session.Completed() || t.session.CurrentQuestionIndex != index {
		// a manual submit won the race
		t.mu.Unlock()
		return
	}
	adv, err := t.submitLocked(index, t.selected, true)
	t.mu.Unlock()
	if err == nil && t.onTimeout != nil {
		t.onTimeout(t, adv)
	}
}

func (t *Tracker) checkTurnLocked(index int) error {
	if t.session.Completed() {
		return domain.InvalidStatef("session %s is already completed", t.session.ID)
	}
	if index != t.session.CurrentQuestionIndex {
		return domain.InvalidStatef("session %s expects question %d, got %d",
			t.session.ID, t.session.CurrentQuestionIndex, index)
	}
	return nil
}

func (t *Tracker) submitLocked(index int, answer string, timedOut bool) (Advance, error) {
	if err := t.checkTurnLocked(index); err != nil {
		return Advance{}, err
	}
	q := t.session.Questions[index]
	if !q.ValidAnswer(answer) {
		return Advance{}, domain.Validationf("answer %q is not a choice of question %d", answer, index)
	}
	correct, err := t.checker.CheckAnswer(q, answer)
	if err != nil {
		if !timedOut {
			return Advance{}, err
		}
		// an expired countdown must always advance the session
		correct = false
	}

	now := t.now()
	ua := domain.UserAnswer{
		QuestionID:     q.ID,
		SelectedAnswer: answer,
		IsCorrect:      correct,
		Difficulty:     q.Difficulty,
		PointsEarned:   t.scores.CalculateScore(correct, q.Difficulty),
		Timestamp:      now,
		TimedOut:       timedOut,
	}
	t.stopLocked()
	t.session.Answers = append(t.session.Answers, ua)

	lastQ, lastAnswer, lastCorrect := q, answer, correct
	t.session.LastAnsweredQuestion = &lastQ
	t.session.LastSelectedAnswer = &lastAnswer
	t.session.LastIsCorrect = &lastCorrect
	t.selected = ""

	adv := Advance{Answer: ua, Question: q}
	if len(t.session.Answers) == len(t.session.Questions) {
		t.finalizeLocked(now)
		adv.Completed = true
		return adv, nil
	}
	t.session.CurrentQuestionIndex++
	t.armLocked()
	return adv, nil
}

func (t *Tracker) finalizeLocked(end time.Time) {
	elapsed := end.Sub(t.session.StartTime)
	if elapsed < MinCompletionTime {
		elapsed = MinCompletionTime
	}
	ms := elapsed.Milliseconds()
	total := t.session.CorrectCount()
	final := t.session.PointsTotal()

	t.session.EndTime = &end
	t.session.CompletionTimeMs = &ms
	t.session.TotalScore = &total
	t.session.FinalScore = &final
	t.deadline = time.Time{}
}

func (t *Tracker) armLocked() {
	index := t.session.CurrentQuestionIndex
	limit := t.session.Questions[index].TimeLimit()
	t.deadline = t.now().Add(limit)
	t.timer = t.after(limit, func() { t.expire(index) })
}

func (t *Tracker) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func copySession(s *domain.GameSession) domain.GameSession {
	out := *s
	out.Questions = append([]domain.Question(nil), s.Questions...)
	out.Answers = append([]domain.UserAnswer{}, s.Answers...)
	if s.EndTime != nil {
		v := *s.EndTime
		out.EndTime = &v
	}
	if s.TotalScore != nil {
		v := *s.TotalScore
		out.TotalScore = &v
	}
	if s.FinalScore != nil {
		v := *s.FinalScore
		out.FinalScore = &v
	}
	if s.CompletionTimeMs != nil {
		v := *s.CompletionTimeMs
		out.CompletionTimeMs = &v
	}
	if s.LastAnsweredQuestion != nil {
		v := *s.LastAnsweredQuestion
		out.LastAnsweredQuestion = &v
	}
	if s.LastSelectedAnswer != nil {
		v := *s.LastSelectedAnswer
		out.LastSelectedAnswer = &v
	}
	if s.LastIsCorrect != nil {
		v := *s.LastIsCorrect
		out.LastIsCorrect = &v
	}
	return out
}
