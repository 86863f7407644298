package quiz

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a session.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
	StateAbandoned
)

// String returns the snapshot representation of the state.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInProgress:
		return "in-progress"
	case StateCompleted:
		return "completed"
	case StateAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

// SessionConfig carries the collaborator hooks and fixed attributes of a
// session.
type SessionConfig struct {
	UserID   string
	QuizType Type

	// TimeLimit bounds the whole attempt. Zero means untimed; Timeout is
	// only callable when a limit is set.
	TimeLimit time.Duration

	// OnComplete receives the finished Result exactly once, whichever of
	// Advance, Timeout, Complete or Abandon finalizes the session first.
	OnComplete func(Result)

	// OnChange receives a full snapshot after every state-affecting
	// transition. UI layers subscribe here instead of to individual
	// fields.
	OnChange func(Snapshot)
}

// Session sequences one user's attempt at a question set from start to a
// terminal state. Answers are accepted only for the question currently
// presented, responses never outnumber questions, and once a terminal
// state is reached every further transition is a guarded no-op, so a final
// Advance racing the countdown emits a single Result no matter which side
// wins.
type Session struct {
	mu sync.Mutex

	cfg       SessionConfig
	id        string
	questions []Question
	responses map[string]Response
	index     int
	state     State

	startedAt         time.Time
	questionStartedAt time.Time
	countdown         *Countdown

	result    Result
	hasResult bool

	now func() time.Time
}

// NewSession creates a session in the NotStarted state.
func NewSession(cfg SessionConfig) *Session {
	return &Session{
		cfg:       cfg,
		id:        uuid.NewString(),
		responses: make(map[string]Response),
		now:       time.Now,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Start begins the attempt over the given ordered question set.
func (s *Session) Start(questions []Question) error {
	s.mu.Lock()
	if len(questions) == 0 {
		s.mu.Unlock()
		return ErrNoQuestions
	}
	if s.state != StateNotStarted {
		s.mu.Unlock()
		return fmt.Errorf("start in state %s: %w", s.state, ErrInvalidState)
	}

	now := s.now()
	s.questions = questions
	s.responses = make(map[string]Response, len(questions))
	s.index = 0
	s.state = StateInProgress
	s.startedAt = now
	s.questionStartedAt = now

	if s.cfg.TimeLimit > 0 {
		s.countdown = startCountdown(now.Add(s.cfg.TimeLimit), func() {
			_ = s.Timeout()
		})
	}

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitChange(snap)
	return nil
}

// Answer records or overwrites the response for the question currently
// presented. Answers for any other question are rejected rather than
// queued; scoring is deferred to completion.
func (s *Session) Answer(questionID string, selected []string) error {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return fmt.Errorf("answer in state %s: %w", s.state, ErrInvalidState)
	}
	current := s.questions[s.index]
	if current.ID != questionID {
		s.mu.Unlock()
		return fmt.Errorf("answer for %q while presenting %q: %w", questionID, current.ID, ErrInvalidState)
	}

	now := s.now()
	chosen := append([]string(nil), selected...)
	s.responses[questionID] = Response{
		QuestionID: questionID,
		Selected:   chosen,
		Correct:    current.IsCorrect(chosen),
		TimeSpent:  int(now.Sub(s.questionStartedAt).Seconds()),
		AnsweredAt: now,
	}

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitChange(snap)
	return nil
}

// Advance moves to the next question, or finalizes the session when the
// current question is the last one. The current question must have a
// recorded answer.
func (s *Session) Advance() error {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return fmt.Errorf("advance in state %s: %w", s.state, ErrInvalidState)
	}
	if _, answered := s.responses[s.questions[s.index].ID]; !answered {
		s.mu.Unlock()
		return ErrNotAnswered
	}

	if s.index == len(s.questions)-1 {
		result := s.finalizeLocked(StatusCompleted)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.emitComplete(result, snap)
		return nil
	}

	s.index++
	s.questionStartedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitChange(snap)
	return nil
}

// Timeout finalizes the session when the time limit expires, keeping
// whatever responses were captured. This is the one path allowed to bypass
// the answered-before-advance rule: a time-boxed quiz must always
// terminate. A timeout arriving after the session is already terminal is
// silently ignored.
func (s *Session) Timeout() error {
	s.mu.Lock()
	if s.cfg.TimeLimit <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("timeout without a time limit: %w", ErrInvalidState)
	}
	if s.state.Terminal() {
		s.mu.Unlock()
		return nil
	}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return fmt.Errorf("timeout in state %s: %w", s.state, ErrInvalidState)
	}

	result := s.finalizeLocked(StatusCompleted)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitComplete(result, snap)
	return nil
}

// Complete finalizes the session explicitly. Idempotent: calling it on an
// already-terminal session is a no-op.
func (s *Session) Complete() error {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return nil
	}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return fmt.Errorf("complete in state %s: %w", s.state, ErrInvalidState)
	}

	result := s.finalizeLocked(StatusCompleted)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitComplete(result, snap)
	return nil
}

// Abandon finalizes the session with StatusAbandoned without requiring all
// questions answered. No-op when already terminal.
func (s *Session) Abandon() error {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return nil
	}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return fmt.Errorf("abandon in state %s: %w", s.state, ErrInvalidState)
	}

	result := s.finalizeLocked(StatusAbandoned)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitComplete(result, snap)
	return nil
}

// finalizeLocked flips the terminal flag, cancels any pending countdown,
// scores the captured responses and records the Result. Callers hold the
// lock and emit the result after releasing it.
func (s *Session) finalizeLocked(status Status) Result {
	if s.countdown != nil {
		s.countdown.Stop()
	}

	now := s.now()
	tally := Score(s.questions, s.responsesLocked())

	if status == StatusCompleted {
		s.state = StateCompleted
	} else {
		s.state = StateAbandoned
	}

	s.result = Result{
		SessionID:     s.id,
		UserID:        s.cfg.UserID,
		QuizType:      s.cfg.QuizType,
		Responses:     s.orderedResponsesLocked(),
		Score:         tally.Score,
		TotalPossible: tally.TotalPossible,
		Percentage:    tally.Percentage,
		StartedAt:     s.startedAt,
		EndedAt:       now,
		Duration:      int(now.Sub(s.startedAt).Seconds()),
		Status:        status,
	}
	s.hasResult = true
	return s.result
}

// orderedResponsesLocked returns captured responses in question display
// order.
func (s *Session) orderedResponsesLocked() []Response {
	ordered := make([]Response, 0, len(s.responses))
	for _, q := range s.questions {
		if r, ok := s.responses[q.ID]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered
}

func (s *Session) responsesLocked() []Response {
	all := make([]Response, 0, len(s.responses))
	for _, r := range s.responses {
		all = append(all, r)
	}
	return all
}

func (s *Session) emitChange(snap Snapshot) {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(snap)
	}
}

func (s *Session) emitComplete(result Result, snap Snapshot) {
	if s.cfg.OnComplete != nil {
		s.cfg.OnComplete(result)
	}
	s.emitChange(snap)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentQuestion returns the question being presented. ok is false when
// the session is not in progress.
func (s *Session) CurrentQuestion() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// Index returns the zero-based position of the current question.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Answered returns how many questions have a recorded response.
func (s *Session) Answered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses)
}

// Remaining returns the time left before timeout. ok is false for untimed
// sessions or before Start.
func (s *Session) Remaining() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countdown == nil {
		return 0, false
	}
	return s.countdown.Remaining(s.now()), true
}

// Result returns the finished result. ok is false until the session
// reaches a terminal state.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.hasResult
}
