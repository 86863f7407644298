package quiz

import (
	"context"
	"fmt"
	"time"
)

// Snapshot is a full serializable picture of a session at one instant.
// Change events carry it, and it is what the snapshot port persists so an
// interrupted attempt can resume.
type Snapshot struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	QuizType  Type   `json:"quiz_type"`
	State     string `json:"state"`

	// Index is the zero-based position of the question being presented.
	Index int `json:"index"`

	// QuestionIDs preserves the presented order so a restore can verify
	// it is resuming against the same question set.
	QuestionIDs []string `json:"question_ids"`

	Responses []Response `json:"responses"`

	StartedAt time.Time `json:"started_at"`

	// Deadline is zero for untimed sessions.
	Deadline time.Time `json:"deadline,omitempty"`
}

// SnapshotStore persists in-progress session snapshots keyed by user and
// quiz type. Implementations decide the medium; the engine only needs the
// three operations.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, userID string, quizType Type) (Snapshot, bool, error)
	Clear(ctx context.Context, userID string, quizType Type) error
}

// Snapshot returns the session's current snapshot.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	ids := make([]string, len(s.questions))
	for i, q := range s.questions {
		ids[i] = q.ID
	}

	snap := Snapshot{
		SessionID:   s.id,
		UserID:      s.cfg.UserID,
		QuizType:    s.cfg.QuizType,
		State:       s.state.String(),
		Index:       s.index,
		QuestionIDs: ids,
		Responses:   s.orderedResponsesLocked(),
		StartedAt:   s.startedAt,
	}
	if s.countdown != nil {
		snap.Deadline = s.countdown.deadline
	}
	return snap
}

// RestoreSession rebuilds an in-progress session from a saved snapshot and
// the question set it was captured against. The per-question clock restarts
// at restore time. A timed session whose deadline has already passed is
// restored anyway and times out on the first tick, so the result still
// reaches the completion callback.
func RestoreSession(cfg SessionConfig, questions []Question, snap Snapshot) (*Session, error) {
	if snap.State != StateInProgress.String() {
		return nil, fmt.Errorf("restore from state %s: %w", snap.State, ErrInvalidState)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if len(snap.QuestionIDs) != len(questions) {
		return nil, fmt.Errorf("snapshot covers %d questions, set has %d: %w",
			len(snap.QuestionIDs), len(questions), ErrInvalidState)
	}
	for i, q := range questions {
		if snap.QuestionIDs[i] != q.ID {
			return nil, fmt.Errorf("snapshot question %d is %q, set has %q: %w",
				i, snap.QuestionIDs[i], q.ID, ErrInvalidState)
		}
	}
	if snap.Index < 0 || snap.Index >= len(questions) {
		return nil, fmt.Errorf("snapshot index %d out of range: %w", snap.Index, ErrInvalidState)
	}

	s := NewSession(cfg)
	s.id = snap.SessionID
	s.questions = questions
	s.index = snap.Index
	s.state = StateInProgress
	s.startedAt = snap.StartedAt
	now := s.now()
	s.questionStartedAt = now

	s.responses = make(map[string]Response, len(snap.Responses))
	for _, r := range snap.Responses {
		s.responses[r.QuestionID] = r
	}

	if !snap.Deadline.IsZero() && cfg.TimeLimit > 0 {
		s.countdown = startCountdown(snap.Deadline, func() {
			_ = s.Timeout()
		})
	}

	return s, nil
}
