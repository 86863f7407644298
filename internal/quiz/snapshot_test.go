package quiz

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	s := startedSession(t, SessionConfig{UserID: "u1", QuizType: TypeAssessment}, testQuestions())
	_ = s.Answer("q1", []string{"A"})
	_ = s.Advance()

	snap := s.Snapshot()
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.SessionID != snap.SessionID || decoded.Index != snap.Index {
		t.Errorf("decoded = %+v, want %+v", decoded, snap)
	}
	if len(decoded.Responses) != 1 || decoded.Responses[0].QuestionID != "q1" {
		t.Errorf("decoded responses = %v, want the q1 response", decoded.Responses)
	}
}

func TestRestoreSession_ResumesMidQuiz(t *testing.T) {
	questions := testQuestions()
	s := startedSession(t, SessionConfig{UserID: "u1", QuizType: TypeAssessment}, questions)
	_ = s.Answer("q1", []string{"A"})
	_ = s.Advance()
	snap := s.Snapshot()

	restored, err := RestoreSession(SessionConfig{UserID: "u1", QuizType: TypeAssessment}, questions, snap)
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if restored.ID() != s.ID() {
		t.Errorf("restored ID = %s, want %s", restored.ID(), s.ID())
	}
	if restored.State() != StateInProgress {
		t.Errorf("restored State = %s, want in-progress", restored.State())
	}
	if restored.Index() != 1 {
		t.Errorf("restored Index = %d, want 1", restored.Index())
	}
	if restored.Answered() != 1 {
		t.Errorf("restored Answered = %d, want 1", restored.Answered())
	}

	// The restored session finishes like the original would have.
	_ = restored.Answer("q2", []string{"B"})
	_ = restored.Advance()
	_ = restored.Answer("q3", []string{"C"})
	_ = restored.Advance()

	result, ok := restored.Result()
	if !ok {
		t.Fatal("expected a result")
	}
	if result.Score != 30 {
		t.Errorf("Score = %d, want 30", result.Score)
	}
	if result.SessionID != s.ID() {
		t.Errorf("result SessionID = %s, want %s", result.SessionID, s.ID())
	}
}

func TestRestoreSession_RejectsTerminalSnapshot(t *testing.T) {
	s := startedSession(t, SessionConfig{}, []Question{scoredQuestion("q1", 10, "A")})
	_ = s.Answer("q1", []string{"A"})
	_ = s.Advance()
	snap := s.Snapshot()

	if _, err := RestoreSession(SessionConfig{}, []Question{scoredQuestion("q1", 10, "A")}, snap); !errors.Is(err, ErrInvalidState) {
		t.Errorf("restore of terminal snapshot = %v, want ErrInvalidState", err)
	}
}

func TestRestoreSession_RejectsMismatchedQuestionSet(t *testing.T) {
	questions := testQuestions()
	s := startedSession(t, SessionConfig{}, questions)
	_ = s.Answer("q1", []string{"A"})
	snap := s.Snapshot()

	other := []Question{
		scoredQuestion("x1", 10, "A"),
		scoredQuestion("x2", 10, "B"),
		scoredQuestion("x3", 10, "C"),
	}
	if _, err := RestoreSession(SessionConfig{}, other, snap); !errors.Is(err, ErrInvalidState) {
		t.Errorf("restore against different questions = %v, want ErrInvalidState", err)
	}

	if _, err := RestoreSession(SessionConfig{}, questions[:2], snap); !errors.Is(err, ErrInvalidState) {
		t.Errorf("restore against truncated questions = %v, want ErrInvalidState", err)
	}
}
