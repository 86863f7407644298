package store

import (
	"context"
	"testing"
	"time"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"
)

func TestFileSnapshotStoreRoundTrip(t *testing.T) {
	s := NewFileSnapshotStore(t.TempDir())
	ctx := context.Background()

	snap := quiz.Snapshot{
		SessionID:   "sess-1",
		UserID:      "u1",
		QuizType:    quiz.TypeAssessment,
		State:       "in-progress",
		Index:       1,
		QuestionIDs: []string{"q1", "q2"},
		StartedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := s.Load(ctx, "u1", quiz.TypeAssessment)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected a stored snapshot")
	}
	if got.SessionID != "sess-1" || got.Index != 1 {
		t.Errorf("loaded snapshot = %+v, want sess-1 at index 1", got)
	}
}

func TestFileSnapshotStoreMissing(t *testing.T) {
	s := NewFileSnapshotStore(t.TempDir())

	_, ok, err := s.Load(context.Background(), "u1", quiz.TypeAssessment)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Error("expected no snapshot for fresh store")
	}
}

func TestFileSnapshotStoreKeyedByUserAndType(t *testing.T) {
	s := NewFileSnapshotStore(t.TempDir())
	ctx := context.Background()

	if err := s.Save(ctx, quiz.Snapshot{
		SessionID: "a", UserID: "u1", QuizType: quiz.TypeAssessment, State: "in-progress",
	}); err != nil {
		t.Fatalf("save assessment: %v", err)
	}
	if err := s.Save(ctx, quiz.Snapshot{
		SessionID: "b", UserID: "u1", QuizType: quiz.TypeSurvey, State: "in-progress",
	}); err != nil {
		t.Fatalf("save survey: %v", err)
	}

	got, ok, _ := s.Load(ctx, "u1", quiz.TypeSurvey)
	if !ok || got.SessionID != "b" {
		t.Errorf("survey snapshot = %+v, want sess b", got)
	}
	got, ok, _ = s.Load(ctx, "u1", quiz.TypeAssessment)
	if !ok || got.SessionID != "a" {
		t.Errorf("assessment snapshot = %+v, want sess a", got)
	}
}

func TestFileSnapshotStoreClear(t *testing.T) {
	s := NewFileSnapshotStore(t.TempDir())
	ctx := context.Background()

	if err := s.Save(ctx, quiz.Snapshot{
		SessionID: "a", UserID: "u1", QuizType: quiz.TypeAssessment, State: "in-progress",
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear(ctx, "u1", quiz.TypeAssessment); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := s.Load(ctx, "u1", quiz.TypeAssessment); ok {
		t.Error("snapshot survived clear")
	}

	// Clearing an absent snapshot is not an error.
	if err := s.Clear(ctx, "u1", quiz.TypeAssessment); err != nil {
		t.Errorf("clear absent = %v, want nil", err)
	}
}
