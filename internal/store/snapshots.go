package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"
)

// FileSnapshotStore keeps one JSON file per (user, quiz type) pair under
// a directory, so an interrupted session can be resumed on the next run.
type FileSnapshotStore struct {
	dir string
}

var _ quiz.SnapshotStore = (*FileSnapshotStore)(nil)

// NewFileSnapshotStore returns a snapshot store rooted at dir.
func NewFileSnapshotStore(dir string) *FileSnapshotStore {
	return &FileSnapshotStore{dir: dir}
}

// Save writes the snapshot, replacing any previous one for the same user
// and quiz type.
func (s *FileSnapshotStore) Save(_ context.Context, snap quiz.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	path := s.snapshotPath(snap.UserID, snap.QuizType)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. The second return is false when no
// snapshot exists.
func (s *FileSnapshotStore) Load(_ context.Context, userID string, quizType quiz.Type) (quiz.Snapshot, bool, error) {
	data, err := os.ReadFile(s.snapshotPath(userID, quizType))
	if os.IsNotExist(err) {
		return quiz.Snapshot{}, false, nil
	}
	if err != nil {
		return quiz.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	var snap quiz.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return quiz.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Clear removes the stored snapshot, if any.
func (s *FileSnapshotStore) Clear(_ context.Context, userID string, quizType quiz.Type) error {
	err := os.Remove(s.snapshotPath(userID, quizType))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

func (s *FileSnapshotStore) snapshotPath(userID string, quizType quiz.Type) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s.json", userID, quizType))
}
