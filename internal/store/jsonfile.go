package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/competency"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"
)

// fileDocument is the whole on-disk state of a JSONFileStore.
type fileDocument struct {
	User      *User                             `json:"user,omitempty"`
	Questions map[string][]quiz.Question        `json:"questions"`
	Results   []quiz.Result                     `json:"results"`
	Progress  map[string]competency.UserProgress `json:"progress"`
}

// JSONFileStore is a Repository persisted as a single JSON document.
// Every mutation rewrites the whole file through a temp-file rename, so
// a crash mid-write never leaves a truncated store behind. Suited to
// single-user local data; the SQLite store is the default.
type JSONFileStore struct {
	mu   sync.Mutex
	path string
	doc  fileDocument
}

var _ Repository = (*JSONFileStore)(nil)

// OpenJSONFile loads the store at path, creating an empty one if the
// file does not exist.
func OpenJSONFile(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{
		path: path,
		doc: fileDocument{
			Questions: make(map[string][]quiz.Question),
			Progress:  make(map[string]competency.UserProgress),
		},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}
	if s.doc.Questions == nil {
		s.doc.Questions = make(map[string][]quiz.Question)
	}
	if s.doc.Progress == nil {
		s.doc.Progress = make(map[string]competency.UserProgress)
	}
	return s, nil
}

// save writes the whole document atomically. Callers hold the lock.
func (s *JSONFileStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// ListQuestions returns every stored question of the given type.
func (s *JSONFileStore) ListQuestions(_ context.Context, quizType quiz.Type) ([]quiz.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := s.doc.Questions[string(quizType)]
	out := make([]quiz.Question, len(questions))
	copy(out, questions)
	return out, nil
}

// ReplaceQuestions swaps the stored question set for a quiz type.
func (s *JSONFileStore) ReplaceQuestions(_ context.Context, quizType quiz.Type, questions []quiz.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]quiz.Question, len(questions))
	copy(stored, questions)
	s.doc.Questions[string(quizType)] = stored
	return s.save()
}

// CreateResult appends a result and returns its ID.
func (s *JSONFileStore) CreateResult(_ context.Context, result quiz.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result.SessionID == "" {
		result.SessionID = uuid.NewString()
	}
	s.doc.Results = append(s.doc.Results, result)
	if err := s.save(); err != nil {
		s.doc.Results = s.doc.Results[:len(s.doc.Results)-1]
		return "", err
	}
	return result.SessionID, nil
}

// UpdateResult applies the non-nil fields of patch to a stored result.
func (s *JSONFileStore) UpdateResult(_ context.Context, id string, patch ResultPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Results {
		if s.doc.Results[i].SessionID != id {
			continue
		}
		r := &s.doc.Results[i]
		if patch.Status != nil {
			r.Status = *patch.Status
		}
		if patch.Score != nil {
			r.Score = *patch.Score
		}
		if patch.Percentage != nil {
			r.Percentage = *patch.Percentage
		}
		if patch.Duration != nil {
			r.Duration = *patch.Duration
		}
		if patch.EndedAt != nil {
			r.EndedAt = *patch.EndedAt
		}
		return s.save()
	}
	return ErrNotFound
}

// Results returns stored results, newest first.
func (s *JSONFileStore) Results(_ context.Context, userID string) ([]quiz.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []quiz.Result
	for _, r := range s.doc.Results {
		if userID == "" || r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

// Progress returns every progress row for a user, ordered by area.
func (s *JSONFileStore) Progress(_ context.Context, userID string) ([]competency.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []competency.UserProgress
	for _, p := range s.doc.Progress {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Area < out[j].Area })
	return out, nil
}

// CreateProgress inserts a progress row, assigning an ID when absent.
func (s *JSONFileStore) CreateProgress(_ context.Context, entry competency.UserProgress) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.doc.Progress[entry.ID] = entry
	if err := s.save(); err != nil {
		delete(s.doc.Progress, entry.ID)
		return "", err
	}
	return entry.ID, nil
}

// UpdateProgress applies the non-nil fields of patch to a progress row.
func (s *JSONFileStore) UpdateProgress(_ context.Context, id string, patch competency.ProgressPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.patchProgressLocked(id, patch); err != nil {
		return err
	}
	return s.save()
}

// BulkUpdateProgress applies each change, saving once at the end.
func (s *JSONFileStore) BulkUpdateProgress(_ context.Context, changes []competency.ProgressChange) error {
	if len(changes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range changes {
		if err := s.patchProgressLocked(c.ID, c.Patch); err != nil {
			return fmt.Errorf("progress %s: %w", c.ID, err)
		}
	}
	return s.save()
}

func (s *JSONFileStore) patchProgressLocked(id string, patch competency.ProgressPatch) error {
	p, ok := s.doc.Progress[id]
	if !ok {
		return ErrNotFound
	}
	if patch.CurrentLevel != nil {
		p.CurrentLevel = *patch.CurrentLevel
	}
	if patch.TargetLevel != nil {
		p.TargetLevel = *patch.TargetLevel
	}
	if patch.Percentage != nil {
		p.Percentage = *patch.Percentage
	}
	if patch.LastAssessment != nil {
		p.LastAssessment = *patch.LastAssessment
	}
	if patch.NextAssessment != nil {
		p.NextAssessment = *patch.NextAssessment
	}
	s.doc.Progress[id] = p
	return nil
}

// CurrentUser returns the stored user, creating a default on first use.
func (s *JSONFileStore) CurrentUser(_ context.Context) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.User != nil {
		return *s.doc.User, nil
	}
	u := defaultUser()
	s.doc.User = &u
	if err := s.save(); err != nil {
		s.doc.User = nil
		return User{}, err
	}
	return u, nil
}

// Close is a no-op; every mutation is flushed as it happens.
func (s *JSONFileStore) Close() error {
	return nil
}
