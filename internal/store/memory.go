package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/competency"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"
)

// MemoryStore is an in-memory Repository for tests. Errs maps a method
// name ("CreateResult", "ListQuestions", ...) to a queue of errors
// returned by successive calls, which makes transient-failure behavior
// scriptable.
type MemoryStore struct {
	mu sync.Mutex

	user      User
	questions map[quiz.Type][]quiz.Question
	results   []quiz.Result
	progress  map[string]competency.UserProgress

	// Calls counts invocations per method name.
	Calls map[string]int

	// Errs queues errors per method name, consumed FIFO.
	Errs map[string][]error
}

var _ Repository = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory repository with a fixed
// test user.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		user:      User{ID: "user-1", DisplayName: "Test User"},
		questions: make(map[quiz.Type][]quiz.Question),
		progress:  make(map[string]competency.UserProgress),
		Calls:     make(map[string]int),
		Errs:      make(map[string][]error),
	}
}

// FailNext queues errs to be returned by the next calls to method.
func (s *MemoryStore) FailNext(method string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errs[method] = append(s.Errs[method], errs...)
}

// nextErr pops the queued error for method, counting the call. Callers
// hold the lock.
func (s *MemoryStore) nextErr(method string) error {
	s.Calls[method]++
	queue := s.Errs[method]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	s.Errs[method] = queue[1:]
	return err
}

func (s *MemoryStore) ListQuestions(_ context.Context, quizType quiz.Type) ([]quiz.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("ListQuestions"); err != nil {
		return nil, err
	}
	out := make([]quiz.Question, len(s.questions[quizType]))
	copy(out, s.questions[quizType])
	return out, nil
}

func (s *MemoryStore) ReplaceQuestions(_ context.Context, quizType quiz.Type, questions []quiz.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("ReplaceQuestions"); err != nil {
		return err
	}
	stored := make([]quiz.Question, len(questions))
	copy(stored, questions)
	s.questions[quizType] = stored
	return nil
}

func (s *MemoryStore) CreateResult(_ context.Context, result quiz.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("CreateResult"); err != nil {
		return "", err
	}
	if result.SessionID == "" {
		result.SessionID = uuid.NewString()
	}
	s.results = append(s.results, result)
	return result.SessionID, nil
}

func (s *MemoryStore) UpdateResult(_ context.Context, id string, patch ResultPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("UpdateResult"); err != nil {
		return err
	}
	for i := range s.results {
		if s.results[i].SessionID != id {
			continue
		}
		r := &s.results[i]
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
		return nil
	}
	return ErrNotFound
}

func (s *MemoryStore) Results(_ context.Context, userID string) ([]quiz.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("Results"); err != nil {
		return nil, err
	}
	var out []quiz.Result
	for _, r := range s.results {
		if userID == "" || r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (s *MemoryStore) Progress(_ context.Context, userID string) ([]competency.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("Progress"); err != nil {
		return nil, err
	}
	var out []competency.UserProgress
	for _, p := range s.progress {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Area < out[j].Area })
	return out, nil
}

func (s *MemoryStore) CreateProgress(_ context.Context, entry competency.UserProgress) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("CreateProgress"); err != nil {
		return "", err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.progress[entry.ID] = entry
	return entry.ID, nil
}

func (s *MemoryStore) UpdateProgress(_ context.Context, id string, patch competency.ProgressPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("UpdateProgress"); err != nil {
		return err
	}
	return s.patchLocked(id, patch)
}

func (s *MemoryStore) BulkUpdateProgress(_ context.Context, changes []competency.ProgressChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("BulkUpdateProgress"); err != nil {
		return err
	}
	for _, c := range changes {
		if err := s.patchLocked(c.ID, c.Patch); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) patchLocked(id string, patch competency.ProgressPatch) error {
	p, ok := s.progress[id]
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
	s.progress[id] = p
	return nil
}

func (s *MemoryStore) CurrentUser(_ context.Context) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.nextErr("CurrentUser"); err != nil {
		return User{}, err
	}
	return s.user, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
