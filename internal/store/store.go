// Package store defines the repository contract the assessment engine is
// injected with, plus the concrete backing stores: a SQLite relational
// store and a JSON-file list store. The engine itself only ever sees the
// Repository interface.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/competency"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"
)

// ErrNotFound signals a lookup or patch against a record that does not
// exist.
var ErrNotFound = errors.New("record not found")

// User identifies the person taking assessments.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// ResultPatch carries partial-field updates for a stored result. Nil
// fields are left untouched.
type ResultPatch struct {
	Status     *quiz.Status `json:"status,omitempty"`
	Score      *int         `json:"score,omitempty"`
	Percentage *int         `json:"percentage,omitempty"`
	Duration   *int         `json:"duration,omitempty"`
	EndedAt    *time.Time   `json:"ended_at,omitempty"`
}

// Repository is the abstract contract over the backing store. Both the
// relational and list-oriented implementations satisfy it; the engine's
// loaders, tracker and persistence gateway consume narrow slices of it.
type Repository interface {
	// ListQuestions returns every stored question of the given type, in
	// no guaranteed order. Loaders sort and filter.
	ListQuestions(ctx context.Context, quizType quiz.Type) ([]quiz.Question, error)

	// ReplaceQuestions swaps the stored question set for a quiz type,
	// used by bank import.
	ReplaceQuestions(ctx context.Context, quizType quiz.Type, questions []quiz.Question) error

	CreateResult(ctx context.Context, result quiz.Result) (string, error)
	UpdateResult(ctx context.Context, id string, patch ResultPatch) error

	// Results returns stored results, newest first. An empty userID
	// returns everything.
	Results(ctx context.Context, userID string) ([]quiz.Result, error)

	Progress(ctx context.Context, userID string) ([]competency.UserProgress, error)
	CreateProgress(ctx context.Context, entry competency.UserProgress) (string, error)
	UpdateProgress(ctx context.Context, id string, patch competency.ProgressPatch) error

	// BulkUpdateProgress applies every change. Items are applied in
	// order; the first failure stops the batch.
	BulkUpdateProgress(ctx context.Context, changes []competency.ProgressChange) error

	// CurrentUser returns the active local user, creating a default one
	// on first use.
	CurrentUser(ctx context.Context) (User, error)

	Close() error
}

// DefaultDBPath resolves the database file path in priority order:
// 1. COMPETENCES_DB environment variable
// 2. $XDG_DATA_HOME/competences/competences.db
// 3. ~/.local/share/competences/competences.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("COMPETENCES_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "competences", "competences.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
