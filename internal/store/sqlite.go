package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/competency"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	email        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS questions (
	id             TEXT PRIMARY KEY,
	quiz_type      TEXT NOT NULL,
	title          TEXT NOT NULL,
	prompt         TEXT NOT NULL,
	options        TEXT NOT NULL,
	correct_labels TEXT NOT NULL DEFAULT '[]',
	category       TEXT NOT NULL DEFAULT '',
	points         INTEGER NOT NULL DEFAULT 0,
	position       INTEGER NOT NULL DEFAULT 0,
	active         INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS results (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	quiz_type      TEXT NOT NULL,
	responses      TEXT NOT NULL DEFAULT '[]',
	score          INTEGER NOT NULL DEFAULT 0,
	total_possible INTEGER NOT NULL DEFAULT 0,
	percentage     INTEGER NOT NULL DEFAULT 0,
	started_at     TEXT NOT NULL,
	ended_at       TEXT NOT NULL,
	duration       INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS progress (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	area            TEXT NOT NULL,
	current_level   INTEGER NOT NULL DEFAULT 0,
	target_level    INTEGER NOT NULL DEFAULT 0,
	percentage      INTEGER NOT NULL DEFAULT 0,
	last_assessment TEXT NOT NULL DEFAULT '',
	next_assessment TEXT NOT NULL DEFAULT '',
	UNIQUE (user_id, area)
);

CREATE INDEX IF NOT EXISTS idx_questions_type ON questions (quiz_type);
CREATE INDEX IF NOT EXISTS idx_results_user ON results (user_id);
CREATE INDEX IF NOT EXISTS idx_progress_user ON progress (user_id);
`

// SQLiteStore is the relational Repository backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Repository = (*SQLiteStore)(nil)

// OpenSQLite connects to the SQLite database at dsn, applies pragmas and
// creates the schema if needed.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for single-user local use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// ListQuestions returns every stored question of the given type.
func (s *SQLiteStore) ListQuestions(ctx context.Context, quizType quiz.Type) ([]quiz.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, prompt, options, correct_labels, category, points, position, active
		 FROM questions WHERE quiz_type = ?`, string(quizType))
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []quiz.Question
	for rows.Next() {
		var (
			q         quiz.Question
			optsRaw   string
			labelsRaw string
			active    int
		)
		if err := rows.Scan(&q.ID, &q.Title, &q.Prompt, &optsRaw, &labelsRaw,
			&q.Category, &q.Points, &q.Order, &active); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Options = quiz.DecodeOptions(optsRaw, nil)
		q.CorrectLabels = decodeLabels(labelsRaw)
		q.Active = active != 0
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ReplaceQuestions swaps the stored question set for a quiz type.
func (s *SQLiteStore) ReplaceQuestions(ctx context.Context, quizType quiz.Type, questions []quiz.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM questions WHERE quiz_type = ?`, string(quizType)); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	for _, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encode options for %s: %w", q.ID, err)
		}
		labels, err := json.Marshal(q.CorrectLabels)
		if err != nil {
			return fmt.Errorf("encode labels for %s: %w", q.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions
			 (id, quiz_type, title, prompt, options, correct_labels, category, points, position, active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, string(quizType), q.Title, q.Prompt, string(opts), string(labels),
			q.Category, q.Points, q.Order, boolInt(q.Active)); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}

// CreateResult stores a finished result and returns its ID. The session
// ID becomes the row ID; sessions guarantee at most one result each.
func (s *SQLiteStore) CreateResult(ctx context.Context, result quiz.Result) (string, error) {
	id := result.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	responses, err := json.Marshal(result.Responses)
	if err != nil {
		return "", fmt.Errorf("encode responses: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results
		 (id, user_id, quiz_type, responses, score, total_possible, percentage,
		  started_at, ended_at, duration, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, result.UserID, string(result.QuizType), string(responses),
		result.Score, result.TotalPossible, result.Percentage,
		encodeTime(result.StartedAt), encodeTime(result.EndedAt),
		result.Duration, string(result.Status))
	if err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}
	return id, nil
}

// UpdateResult applies the non-nil fields of patch to a stored result.
func (s *SQLiteStore) UpdateResult(ctx context.Context, id string, patch ResultPatch) error {
	var (
		sets []string
		args []any
	)
	if patch.Status != nil {
		sets, args = append(sets, "status = ?"), append(args, string(*patch.Status))
	}
	if patch.Score != nil {
		sets, args = append(sets, "score = ?"), append(args, *patch.Score)
	}
	if patch.Percentage != nil {
		sets, args = append(sets, "percentage = ?"), append(args, *patch.Percentage)
	}
	if patch.Duration != nil {
		sets, args = append(sets, "duration = ?"), append(args, *patch.Duration)
	}
	if patch.EndedAt != nil {
		sets, args = append(sets, "ended_at = ?"), append(args, encodeTime(*patch.EndedAt))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE results SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	return checkAffected(res)
}

// Results returns stored results, newest first. An empty userID returns
// everything.
func (s *SQLiteStore) Results(ctx context.Context, userID string) ([]quiz.Result, error) {
	query := `SELECT id, user_id, quiz_type, responses, score, total_possible,
	                 percentage, started_at, ended_at, duration, status
	          FROM results`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY started_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []quiz.Result
	for rows.Next() {
		var (
			r             quiz.Result
			quizType      string
			responsesRaw  string
			started, end  string
			status        string
		)
		if err := rows.Scan(&r.SessionID, &r.UserID, &quizType, &responsesRaw,
			&r.Score, &r.TotalPossible, &r.Percentage,
			&started, &end, &r.Duration, &status); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.QuizType = quiz.Type(quizType)
		r.Status = quiz.Status(status)
		r.StartedAt = decodeTime(started)
		r.EndedAt = decodeTime(end)
		if responsesRaw != "" {
			if err := json.Unmarshal([]byte(responsesRaw), &r.Responses); err != nil {
				return nil, fmt.Errorf("decode responses for %s: %w", r.SessionID, err)
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Progress returns every progress row for a user.
func (s *SQLiteStore) Progress(ctx context.Context, userID string) ([]competency.UserProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, area, current_level, target_level, percentage,
		        last_assessment, next_assessment
		 FROM progress WHERE user_id = ? ORDER BY area`, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var entries []competency.UserProgress
	for rows.Next() {
		var (
			p          competency.UserProgress
			last, next string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Area, &p.CurrentLevel,
			&p.TargetLevel, &p.Percentage, &last, &next); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		p.LastAssessment = decodeTime(last)
		p.NextAssessment = decodeTime(next)
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

// CreateProgress inserts a progress row, assigning an ID when absent.
func (s *SQLiteStore) CreateProgress(ctx context.Context, entry competency.UserProgress) (string, error) {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress
		 (id, user_id, area, current_level, target_level, percentage,
		  last_assessment, next_assessment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, entry.UserID, entry.Area, entry.CurrentLevel, entry.TargetLevel,
		entry.Percentage, encodeTime(entry.LastAssessment), encodeTime(entry.NextAssessment))
	if err != nil {
		return "", fmt.Errorf("insert progress: %w", err)
	}
	return id, nil
}

// UpdateProgress applies the non-nil fields of patch to a progress row.
func (s *SQLiteStore) UpdateProgress(ctx context.Context, id string, patch competency.ProgressPatch) error {
	res, err := s.execProgressPatch(ctx, s.db, id, patch)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	return checkAffected(res)
}

// BulkUpdateProgress applies each change inside one transaction.
func (s *SQLiteStore) BulkUpdateProgress(ctx context.Context, changes []competency.ProgressChange) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk update: %w", err)
	}
	defer tx.Rollback()

	for _, c := range changes {
		res, err := s.execProgressPatch(ctx, tx, c.ID, c.Patch)
		if err != nil {
			return err
		}
		if res != nil {
			if err := checkAffected(res); err != nil {
				return fmt.Errorf("progress %s: %w", c.ID, err)
			}
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) execProgressPatch(ctx context.Context, ex execer, id string, patch competency.ProgressPatch) (sql.Result, error) {
	var (
		sets []string
		args []any
	)
	if patch.CurrentLevel != nil {
		sets, args = append(sets, "current_level = ?"), append(args, *patch.CurrentLevel)
	}
	if patch.TargetLevel != nil {
		sets, args = append(sets, "target_level = ?"), append(args, *patch.TargetLevel)
	}
	if patch.Percentage != nil {
		sets, args = append(sets, "percentage = ?"), append(args, *patch.Percentage)
	}
	if patch.LastAssessment != nil {
		sets, args = append(sets, "last_assessment = ?"), append(args, encodeTime(*patch.LastAssessment))
	}
	if patch.NextAssessment != nil {
		sets, args = append(sets, "next_assessment = ?"), append(args, encodeTime(*patch.NextAssessment))
	}
	if len(sets) == 0 {
		return nil, nil
	}
	args = append(args, id)

	res, err := ex.ExecContext(ctx,
		"UPDATE progress SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return res, nil
}

// CurrentUser returns the single local user, creating a default on first
// use.
func (s *SQLiteStore) CurrentUser(ctx context.Context) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, email FROM users LIMIT 1`).
		Scan(&u.ID, &u.DisplayName, &u.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("load user: %w", err)
	}

	u = defaultUser()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, display_name, email) VALUES (?, ?, ?)`,
		u.ID, u.DisplayName, u.Email); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func defaultUser() User {
	return User{ID: uuid.NewString(), DisplayName: "Local User"}
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeLabels(raw string) []string {
	if raw == "" || raw == "[]" || raw == "null" {
		return nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return nil
	}
	return labels
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func decodeTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
