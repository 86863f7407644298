package quiz

import "time"

// Type identifies a question set.
type Type string

const (
	// TypeAssessment is the scored competency assessment.
	TypeAssessment Type = "primary-assessment"

	// TypeSurvey is the unscored opinion survey. Its questions carry no
	// correct answer set and zero points.
	TypeSurvey Type = "opinion-survey"
)

// Status is the terminal disposition of a finished session.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Option is a single labeled choice on a question.
type Option struct {
	// Label is the short identifier the learner selects, e.g. "A".
	Label string `json:"label"`

	// Text is the displayed option text.
	Text string `json:"text"`
}

// Question is one item of a question set. Immutable once loaded into a
// session.
type Question struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`

	// Options holds 2-4 labeled choices.
	Options []Option `json:"options"`

	// CorrectLabels is the set of correct option labels. One label makes
	// the question single-select, several make it multi-select. Empty for
	// survey items, which are excluded from scoring.
	CorrectLabels []string `json:"correct_labels,omitempty"`

	// Category tags the question with a competency category used for
	// progress mapping.
	Category string `json:"category"`

	// Points is the value the question contributes when answered with the
	// exact correct set.
	Points int `json:"points"`

	// Order is the display position within the question set.
	Order int `json:"order"`

	// Active marks the question as servable. Inactive questions are
	// filtered out at load time.
	Active bool `json:"active"`
}

// Scored reports whether the question participates in score aggregation.
func (q Question) Scored() bool {
	return len(q.CorrectLabels) > 0 && q.Points > 0
}

// MultiSelect reports whether more than one option must be selected.
func (q Question) MultiSelect() bool {
	return len(q.CorrectLabels) > 1
}

// IsCorrect reports whether selected is exactly the correct option set.
// Comparison is set equality: order-independent, duplicates ignored,
// supersets and subsets both fail. Always false for unscored questions.
func (q Question) IsCorrect(selected []string) bool {
	if len(q.CorrectLabels) == 0 {
		return false
	}
	return sameSet(selected, q.CorrectLabels)
}

// Response records the learner's answer to one question. A session keeps
// at most one response per question; re-answering overwrites.
type Response struct {
	QuestionID string `json:"question_id"`

	// Selected is the set of chosen option labels.
	Selected []string `json:"selected"`

	// Correct is derived at answer time: true iff Selected equals the
	// question's correct set exactly.
	Correct bool `json:"correct"`

	// TimeSpent is the seconds between the question being presented and
	// this answer being recorded.
	TimeSpent int `json:"time_spent"`

	AnsweredAt time.Time `json:"answered_at"`
}

// Result is the immutable record of a finished or abandoned session.
type Result struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	QuizType  Type   `json:"quiz_type"`

	// Responses are ordered by question display order.
	Responses []Response `json:"responses"`

	Score         int `json:"score"`
	TotalPossible int `json:"total_possible"`

	// Percentage is Score/TotalPossible rounded to the nearest integer,
	// 0 when nothing was scorable.
	Percentage int `json:"percentage"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	// Duration is EndedAt − StartedAt in whole seconds.
	Duration int `json:"duration"`

	Status Status `json:"status"`
}

// sameSet compares two label slices as sets.
func sameSet(a, b []string) bool {
	as := make(map[string]bool, len(a))
	for _, l := range a {
		as[l] = true
	}
	bs := make(map[string]bool, len(b))
	for _, l := range b {
		bs[l] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for l := range as {
		if !bs[l] {
			return false
		}
	}
	return true
}
