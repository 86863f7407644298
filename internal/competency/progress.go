package competency

import (
	"context"
	"math"
	"time"
)

// UserProgress is one user's standing in one competency area. One row per
// (user, area): created on first assessment, mutated on every level or
// target change, never deleted by the engine.
type UserProgress struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Area   string `json:"area"`

	CurrentLevel int `json:"current_level"`
	TargetLevel  int `json:"target_level"`

	// Percentage is CalculateProgress(CurrentLevel, TargetLevel), kept
	// denormalized so list screens need no recomputation.
	Percentage int `json:"percentage"`

	LastAssessment time.Time `json:"last_assessment"`
	NextAssessment time.Time `json:"next_assessment"`
}

// CalculateProgress converts a current/target level pair into a clamped
// percentage: min(round(current/target × 100), 100), and 0 whenever the
// target is not positive.
func CalculateProgress(current, target int) int {
	if target <= 0 {
		return 0
	}
	pct := int(math.Round(float64(current) / float64(target) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// ProgressPatch carries partial-field updates for an existing progress
// row. Nil fields are left untouched by the store.
type ProgressPatch struct {
	CurrentLevel   *int       `json:"current_level,omitempty"`
	TargetLevel    *int       `json:"target_level,omitempty"`
	Percentage     *int       `json:"percentage,omitempty"`
	LastAssessment *time.Time `json:"last_assessment,omitempty"`
	NextAssessment *time.Time `json:"next_assessment,omitempty"`
}

// ProgressChange pairs a row ID with its patch for bulk updates.
type ProgressChange struct {
	ID    string        `json:"id"`
	Patch ProgressPatch `json:"patch"`
}

// ProgressStore is the slice of the repository contract the tracker needs.
// BulkUpdateProgress is all-or-nothing per item but not necessarily atomic
// across items.
type ProgressStore interface {
	Progress(ctx context.Context, userID string) ([]UserProgress, error)
	CreateProgress(ctx context.Context, entry UserProgress) (string, error)
	UpdateProgress(ctx context.Context, id string, patch ProgressPatch) error
	BulkUpdateProgress(ctx context.Context, changes []ProgressChange) error
}
