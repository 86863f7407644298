package competency

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/gateway"
)

// DefaultIntervalMonths is the default gap between an assessment and the
// next scheduled one. The six-month rule comes from the assessment policy,
// not from any invariant, so it stays configurable.
const DefaultIntervalMonths = 6

// OverallProgress summarizes a user's standing across all tracked areas.
type OverallProgress struct {
	// Average is the unweighted mean of per-area percentages, 0 when no
	// area is tracked.
	Average float64

	// ByArea maps area ID to its percentage.
	ByArea map[string]int

	// Areas is the number of tracked areas.
	Areas int

	// NextAssessment is the earliest upcoming assessment date across all
	// areas, nil when none are tracked.
	NextAssessment *time.Time
}

// UpcomingAssessment is one area due for reassessment.
type UpcomingAssessment struct {
	Area           string
	NextAssessment time.Time

	// DaysUntilDue is the ceiling of the remaining time in days. Negative
	// for overdue areas.
	DaysUntilDue int
}

// Tracker maintains the per-area progress working set for a single user.
// It exclusively owns the in-memory rows; the backing store stays the
// system of record and every write goes through the retrying gateway.
type Tracker struct {
	mu sync.Mutex

	store   ProgressStore
	retryer *gateway.Retryer

	userID         string
	catalog        []Area
	intervalMonths int

	rows   map[string]*UserProgress
	loaded bool

	now func() time.Time
}

// NewTracker creates a tracker for userID. A non-positive intervalMonths
// uses DefaultIntervalMonths.
func NewTracker(store ProgressStore, retryer *gateway.Retryer, userID string, catalog []Area, intervalMonths int) *Tracker {
	if intervalMonths <= 0 {
		intervalMonths = DefaultIntervalMonths
	}
	return &Tracker{
		store:          store,
		retryer:        retryer,
		userID:         userID,
		catalog:        catalog,
		intervalMonths: intervalMonths,
		rows:           make(map[string]*UserProgress),
		now:            time.Now,
	}
}

// Load fetches the user's progress rows into the working set, replacing
// any previous contents.
func (t *Tracker) Load(ctx context.Context) error {
	entries, err := gateway.Retry(ctx, t.retryer, func(ctx context.Context) ([]UserProgress, error) {
		return t.store.Progress(ctx, t.userID)
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = make(map[string]*UserProgress, len(entries))
	for i := range entries {
		entry := entries[i]
		t.rows[entry.Area] = &entry
	}
	t.loaded = true
	return nil
}

func (t *Tracker) ensureLoaded(ctx context.Context) error {
	t.mu.Lock()
	loaded := t.loaded
	t.mu.Unlock()
	if loaded {
		return nil
	}
	return t.Load(ctx)
}

// RecordAssessment applies a fresh assessment outcome for an area. An
// existing row gets the new level, assessment date, recomputed percentage
// against its current target, and a rescheduled next assessment; a first
// assessment creates the row with the catalog's maximum level as target.
func (t *Tracker) RecordAssessment(ctx context.Context, areaID string, newLevel int, date time.Time) (UserProgress, error) {
	if err := t.ensureLoaded(ctx); err != nil {
		return UserProgress{}, err
	}

	area, ok := FindArea(t.catalog, areaID)
	if !ok {
		return UserProgress{}, fmt.Errorf("unknown competency area %q", areaID)
	}

	next := date.AddDate(0, t.intervalMonths, 0)

	t.mu.Lock()
	row, exists := t.rows[areaID]
	if exists {
		row.CurrentLevel = newLevel
		row.Percentage = CalculateProgress(newLevel, row.TargetLevel)
		row.LastAssessment = date
		row.NextAssessment = next
		updated := *row
		t.mu.Unlock()

		patch := ProgressPatch{
			CurrentLevel:   &updated.CurrentLevel,
			Percentage:     &updated.Percentage,
			LastAssessment: &updated.LastAssessment,
			NextAssessment: &updated.NextAssessment,
		}
		err := t.retryer.Do(ctx, func(ctx context.Context) error {
			return t.store.UpdateProgress(ctx, updated.ID, patch)
		})
		return updated, err
	}

	target := area.MaxLevel()
	entry := UserProgress{
		UserID:         t.userID,
		Area:           areaID,
		CurrentLevel:   newLevel,
		TargetLevel:    target,
		Percentage:     CalculateProgress(newLevel, target),
		LastAssessment: date,
		NextAssessment: next,
	}
	t.mu.Unlock()

	id, err := gateway.Retry(ctx, t.retryer, func(ctx context.Context) (string, error) {
		return t.store.CreateProgress(ctx, entry)
	})
	if err != nil {
		return UserProgress{}, err
	}
	entry.ID = id

	t.mu.Lock()
	t.rows[areaID] = &entry
	t.mu.Unlock()
	return entry, nil
}

// SetTargets updates target levels for several areas at once. Changes to
// existing rows go out as a single bulk update when more than one row
// changed; genuinely new rows are created individually. The creates are
// independent of the bulk batch, so a bulk failure never drops them.
func (t *Tracker) SetTargets(ctx context.Context, targets map[string]int) error {
	if err := t.ensureLoaded(ctx); err != nil {
		return err
	}

	now := t.now()
	next := now.AddDate(0, t.intervalMonths, 0)

	var changes []ProgressChange
	var created []UserProgress

	t.mu.Lock()
	for areaID, target := range targets {
		if _, ok := FindArea(t.catalog, areaID); !ok {
			t.mu.Unlock()
			return fmt.Errorf("unknown competency area %q", areaID)
		}

		if row, exists := t.rows[areaID]; exists {
			if row.TargetLevel == target {
				continue
			}
			row.TargetLevel = target
			row.Percentage = CalculateProgress(row.CurrentLevel, target)
			changes = append(changes, ProgressChange{
				ID: row.ID,
				Patch: ProgressPatch{
					TargetLevel: &row.TargetLevel,
					Percentage:  &row.Percentage,
				},
			})
			continue
		}

		created = append(created, UserProgress{
			UserID:         t.userID,
			Area:           areaID,
			CurrentLevel:   0,
			TargetLevel:    target,
			Percentage:     0,
			NextAssessment: next,
		})
	}
	t.mu.Unlock()

	// Deterministic order for the bulk batch and the creates.
	sort.Slice(changes, func(i, j int) bool { return changes[i].ID < changes[j].ID })
	sort.Slice(created, func(i, j int) bool { return created[i].Area < created[j].Area })

	var errs []error

	switch len(changes) {
	case 0:
	case 1:
		change := changes[0]
		if err := t.retryer.Do(ctx, func(ctx context.Context) error {
			return t.store.UpdateProgress(ctx, change.ID, change.Patch)
		}); err != nil {
			errs = append(errs, err)
		}
	default:
		if err := t.retryer.Do(ctx, func(ctx context.Context) error {
			return t.store.BulkUpdateProgress(ctx, changes)
		}); err != nil {
			errs = append(errs, err)
		}
	}

	for i := range created {
		entry := created[i]
		id, err := gateway.Retry(ctx, t.retryer, func(ctx context.Context) (string, error) {
			return t.store.CreateProgress(ctx, entry)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entry.ID = id
		t.mu.Lock()
		t.rows[entry.Area] = &entry
		t.mu.Unlock()
	}

	return errors.Join(errs...)
}

// Overall returns the cross-area summary for the working set.
func (t *Tracker) Overall() OverallProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	overall := OverallProgress{ByArea: make(map[string]int, len(t.rows))}
	sum := 0
	for areaID, row := range t.rows {
		overall.ByArea[areaID] = row.Percentage
		sum += row.Percentage
		overall.Areas++

		if !row.NextAssessment.IsZero() &&
			(overall.NextAssessment == nil || row.NextAssessment.Before(*overall.NextAssessment)) {
			next := row.NextAssessment
			overall.NextAssessment = &next
		}
	}
	if overall.Areas > 0 {
		overall.Average = float64(sum) / float64(overall.Areas)
	}
	return overall
}

// Upcoming returns areas whose next assessment falls within withinDays,
// sorted soonest first. Overdue areas carry a negative DaysUntilDue.
func (t *Tracker) Upcoming(withinDays int) []UpcomingAssessment {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	cutoff := now.AddDate(0, 0, withinDays)

	var due []UpcomingAssessment
	for areaID, row := range t.rows {
		if row.NextAssessment.IsZero() || row.NextAssessment.After(cutoff) {
			continue
		}
		days := int(math.Ceil(row.NextAssessment.Sub(now).Seconds() / 86400))
		due = append(due, UpcomingAssessment{
			Area:           areaID,
			NextAssessment: row.NextAssessment,
			DaysUntilDue:   days,
		})
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextAssessment.Equal(due[j].NextAssessment) {
			return due[i].NextAssessment.Before(due[j].NextAssessment)
		}
		return due[i].Area < due[j].Area
	})
	return due
}

// Rows returns a copy of the tracked progress rows sorted by area.
func (t *Tracker) Rows() []UserProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]UserProgress, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Area < rows[j].Area })
	return rows
}
