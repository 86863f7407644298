// Package results persists finished session results and feeds completed
// assessments into competency progress.
package results

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/competency"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/gateway"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"
)

// ResultStore is the slice of the repository contract the gateway needs.
type ResultStore interface {
	CreateResult(ctx context.Context, result quiz.Result) (string, error)
	Results(ctx context.Context, userID string) ([]quiz.Result, error)
}

// Options carries the gateway's collaborators. Tracker may be nil, in
// which case saves skip the progress step.
type Options struct {
	Store   ResultStore
	Retryer *gateway.Retryer
	Loader  *quiz.Loader
	Tracker *competency.Tracker
	Catalog []competency.Area

	// Cache fronts History reads; Save invalidates the saving user's
	// entry. Nil disables caching.
	Cache *gateway.Cache[[]quiz.Result]
	TTL   time.Duration
}

// Gateway saves results through the retry policy and, for completed
// scored assessments, records per-area competency levels derived from
// the result.
type Gateway struct {
	store   ResultStore
	retryer *gateway.Retryer
	loader  *quiz.Loader
	tracker *competency.Tracker
	catalog []competency.Area
	cache   *gateway.Cache[[]quiz.Result]
	ttl     time.Duration
}

// NewGateway wires a result gateway.
func NewGateway(opts Options) *Gateway {
	return &Gateway{
		store:   opts.Store,
		retryer: opts.Retryer,
		loader:  opts.Loader,
		tracker: opts.Tracker,
		catalog: opts.Catalog,
		cache:   opts.Cache,
		ttl:     opts.TTL,
	}
}

// Save persists the result, retrying transient store failures. The
// store's final error comes back unchanged when every attempt fails.
// Progress recording is best-effort: a failure there is logged as a
// warning, never surfaced, because the result itself is already safe.
func (g *Gateway) Save(ctx context.Context, result quiz.Result) (string, error) {
	id, err := gateway.Retry(ctx, g.retryer, func(ctx context.Context) (string, error) {
		return g.store.CreateResult(ctx, result)
	})
	if err != nil {
		return "", err
	}

	if g.cache != nil {
		g.cache.Invalidate(historyKey(result.UserID))
	}

	if g.shouldRecordProgress(result) {
		if err := g.recordProgress(ctx, result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: result saved but progress not updated: %v\n", err)
		}
	}
	return id, nil
}

// History returns the user's stored results, newest first, cached per
// user until the next save or TTL expiry.
func (g *Gateway) History(ctx context.Context, userID string) ([]quiz.Result, error) {
	key := historyKey(userID)
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			return cached, nil
		}
	}

	results, err := gateway.Retry(ctx, g.retryer, func(ctx context.Context) ([]quiz.Result, error) {
		return g.store.Results(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		g.cache.Set(key, results, g.ttl)
	}
	return results, nil
}

func historyKey(userID string) string {
	return "results:" + userID
}

// shouldRecordProgress filters out results that say nothing about
// competency: surveys, abandoned attempts and results with no scorable
// questions.
func (g *Gateway) shouldRecordProgress(result quiz.Result) bool {
	return g.tracker != nil &&
		result.Status == quiz.StatusCompleted &&
		result.QuizType == quiz.TypeAssessment &&
		result.TotalPossible > 0
}

// recordProgress converts each assessed area's percentage into a level
// on that area's scale and records it against the tracker.
func (g *Gateway) recordProgress(ctx context.Context, result quiz.Result) error {
	questions, err := g.loader.Load(ctx, result.QuizType)
	if err != nil {
		return fmt.Errorf("load questions for progress mapping: %w", err)
	}

	byID := make(map[string]quiz.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	type areaScore struct {
		earned   int
		possible int
	}
	scores := make(map[string]*areaScore)

	for _, r := range result.Responses {
		q, ok := byID[r.QuestionID]
		if !ok || !q.Scored() {
			continue
		}
		areaID, ok := competency.AreaForCategory(g.catalog, q.Category)
		if !ok {
			continue
		}
		s := scores[areaID]
		if s == nil {
			s = &areaScore{}
			scores[areaID] = s
		}
		s.possible += q.Points
		if r.Correct {
			s.earned += q.Points
		}
	}

	assessedAt := result.EndedAt
	if assessedAt.IsZero() {
		assessedAt = time.Now()
	}

	var firstErr error
	for areaID, s := range scores {
		if s.possible == 0 {
			continue
		}
		area, ok := competency.FindArea(g.catalog, areaID)
		if !ok {
			continue
		}
		level := levelForScore(s.earned, s.possible, area.MaxLevel())
		if _, err := g.tracker.RecordAssessment(ctx, areaID, level, assessedAt); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("record %s: %w", areaID, err)
			}
		}
	}
	return firstErr
}

// levelForScore maps an earned/possible pair onto a level scale:
// round(fraction × maxLevel), clamped to [0, maxLevel].
func levelForScore(earned, possible, maxLevel int) int {
	if possible <= 0 || maxLevel <= 0 {
		return 0
	}
	level := int(math.Round(float64(earned) / float64(possible) * float64(maxLevel)))
	if level < 0 {
		return 0
	}
	if level > maxLevel {
		return maxLevel
	}
	return level
}
