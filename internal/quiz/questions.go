package quiz

import (
	"context"
	"sort"
	"time"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/gateway"
)

// QuestionSource is the slice of the repository contract the loader needs.
type QuestionSource interface {
	ListQuestions(ctx context.Context, quizType Type) ([]Question, error)
}

// Loader serves ordered question sets, fronting the source with a TTL
// cache and retry-wrapped fetches. Questions come back filtered to active
// ones and sorted by display order, ready to hand to a session.
type Loader struct {
	source  QuestionSource
	retryer *gateway.Retryer
	cache   *gateway.Cache[[]Question]
	ttl     time.Duration
}

// NewLoader creates a Loader. A zero ttl uses the cache default.
func NewLoader(source QuestionSource, retryer *gateway.Retryer, cache *gateway.Cache[[]Question], ttl time.Duration) *Loader {
	return &Loader{source: source, retryer: retryer, cache: cache, ttl: ttl}
}

// Load returns the question set for quizType, from cache when fresh.
// Misses fetch through the retrying gateway and repopulate the cache; on
// exhausted retries the source's error propagates unchanged.
func (l *Loader) Load(ctx context.Context, quizType Type) ([]Question, error) {
	key := cacheKey(quizType)
	if cached, ok := l.cache.Get(key); ok {
		return cached, nil
	}

	fetched, err := gateway.Retry(ctx, l.retryer, func(ctx context.Context) ([]Question, error) {
		return l.source.ListQuestions(ctx, quizType)
	})
	if err != nil {
		return nil, err
	}

	questions := prepare(fetched)
	l.cache.Set(key, questions, l.ttl)
	return questions, nil
}

// Invalidate drops the cached set for quizType, forcing the next Load to
// hit the source.
func (l *Loader) Invalidate(quizType Type) {
	l.cache.Invalidate(cacheKey(quizType))
}

func cacheKey(quizType Type) string {
	return "questions:" + string(quizType)
}

// prepare filters out inactive questions and sorts by display order,
// breaking ties by ID for a deterministic sequence.
func prepare(questions []Question) []Question {
	active := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.Active {
			active = append(active, q)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Order != active[j].Order {
			return active[i].Order < active[j].Order
		}
		return active[i].ID < active[j].ID
	})
	return active
}
