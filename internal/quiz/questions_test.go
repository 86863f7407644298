package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/gateway"
)

// fakeSource implements QuestionSource with scriptable failures.
type fakeSource struct {
	questions []Question
	failures  int
	calls     int
}

func (f *fakeSource) ListQuestions(_ context.Context, _ Type) ([]Question, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("store unavailable")
	}
	return f.questions, nil
}

func testLoader(source *fakeSource, ttl time.Duration) *Loader {
	retryer := gateway.NewRetryer(gateway.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond})
	return NewLoader(source, retryer, gateway.NewCache[[]Question](time.Minute), ttl)
}

func unorderedQuestions() []Question {
	q1 := scoredQuestion("q1", 10, "A")
	q1.Order = 2
	q2 := scoredQuestion("q2", 10, "B")
	q2.Order = 1
	inactive := scoredQuestion("q3", 10, "C")
	inactive.Order = 0
	inactive.Active = false
	return []Question{q1, q2, inactive}
}

func TestLoader_SortsAndFilters(t *testing.T) {
	source := &fakeSource{questions: unorderedQuestions()}
	loader := testLoader(source, time.Minute)

	got, err := loader.Load(context.Background(), TypeAssessment)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("questions = %d, want 2 (inactive filtered)", len(got))
	}
	if got[0].ID != "q2" || got[1].ID != "q1" {
		t.Errorf("order = %s,%s, want q2,q1", got[0].ID, got[1].ID)
	}
}

func TestLoader_ServesFromCacheWhileFresh(t *testing.T) {
	source := &fakeSource{questions: unorderedQuestions()}
	loader := testLoader(source, time.Minute)

	ctx := context.Background()
	if _, err := loader.Load(ctx, TypeAssessment); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if _, err := loader.Load(ctx, TypeAssessment); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if source.calls != 1 {
		t.Errorf("source calls = %d, want 1 (second load cached)", source.calls)
	}
}

func TestLoader_RetriesTransientFailures(t *testing.T) {
	source := &fakeSource{questions: unorderedQuestions(), failures: 2}
	loader := testLoader(source, time.Minute)

	got, err := loader.Load(context.Background(), TypeAssessment)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if source.calls != 3 {
		t.Errorf("source calls = %d, want 3", source.calls)
	}
	if len(got) != 2 {
		t.Errorf("questions = %d, want 2", len(got))
	}
}

func TestLoader_ExhaustedRetriesPropagateError(t *testing.T) {
	source := &fakeSource{failures: 10}
	loader := testLoader(source, time.Minute)

	_, err := loader.Load(context.Background(), TypeAssessment)
	if err == nil {
		t.Fatal("expected an error")
	}
	if source.calls != 3 {
		t.Errorf("source calls = %d, want 3 (1 attempt + 2 retries)", source.calls)
	}
	// A failed load must not poison the cache.
	source.failures = 0
	if _, err := loader.Load(context.Background(), TypeAssessment); err != nil {
		t.Fatalf("Load after recovery: %v", err)
	}
}

func TestLoader_InvalidateForcesRefetch(t *testing.T) {
	source := &fakeSource{questions: unorderedQuestions()}
	loader := testLoader(source, time.Minute)

	ctx := context.Background()
	_, _ = loader.Load(ctx, TypeAssessment)
	loader.Invalidate(TypeAssessment)
	_, _ = loader.Load(ctx, TypeAssessment)

	if source.calls != 2 {
		t.Errorf("source calls = %d, want 2", source.calls)
	}
}

func TestLoader_CacheKeyedByQuizType(t *testing.T) {
	source := &fakeSource{questions: unorderedQuestions()}
	loader := testLoader(source, time.Minute)

	ctx := context.Background()
	_, _ = loader.Load(ctx, TypeAssessment)
	_, _ = loader.Load(ctx, TypeSurvey)

	if source.calls != 2 {
		t.Errorf("source calls = %d, want 2 (one per quiz type)", source.calls)
	}
}
