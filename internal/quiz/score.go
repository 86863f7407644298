package quiz

import "math"

// Tally is the aggregate outcome of scoring a question set against a set
// of responses.
type Tally struct {
	// Score is the sum of points for questions answered with the exact
	// correct option set.
	Score int

	// TotalPossible is the sum of points across all scorable questions,
	// answered or not.
	TotalPossible int

	// Percentage is Score/TotalPossible rounded to the nearest integer,
	// 0 when TotalPossible is 0.
	Percentage int

	// CorrectByQuestion maps question ID to per-question correctness for
	// every scorable question that received a response.
	CorrectByQuestion map[string]bool
}

// Score computes the aggregate score for questions against responses.
// It is pure and deterministic: the response list may arrive in any order,
// and questions without a correct answer set (survey items) or without a
// positive point value are retained in results but contribute nothing.
func Score(questions []Question, responses []Response) Tally {
	byQuestion := make(map[string]Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	tally := Tally{CorrectByQuestion: make(map[string]bool)}
	for _, q := range questions {
		if !q.Scored() {
			continue
		}
		tally.TotalPossible += q.Points

		r, answered := byQuestion[q.ID]
		if !answered {
			continue
		}
		correct := q.IsCorrect(r.Selected)
		tally.CorrectByQuestion[q.ID] = correct
		if correct {
			tally.Score += q.Points
		}
	}

	if tally.TotalPossible > 0 {
		tally.Percentage = int(math.Round(float64(tally.Score) / float64(tally.TotalPossible) * 100))
	}
	return tally
}
