package quiz

import "testing"

func scoredQuestion(id string, points int, correct ...string) Question {
	return Question{
		ID:     id,
		Prompt: "prompt " + id,
		Options: []Option{
			{Label: "A", Text: "first"},
			{Label: "B", Text: "second"},
			{Label: "C", Text: "third"},
			{Label: "D", Text: "fourth"},
		},
		CorrectLabels: correct,
		Category:      "leadership",
		Points:        points,
		Active:        true,
	}
}

func surveyQuestion(id string) Question {
	q := scoredQuestion(id, 0)
	q.CorrectLabels = nil
	return q
}

func answer(questionID string, selected ...string) Response {
	return Response{QuestionID: questionID, Selected: selected}
}

func TestScore_ThreeQuestionQuiz(t *testing.T) {
	questions := []Question{
		scoredQuestion("q1", 10, "A"),
		scoredQuestion("q2", 10, "B"),
		scoredQuestion("q3", 10, "C"),
	}
	responses := []Response{
		answer("q1", "A"), // correct
		answer("q2", "C"), // incorrect
		answer("q3", "C"), // correct
	}

	tally := Score(questions, responses)
	if tally.Score != 20 {
		t.Errorf("Score = %d, want 20", tally.Score)
	}
	if tally.TotalPossible != 30 {
		t.Errorf("TotalPossible = %d, want 30", tally.TotalPossible)
	}
	if tally.Percentage != 67 {
		t.Errorf("Percentage = %d, want 67", tally.Percentage)
	}
	if !tally.CorrectByQuestion["q1"] || tally.CorrectByQuestion["q2"] || !tally.CorrectByQuestion["q3"] {
		t.Errorf("CorrectByQuestion = %v, want q1 and q3 correct", tally.CorrectByQuestion)
	}
}

func TestScore_MultiSelectSupersetIsWrong(t *testing.T) {
	questions := []Question{scoredQuestion("q1", 10, "A", "C")}

	cases := []struct {
		name     string
		selected []string
		want     int
	}{
		{"exact match", []string{"A", "C"}, 10},
		{"exact match reversed", []string{"C", "A"}, 10},
		{"superset", []string{"A", "B", "C"}, 0},
		{"subset", []string{"A"}, 0},
		{"disjoint", []string{"B", "D"}, 0},
		{"duplicated exact", []string{"A", "A", "C"}, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tally := Score(questions, []Response{answer("q1", tc.selected...)})
			if tally.Score != tc.want {
				t.Errorf("Score = %d, want %d", tally.Score, tc.want)
			}
		})
	}
}

func TestScore_SurveyItemsExcluded(t *testing.T) {
	questions := []Question{
		scoredQuestion("q1", 10, "A"),
		surveyQuestion("s1"),
	}
	responses := []Response{
		answer("q1", "A"),
		answer("s1", "B"),
	}

	tally := Score(questions, responses)
	if tally.TotalPossible != 10 {
		t.Errorf("TotalPossible = %d, want 10 (survey item excluded)", tally.TotalPossible)
	}
	if tally.Score != 10 {
		t.Errorf("Score = %d, want 10", tally.Score)
	}
	if _, tracked := tally.CorrectByQuestion["s1"]; tracked {
		t.Error("survey item should not appear in CorrectByQuestion")
	}
}

func TestScore_AllSurveyPercentageZero(t *testing.T) {
	questions := []Question{surveyQuestion("s1"), surveyQuestion("s2")}
	tally := Score(questions, []Response{answer("s1", "A"), answer("s2", "B")})
	if tally.TotalPossible != 0 || tally.Score != 0 || tally.Percentage != 0 {
		t.Errorf("tally = %+v, want all zero", tally)
	}
}

func TestScore_OrderIndependent(t *testing.T) {
	questions := []Question{
		scoredQuestion("q1", 5, "A"),
		scoredQuestion("q2", 7, "B", "C"),
		scoredQuestion("q3", 3, "D"),
	}
	forward := []Response{answer("q1", "A"), answer("q2", "C", "B"), answer("q3", "A")}
	backward := []Response{answer("q3", "A"), answer("q2", "C", "B"), answer("q1", "A")}

	a := Score(questions, forward)
	b := Score(questions, backward)
	if a.Score != b.Score || a.Percentage != b.Percentage {
		t.Errorf("forward = %+v, backward = %+v, want identical", a, b)
	}
}

func TestScore_MonotonicInCorrectResponses(t *testing.T) {
	questions := []Question{
		scoredQuestion("q1", 10, "A"),
		scoredQuestion("q2", 10, "B"),
		scoredQuestion("q3", 10, "C"),
	}

	responses := []Response{answer("q1", "A")}
	prev := Score(questions, responses).Score

	// Adding one more correct response never decreases the score.
	for _, extra := range []Response{answer("q2", "B"), answer("q3", "C")} {
		responses = append(responses, extra)
		got := Score(questions, responses).Score
		if got < prev {
			t.Fatalf("score decreased from %d to %d after adding a correct response", prev, got)
		}
		prev = got
	}
}

func TestScore_PercentageBounds(t *testing.T) {
	questions := []Question{
		scoredQuestion("q1", 1, "A"),
		scoredQuestion("q2", 100, "B"),
	}
	inputs := [][]Response{
		nil,
		{answer("q1", "A")},
		{answer("q1", "A"), answer("q2", "B")},
		{answer("q1", "D"), answer("q2", "D")},
	}
	for _, responses := range inputs {
		tally := Score(questions, responses)
		if tally.Percentage < 0 || tally.Percentage > 100 {
			t.Errorf("Percentage = %d for %v, want within [0,100]", tally.Percentage, responses)
		}
	}
}

func TestScore_UnansweredCountTowardPossible(t *testing.T) {
	questions := []Question{
		scoredQuestion("q1", 10, "A"),
		scoredQuestion("q2", 10, "B"),
	}
	tally := Score(questions, []Response{answer("q1", "A")})
	if tally.TotalPossible != 20 {
		t.Errorf("TotalPossible = %d, want 20", tally.TotalPossible)
	}
	if tally.Percentage != 50 {
		t.Errorf("Percentage = %d, want 50", tally.Percentage)
	}
}
