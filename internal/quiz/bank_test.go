package quiz

import (
	"errors"
	"testing"
)

const validBankJSON = `{
  "quiz_type": "primary-assessment",
  "questions": [
    {
      "id": "q1",
      "title": "Delegation",
      "prompt": "Which practices delegate effectively?",
      "options": [
        {"label": "A", "text": "Define the outcome"},
        {"label": "B", "text": "Prescribe every step"},
        {"label": "C", "text": "Agree on checkpoints"}
      ],
      "correct_labels": ["A", "C"],
      "category": "leadership",
      "points": 10,
      "active": true
    },
    {
      "id": "q2",
      "prompt": "Pick the active listening behavior.",
      "options": [
        {"label": "A", "text": "Interrupt with solutions"},
        {"label": "B", "text": "Paraphrase what you heard"}
      ],
      "correct_labels": ["B"],
      "category": "communication",
      "points": 5,
      "active": true
    }
  ]
}`

func TestParseBank_Valid(t *testing.T) {
	bank, err := ParseBank([]byte(validBankJSON))
	if err != nil {
		t.Fatalf("ParseBank: %v", err)
	}
	if bank.QuizType != TypeAssessment {
		t.Errorf("QuizType = %s, want %s", bank.QuizType, TypeAssessment)
	}
	if len(bank.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(bank.Questions))
	}
	if !bank.Questions[0].MultiSelect() {
		t.Error("q1 should be multi-select")
	}
	// Missing order defaults to file position.
	if bank.Questions[0].Order != 1 || bank.Questions[1].Order != 2 {
		t.Errorf("orders = %d,%d, want 1,2", bank.Questions[0].Order, bank.Questions[1].Order)
	}
}

func TestValidateBank_RejectsMalformedJSON(t *testing.T) {
	err := ValidateBank([]byte(`{"quiz_type": `))
	var invalid *ErrInvalidBank
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidBank", err)
	}
}

func TestValidateBank_RejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"unknown quiz type", `{"quiz_type": "pop-quiz", "questions": [{"id": "q", "prompt": "p", "options": [{"label":"A","text":"a"},{"label":"B","text":"b"}]}]}`},
		{"no questions", `{"quiz_type": "primary-assessment", "questions": []}`},
		{"single option", `{"quiz_type": "primary-assessment", "questions": [{"id": "q", "prompt": "p", "options": [{"label":"A","text":"a"}]}]}`},
		{"five options", `{"quiz_type": "primary-assessment", "questions": [{"id": "q", "prompt": "p", "options": [{"label":"A","text":"a"},{"label":"B","text":"b"},{"label":"C","text":"c"},{"label":"D","text":"d"},{"label":"E","text":"e"}]}]}`},
		{"negative points", `{"quiz_type": "primary-assessment", "questions": [{"id": "q", "prompt": "p", "points": -1, "options": [{"label":"A","text":"a"},{"label":"B","text":"b"}]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBank([]byte(tc.raw))
			var invalid *ErrInvalidBank
			if !errors.As(err, &invalid) {
				t.Errorf("err = %v, want ErrInvalidBank", err)
			}
		})
	}
}

func TestParseBank_RejectsDanglingCorrectLabel(t *testing.T) {
	raw := `{
	  "quiz_type": "primary-assessment",
	  "questions": [{
	    "id": "q1", "prompt": "p",
	    "options": [{"label":"A","text":"a"},{"label":"B","text":"b"}],
	    "correct_labels": ["Z"], "points": 10
	  }]
	}`
	_, err := ParseBank([]byte(raw))
	var invalid *ErrInvalidBank
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidBank", err)
	}
}

func TestParseBank_RejectsDuplicateIDs(t *testing.T) {
	raw := `{
	  "quiz_type": "opinion-survey",
	  "questions": [
	    {"id": "q1", "prompt": "p", "options": [{"label":"A","text":"a"},{"label":"B","text":"b"}]},
	    {"id": "q1", "prompt": "p", "options": [{"label":"A","text":"a"},{"label":"B","text":"b"}]}
	  ]
	}`
	_, err := ParseBank([]byte(raw))
	var invalid *ErrInvalidBank
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidBank", err)
	}
}

func TestDecodeOptions_DegradesToFallback(t *testing.T) {
	fallback := []Option{{Label: "A", Text: "default"}}

	got := DecodeOptions(`[{"label":"A","text":"one"},{"label":"B","text":"two"}]`, fallback)
	if len(got) != 2 || got[1].Label != "B" {
		t.Errorf("DecodeOptions valid payload = %v, want 2 parsed options", got)
	}

	// Corrupted payloads never error; they fall back.
	got = DecodeOptions(`[{"label": broken`, fallback)
	if len(got) != 1 || got[0].Text != "default" {
		t.Errorf("DecodeOptions corrupted payload = %v, want fallback", got)
	}

	got = DecodeOptions("", fallback)
	if len(got) != 1 || got[0].Text != "default" {
		t.Errorf("DecodeOptions empty payload = %v, want fallback", got)
	}
}
