package quiz

// BankSchema is the JSON schema a question-bank file must satisfy before
// import. Option labels and correct labels are validated structurally here;
// cross-field checks (correct labels actually existing among the options)
// happen in ParseBank.
var BankSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"quiz_type": map[string]any{
			"type": "string",
			"enum": []any{string(TypeAssessment), string(TypeSurvey)},
		},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":     map[string]any{"type": "string", "minLength": 1},
					"title":  map[string]any{"type": "string"},
					"prompt": map[string]any{"type": "string", "minLength": 1},
					"options": map[string]any{
						"type":     "array",
						"minItems": 2,
						"maxItems": 4,
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"label": map[string]any{"type": "string", "minLength": 1},
								"text":  map[string]any{"type": "string", "minLength": 1},
							},
							"required":             []any{"label", "text"},
							"additionalProperties": false,
						},
					},
					"correct_labels": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string", "minLength": 1},
					},
					"category": map[string]any{"type": "string"},
					"points":   map[string]any{"type": "integer", "minimum": 0},
					"order":    map[string]any{"type": "integer", "minimum": 0},
					"active":   map[string]any{"type": "boolean"},
				},
				"required":             []any{"id", "prompt", "options"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"quiz_type", "questions"},
	"additionalProperties": false,
}
