package quiz

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidBank wraps a schema or consistency failure in an imported
// question bank.
type ErrInvalidBank struct {
	Err error
}

func (e *ErrInvalidBank) Error() string {
	return fmt.Sprintf("invalid question bank: %v", e.Err)
}

func (e *ErrInvalidBank) Unwrap() error { return e.Err }

// Bank is the import format for a question set.
type Bank struct {
	QuizType  Type       `json:"quiz_type"`
	Questions []Question `json:"questions"`
}

var (
	bankSchemaOnce sync.Once
	bankSchema     *jsonschema.Schema
	bankSchemaErr  error
)

// compiledBankSchema compiles BankSchema once and caches the result.
func compiledBankSchema() (*jsonschema.Schema, error) {
	bankSchemaOnce.Do(func() {
		defBytes, err := json.Marshal(BankSchema)
		if err != nil {
			bankSchemaErr = fmt.Errorf("marshal bank schema: %w", err)
			return
		}
		var parsed any
		if err := json.Unmarshal(defBytes, &parsed); err != nil {
			bankSchemaErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://question-bank.json"
		if err := c.AddResource(schemaURL, parsed); err != nil {
			bankSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		bankSchema, bankSchemaErr = c.Compile(schemaURL)
	})
	return bankSchema, bankSchemaErr
}

// ValidateBank checks raw JSON against BankSchema. Returns *ErrInvalidBank
// on malformed JSON or schema violations.
func ValidateBank(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidBank{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledBankSchema()
	if err != nil {
		return &ErrInvalidBank{Err: err}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidBank{Err: err}
	}
	return nil
}

// ParseBank validates and decodes a question-bank file. Beyond the schema
// it enforces that every correct label refers to an existing option and
// that question IDs are unique within the bank.
func ParseBank(raw []byte) (Bank, error) {
	if err := ValidateBank(raw); err != nil {
		return Bank{}, err
	}

	var bank Bank
	if err := json.Unmarshal(raw, &bank); err != nil {
		return Bank{}, &ErrInvalidBank{Err: err}
	}

	seen := make(map[string]bool, len(bank.Questions))
	for i, q := range bank.Questions {
		if seen[q.ID] {
			return Bank{}, &ErrInvalidBank{Err: fmt.Errorf("duplicate question id %q", q.ID)}
		}
		seen[q.ID] = true

		labels := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			labels[opt.Label] = true
		}
		for _, correct := range q.CorrectLabels {
			if !labels[correct] {
				return Bank{}, &ErrInvalidBank{
					Err: fmt.Errorf("question %q: correct label %q has no matching option", q.ID, correct),
				}
			}
		}

		// Default display order follows file position.
		if bank.Questions[i].Order == 0 {
			bank.Questions[i].Order = i + 1
		}
	}

	return bank, nil
}

// DecodeOptions parses an option list stored as JSON text. Corrupted
// payloads are recoverable data: they degrade to the fallback with a
// logged warning instead of failing the read.
func DecodeOptions(raw string, fallback []Option) []Option {
	if raw == "" {
		return fallback
	}
	var opts []Option
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		log.Printf("warning: malformed options payload, using default: %v", err)
		return fallback
	}
	return opts
}
