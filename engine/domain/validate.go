package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidateQuery checks that a classification request carries both fields.
func ValidateQuery(q Query) error {
	if strings.TrimSpace(q.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(q.Abstract) == "" {
		return ErrEmptyAbstract
	}
	return nil
}

// rawResult mirrors Result with pointer fields so missing keys can be
// distinguished from zero values.
type rawResult struct {
	Category   *string  `json:"category"`
	Confidence *float64 `json:"confidence"`
	Rationale  *string  `json:"rationale"`
}

// ParseResult parses the agent's final answer text into a validated Result.
// The text must be a JSON object; anything else is a MalformedOutputError.
// A parsed object with a missing field, a category outside the four accepted
// literals, or a confidence outside [0,1] is a SchemaValidationError.
// No partial acceptance: either a fully valid Result or an error.
func ParseResult(raw string) (Result, error) {
	trimmed := strings.TrimSpace(raw)

	var parsed rawResult
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return Result{}, &MalformedOutputError{Raw: raw, Wrapped: err}
	}

	return validateParsed(parsed)
}

// validateParsed checks field presence, the category enumeration, and the
// confidence bounds.
func validateParsed(parsed rawResult) (Result, error) {
	if parsed.Category == nil {
		return Result{}, &SchemaValidationError{Field: "category", Reason: "missing"}
	}
	if parsed.Confidence == nil {
		return Result{}, &SchemaValidationError{Field: "confidence", Reason: "missing"}
	}
	if parsed.Rationale == nil {
		return Result{}, &SchemaValidationError{Field: "rationale", Reason: "missing"}
	}

	category := Category(strings.TrimSpace(*parsed.Category))
	if !ValidCategories[category] {
		return Result{}, &SchemaValidationError{
			Field:  "category",
			Value:  *parsed.Category,
			Reason: "not one of the accepted categories",
		}
	}

	if *parsed.Confidence < 0 || *parsed.Confidence > 1 {
		return Result{}, &SchemaValidationError{
			Field:  "confidence",
			Value:  fmt.Sprintf("%v", *parsed.Confidence),
			Reason: "outside [0,1]",
		}
	}

	return Result{
		Category:   category,
		Confidence: *parsed.Confidence,
		Rationale:  *parsed.Rationale,
	}, nil
}
