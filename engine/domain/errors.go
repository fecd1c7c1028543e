package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification failures.
var (
	ErrEmptyTitle     = errors.New("title is required")
	ErrEmptyAbstract  = errors.New("abstract is required")
	ErrAgentExhausted = errors.New("agent exhausted its step budget without a final answer")
	ErrUnknownTool    = errors.New("agent requested an unknown tool")
)

// MalformedOutputError indicates the agent's final answer was not valid JSON.
// Raw carries the original text for diagnostics.
type MalformedOutputError struct {
	Raw     string
	Wrapped error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed agent output: %v (raw=%q)", e.Wrapped, e.Raw)
}

func (e *MalformedOutputError) Unwrap() error { return e.Wrapped }

// SchemaValidationError indicates parsed agent output failed the result schema.
type SchemaValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation: %s: %s (value=%q)", e.Field, e.Reason, e.Value)
}

// ToolInvocationError wraps a tool failure so the agent can record it as an
// observation instead of aborting the request.
type ToolInvocationError struct {
	Tool    string
	Wrapped error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Wrapped)
}

func (e *ToolInvocationError) Unwrap() error { return e.Wrapped }
