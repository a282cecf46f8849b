// SPDX-License-Identifier: MPL-2.0

// Package issue provides structured, user-facing errors with remediation
// suggestions. Fatal paths render the operation that failed, the resource
// involved, and concrete commands the user can run to fix the problem.
package issue

import (
	"errors"
	"strings"

	"github.com/charmbracelet/glamour"
)

// render is a seam for tests; glamour.Render shells out to terminal
// detection which is not deterministic under test.
var render = glamour.Render

type (
	// ActionableError is an error with context for user-facing messages:
	// what operation failed, what resource was involved, and how to fix it.
	ActionableError struct {
		// Operation describes what was being attempted
		// (e.g., "fetch template catalog").
		Operation string

		// Resource identifies the file, path, or entity involved (optional).
		Resource string

		// Suggestions provides hints on how to fix the issue (optional).
		Suggestions []string

		// Cause is the underlying error that triggered this error (optional).
		Cause error
	}
)

// NewActionableError creates an ActionableError with the given operation.
func NewActionableError(operation string) *ActionableError {
	return &ActionableError{Operation: operation}
}

// WrapWithOperation wraps an error with operation context.
func WrapWithOperation(err error, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Cause: err}
}

// WithResource sets the resource and returns the error for chaining.
func (e *ActionableError) WithResource(resource string) *ActionableError {
	e.Resource = resource
	return e
}

// WithSuggestion appends a remediation suggestion and returns the error
// for chaining.
func (e *ActionableError) WithSuggestion(s string) *ActionableError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// WithCause sets the underlying cause and returns the error for chaining.
func (e *ActionableError) WithCause(err error) *ActionableError {
	e.Cause = err
	return e
}

// Error implements the error interface. Returns a concise message suitable
// for default (non-verbose) output.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)

	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}

	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}

	return msg.String()
}

// Unwrap returns the underlying cause for use with errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Remediation returns the styled remediation text for the error, or ""
// when there are no suggestions. The suggestions are rendered as a
// markdown list so commands appear in code spans.
func (e *ActionableError) Remediation() string {
	if len(e.Suggestions) == 0 {
		return ""
	}

	var md strings.Builder
	md.WriteString("## How to fix\n\n")
	for _, s := range e.Suggestions {
		md.WriteString("- " + s + "\n")
	}

	out, err := render(md.String(), "auto")
	if err != nil {
		// Fall back to the raw markdown; remediation must never be lost
		// to a rendering failure.
		return md.String()
	}
	return out
}

// Actionable extracts an ActionableError from err's chain, if present.
func Actionable(err error) (*ActionableError, bool) {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
