package models

import (
	"fmt"
	"sort"
	"strings"
)

// NotFoundError indicates the requested record does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConflictError indicates the operation contradicts the record's current
// state, such as assigning an employee who already holds a project
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ValidationError collects per-field validation failures
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError with a single field failure
func NewValidationError(field, message string) *ValidationError {
	verr := &ValidationError{}
	verr.Add(field, message)
	return verr
}

// Add records a failure for a field; the first message per field wins
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, message := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, message))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// PartialStateError reports a dual-write operation whose first write
// committed and whose second write failed, leaving the employee
// back-reference and the project assignment list diverged. Committed names
// the side that was written ("employee" or "project").
type PartialStateError struct {
	EmployeeID string
	ProjectID  string
	Committed  string
	Err        error
}

func (e *PartialStateError) Error() string {
	return fmt.Sprintf(
		"assignment left in partial state (employee %s, project %s, %s side committed): %v",
		e.EmployeeID, e.ProjectID, e.Committed, e.Err,
	)
}

func (e *PartialStateError) Unwrap() error {
	return e.Err
}
