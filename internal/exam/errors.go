package exam

import (
	"errors"
	"fmt"
)

// Sentinels the stores report; the service maps them onto the outcome
// a caller sees (validation / conflict / fault).
var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrResultNotFound  = errors.New("result not found")
	ErrDuplicateResult = errors.New("result already exists for student and course")
)

// ValidationError rejects a submission before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}

// ConflictError is the expected outcome of a duplicate submission.
// It is not a system fault and is never retried.
type ConflictError struct {
	Matric     string
	CourseCode string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("result already recorded for %s in %s", e.Matric, e.CourseCode)
}

// StoreError wraps a backing-store failure during scoring/persistence.
// Surfaced to the caller as a server fault; the queue keeps draining.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }
