package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("report not found")
	ErrForbidden = errors.New("not allowed to modify this report")
	ErrCompile   = errors.New("report compilation failed")
	ErrInvalid   = errors.New("invalid report definition")
)

// Violation is a single human-readable validation failure
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// ValidationError carries every violation found in a definition
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "invalid report definition: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error   { return ErrInvalid }
func (e *ValidationError) StatusCode() int { return 422 }
func (e *ValidationError) Details() any    { return e.Violations }

// CompileError means an unvalidated definition reached the compiler
type CompileError struct {
	ReportType string
	Reason     string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %s", e.ReportType, e.Reason)
}

func (e *CompileError) Unwrap() error { return ErrCompile }

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) StatusCode() int { return e.status }

func notFound(id string) error {
	return &statusError{err: fmt.Errorf("%w: %s", ErrNotFound, id), status: 404}
}

func forbidden() error {
	return &statusError{err: ErrForbidden, status: 403}
}

func badRequest(format string, args ...any) error {
	return &statusError{err: fmt.Errorf(format, args...), status: 400}
}
