package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrInvalidTransition = errors.New("invalid schedule transition")
	ErrForbidden         = errors.New("not allowed to modify this schedule")
	ErrScheduleConflict  = errors.New("schedule run already in progress")
)

// ScheduleConflictError is returned when a run is requested while another one is in flight
type ScheduleConflictError struct {
	ScheduleID string
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("schedule %s already has a run in progress", e.ScheduleID)
}

func (e *ScheduleConflictError) Unwrap() error   { return ErrScheduleConflict }
func (e *ScheduleConflictError) StatusCode() int { return 409 }

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) StatusCode() int { return e.status }

func notFound(id string) error {
	return &statusError{err: fmt.Errorf("%w: %s", ErrScheduleNotFound, id), status: 404}
}

func forbidden() error {
	return &statusError{err: ErrForbidden, status: 403}
}

func invalidTransition(err error) error {
	return &statusError{err: err, status: 409}
}
