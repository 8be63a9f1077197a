package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
	Custom    Frequency = "custom"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly, Yearly, Custom:
		return true
	}
	return false
}

// ErrNeverFires is returned for a custom expression with no matching instant
var ErrNeverFires = errors.New("recurrence expression never fires")

var ErrUnknownFrequency = errors.New("unknown frequency")

// RecurrenceSyntaxError describes a malformed custom expression
type RecurrenceSyntaxError struct {
	Expression string
	Reason     string
}

func (e *RecurrenceSyntaxError) Error() string {
	return fmt.Sprintf("invalid recurrence expression %q: %s", e.Expression, e.Reason)
}

func (e *RecurrenceSyntaxError) StatusCode() int { return 422 }

// Standard minute hour day-of-month month day-of-week; descriptors and seconds are refused.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// reachability search start; a 5 year search from here covers every leap day
var searchFrom = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func parse(expr string) (cron.Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, &RecurrenceSyntaxError{Expression: expr, Reason: fmt.Sprintf("expected 5 fields, got %d", len(fields))}
	}
	sched, err := parser.Parse(strings.Join(fields, " "))
	if err != nil {
		return nil, &RecurrenceSyntaxError{Expression: expr, Reason: err.Error()}
	}
	return sched, nil
}

// ValidateExpression checks syntax only. An expression that parses but can never
// fire (such as "0 0 31 2 *") is accepted with a warning.
func ValidateExpression(expr string) ([]string, error) {
	sched, err := parse(expr)
	if err != nil {
		return nil, err
	}
	if sched.Next(searchFrom).IsZero() {
		return []string{fmt.Sprintf("expression %q matches no calendar date and will never run", expr)}, nil
	}
	return nil, nil
}

// Validate checks a frequency and its expression together
func Validate(freq Frequency, expr string) ([]string, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
	}
	if freq != Custom {
		return nil, nil
	}
	if strings.TrimSpace(expr) == "" {
		return nil, &RecurrenceSyntaxError{Expression: expr, Reason: "custom frequency requires an expression"}
	}
	return ValidateExpression(expr)
}

// NextDue returns the first due instant strictly after from
func NextDue(freq Frequency, expr string, from time.Time) (time.Time, error) {
	switch freq {
	case Daily:
		return from.AddDate(0, 0, 1), nil
	case Weekly:
		return from.AddDate(0, 0, 7), nil
	case Monthly:
		return addMonths(from, 1, from.Day()), nil
	case Quarterly:
		return addMonths(from, 3, from.Day()), nil
	case Yearly:
		return addMonths(from, 12, from.Day()), nil
	case Custom:
		return nextCustom(expr, from)
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
}

// NextDueAfter returns the first instant of the series anchored at anchor that
// falls strictly after after. Calendar frequencies keep the anchor's day of month,
// so a series anchored on Jan 31 runs Feb 29, Mar 31, Apr 30.
func NextDueAfter(freq Frequency, expr string, anchor, after time.Time) (time.Time, error) {
	switch freq {
	case Daily:
		return nextByDays(anchor, after, 1), nil
	case Weekly:
		return nextByDays(anchor, after, 7), nil
	case Monthly:
		return nextByMonths(anchor, after, 1), nil
	case Quarterly:
		return nextByMonths(anchor, after, 3), nil
	case Yearly:
		return nextByMonths(anchor, after, 12), nil
	case Custom:
		return nextCustom(expr, after)
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
}

func nextCustom(expr string, from time.Time) (time.Time, error) {
	sched, err := parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	next := sched.Next(from)
	if next.IsZero() {
		return time.Time{}, ErrNeverFires
	}
	return next, nil
}

func nextByDays(anchor, after time.Time, days int) time.Time {
	k := 1
	if after.After(anchor) {
		step := time.Duration(days) * 24 * time.Hour
		k = int(after.Sub(anchor)/step) + 1
	}
	next := anchor.AddDate(0, 0, k*days)
	for !next.After(after) {
		k++
		next = anchor.AddDate(0, 0, k*days)
	}
	return next
}

func nextByMonths(anchor, after time.Time, months int) time.Time {
	diff := (after.Year()-anchor.Year())*12 + int(after.Month()-anchor.Month())
	k := diff / months
	if k < 1 {
		k = 1
	}
	next := addMonths(anchor, k*months, anchor.Day())
	for !next.After(after) {
		k++
		next = addMonths(anchor, k*months, anchor.Day())
	}
	return next
}

// addMonths moves t by n calendar months onto day, clamped to the target month's last day
func addMonths(t time.Time, n, day int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}
