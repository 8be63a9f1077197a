package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestNextDue(t *testing.T) {
	tests := []struct {
		name string
		freq Frequency
		expr string
		from time.Time
		want time.Time
	}{
		{"daily", Daily, "", utc(2024, 1, 1, 0, 0), utc(2024, 1, 2, 0, 0)},
		{"weekly", Weekly, "", utc(2024, 3, 5, 9, 30), utc(2024, 3, 12, 9, 30)},
		{"monthly clamps to leap february", Monthly, "", utc(2024, 1, 31, 0, 0), utc(2024, 2, 29, 0, 0)},
		{"monthly clamps to short month", Monthly, "", utc(2023, 1, 31, 0, 0), utc(2023, 2, 28, 0, 0)},
		{"monthly across year end", Monthly, "", utc(2024, 12, 15, 8, 0), utc(2025, 1, 15, 8, 0)},
		{"quarterly", Quarterly, "", utc(2024, 11, 30, 0, 0), utc(2025, 2, 28, 0, 0)},
		{"yearly from leap day", Yearly, "", utc(2024, 2, 29, 0, 0), utc(2025, 2, 28, 0, 0)},
		{"custom weekdays at nine", Custom, "0 9 * * 1-5", utc(2024, 3, 8, 9, 0), utc(2024, 3, 11, 9, 0)},
		{"custom every 15 minutes", Custom, "*/15 * * * *", utc(2024, 3, 8, 9, 1), utc(2024, 3, 8, 9, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDue(tt.freq, tt.expr, tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.from))
		})
	}
}

func TestNextDueWeeklyIsSevenDays(t *testing.T) {
	from := utc(2024, 1, 1, 0, 0)
	for i := 0; i < 60; i++ {
		from = from.Add(37 * time.Hour)
		got, err := NextDue(Weekly, "", from)
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, got.Sub(from))
	}
}

func TestNextDueAfterStaysOnAnchor(t *testing.T) {
	anchor := utc(2024, 1, 1, 0, 0)

	// a run finishing five minutes late does not shift the series
	next, err := NextDueAfter(Daily, "", anchor, utc(2024, 1, 2, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 3, 0, 0), next)

	next, err = NextDueAfter(Daily, "", anchor, utc(2024, 1, 2, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 3, 0, 0), next)

	next, err = NextDueAfter(Weekly, "", anchor, anchor)
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 8, 0, 0), next)

	next, err = NextDueAfter(Daily, "", anchor, utc(2023, 6, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 2, 0, 0), next, "after before anchor yields the first step")
}

func TestNextDueAfterMonthlyKeepsAnchorDay(t *testing.T) {
	anchor := utc(2024, 1, 31, 6, 0)
	want := []time.Time{
		utc(2024, 2, 29, 6, 0),
		utc(2024, 3, 31, 6, 0),
		utc(2024, 4, 30, 6, 0),
		utc(2024, 5, 31, 6, 0),
	}

	due := anchor
	for _, w := range want {
		next, err := NextDueAfter(Monthly, "", anchor, due)
		require.NoError(t, err)
		assert.Equal(t, w, next)
		due = next
	}

	next, err := NextDueAfter(Quarterly, "", anchor, utc(2024, 5, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 7, 31, 6, 0), next)

	next, err = NextDueAfter(Yearly, "", utc(2024, 2, 29, 0, 0), utc(2027, 3, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2028, 2, 29, 0, 0), next)
}

func TestValidateExpression(t *testing.T) {
	warnings, err := ValidateExpression("30 2 1 * *")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	warnings, err = ValidateExpression("0 0 31 2 *")
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	bad := []string{"", "* * * *", "0 0 * * * *", "@daily", "61 * * * *", "0 25 * * *", "0 0 32 * *", "0 0 * 13 *", "x * * * *"}
	for _, expr := range bad {
		_, err := ValidateExpression(expr)
		var se *RecurrenceSyntaxError
		assert.True(t, errors.As(err, &se), expr)
	}
}

func TestNextDueUnreachableCustom(t *testing.T) {
	_, err := NextDue(Custom, "0 0 31 2 *", utc(2024, 1, 1, 0, 0))
	assert.ErrorIs(t, err, ErrNeverFires)
}

func TestValidateFrequency(t *testing.T) {
	_, err := Validate("hourly", "")
	assert.ErrorIs(t, err, ErrUnknownFrequency)

	_, err = Validate(Custom, " ")
	var se *RecurrenceSyntaxError
	assert.True(t, errors.As(err, &se))

	_, err = Validate(Monthly, "")
	assert.NoError(t, err)
}
