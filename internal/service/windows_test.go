package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateWindowsSingleDayHourly(t *testing.T) {
	monday := day(2026, 9, 7)

	windows := GenerateWindows(monday, monday, 60, []time.Weekday{time.Monday})

	// starts 08:00 through 16:30 inclusive: a 17:00 start would end at 18:00,
	// which is not strictly before the cutoff
	require.Len(t, windows, 18)
	assert.Equal(t, monday.Add(8*time.Hour), windows[0].Start)
	assert.Equal(t, monday.Add(9*time.Hour), windows[0].End)
	last := windows[len(windows)-1]
	assert.Equal(t, monday.Add(16*time.Hour+30*time.Minute), last.Start)
	assert.Equal(t, monday.Add(17*time.Hour+30*time.Minute), last.End)
}

func TestGenerateWindowsEndBeforeCutoff(t *testing.T) {
	monday := day(2026, 9, 7)

	windows := GenerateWindows(monday, monday, 90, []time.Weekday{time.Monday})

	for _, w := range windows {
		assert.True(t, w.End.Before(monday.Add(18*time.Hour)), "window ending %v must end before 18:00", w.End)
		assert.Equal(t, 90*time.Minute, w.End.Sub(w.Start))
	}
	// latest viable start for 90 minutes is 16:00
	last := windows[len(windows)-1]
	assert.Equal(t, monday.Add(16*time.Hour), last.Start)
}

func TestGenerateWindowsSkipsDisallowedWeekdays(t *testing.T) {
	monday := day(2026, 9, 7)
	sunday := day(2026, 9, 13)

	windows := GenerateWindows(monday, sunday, 60, []time.Weekday{time.Tuesday, time.Thursday})

	require.NotEmpty(t, windows)
	for _, w := range windows {
		weekday := w.Start.Weekday()
		assert.True(t, weekday == time.Tuesday || weekday == time.Thursday, "unexpected weekday %v", weekday)
	}
}

func TestGenerateWindowsOrderedAndDeterministic(t *testing.T) {
	monday := day(2026, 9, 7)
	friday := day(2026, 9, 11)
	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

	first := GenerateWindows(monday, friday, 60, weekdays)
	second := GenerateWindows(monday, friday, 60, weekdays)

	require.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i].Start.After(first[i-1].Start))
	}
}

func TestGenerateWindowsDegenerateInput(t *testing.T) {
	monday := day(2026, 9, 7)

	assert.Nil(t, GenerateWindows(monday, monday, 0, nil))
	assert.Nil(t, GenerateWindows(monday.AddDate(0, 0, 1), monday, 60, nil))
	// a duration longer than the placeable day yields nothing
	assert.Empty(t, GenerateWindows(monday, monday, 11*60, []time.Weekday{time.Monday}))
}

func TestWindowDate(t *testing.T) {
	w := Window{Start: time.Date(2026, 9, 7, 10, 30, 0, 0, time.UTC)}
	assert.Equal(t, day(2026, 9, 7), w.Date())
}
