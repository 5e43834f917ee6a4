package models

import (
	"fmt"
	"time"
)

// Timeslot is one entry of the fixed grid of placeable time windows in a day.
// Start and end are wall-clock values in "15:04" form.
type Timeslot struct {
	ID              string    `db:"id" json:"id"`
	StartTime       string    `db:"start_time" json:"start_time"`
	EndTime         string    `db:"end_time" json:"end_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// StartMinutes returns the start as minutes since midnight.
func (t Timeslot) StartMinutes() (int, error) {
	return ClockToMinutes(t.StartTime)
}

// EndMinutes returns the end as minutes since midnight.
func (t Timeslot) EndMinutes() (int, error) {
	return ClockToMinutes(t.EndTime)
}

// ClockToMinutes parses an "HH:MM" value into minutes since midnight.
func ClockToMinutes(clock string) (int, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// MinutesToClock renders minutes since midnight as "HH:MM".
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
