package service

import "time"

// Window search boundaries: candidate starts step through 08:00-17:00 in
// 30-minute increments and a window is kept only while its end stays before
// 18:00. The end is the start instant plus the duration.
const (
	windowDayStartHour = 8
	windowDayEndHour   = 17
	windowStepMinutes  = 30
	windowLatestHour   = 18
)

// Window is a concrete (start, end) pair considered for placement.
type Window struct {
	Start time.Time
	End   time.Time
}

// Date returns the window's calendar day at midnight.
func (w Window) Date() time.Time {
	return time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
}

// GenerateWindows enumerates candidate windows for every calendar day in
// [startDate, endDate] whose weekday is allowed. The result is a finite,
// deterministic sequence ordered by start instant.
func GenerateWindows(startDate, endDate time.Time, durationMinutes int, allowedWeekdays []time.Weekday) []Window {
	if durationMinutes <= 0 || endDate.Before(startDate) {
		return nil
	}

	allowed := make(map[time.Weekday]bool, len(allowedWeekdays))
	for _, day := range allowedWeekdays {
		allowed[day] = true
	}

	duration := time.Duration(durationMinutes) * time.Minute
	var windows []Window

	for day := midnight(startDate); !day.After(midnight(endDate)); day = day.AddDate(0, 0, 1) {
		if len(allowed) > 0 && !allowed[day.Weekday()] {
			continue
		}
		latest := day.Add(time.Duration(windowLatestHour) * time.Hour)
		start := day.Add(time.Duration(windowDayStartHour) * time.Hour)
		dayEnd := day.Add(time.Duration(windowDayEndHour) * time.Hour)
		for ; !start.After(dayEnd); start = start.Add(windowStepMinutes * time.Minute) {
			end := start.Add(duration)
			if !end.Before(latest) {
				continue
			}
			windows = append(windows, Window{Start: start, End: end})
		}
	}

	return windows
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
