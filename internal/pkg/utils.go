package pkg

import (
	"time"
)

// GetFirstTimeOfWeek returns Monday 00:00 UTC of the week containing t.
func GetFirstTimeOfWeek(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
}

// WeekID names the week containing t, e.g. "2026-10-19".
func WeekID(t time.Time) string {
	return GetFirstTimeOfWeek(t).Format(time.DateOnly)
}
