package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetFirstTimeOfWeek(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday", time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 10, 25, 23, 59, 0, 0, time.UTC), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)},
		{"across month", time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC), time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)},
		{"non utc input", time.Date(2026, 10, 19, 1, 0, 0, 0, time.FixedZone("ICT", 7*3600)), time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetFirstTimeOfWeek(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestWeekID(t *testing.T) {
	a := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 10, 25, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-19", WeekID(a))
	assert.Equal(t, WeekID(a), WeekID(b))
	assert.NotEqual(t, WeekID(a), WeekID(b.Add(time.Minute)))
}
