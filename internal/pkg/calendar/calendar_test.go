package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	in := time.Date(2024, 3, 5, 23, 59, 59, 123, loc)

	got := Midnight(in)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestISOWeekKey(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{
			name: "mid-year week",
			date: time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
			want: "2024-W10",
		},
		{
			name: "single-digit week is zero padded",
			date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			want: "2024-W02",
		},
		{
			name: "early january belongs to previous ISO year",
			date: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "2026-W53",
		},
		{
			name: "late december belongs to next ISO year",
			date: time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
			want: "2025-W01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ISOWeekKey(tt.date))
		})
	}
}

func TestIsWeekend(t *testing.T) {
	// 2024-03-04 is a Monday.
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	for d := 0; d < 7; d++ {
		day := monday.AddDate(0, 0, d)
		want := day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
		assert.Equal(t, want, IsWeekend(day), day.Weekday().String())
	}
}

func TestSystemClockToday(t *testing.T) {
	c := NewClock()

	today := c.Today()

	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, 0, today.Minute())
	assert.Equal(t, 0, today.Second())
}
