package calendar

import (
	"fmt"
	"time"
)

// Clock supplies the current moment. Injected so services and tests
// control "now" instead of reading the system clock ambiently.
type Clock interface {
	Now() time.Time
	// Today is Now truncated to midnight in the local zone.
	Today() time.Time
}

type systemClock struct{}

func NewClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Today() time.Time {
	return Midnight(time.Now())
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ISOWeekKey returns the canonical period identifier for the ISO week
// containing t, e.g. "2024-W10".
func ISOWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
