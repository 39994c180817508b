// Package week provides the Monday-anchored week arithmetic used to
// partition assignments by calendar week.
package week

import (
	"fmt"
	"time"

	"rotaboard/internal/model"
)

// Monday returns the start-of-day Monday of the week containing t.
// Weeks run Monday-Sunday regardless of locale. All arithmetic uses
// local wall-clock date components; no timezone conversion.
func Monday(t time.Time) time.Time {
	offset := 1 - int(t.Weekday())
	if t.Weekday() == time.Sunday {
		offset = -6
	}
	d := t.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// ID returns the week identifier for the week containing t: the
// zero-padded YYYY-MM-DD date of its Monday. This string is the sole
// partition key for assignments.
func ID(t time.Time) string {
	m := Monday(t)
	return fmt.Sprintf("%04d-%02d-%02d", m.Year(), int(m.Month()), m.Day())
}

// Shift returns t moved by delta whole weeks. No bounds checking;
// arbitrarily far past and future weeks are navigable.
func Shift(t time.Time, delta int) time.Time {
	return t.AddDate(0, 0, 7*delta)
}

// Days returns the seven calendar dates of the week identified by
// weekID, Monday first. weekID must be a YYYY-MM-DD Monday stamp.
func Days(weekID string) ([]time.Time, error) {
	monday, err := time.ParseInLocation("2006-01-02", weekID, time.Local)
	if err != nil {
		return nil, fmt.Errorf("bad week id %q: %w", weekID, err)
	}
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days, nil
}

// DayOf maps a calendar date to its schedule weekday.
func DayOf(t time.Time) model.Weekday {
	switch t.Weekday() {
	case time.Monday:
		return model.Monday
	case time.Tuesday:
		return model.Tuesday
	case time.Wednesday:
		return model.Wednesday
	case time.Thursday:
		return model.Thursday
	case time.Friday:
		return model.Friday
	case time.Saturday:
		return model.Saturday
	default:
		return model.Sunday
	}
}
