// Package calendar provides local-date bucketing helpers: date keys,
// Monday-start week boundaries, and week/day distances.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the layout of a date key ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// LocalDateKey returns the zero-padded YYYY-MM-DD key for t using t's own
// calendar fields. No timezone conversion is applied.
func LocalDateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date key %q: %w", key, err)
	}
	return t, nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Monday returns midnight of the Monday of the week containing t.
// Sunday maps back six days; any other weekday maps back (weekday-1) days.
func Monday(t time.Time) time.Time {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// WeekStart returns the date key of the Monday of the week containing t.
func WeekStart(t time.Time) string {
	return LocalDateKey(Monday(t))
}

// DaysBetween returns the number of calendar days from a to b, ignoring
// time of day and DST shifts. Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ca := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	cb := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(cb.Sub(ca).Hours() / 24)
}

// WeeksBetween returns floor((WeekStart(b) - WeekStart(a)) / 7 days).
// The result is negative when b's week precedes a's.
func WeeksBetween(a, b time.Time) int {
	days := DaysBetween(Monday(a), Monday(b))
	if days < 0 && days%7 != 0 {
		return days/7 - 1
	}
	return days / 7
}

// WeeksBetweenKeys is WeeksBetween for two date keys.
func WeeksBetweenKeys(a, b string) (int, error) {
	ta, err := ParseDateKey(a, time.UTC)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDateKey(b, time.UTC)
	if err != nil {
		return 0, err
	}
	return WeeksBetween(ta, tb), nil
}

// WeekStartOfKey returns the Monday key of the week containing the given
// date key.
func WeekStartOfKey(key string) (string, error) {
	t, err := ParseDateKey(key, time.UTC)
	if err != nil {
		return "", err
	}
	return WeekStart(t), nil
}

// IsPast reports whether the date key is strictly before now's calendar day.
// Time of day is ignored. Unparseable keys are never in the past.
func IsPast(key string, now time.Time) bool {
	t, err := ParseDateKey(key, now.Location())
	if err != nil {
		return false
	}
	return DaysBetween(t, now) > 0
}

// DaysLeftInWeek returns how many days remain in t's Monday-Sunday week
// after t's day. Sunday has 0 remaining, Monday 6.
func DaysLeftInWeek(t time.Time) int {
	return (7 - int(t.Weekday())) % 7
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
