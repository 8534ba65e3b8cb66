package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 30, 0, 0, time.UTC)
}

func TestLocalDateKey_ZeroPadded(t *testing.T) {
	assert.Equal(t, "2024-01-05", LocalDateKey(date(2024, time.January, 5, 23)))
}

func TestLocalDateKey_UsesOwnLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 10th is still the 9th five hours west.
	ts := time.Date(2024, time.March, 10, 2, 0, 0, 0, time.UTC).In(loc)
	assert.Equal(t, "2024-03-09", LocalDateKey(ts))
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"monday maps to itself", date(2024, time.January, 15, 8), "2024-01-15"},
		{"wednesday", date(2024, time.January, 17, 8), "2024-01-15"},
		{"saturday", date(2024, time.January, 20, 8), "2024-01-15"},
		{"sunday maps back six days", date(2024, time.January, 21, 23), "2024-01-15"},
		{"crosses month boundary", date(2024, time.March, 2, 8), "2024-02-26"},
		{"crosses year boundary", date(2025, time.January, 1, 8), "2024-12-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.in))
		})
	}
}

func TestWeeksBetween(t *testing.T) {
	mon := date(2024, time.January, 15, 8)
	assert.Equal(t, 0, WeeksBetween(mon, date(2024, time.January, 21, 22)))
	assert.Equal(t, 1, WeeksBetween(mon, date(2024, time.January, 22, 1)))
	assert.Equal(t, 2, WeeksBetween(date(2024, time.January, 21, 8), date(2024, time.February, 1, 8)))
	assert.Equal(t, -1, WeeksBetween(mon, date(2024, time.January, 10, 8)))
}

func TestWeeksBetweenKeys(t *testing.T) {
	n, err := WeeksBetweenKeys("2024-01-15", "2024-02-05")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = WeeksBetweenKeys("garbage", "2024-02-05")
	assert.Error(t, err)
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	assert.Equal(t, 1, DaysBetween(date(2024, time.January, 15, 23), date(2024, time.January, 16, 0)))
	assert.Equal(t, 0, DaysBetween(date(2024, time.January, 15, 1), date(2024, time.January, 15, 23)))
	assert.Equal(t, -2, DaysBetween(date(2024, time.January, 17, 1), date(2024, time.January, 15, 23)))
}

func TestIsPast(t *testing.T) {
	now := date(2024, time.January, 15, 0)
	assert.True(t, IsPast("2024-01-14", now))
	assert.False(t, IsPast("2024-01-15", now), "today is not past")
	assert.False(t, IsPast("2024-01-16", now))
	assert.False(t, IsPast("not-a-date", now))
}

func TestDaysLeftInWeek(t *testing.T) {
	assert.Equal(t, 6, DaysLeftInWeek(date(2024, time.January, 15, 8))) // Monday
	assert.Equal(t, 3, DaysLeftInWeek(date(2024, time.January, 18, 8))) // Thursday
	assert.Equal(t, 1, DaysLeftInWeek(date(2024, time.January, 20, 8))) // Saturday
	assert.Equal(t, 0, DaysLeftInWeek(date(2024, time.January, 21, 8))) // Sunday
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(date(2024, time.January, 20, 8)))
	assert.True(t, IsWeekend(date(2024, time.January, 21, 8)))
	assert.False(t, IsWeekend(date(2024, time.January, 19, 8)))
}
