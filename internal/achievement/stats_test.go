package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/birthlog/internal/records"
)

func at(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func rec(ts *time.Time, genders ...records.Gender) records.BirthRecord {
	if len(genders) == 0 {
		genders = []records.Gender{records.GenderGirl}
	}
	r := records.BirthRecord{Timestamp: ts}
	for i, g := range genders {
		r.Babies = append(r.Babies, records.Baby{Gender: g, BirthOrder: i + 1})
	}
	return r
}

func TestDailyStreak_ConsecutiveDays(t *testing.T) {
	recs := []records.BirthRecord{
		rec(at(2024, time.January, 15, 10)),
		rec(at(2024, time.January, 17, 9)),
		rec(at(2024, time.January, 16, 23)),
	}
	streak, newest := DailyStreak(recs, time.UTC)
	assert.Equal(t, 3, streak)
	require.NotNil(t, newest)
	assert.True(t, newest.Equal(*at(2024, time.January, 17, 9)))
}

func TestDailyStreak_SameDayDoesNotBreak(t *testing.T) {
	recs := []records.BirthRecord{
		rec(at(2024, time.January, 17, 22)),
		rec(at(2024, time.January, 17, 3)),
		rec(at(2024, time.January, 16, 12)),
	}
	streak, _ := DailyStreak(recs, time.UTC)
	assert.Equal(t, 2, streak)
}

func TestDailyStreak_GapStops(t *testing.T) {
	recs := []records.BirthRecord{
		rec(at(2024, time.January, 20, 10)),
		rec(at(2024, time.January, 18, 10)),
		rec(at(2024, time.January, 17, 10)),
	}
	streak, _ := DailyStreak(recs, time.UTC)
	assert.Equal(t, 1, streak)
}

func TestDailyStreak_Empty(t *testing.T) {
	streak, newest := DailyStreak(nil, time.UTC)
	assert.Zero(t, streak)
	assert.Nil(t, newest)
}

func TestDailyStreak_UntimedSortsLast(t *testing.T) {
	recs := []records.BirthRecord{
		rec(nil),
		rec(at(2024, time.January, 17, 10)),
	}
	streak, newest := DailyStreak(recs, time.UTC)
	assert.Equal(t, 1, streak)
	require.NotNil(t, newest)
	assert.Equal(t, 17, newest.Day())
}

func TestDailyStreak_UsesLocalDays(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 02:00 UTC on the 17th is still the 16th in EST.
	recs := []records.BirthRecord{
		rec(at(2024, time.January, 17, 2)),
		rec(at(2024, time.January, 16, 12)),
	}
	utc, _ := DailyStreak(recs, time.UTC)
	local, _ := DailyStreak(recs, est)
	assert.Equal(t, 2, utc)
	assert.Equal(t, 1, local)
}

func TestComputeStats(t *testing.T) {
	vaginal := rec(at(2024, time.March, 1, 8), records.GenderBoy, records.GenderGirl)
	vaginal.DeliveryType = records.DeliveryVaginal
	csection := rec(at(2024, time.March, 2, 8), records.GenderAngel)
	csection.DeliveryType = records.DeliveryCSection
	plain := rec(nil)

	s := ComputeStats([]records.BirthRecord{vaginal, csection, plain}, Stats{LongestDailyStreak: 9}, time.UTC)
	assert.Equal(t, 3, s.TotalDeliveries)
	assert.Equal(t, DeliveryTypes{Vaginal: 1, CSection: 1}, s.DeliveryTypes)
	assert.Equal(t, 1, s.MultipleBirths)
	assert.Equal(t, 1, s.AngelBabies)
	assert.Equal(t, 2, s.DailyStreak)
	assert.Equal(t, 9, s.LongestDailyStreak)
}

func TestComputeStats_LongestGrows(t *testing.T) {
	recs := []records.BirthRecord{
		rec(at(2024, time.January, 15, 10)),
		rec(at(2024, time.January, 16, 10)),
	}
	s := ComputeStats(recs, Stats{LongestDailyStreak: 1}, time.UTC)
	assert.Equal(t, 2, s.LongestDailyStreak)
}
