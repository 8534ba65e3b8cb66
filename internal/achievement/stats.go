package achievement

import (
	"sort"
	"time"

	"github.com/blackwell-systems/birthlog/internal/calendar"
	"github.com/blackwell-systems/birthlog/internal/records"
)

// ComputeStats recomputes all aggregates from recs. Only the longest streak
// carries over from prev, so that it never decreases.
func ComputeStats(recs []records.BirthRecord, prev Stats, loc *time.Location) Stats {
	s := Stats{TotalDeliveries: len(recs)}
	for _, r := range recs {
		switch r.DeliveryType {
		case records.DeliveryVaginal:
			s.DeliveryTypes.Vaginal++
		case records.DeliveryCSection:
			s.DeliveryTypes.CSection++
		}
		if r.IsMultiple() {
			s.MultipleBirths++
		}
		s.AngelBabies += r.CountGender(records.GenderAngel)
	}

	s.DailyStreak, s.LastDeliveryDate = DailyStreak(recs, loc)
	s.LongestDailyStreak = max(prev.LongestDailyStreak, s.DailyStreak)
	return s
}

// DailyStreak walks the records newest first and counts consecutive local
// calendar days with a delivery, starting from the newest record. Records
// without a timestamp sort as the Unix epoch. It also returns the newest
// timestamp, or nil when there is none.
func DailyStreak(recs []records.BirthRecord, loc *time.Location) (int, *time.Time) {
	if len(recs) == 0 {
		return 0, nil
	}
	if loc == nil {
		loc = time.Local
	}

	sorted := make([]records.BirthRecord, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time().After(sorted[j].Time())
	})

	var newest *time.Time
	if ts := sorted[0].Timestamp; ts != nil {
		t := *ts
		newest = &t
	}

	streak := 1
	cursor := sorted[0].Time().In(loc)
	for _, r := range sorted[1:] {
		at := r.Time().In(loc)
		gap := calendar.DaysBetween(at, cursor)
		if gap == 0 {
			continue
		}
		if gap != 1 {
			break
		}
		streak++
		cursor = at
	}
	return streak, newest
}
