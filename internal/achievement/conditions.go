package achievement

import (
	"time"

	"github.com/blackwell-systems/birthlog/internal/calendar"
	"github.com/blackwell-systems/birthlog/internal/records"
)

// Tally is the per-pass index of the record set that conditions measure.
// Date-based counters only include records that carry a timestamp, bucketed
// by local calendar day.
type Tally struct {
	Twins             int
	Triplets          int
	Weekend           int
	Holiday           int
	Vaginal           int
	CSection          int
	Angels            int
	Multiples         int
	Boys              int
	Girls             int
	TutorialCompleted bool

	// PerDay maps a local YYYY-MM-DD key to its number of deliveries.
	PerDay map[string]int
}

// DaysWithAtLeast returns how many days had n or more deliveries.
func (t *Tally) DaysWithAtLeast(n int) int {
	days := 0
	for _, c := range t.PerDay {
		if c >= n {
			days++
		}
	}
	return days
}

type monthDay struct {
	month time.Month
	day   int
}

var holidays = map[monthDay]bool{
	{time.January, 1}:   true,
	{time.February, 14}: true,
	{time.March, 17}:    true,
	{time.July, 4}:      true,
	{time.October, 31}:  true,
	{time.November, 11}: true,
	{time.December, 25}: true,
	{time.December, 31}: true,
}

// IsHoliday reports whether t falls on one of the fixed-date holidays.
func IsHoliday(t time.Time) bool {
	return holidays[monthDay{t.Month(), t.Day()}]
}

// NewTally indexes recs in loc.
func NewTally(recs []records.BirthRecord, prefs records.UserPreferences, loc *time.Location) *Tally {
	if loc == nil {
		loc = time.Local
	}
	t := &Tally{
		TutorialCompleted: prefs.TutorialCompleted,
		PerDay:            make(map[string]int),
	}
	for _, r := range recs {
		switch len(r.Babies) {
		case 2:
			t.Twins++
		case 3:
			t.Triplets++
		}
		if r.IsMultiple() {
			t.Multiples++
		}
		switch r.DeliveryType {
		case records.DeliveryVaginal:
			t.Vaginal++
		case records.DeliveryCSection:
			t.CSection++
		}
		t.Boys += r.CountGender(records.GenderBoy)
		t.Girls += r.CountGender(records.GenderGirl)
		t.Angels += r.CountGender(records.GenderAngel)

		if r.Timestamp == nil {
			continue
		}
		local := r.Timestamp.In(loc)
		t.PerDay[calendar.LocalDateKey(local)]++
		if calendar.IsWeekend(local) {
			t.Weekend++
		}
		if IsHoliday(local) {
			t.Holiday++
		}
	}
	return t
}

// Condition is a named measurement over a Tally used by specific
// requirements.
type Condition interface {
	Name() string
	Measure(t *Tally) int
}

// Twins counts deliveries of exactly two babies.
type Twins struct{}

func (Twins) Name() string { return "twins" }
func (Twins) Measure(t *Tally) int { return t.Twins }

// Triplets counts deliveries of exactly three babies.
type Triplets struct{}

func (Triplets) Name() string { return "triplets" }
func (Triplets) Measure(t *Tally) int { return t.Triplets }

// BusyDay counts days with at least Min deliveries.
type BusyDay struct{ Min int }

func (c BusyDay) Name() string {
	switch c.Min {
	case 2:
		return "busy_day"
	case 3:
		return "hectic_day"
	case 4:
		return "marathon_day"
	}
	return "unknown"
}

func (c BusyDay) Measure(t *Tally) int { return t.DaysWithAtLeast(c.Min) }

// Weekend counts deliveries on a Saturday or Sunday.
type Weekend struct{}

func (Weekend) Name() string { return "weekend" }
func (Weekend) Measure(t *Tally) int { return t.Weekend }

// Holiday counts deliveries on a fixed-date holiday.
type Holiday struct{}

func (Holiday) Name() string { return "holiday" }
func (Holiday) Measure(t *Tally) int { return t.Holiday }

// DeliveryMode counts deliveries of the given type.
type DeliveryMode struct{ Type records.DeliveryType }

func (c DeliveryMode) Name() string {
	if c.Type == records.DeliveryCSection {
		return "c_section"
	}
	return string(c.Type)
}

func (c DeliveryMode) Measure(t *Tally) int {
	switch c.Type {
	case records.DeliveryVaginal:
		return t.Vaginal
	case records.DeliveryCSection:
		return t.CSection
	}
	return 0
}

// BabyGender counts babies of the given gender across all deliveries.
type BabyGender struct{ Gender records.Gender }

func (c BabyGender) Name() string {
	switch c.Gender {
	case records.GenderBoy:
		return "boys"
	case records.GenderGirl:
		return "girls"
	}
	return "angel"
}

func (c BabyGender) Measure(t *Tally) int {
	switch c.Gender {
	case records.GenderBoy:
		return t.Boys
	case records.GenderGirl:
		return t.Girls
	case records.GenderAngel:
		return t.Angels
	}
	return 0
}

// MultipleBirths counts deliveries with more than one baby.
type MultipleBirths struct{}

func (MultipleBirths) Name() string { return "multiple_births" }
func (MultipleBirths) Measure(t *Tally) int { return t.Multiples }

// Tutorial measures 1 once the tutorial has been completed.
type Tutorial struct{}

func (Tutorial) Name() string { return "tutorial_completed" }

func (Tutorial) Measure(t *Tally) int {
	if t.TutorialCompleted {
		return 1
	}
	return 0
}

// Unknown is a condition name the evaluator does not recognise. It always
// measures zero, so its achievement never unlocks.
type Unknown struct{ Raw string }

func (c Unknown) Name() string { return c.Raw }
func (Unknown) Measure(*Tally) int { return 0 }

// ParseCondition maps a condition name to its measurement.
func ParseCondition(name string) Condition {
	switch name {
	case "twins":
		return Twins{}
	case "triplets":
		return Triplets{}
	case "busy_day":
		return BusyDay{Min: 2}
	case "hectic_day":
		return BusyDay{Min: 3}
	case "marathon_day":
		return BusyDay{Min: 4}
	case "weekend":
		return Weekend{}
	case "holiday":
		return Holiday{}
	case "vaginal":
		return DeliveryMode{Type: records.DeliveryVaginal}
	case "c_section":
		return DeliveryMode{Type: records.DeliveryCSection}
	case "boys":
		return BabyGender{Gender: records.GenderBoy}
	case "girls":
		return BabyGender{Gender: records.GenderGirl}
	case "angel":
		return BabyGender{Gender: records.GenderAngel}
	case "multiple_births":
		return MultipleBirths{}
	case "tutorial_completed":
		return Tutorial{}
	}
	return Unknown{Raw: name}
}
