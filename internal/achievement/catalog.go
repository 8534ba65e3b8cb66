package achievement

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/birthlog/internal/records"
)

// ErrInvalidAchievement is returned for custom achievement definitions that
// cannot be added to a catalog.
var ErrInvalidAchievement = errors.New("invalid achievement")

// Catalog is an ordered, immutable list of achievements.
type Catalog []Achievement

func count(id, name, desc, icon string, n int) Achievement {
	return Achievement{
		ID:          id,
		Name:        name,
		Description: desc,
		Icon:        icon,
		Category:    CategoryMilestone,
		Requirement: Requirement{Type: RequirementCount, Value: n},
	}
}

func daily(id, name, desc string, n int) Achievement {
	return Achievement{
		ID:          id,
		Name:        name,
		Description: desc,
		Icon:        "🔥",
		Category:    CategoryStreak,
		Requirement: Requirement{Type: RequirementStreak, Value: n},
	}
}

func specific(id, name, desc, icon string, cat Category, cond Condition, n int) Achievement {
	return Achievement{
		ID:          id,
		Name:        name,
		Description: desc,
		Icon:        icon,
		Category:    cat,
		Requirement: Requirement{Type: RequirementSpecific, Value: n, Condition: cond},
	}
}

var builtin = Catalog{
	count("first_delivery", "First Catch", "Log your first delivery", "👶", 1),
	count("five_deliveries", "Getting Started", "Log 5 deliveries", "🌱", 5),
	count("ten_deliveries", "Double Digits", "Log 10 deliveries", "🔟", 10),
	count("twenty_five_deliveries", "Quarter Century", "Log 25 deliveries", "🎯", 25),
	count("fifty_deliveries", "Half Century", "Log 50 deliveries", "🏅", 50),
	count("hundred_deliveries", "Centurion", "Log 100 deliveries", "💯", 100),
	count("two_fifty_deliveries", "Seasoned Hands", "Log 250 deliveries", "🏆", 250),
	count("five_hundred_deliveries", "Veteran", "Log 500 deliveries", "🎖️", 500),
	count("thousand_deliveries", "Legend", "Log 1000 deliveries", "👑", 1000),

	daily("daily_streak_3", "Hat Trick", "Deliveries on 3 consecutive days", 3),
	daily("daily_streak_7", "Week On Call", "Deliveries on 7 consecutive days", 7),
	daily("daily_streak_14", "Fortnight", "Deliveries on 14 consecutive days", 14),
	daily("daily_streak_30", "Iron Shift", "Deliveries on 30 consecutive days", 30),

	specific("first_twins", "Double Trouble", "Deliver twins", "👯", CategorySpecial, Twins{}, 1),
	specific("first_triplets", "Triple Threat", "Deliver triplets", "🎲", CategorySpecial, Triplets{}, 1),
	specific("multiples_five", "Multiplier", "Deliver 5 sets of multiples", "✨", CategorySpecial, MultipleBirths{}, 5),
	specific("holiday_delivery", "Holiday Hero", "Deliver on a holiday", "🎄", CategorySpecial, Holiday{}, 1),
	specific("weekend_warrior", "Weekend Warrior", "Deliver 10 babies on weekends", "📅", CategorySpecial, Weekend{}, 10),
	specific("angel_guardian", "Angel Guardian", "Log an angel baby", "🕊️", CategorySpecial, BabyGender{Gender: records.GenderAngel}, 1),
	specific("tutorial_complete", "Oriented", "Complete the tutorial", "🎓", CategorySpecial, Tutorial{}, 1),

	specific("busy_day", "Busy Day", "Two deliveries in one day", "⏱️", CategorySkill, BusyDay{Min: 2}, 1),
	specific("hectic_day", "Hectic Day", "Three deliveries in one day", "⚡", CategorySkill, BusyDay{Min: 3}, 1),
	specific("marathon_day", "Marathon Day", "Four deliveries in one day", "🏃", CategorySkill, BusyDay{Min: 4}, 1),
	specific("vaginal_ten", "Natural Touch", "Attend 10 vaginal deliveries", "🤲", CategorySkill, DeliveryMode{Type: records.DeliveryVaginal}, 10),
	specific("c_section_ten", "Steady Hands", "Attend 10 C-section deliveries", "🩺", CategorySkill, DeliveryMode{Type: records.DeliveryCSection}, 10),
	specific("boys_twenty_five", "Boy Crew", "Deliver 25 boys", "💙", CategorySkill, BabyGender{Gender: records.GenderBoy}, 25),
	specific("girls_twenty_five", "Girl Squad", "Deliver 25 girls", "💗", CategorySkill, BabyGender{Gender: records.GenderGirl}, 25),
}

// Builtin returns a copy of the built-in catalog.
func Builtin() Catalog {
	return append(Catalog{}, builtin...)
}

// Lookup returns the achievement with the given ID.
func (c Catalog) Lookup(id string) (Achievement, bool) {
	for _, a := range c {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// With returns a new catalog with extra appended. IDs must be unique.
func (c Catalog) With(extra ...Achievement) (Catalog, error) {
	out := append(Catalog{}, c...)
	for _, a := range extra {
		if _, dup := out.Lookup(a.ID); dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidAchievement, a.ID)
		}
		out = append(out, a)
	}
	return out, nil
}

// Definition is the configuration form of an achievement.
type Definition struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    string
	Type        string
	Value       int
	Condition   string
}

// FromDefinition validates def and builds the achievement it describes.
// Unrecognised condition names are accepted and never unlock.
func FromDefinition(def Definition) (Achievement, error) {
	if def.ID == "" {
		return Achievement{}, fmt.Errorf("%w: id is required", ErrInvalidAchievement)
	}
	if def.Value <= 0 {
		return Achievement{}, fmt.Errorf("%w: %s: value must be positive", ErrInvalidAchievement, def.ID)
	}
	cat := Category(def.Category)
	if cat == "" {
		cat = CategorySpecial
	}
	if !cat.Valid() {
		return Achievement{}, fmt.Errorf("%w: %s: unknown category %q", ErrInvalidAchievement, def.ID, def.Category)
	}

	req := Requirement{Type: RequirementType(def.Type), Value: def.Value}
	switch req.Type {
	case RequirementCount, RequirementStreak:
	case RequirementSpecific:
		if def.Condition == "" {
			return Achievement{}, fmt.Errorf("%w: %s: specific requirement needs a condition", ErrInvalidAchievement, def.ID)
		}
		req.Condition = ParseCondition(def.Condition)
	default:
		return Achievement{}, fmt.Errorf("%w: %s: unknown requirement type %q", ErrInvalidAchievement, def.ID, def.Type)
	}

	name := def.Name
	if name == "" {
		name = def.ID
	}
	return Achievement{
		ID:          def.ID,
		Name:        name,
		Description: def.Description,
		Icon:        def.Icon,
		Category:    cat,
		Requirement: req,
	}, nil
}
