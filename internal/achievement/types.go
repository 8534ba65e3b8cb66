// Package achievement evaluates the delivery record history against a static
// catalog of achievements, unlocking badges whose requirements are met.
package achievement

import (
	"encoding/json"
	"time"
)

// StorageKey is the key-value store key of the achievements blob.
const StorageKey = "userAchievements"

// Category groups achievements for display.
type Category string

const (
	CategoryMilestone Category = "milestone"
	CategorySpecial   Category = "special"
	CategorySkill     Category = "skill"
	CategoryStreak    Category = "streak"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMilestone, CategorySpecial, CategorySkill, CategoryStreak:
		return true
	}
	return false
}

// RequirementType selects the counter an achievement is measured by.
type RequirementType string

const (
	// RequirementCount measures total deliveries.
	RequirementCount RequirementType = "count"
	// RequirementStreak measures the consecutive-day delivery streak.
	RequirementStreak RequirementType = "streak"
	// RequirementSpecific measures the requirement's Condition.
	RequirementSpecific RequirementType = "specific"
)

// Requirement is the threshold an achievement unlocks at.
type Requirement struct {
	Type      RequirementType
	Value     int
	Condition Condition
}

// MarshalJSON encodes the condition by name.
func (r Requirement) MarshalJSON() ([]byte, error) {
	out := struct {
		Type      RequirementType `json:"type"`
		Value     int             `json:"value"`
		Condition string          `json:"condition,omitempty"`
	}{Type: r.Type, Value: r.Value}
	if r.Condition != nil {
		out.Condition = r.Condition.Name()
	}
	return json.Marshal(out)
}

// Achievement is an immutable catalog entry.
type Achievement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Category    Category    `json:"category"`
	Requirement Requirement `json:"requirement"`
}

// DeliveryTypes counts deliveries by mode.
type DeliveryTypes struct {
	Vaginal  int `json:"vaginal"`
	CSection int `json:"cSection"`
}

// Stats are aggregates recomputed from the full record set on every pass.
//
// DailyStreak counts consecutive calendar days with a delivery. It is
// unrelated to the weekly logging streak kept by package streak.
type Stats struct {
	TotalDeliveries    int           `json:"totalDeliveries"`
	DailyStreak        int           `json:"currentStreak"`
	LongestDailyStreak int           `json:"longestStreak"`
	LastDeliveryDate   *time.Time    `json:"lastDeliveryDate,omitempty"`
	DeliveryTypes      DeliveryTypes `json:"deliveryTypes"`
	MultipleBirths     int           `json:"multipleBirths"`
	AngelBabies        int           `json:"angelBabies"`
}

// UserAchievements is the persisted evaluation state.
type UserAchievements struct {
	Unlocked []string       `json:"unlocked"`
	Progress map[string]int `json:"progress"`
	Stats    Stats          `json:"stats"`
}

// NewUserAchievements returns the state of an installation with no unlocks.
func NewUserAchievements() UserAchievements {
	return UserAchievements{
		Unlocked: []string{},
		Progress: make(map[string]int),
	}
}

// IsUnlocked reports whether the achievement with the given ID is unlocked.
func (u UserAchievements) IsUnlocked(id string) bool {
	for _, got := range u.Unlocked {
		if got == id {
			return true
		}
	}
	return false
}

func (u UserAchievements) clone() UserAchievements {
	c := u
	c.Unlocked = append([]string{}, u.Unlocked...)
	c.Progress = make(map[string]int, len(u.Progress))
	for k, v := range u.Progress {
		c.Progress[k] = v
	}
	return c
}
