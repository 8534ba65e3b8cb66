// Package records defines the birth record and user preference types shared
// by the store, the streak engine and the achievement evaluator.
package records

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRecord is returned by Validate for records that cannot be saved.
var ErrInvalidRecord = errors.New("invalid birth record")

// Gender of a delivered baby.
type Gender string

const (
	GenderBoy   Gender = "boy"
	GenderGirl  Gender = "girl"
	GenderAngel Gender = "angel"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	switch g {
	case GenderBoy, GenderGirl, GenderAngel:
		return true
	}
	return false
}

// DeliveryType is the mode of delivery.
type DeliveryType string

const (
	DeliveryVaginal  DeliveryType = "vaginal"
	DeliveryCSection DeliveryType = "c-section"
)

// Valid reports whether d is empty (unspecified) or a known delivery type.
func (d DeliveryType) Valid() bool {
	return d == "" || d == DeliveryVaginal || d == DeliveryCSection
}

// Baby is a single baby within a delivery.
type Baby struct {
	Gender     Gender `json:"gender"`
	BirthOrder int    `json:"birthOrder"`
}

// BirthRecord is one logged delivery.
type BirthRecord struct {
	ID           string       `json:"id"`
	Timestamp    *time.Time   `json:"timestamp,omitempty"`
	Babies       []Baby       `json:"babies"`
	DeliveryType DeliveryType `json:"deliveryType,omitempty"`
	EventType    string       `json:"eventType,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

// Time returns the record timestamp, or the Unix epoch when it is missing.
func (r BirthRecord) Time() time.Time {
	if r.Timestamp == nil {
		return time.Unix(0, 0)
	}
	return *r.Timestamp
}

// IsMultiple reports whether the delivery had more than one baby.
func (r BirthRecord) IsMultiple() bool {
	return len(r.Babies) > 1
}

// CountGender returns how many babies in the record have gender g.
func (r BirthRecord) CountGender(g Gender) int {
	n := 0
	for _, b := range r.Babies {
		if b.Gender == g {
			n++
		}
	}
	return n
}

// Validate checks that the record can be persisted.
func (r BirthRecord) Validate() error {
	if len(r.Babies) == 0 {
		return fmt.Errorf("%w: at least one baby is required", ErrInvalidRecord)
	}
	for i, b := range r.Babies {
		if !b.Gender.Valid() {
			return fmt.Errorf("%w: baby %d has unknown gender %q", ErrInvalidRecord, i+1, b.Gender)
		}
	}
	if !r.DeliveryType.Valid() {
		return fmt.Errorf("%w: unknown delivery type %q", ErrInvalidRecord, r.DeliveryType)
	}
	return nil
}

// NumberBabies assigns 1-based birth orders to babies that have none.
func (r *BirthRecord) NumberBabies() {
	for i := range r.Babies {
		if r.Babies[i].BirthOrder == 0 {
			r.Babies[i].BirthOrder = i + 1
		}
	}
}

// UserPreferences holds per-installation settings.
type UserPreferences struct {
	TutorialCompleted bool   `json:"tutorialCompleted"`
	WeeklyGoal        int    `json:"weeklyGoal,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
}

// PreferencesKey is the key-value store key of the preferences blob.
const PreferencesKey = "userPreferences"
