// Package streak implements the weekly logging streak: a small state machine
// over Monday-Sunday weeks with banked shields, recovery challenges and
// milestone celebrations.
package streak

// StorageKey is the key-value store key of the streak blob.
const StorageKey = "streak_data"

const (
	// MaxShields caps the number of banked streak shields.
	MaxShields = 3

	// MinWeeklyGoal and MaxWeeklyGoal bound the logs required per week.
	MinWeeklyGoal = 1
	MaxWeeklyGoal = 7

	// DefaultWeeklyGoal applies to a fresh installation.
	DefaultWeeklyGoal = 1

	// RecoveryTargetLogs is the number of logs that restore a broken streak.
	RecoveryTargetLogs = 3

	// RecoveryWindowDays is how long a recovery challenge stays open.
	RecoveryWindowDays = 7
)

// Milestones are the streak lengths, in weeks, that trigger a celebration.
var Milestones = []int{4, 12, 26, 52, 104, 156}

// RecoveryChallenge is an open attempt to restore a streak that broke while
// no shield was available.
type RecoveryChallenge struct {
	Active         bool   `json:"active"`
	TargetLogs     int    `json:"targetLogs"`
	CurrentLogs    int    `json:"currentLogs"`
	Deadline       string `json:"deadline"`
	OriginalStreak int    `json:"originalStreak"`
}

// Data is the persisted streak state of one installation.
type Data struct {
	CurrentStreak   int    `json:"currentStreak"`
	LongestStreak   int    `json:"longestStreak"`
	LastLogDate     string `json:"lastLogDate"`
	WeeklyGoal      int    `json:"weeklyGoal"`
	CurrentWeekLogs int    `json:"currentWeekLogs"`
	WeekStartDate   string `json:"weekStartDate"`

	// CurrentWeekCredited is set when a fresh streak started this week, so
	// the closing transition must not count the same week again.
	CurrentWeekCredited bool `json:"currentWeekCredited,omitempty"`

	StreakShields        int                `json:"streakShields"`
	RecoveryChallenge    *RecoveryChallenge `json:"recoveryChallenge"`
	MilestonesCelebrated []int              `json:"milestonesCelebrated"`
}

// Default returns the state of an installation that has never logged.
func Default(weeklyGoal int) Data {
	return Data{
		WeeklyGoal:           ClampGoal(weeklyGoal),
		MilestonesCelebrated: []int{},
	}
}

// ClampGoal limits a weekly goal to [MinWeeklyGoal, MaxWeeklyGoal].
func ClampGoal(goal int) int {
	return min(max(goal, MinWeeklyGoal), MaxWeeklyGoal)
}

// HasActiveRecovery reports whether a recovery challenge is running.
func (d Data) HasActiveRecovery() bool {
	return d.RecoveryChallenge != nil && d.RecoveryChallenge.Active
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	c := d
	if d.RecoveryChallenge != nil {
		rc := *d.RecoveryChallenge
		c.RecoveryChallenge = &rc
	}
	c.MilestonesCelebrated = append([]int{}, d.MilestonesCelebrated...)
	return c
}

// normalize repairs out-of-range values read from storage.
func (d *Data) normalize() {
	d.WeeklyGoal = ClampGoal(d.WeeklyGoal)
	d.StreakShields = min(max(d.StreakShields, 0), MaxShields)
	d.CurrentStreak = max(d.CurrentStreak, 0)
	d.CurrentWeekLogs = max(d.CurrentWeekLogs, 0)
	d.LongestStreak = max(d.LongestStreak, d.CurrentStreak)
	if d.RecoveryChallenge != nil && !d.RecoveryChallenge.Active {
		d.RecoveryChallenge = nil
	}
	if d.MilestonesCelebrated == nil {
		d.MilestonesCelebrated = []int{}
	}
}

// celebrated reports whether milestone m was already celebrated.
func (d Data) celebrated(m int) bool {
	for _, c := range d.MilestonesCelebrated {
		if c == m {
			return true
		}
	}
	return false
}

// WeekReport describes how a week transition settled the closed week.
type WeekReport struct {
	ClosedWeek      string `json:"closedWeek,omitempty"`
	NewWeek         string `json:"newWeek"`
	FirstWeek       bool   `json:"firstWeek,omitempty"`
	MetGoal         bool   `json:"metGoal"`
	WeeksElapsed    int    `json:"weeksElapsed"`
	Credited        bool   `json:"credited,omitempty"`
	ShieldsUsed     int    `json:"shieldsUsed,omitempty"`
	StreakBroken    bool   `json:"streakBroken,omitempty"`
	RecoveryStarted bool   `json:"recoveryStarted,omitempty"`
}

// DeliveryResult is the outcome of applying one logged delivery.
type DeliveryResult struct {
	Data Data `json:"streakData"`

	// Duplicate is set when a delivery was already logged on the same day
	// and the state was left untouched.
	Duplicate bool `json:"duplicate,omitempty"`

	// NewMilestone is the milestone first reached by this log, or 0.
	NewMilestone      int         `json:"newMilestone,omitempty"`
	ShieldEarned      bool        `json:"shieldEarned"`
	RecoveryCompleted bool        `json:"recoveryCompleted"`
	StreakStarted     bool        `json:"streakStarted,omitempty"`
	Transition        *WeekReport `json:"transition,omitempty"`
}

// ReconcileReport is the outcome of an app-open reconciliation.
type ReconcileReport struct {
	RecoveryExpired bool        `json:"recoveryExpired,omitempty"`
	Transition      *WeekReport `json:"transition,omitempty"`
}

// Changed reports whether reconciliation modified the state.
func (r ReconcileReport) Changed() bool {
	return r.RecoveryExpired || r.Transition != nil
}
