package streak

import (
	"math"
	"time"

	"github.com/blackwell-systems/birthlog/internal/calendar"
)

// AtRiskDaysLeft is the number of remaining days in the week at or below
// which an unmet goal puts a running streak at risk.
const AtRiskDaysLeft = 3

// RecoveryProgress mirrors the fields of an active recovery challenge.
type RecoveryProgress struct {
	Current  int    `json:"current"`
	Target   int    `json:"target"`
	Deadline string `json:"deadline"`
}

// Status is a read-only summary of the streak for display.
type Status struct {
	CurrentStreak        int               `json:"currentStreak"`
	LongestStreak        int               `json:"longestStreak"`
	StreakShields        int               `json:"streakShields"`
	IsGoalMet            bool              `json:"isGoalMet"`
	LogsRemaining        int               `json:"logsRemaining"`
	DaysLeftInWeek       int               `json:"daysLeftInWeek"`
	IsAtRisk             bool              `json:"isAtRisk"`
	HasRecoveryChallenge bool              `json:"hasRecoveryChallenge"`
	RecoveryProgress     *RecoveryProgress `json:"recoveryProgress,omitempty"`
}

// StatusOf derives the display status of d on now's calendar day.
func StatusOf(d Data, now time.Time) Status {
	goal := ClampGoal(d.WeeklyGoal)
	daysLeft := calendar.DaysLeftInWeek(now)
	s := Status{
		CurrentStreak:  d.CurrentStreak,
		LongestStreak:  d.LongestStreak,
		StreakShields:  d.StreakShields,
		IsGoalMet:      d.CurrentWeekLogs >= goal,
		LogsRemaining:  max(0, goal-d.CurrentWeekLogs),
		DaysLeftInWeek: daysLeft,
	}
	s.IsAtRisk = !s.IsGoalMet && daysLeft <= AtRiskDaysLeft && d.CurrentStreak > 0
	if d.HasActiveRecovery() {
		s.HasRecoveryChallenge = true
		s.RecoveryProgress = &RecoveryProgress{
			Current:  d.RecoveryChallenge.CurrentLogs,
			Target:   d.RecoveryChallenge.TargetLogs,
			Deadline: d.RecoveryChallenge.Deadline,
		}
	}
	return s
}

// WeekProgress is the progress toward this week's goal.
type WeekProgress struct {
	Goal       int `json:"goal"`
	Current    int `json:"current"`
	Percentage int `json:"percentage"`
}

// ProgressOf returns the weekly goal progress of d, capped at 100 percent.
func ProgressOf(d Data) WeekProgress {
	goal := ClampGoal(d.WeeklyGoal)
	pct := int(math.Round(float64(d.CurrentWeekLogs) / float64(goal) * 100))
	return WeekProgress{
		Goal:       goal,
		Current:    d.CurrentWeekLogs,
		Percentage: min(100, pct),
	}
}

// Milestone is an upcoming streak milestone.
type Milestone struct {
	Weeks     int `json:"milestone"`
	WeeksAway int `json:"weeksAway"`
}

// NextMilestone returns the first milestone above currentStreak. ok is false
// once every milestone has been passed.
func NextMilestone(currentStreak int) (m Milestone, ok bool) {
	for _, w := range Milestones {
		if w > currentStreak {
			return Milestone{Weeks: w, WeeksAway: w - currentStreak}, true
		}
	}
	return Milestone{}, false
}

// Summary bundles every display view of the streak.
type Summary struct {
	Status        Status       `json:"status"`
	Progress      WeekProgress `json:"progress"`
	NextMilestone *Milestone   `json:"nextMilestone,omitempty"`
	WeeklyGoal    int          `json:"weeklyGoal"`
}

// Summarize derives all display views of d on now's calendar day.
func Summarize(d Data, now time.Time) Summary {
	s := Summary{
		Status:     StatusOf(d, now),
		Progress:   ProgressOf(d),
		WeeklyGoal: ClampGoal(d.WeeklyGoal),
	}
	if m, ok := NextMilestone(d.CurrentStreak); ok {
		s.NextMilestone = &m
	}
	return s
}
