package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf_AtRisk(t *testing.T) {
	d := Default(2)
	d.CurrentStreak = 3
	d.CurrentWeekLogs = 1

	tests := []struct {
		name       string
		weekday    int
		logs       int
		streak     int
		wantAtRisk bool
	}{
		{"monday is early", 0, 1, 3, false},
		{"thursday with goal unmet", 3, 1, 3, true},
		{"sunday with goal unmet", 6, 0, 3, true},
		{"goal met", 5, 2, 3, false},
		{"no streak to lose", 5, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.CurrentWeekLogs = tt.logs
			d.CurrentStreak = tt.streak
			s := StatusOf(d, day(1, tt.weekday))
			assert.Equal(t, tt.wantAtRisk, s.IsAtRisk)
		})
	}
}

func TestStatusOf_Fields(t *testing.T) {
	d := Default(3)
	d.CurrentStreak, d.LongestStreak = 2, 8
	d.CurrentWeekLogs = 1
	d.StreakShields = 2
	d.RecoveryChallenge = &RecoveryChallenge{Active: true, TargetLogs: 3, CurrentLogs: 1, Deadline: "2024-01-20"}

	s := StatusOf(d, day(1, 1))
	assert.False(t, s.IsGoalMet)
	assert.Equal(t, 2, s.LogsRemaining)
	assert.Equal(t, 5, s.DaysLeftInWeek)
	assert.Equal(t, 8, s.LongestStreak)
	assert.Equal(t, 2, s.StreakShields)
	assert.True(t, s.HasRecoveryChallenge)
	require.NotNil(t, s.RecoveryProgress)
	assert.Equal(t, RecoveryProgress{Current: 1, Target: 3, Deadline: "2024-01-20"}, *s.RecoveryProgress)

	d.CurrentWeekLogs = 5
	d.RecoveryChallenge = nil
	s = StatusOf(d, day(1, 1))
	assert.True(t, s.IsGoalMet)
	assert.Equal(t, 0, s.LogsRemaining)
	assert.False(t, s.HasRecoveryChallenge)
	assert.Nil(t, s.RecoveryProgress)
}

func TestProgressOf(t *testing.T) {
	tests := []struct {
		goal, current, want int
	}{
		{3, 0, 0},
		{3, 1, 33},
		{3, 2, 67},
		{3, 3, 100},
		{3, 5, 100},
		{0, 1, 100},
	}
	for _, tt := range tests {
		d := Data{WeeklyGoal: tt.goal, CurrentWeekLogs: tt.current}
		p := ProgressOf(d)
		assert.Equal(t, tt.want, p.Percentage, "goal=%d current=%d", tt.goal, tt.current)
		assert.Equal(t, tt.current, p.Current)
	}
}

func TestNextMilestone(t *testing.T) {
	m, ok := NextMilestone(0)
	require.True(t, ok)
	assert.Equal(t, Milestone{Weeks: 4, WeeksAway: 4}, m)

	m, ok = NextMilestone(4)
	require.True(t, ok)
	assert.Equal(t, Milestone{Weeks: 12, WeeksAway: 8}, m)

	m, ok = NextMilestone(20)
	require.True(t, ok)
	assert.Equal(t, 26, m.Weeks)
	assert.Equal(t, 6, m.WeeksAway)

	_, ok = NextMilestone(156)
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	d := Default(2)
	d.CurrentStreak = 3
	d.CurrentWeekLogs = 1

	s := Summarize(d, day(1, 0))
	assert.Equal(t, 2, s.WeeklyGoal)
	assert.Equal(t, 50, s.Progress.Percentage)
	require.NotNil(t, s.NextMilestone)
	assert.Equal(t, Milestone{Weeks: 4, WeeksAway: 1}, *s.NextMilestone)

	d.CurrentStreak = 200
	assert.Nil(t, Summarize(d, day(1, 0)).NextMilestone)
}
