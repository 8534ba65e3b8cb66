package streak

import (
	"time"

	"github.com/blackwell-systems/birthlog/internal/calendar"
)

// ApplyDelivery applies one logged delivery at now and returns the new state
// together with the signals it raised. d is not modified.
func ApplyDelivery(d Data, now time.Time) DeliveryResult {
	d = d.Clone()
	d.normalize()

	today := calendar.LocalDateKey(now)
	thisWeek := calendar.WeekStart(now)

	if d.LastLogDate == today {
		return DeliveryResult{Data: d, Duplicate: true}
	}

	var res DeliveryResult
	if needsTransition(d, thisWeek) {
		report := TransitionWeek(&d, thisWeek, now)
		res.Transition = &report
	}

	d.CurrentWeekLogs++
	d.LastLogDate = today
	d.WeekStartDate = thisWeek

	if d.CurrentWeekLogs == d.WeeklyGoal && d.CurrentStreak == 0 {
		d.CurrentStreak = 1
		d.LongestStreak = max(d.LongestStreak, 1)
		d.CurrentWeekCredited = true
		res.StreakStarted = true
	}

	if d.CurrentWeekLogs == d.WeeklyGoal+1 && d.StreakShields < MaxShields {
		d.StreakShields++
		res.ShieldEarned = true
	}

	if d.HasActiveRecovery() {
		rc := d.RecoveryChallenge
		rc.CurrentLogs++
		if rc.CurrentLogs >= rc.TargetLogs {
			d.CurrentStreak = rc.OriginalStreak
			d.LongestStreak = max(d.LongestStreak, d.CurrentStreak)
			d.RecoveryChallenge = nil
			// The restored streak predates this week; the week itself is
			// still credited when it closes.
			d.CurrentWeekCredited = false
			res.RecoveryCompleted = true
		}
	}

	if m := NewMilestone(d); m > 0 {
		d.MilestonesCelebrated = append(d.MilestonesCelebrated, m)
		res.NewMilestone = m
		if d.StreakShields < MaxShields {
			d.StreakShields++
			res.ShieldEarned = true
		}
	}

	res.Data = d
	return res
}

// Reconcile settles state that went stale while nothing was logged: an
// expired recovery challenge is forfeited and any elapsed weeks are closed.
// d is not modified.
func Reconcile(d Data, now time.Time) (Data, ReconcileReport) {
	d = d.Clone()
	d.normalize()

	var report ReconcileReport
	if d.HasActiveRecovery() && calendar.IsPast(d.RecoveryChallenge.Deadline, now) {
		d.RecoveryChallenge = nil
		report.RecoveryExpired = true
	}

	thisWeek := calendar.WeekStart(now)
	if needsTransition(d, thisWeek) {
		wr := TransitionWeek(&d, thisWeek, now)
		report.Transition = &wr
	}
	return d, report
}

// TransitionWeek closes the week in d.WeekStartDate and opens newWeekStart.
// A week that met its goal is credited here, unless a fresh streak already
// counted it. Missed weeks consume shields or break the streak.
func TransitionWeek(d *Data, newWeekStart string, now time.Time) WeekReport {
	report := WeekReport{ClosedWeek: d.WeekStartDate, NewWeek: newWeekStart}

	gap, err := calendar.WeeksBetweenKeys(d.WeekStartDate, newWeekStart)
	if d.WeekStartDate == "" || err != nil {
		report.ClosedWeek = ""
		report.FirstWeek = true
		openWeek(d, newWeekStart)
		return report
	}

	metGoal := d.CurrentWeekLogs >= d.WeeklyGoal
	report.MetGoal = metGoal
	report.WeeksElapsed = gap

	switch {
	case gap == 1:
		if !metGoal {
			handleMissedWeek(d, now, &report)
			break
		}
		if !d.CurrentWeekCredited {
			d.CurrentStreak++
			d.LongestStreak = max(d.LongestStreak, d.CurrentStreak)
			report.Credited = true
		}

	case gap > 1:
		if !metGoal {
			handleMissedWeek(d, now, &report)
			break
		}
		// The closed week survives; each empty week after it costs a shield.
		for i := 1; i < gap; i++ {
			if d.StreakShields > 0 {
				d.StreakShields--
				report.ShieldsUsed++
				continue
			}
			handleMissedWeek(d, now, &report)
			break
		}
	}

	openWeek(d, newWeekStart)
	return report
}

// NewMilestone returns the smallest milestone reached by d.CurrentStreak that
// has not been celebrated, or 0.
func NewMilestone(d Data) int {
	for _, m := range Milestones {
		if m <= d.CurrentStreak && !d.celebrated(m) {
			return m
		}
	}
	return 0
}

func openWeek(d *Data, weekStart string) {
	d.WeekStartDate = weekStart
	d.CurrentWeekLogs = 0
	d.CurrentWeekCredited = false
}

// handleMissedWeek absorbs a missed week with a shield when one is banked.
// Otherwise the streak resets, opening a recovery challenge for a streak
// worth saving.
func handleMissedWeek(d *Data, now time.Time, report *WeekReport) {
	if d.StreakShields > 0 {
		d.StreakShields--
		report.ShieldsUsed++
		return
	}

	if d.CurrentStreak > 0 {
		report.StreakBroken = true
		if !d.HasActiveRecovery() {
			d.RecoveryChallenge = &RecoveryChallenge{
				Active:         true,
				TargetLogs:     RecoveryTargetLogs,
				Deadline:       calendar.LocalDateKey(now.AddDate(0, 0, RecoveryWindowDays)),
				OriginalStreak: d.CurrentStreak,
			}
			report.RecoveryStarted = true
		}
	}
	d.CurrentStreak = 0
}

func needsTransition(d Data, thisWeek string) bool {
	if d.WeekStartDate == "" {
		return true
	}
	stored, err := calendar.WeekStartOfKey(d.WeekStartDate)
	return err != nil || stored != thisWeek
}
