package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/birthlog/internal/output"
	"github.com/blackwell-systems/birthlog/internal/streak"
)

var streakCmd = &cobra.Command{
	Use:     "streak",
	Aliases: []string{"status"},
	Short:   "Show the weekly streak",
	Long: `Bring the streak up to date (closing weeks that passed without a log and
expiring recovery challenges), then show this week's progress.`,
	Args: cobra.NoArgs,
	RunE: runStreak,
}

var goalCmd = &cobra.Command{
	Use:   "goal <deliveries-per-week>",
	Short: "Set the weekly goal (1-7)",
	Long:  "Set how many deliveries a week keep the streak alive. Values outside 1-7 are clamped.",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoal,
}

func init() {
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(goalCmd)
}

func runStreak(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	d, report, err := e.tracker.Reconcile(cmd.Context())
	if err != nil {
		return fmt.Errorf("reconciling streak: %w", err)
	}
	summary := streak.Summarize(d, e.now())

	w := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(w, struct {
			Data   streak.Data            `json:"streakData"`
			Report streak.ReconcileReport `json:"reconcile"`
			streak.Summary
		}{d, report, summary})
	}

	if report.RecoveryExpired {
		fmt.Fprintln(w, output.StyleError.Render(" Recovery challenge expired."))
	}
	if report.Transition != nil {
		renderTransition(w, *report.Transition)
	}
	renderSummary(w, d, summary)
	return nil
}

func renderSummary(w io.Writer, d streak.Data, s streak.Summary) {
	fmt.Fprintln(w, output.Section("Weekly streak"))
	fmt.Fprintln(w, output.KeyValue("Current streak", output.StyleStreak.Render(fmt.Sprintf("%d weeks", s.Status.CurrentStreak))))
	fmt.Fprintln(w, output.KeyValue("Longest streak", fmt.Sprintf("%d weeks", s.Status.LongestStreak)))
	fmt.Fprintln(w, output.KeyValue("This week", output.GoalDots(d.CurrentWeekLogs, s.WeeklyGoal)))
	fmt.Fprintln(w, output.KeyValue("Progress", output.ProgressBar(float64(s.Progress.Percentage), 20)))
	fmt.Fprintln(w, output.KeyValue("Shields", output.Shields(s.Status.StreakShields, streak.MaxShields)))
	fmt.Fprintln(w, output.KeyValue("Days left", strconv.Itoa(s.Status.DaysLeftInWeek)))

	if s.Status.IsAtRisk {
		fmt.Fprintln(w, output.StyleWarning.Render(fmt.Sprintf(" Streak at risk: %d more this week.", s.Status.LogsRemaining)))
	}
	if rp := s.Status.RecoveryProgress; rp != nil {
		fmt.Fprintln(w, output.KeyValue("Recovery", fmt.Sprintf("%d/%d logs by %s", rp.Current, rp.Target, rp.Deadline)))
	}
	if m := s.NextMilestone; m != nil {
		fmt.Fprintln(w, output.KeyValue("Next milestone", fmt.Sprintf("%d weeks (%d to go)", m.Weeks, m.WeeksAway)))
	}
	fmt.Fprintln(w)
}

func runGoal(cmd *cobra.Command, args []string) error {
	goal, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("weekly goal must be a number: %w", err)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	d, err := e.tracker.SetWeeklyGoal(cmd.Context(), goal)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(w, d)
	}
	fmt.Fprintf(w, "Weekly goal set to %d.\n", d.WeeklyGoal)
	return nil
}
