package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/birthlog/internal/output"
	"github.com/blackwell-systems/birthlog/internal/records"
	"github.com/blackwell-systems/birthlog/internal/streak"
	"github.com/blackwell-systems/birthlog/internal/tracker"
)

var (
	logBabies string
	logType   string
	logAt     string
	logEvent  string
	logNotes  string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a delivery",
	Long: `Save a birth record, update the weekly streak and check achievements.

Babies are given as a comma-separated list of genders in birth order:

  birthlog log --babies boy,girl --type vaginal
  birthlog log --babies angel --at "2024-01-15 03:40"`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVar(&logBabies, "babies", "", "Comma-separated genders: boy, girl, angel (required)")
	logCmd.Flags().StringVar(&logType, "type", "", "Delivery type: vaginal or c-section")
	logCmd.Flags().StringVar(&logAt, "at", "", "Delivery time, e.g. 2024-01-15 03:40 (default: now)")
	logCmd.Flags().StringVar(&logEvent, "event", "", "Event type label")
	logCmd.Flags().StringVar(&logNotes, "notes", "", "Free-form notes")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	rec, err := buildRecord(logBabies, logType, logAt, e.now())
	if err != nil {
		return err
	}
	rec.EventType = logEvent
	rec.Notes = logNotes

	out, err := e.tracker.Save(cmd.Context(), rec)
	if err != nil && out.Record.ID == "" {
		return err
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		if jerr := printJSON(w, out); jerr != nil {
			return jerr
		}
		return err
	}
	renderOutcome(w, out)
	return err
}

func buildRecord(babies, deliveryType, at string, now time.Time) (records.BirthRecord, error) {
	var rec records.BirthRecord
	for _, g := range strings.Split(babies, ",") {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" {
			continue
		}
		rec.Babies = append(rec.Babies, records.Baby{Gender: records.Gender(g)})
	}
	rec.DeliveryType = records.DeliveryType(strings.ToLower(deliveryType))

	ts := now
	if at != "" {
		parsed, err := parseWhen(at, now.Location())
		if err != nil {
			return rec, err
		}
		ts = parsed
	}
	rec.Timestamp = &ts
	return rec, rec.Validate()
}

var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseWhen parses a user-supplied time in loc.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q (use YYYY-MM-DD HH:MM)", s)
}

func renderOutcome(w io.Writer, out tracker.Outcome) {
	fmt.Fprintln(w, output.Section("Delivery logged"))
	fmt.Fprintln(w, output.KeyValue("Record", out.Record.ID))
	fmt.Fprintln(w, output.KeyValue("Babies", describeBabies(out.Record.Babies)))
	if out.Record.Timestamp != nil {
		fmt.Fprintln(w, output.KeyValue("When", out.Record.Timestamp.Format("Mon 2 Jan 2006 15:04")))
	}

	if res := out.Streak; res != nil {
		fmt.Fprintln(w, output.Section("Streak"))
		switch {
		case res.Duplicate:
			fmt.Fprintln(w, output.StyleMuted.Render(" Already logged today; streak unchanged."))
		case res.StreakStarted:
			fmt.Fprintln(w, output.StyleStreak.Render(" Streak started!"))
		case res.RecoveryCompleted:
			fmt.Fprintln(w, output.StyleSuccess.Render(fmt.Sprintf(" Recovery complete: streak restored to %d weeks.", res.Data.CurrentStreak)))
		}
		if tr := res.Transition; tr != nil {
			renderTransition(w, *tr)
		}
		fmt.Fprintln(w, output.KeyValue("This week", output.GoalDots(res.Data.CurrentWeekLogs, res.Data.WeeklyGoal)))
		fmt.Fprintln(w, output.KeyValue("Current streak", output.StyleStreak.Render(fmt.Sprintf("%d weeks", res.Data.CurrentStreak))))
		if rc := res.Data.RecoveryChallenge; rc != nil && rc.Active {
			fmt.Fprintln(w, output.KeyValue("Recovery", fmt.Sprintf("%d/%d logs by %s", rc.CurrentLogs, rc.TargetLogs, rc.Deadline)))
		}
		if res.NewMilestone > 0 {
			fmt.Fprintln(w, output.StyleSuccess.Render(fmt.Sprintf(" 🎉 %d-week milestone reached!", res.NewMilestone)))
		}
		if res.ShieldEarned {
			fmt.Fprintln(w, output.StyleWarning.Render(fmt.Sprintf(" Shield earned: %s", output.Shields(res.Data.StreakShields, streak.MaxShields))))
		}
	}

	if len(out.Unlocked) > 0 {
		fmt.Fprintln(w, output.Section("Achievements unlocked"))
		for _, a := range out.Unlocked {
			fmt.Fprintf(w, " %s %s  %s\n", a.Icon, output.StyleBold.Render(a.Name), output.StyleMuted.Render(a.Description))
		}
	}
	fmt.Fprintln(w)
}

func renderTransition(w io.Writer, tr streak.WeekReport) {
	if tr.ShieldsUsed > 0 {
		fmt.Fprintln(w, output.StyleWarning.Render(fmt.Sprintf(" %d shield(s) used to cover missed weeks.", tr.ShieldsUsed)))
	}
	if tr.StreakBroken {
		fmt.Fprintln(w, output.StyleError.Render(" Streak broken."))
	}
	if tr.RecoveryStarted {
		fmt.Fprintln(w, output.StyleWarning.Render(fmt.Sprintf(" Recovery challenge: log %d deliveries within %d days to restore it.",
			streak.RecoveryTargetLogs, streak.RecoveryWindowDays)))
	}
}

func describeBabies(babies []records.Baby) string {
	parts := make([]string, 0, len(babies))
	for _, b := range babies {
		parts = append(parts, string(b.Gender))
	}
	return strings.Join(parts, ", ")
}
