package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/birthlog/internal/output"
)

var (
	prefsTutorial   bool
	prefsName       string
	prefsWeeklyGoal int
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change preferences",
	Long: `Show preferences, or change them with flags:

  birthlog prefs --name "Night shift" --tutorial-completed`,
	Args: cobra.NoArgs,
	RunE: runPrefs,
}

func init() {
	prefsCmd.Flags().BoolVar(&prefsTutorial, "tutorial-completed", false, "Mark the tutorial as completed")
	prefsCmd.Flags().StringVar(&prefsName, "name", "", "Display name")
	prefsCmd.Flags().IntVar(&prefsWeeklyGoal, "weekly-goal", 0, "Weekly goal (1-7), also applied to the streak")
	rootCmd.AddCommand(prefsCmd)
}

func runPrefs(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	ctx := cmd.Context()
	prefs := e.tracker.Preferences(ctx)
	flags := cmd.Flags()
	changed := false
	if flags.Changed("tutorial-completed") {
		prefs.TutorialCompleted = prefsTutorial
		changed = true
	}
	if flags.Changed("name") {
		prefs.DisplayName = prefsName
		changed = true
	}
	if flags.Changed("weekly-goal") {
		prefs.WeeklyGoal = prefsWeeklyGoal
		changed = true
	}

	w := cmd.OutOrStdout()
	if changed {
		unlocked, err := e.tracker.SavePreferences(ctx, prefs)
		if err != nil {
			return err
		}
		prefs = e.tracker.Preferences(ctx)
		for _, a := range unlocked {
			fmt.Fprintf(w, " %s %s unlocked!\n", a.Icon, output.StyleBold.Render(a.Name))
		}
	}

	if flagJSON {
		return printJSON(w, prefs)
	}
	fmt.Fprintln(w, output.Section("Preferences"))
	fmt.Fprintln(w, output.KeyValue("Display name", prefs.DisplayName))
	fmt.Fprintln(w, output.KeyValue("Tutorial completed", fmt.Sprint(prefs.TutorialCompleted)))
	if prefs.WeeklyGoal > 0 {
		fmt.Fprintln(w, output.KeyValue("Weekly goal", fmt.Sprint(prefs.WeeklyGoal)))
	}
	fmt.Fprintln(w)
	return nil
}
