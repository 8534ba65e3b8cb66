package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/birthlog/internal/achievement"
	"github.com/blackwell-systems/birthlog/internal/output"
)

var achievementsUnlocked bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievements and progress",
	Args:  cobra.NoArgs,
	RunE:  runAchievements,
}

func init() {
	achievementsCmd.Flags().BoolVar(&achievementsUnlocked, "unlocked", false, "Only show unlocked achievements")
	rootCmd.AddCommand(achievementsCmd)
}

type achievementRow struct {
	achievement.Achievement
	Unlocked bool    `json:"unlocked"`
	Progress float64 `json:"progress"`
}

func runAchievements(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	// Re-evaluate so progress reflects custom achievements added to config.
	if _, err := e.tracker.Evaluate(cmd.Context()); err != nil {
		return err
	}
	engine := e.tracker.Achievements()
	ua := engine.Load(cmd.Context())
	catalog := engine.Catalog()

	rows := make([]achievementRow, 0, len(catalog))
	for _, a := range catalog {
		unlocked := ua.IsUnlocked(a.ID)
		if achievementsUnlocked && !unlocked {
			continue
		}
		rows = append(rows, achievementRow{Achievement: a, Unlocked: unlocked, Progress: catalog.Progress(ua, a.ID)})
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(w, struct {
			Achievements []achievementRow  `json:"achievements"`
			Stats        achievement.Stats `json:"stats"`
		}{rows, ua.Stats})
	}

	fmt.Fprintln(w, output.Section(fmt.Sprintf("Achievements (%d of %d unlocked)", len(ua.Unlocked), len(catalog))))
	tbl := output.NewTable("", "Achievement", "Category", "Progress").AlignRight(3)
	for _, r := range rows {
		name := r.Name
		if r.Unlocked {
			name = output.StyleSuccess.Render(name)
		}
		tbl.AddRow(r.Icon, name, string(r.Category), output.ProgressBar(r.Progress*100, 10))
	}
	if _, err := tbl.WriteTo(w); err != nil {
		return err
	}

	s := ua.Stats
	fmt.Fprintln(w, output.Section("Stats"))
	fmt.Fprintln(w, output.KeyValue("Total deliveries", fmt.Sprint(s.TotalDeliveries)))
	fmt.Fprintln(w, output.KeyValue("Vaginal / C-section", fmt.Sprintf("%d / %d", s.DeliveryTypes.Vaginal, s.DeliveryTypes.CSection)))
	fmt.Fprintln(w, output.KeyValue("Multiple births", fmt.Sprint(s.MultipleBirths)))
	fmt.Fprintln(w, output.KeyValue("Angel babies", fmt.Sprint(s.AngelBabies)))
	fmt.Fprintln(w, output.KeyValue("Daily streak", fmt.Sprintf("%d days (best %d)", s.DailyStreak, s.LongestDailyStreak)))
	fmt.Fprintln(w)
	return nil
}
