package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/birthlog/internal/output"
	"github.com/blackwell-systems/birthlog/internal/records"
)

var recordsLimit int

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List logged deliveries",
	Args:  cobra.NoArgs,
	RunE:  runRecords,
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a logged delivery",
	Long: `Delete a birth record and re-evaluate achievement statistics.
Unlocked achievements are kept and the weekly streak is not changed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsDelete,
}

func init() {
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 20, "Show at most N records (0 = all)")
	recordsCmd.AddCommand(recordsDeleteCmd)
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	recs, err := e.tracker.Records(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing records: %w", err)
	}
	total := len(recs)
	if recordsLimit > 0 && len(recs) > recordsLimit {
		recs = recs[:recordsLimit]
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		if recs == nil {
			recs = []records.BirthRecord{}
		}
		return printJSON(w, recs)
	}

	if total == 0 {
		fmt.Fprintln(w, "No deliveries logged yet. Try 'birthlog log --babies girl'.")
		return nil
	}

	tbl := output.NewTable("When", "Babies", "Type", "Event", "ID")
	for _, r := range recs {
		when := "-"
		if r.Timestamp != nil {
			when = r.Timestamp.In(e.loc).Format("2006-01-02 15:04")
		}
		tbl.AddRow(when, describeBabies(r.Babies), string(r.DeliveryType), r.EventType, r.ID)
	}
	fmt.Fprintln(w, output.Section(fmt.Sprintf("Deliveries (%d of %d)", len(recs), total)))
	_, err = tbl.WriteTo(w)
	return err
}

func runRecordsDelete(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	if err := e.tracker.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
	return nil
}
