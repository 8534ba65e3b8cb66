package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the streak and achievements",
	Long: `Discard the weekly streak, shields, recovery challenge and all unlocked
achievements. Logged deliveries are kept. Requires --yes.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return errors.New("refusing to reset without --yes")
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	if err := e.tracker.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("resetting: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Streak and achievements reset.")
	return nil
}
