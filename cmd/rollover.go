package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Run the end-of-shift rollover once",
	Long: `Runs the shift-end process once: auto-ends open breaks and lunches,
clocks out users still on the clock, and resets daily budgets. A no-op
outside the 07:00-07:10 window unless --at overrides the instant.`,
	Args: cobra.NoArgs,
	RunE: runRollover,
}

var rolloverAt string

func init() {
	rolloverCmd.Flags().StringVar(&rolloverAt, "at", "", "Run as of this RFC3339 instant instead of now (testing aid)")
}

func runRollover(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	now := time.Now()
	if rolloverAt != "" {
		now, err = time.Parse(time.RFC3339, rolloverAt)
		if err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
	}

	summary, err := a.rollover.Run(ctx, now)
	if err != nil {
		return err
	}
	if !summary.Ran {
		fmt.Println("Outside the rollover window, nothing to do.")
		return nil
	}
	fmt.Printf("Rollover for %s: %d activities closed, %d auto clock-outs, %d allocations reset, %d errors\n",
		summary.Date, summary.ActivitiesClosed, summary.AutoClockOuts,
		summary.AllocationsReset, summary.Errors)
	return nil
}
