package cmd

import (
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/app"
	"github.com/cmeetit/cmeetit/internal/calendar"
	"github.com/cmeetit/cmeetit/internal/clock"
	"github.com/cmeetit/cmeetit/internal/config"
	"github.com/cmeetit/cmeetit/internal/lifecycle"
	"github.com/spf13/cobra"
)

func SweepCmd() *cobra.Command {
	var today string

	cmd := &cobra.Command{
		Use:   "sweep <user-id>",
		Short: "Auto-fail overdue goals for a user and print their summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, args[0], today)
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "Evaluate as of this day (YYYY-MM-DD) instead of the system clock")
	return cmd
}

func runSweep(cmd *cobra.Command, userID, today string) error {
	cfg := config.Load()

	var clk clock.Clock = clock.NewSystem(cfg.Timezone)
	if today != "" {
		d, err := calendar.Parse(today)
		if err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
		clk = clock.NewFixed(d)
	}

	a, err := app.NewWithClock(cfg, clk)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := a.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	summaries, err := a.GoalService.Summaries(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to sweep goals: %w", err)
	}

	return printJSON(cmd.OutOrStdout(), struct {
		Today civil.Date          `json:"today"`
		Goals []lifecycle.Summary `json:"goals"`
	}{
		Today: clk.Today(),
		Goals: summaries,
	})
}
