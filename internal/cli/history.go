package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/runlabhq/devrun/internal/history"
)

// newHistoryCmd creates the 'history' subcommand.
func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "history",
		Short:        "View recent command runs",
		Long:         `View a log of recent devrun dispatches with timestamp, command name, status, exit code, and duration.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, a)
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Limit to last N entries (0 = all)")
	cmd.Flags().BoolP("clear", "c", false, "Clear all history")
	return cmd
}

func runHistory(cmd *cobra.Command, a *app) error {
	if a.store == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Run history is unavailable.")
		return nil
	}

	if clearFlag, _ := cmd.Flags().GetBool("clear"); clearFlag {
		if err := a.store.Clear(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", limit)
	}

	entries, err := a.store.Recent(limit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		return nil
	}

	displayEntries(cmd, entries)
	return nil
}

// displayEntries formats and displays history entries, newest first.
func displayEntries(cmd *cobra.Command, entries []history.Entry) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		timestamp := entry.StartedAt.Local().Format("2006-01-02 15:04:05")

		exitCodeStr := fmt.Sprintf("%d", entry.ExitCode)
		if entry.ExitCode == 0 {
			exitCodeStr = green(exitCodeStr)
		} else {
			exitCodeStr = red(exitCodeStr)
		}

		fmt.Fprintf(out, "%s  %-14s  %-9s  exit=%s  %s\n",
			cyan(timestamp),
			entry.Command,
			entry.Status,
			exitCodeStr,
			entry.Duration.Round(10*time.Millisecond),
		)
	}
}
