package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/runlabhq/devrun/internal/doctor"
)

// newDoctorCmd creates the 'doctor' subcommand.
func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:          "doctor",
		Short:        "Check that every dispatched tool is available",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := doctor.Run(cmd.Context(), a.cfg)
			printReport(cmd, report)
			if !report.Healthy() {
				return &exitError{code: ExitFailure}
			}
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, report doctor.Report) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()

	for _, check := range report.Checks {
		marker := green("✓")
		if !check.OK {
			if check.Required {
				marker = red("✗")
			} else {
				marker = yellow("-")
			}
		}
		fmt.Fprintf(out, "%s %-16s %s\n", marker, check.Name, check.Detail)
	}

	if report.Healthy() {
		fmt.Fprintf(out, "\n%s\n", green("Environment looks good."))
	} else {
		fmt.Fprintf(out, "\n%s\n", red("Missing required tools."))
	}
}
