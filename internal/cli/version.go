package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runlabhq/devrun/internal/version"
)

// newVersionCmd creates the 'version' subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version needs no config or dispatcher.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "devrun %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.BuildDate)
		},
	}
}
