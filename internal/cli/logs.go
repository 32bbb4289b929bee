package cli

import (
	"github.com/spf13/cobra"

	"github.com/runlabhq/devrun/internal/logs"
)

// newLogsCmd creates the 'logs' subcommand, which streams the server's
// log file. The server itself owns the file; devrun only reads it.
func newLogsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "logs",
		Short:        "Show the server log",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			follow, _ := cmd.Flags().GetBool("follow")

			tailer, err := logs.NewTailer(a.cfg.ServerLog)
			if err != nil {
				return err
			}
			defer func() { _ = tailer.Close() }()

			return tailer.Tail(cmd.Context(), cmd.OutOrStdout(), follow)
		},
	}
	cmd.Flags().BoolP("follow", "f", false, "Keep streaming new lines")
	return cmd
}
