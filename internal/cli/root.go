// Package cli wires the cobra command tree for devrun. Built-in commands
// get their own cobra subcommands; user-defined commands from the config
// file are resolved by the dispatcher when no subcommand matches.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/runlabhq/devrun/internal/builtin"
	"github.com/runlabhq/devrun/internal/command"
	"github.com/runlabhq/devrun/internal/config"
	"github.com/runlabhq/devrun/internal/dispatch"
	devrunerrors "github.com/runlabhq/devrun/internal/errors"
	"github.com/runlabhq/devrun/internal/execx"
	"github.com/runlabhq/devrun/internal/history"
	"github.com/runlabhq/devrun/internal/output"
)

// app holds the wired-up components shared by all subcommands. Everything
// is built in the root PersistentPreRunE so flags are already parsed.
type app struct {
	cfg        *config.Configuration
	registry   *command.Registry
	dispatcher *dispatch.Dispatcher
	store      *history.Store
}

// Execute runs the CLI and returns the process exit code. An interrupt
// cancels the in-flight step via context; completed steps are not rolled
// back.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := newRootCmd(a)
	err := root.ExecuteContext(ctx)
	if a.store != nil {
		_ = a.store.Close()
	}
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	var cliErr *devrunerrors.CLIError
	if errors.As(err, &cliErr) {
		fmt.Fprint(os.Stderr, devrunerrors.FormatError(cliErr))
		if cliErr.ExitCode > 0 {
			return cliErr.ExitCode
		}
		return ExitFailure
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitFailure
}

// newRootCmd builds the command tree around an app that is initialized
// lazily in PersistentPreRunE.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "devrun [command]",
		Short: "Developer-convenience dispatcher for the project's external tools",
		Long: `devrun maps short command names to sequences of external tool
invocations: starting compose services, applying migrations, running the
server, tests, linter, and formatter. Steps run strictly in order and the
first failure stops the run.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand matched: either list commands (no args) or let
			// the dispatcher resolve a user-defined or unknown name.
			return a.dispatch(cmd, args)
		},
	}

	root.PersistentFlags().String("config", "", "Path to project config file (default .devrun/config.yml)")
	root.PersistentFlags().Bool("dry-run", false, "Print each step instead of executing it")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.PersistentFlags().BoolP("yes", "y", false, "Answer prompts with an empty line")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")

	for _, spec := range builtin.Commands(config.Defaults()) {
		root.AddCommand(newDispatchCmd(a, spec.Name, spec.Description))
	}

	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newLogsCmd(a))
	root.AddCommand(newDoctorCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// newDispatchCmd creates a cobra subcommand that routes to the dispatcher.
func newDispatchCmd(a *app, name, description string) *cobra.Command {
	return &cobra.Command{
		Use:          name,
		Short:        description,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.dispatch(cmd, []string{name})
		},
	}
}

// init loads configuration and wires the dispatcher. Called once per
// invocation from the root PersistentPreRunE.
func (a *app) init(cmd *cobra.Command) error {
	debug, _ := cmd.Flags().GetBool("debug")
	initLogging(debug)

	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := cfg.LoadDotenv(); err != nil {
		return err
	}

	registry := command.NewRegistry()
	builtin.Register(registry, cfg)
	userSpecs, err := cfg.UserSpecs()
	if err != nil {
		return err
	}
	for _, spec := range userSpecs {
		if err := registry.Register(spec); err != nil {
			return err
		}
	}
	a.registry = registry

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	autoYes, _ := cmd.Flags().GetBool("yes")

	opts := []dispatch.Option{
		dispatch.WithDryRun(dryRun),
		dispatch.WithAutoYes(autoYes || cfg.SkipConfirmations),
	}

	if store := openHistory(cfg); store != nil {
		a.store = store
		opts = append(opts, dispatch.WithHistory(store))
	}

	printer := output.NewPrinter(cmd.OutOrStdout())
	a.dispatcher = dispatch.New(registry, execx.NewOSRunner(), printer, opts...)
	return nil
}

// dispatch runs the dispatcher and maps the result to an exit error.
func (a *app) dispatch(cmd *cobra.Command, args []string) error {
	result := a.dispatcher.Dispatch(cmd.Context(), args)
	if code := result.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// openHistory opens the run-history store. Failures are downgraded to a
// warning; history must never block dispatching.
func openHistory(cfg *config.Configuration) *history.Store {
	path, err := cfg.HistoryDBPath()
	if err == nil {
		store, openErr := history.Open(path, cfg.MaxHistoryEntries)
		if openErr == nil {
			return store
		}
		err = openErr
	}
	slog.Warn("run history disabled", "err", err)
	return nil
}

// initLogging configures slog diagnostics. User-facing status lines go
// through the output package; slog is for internals only.
func initLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{Level: level})
	slog.SetDefault(slog.New(handler))
}
