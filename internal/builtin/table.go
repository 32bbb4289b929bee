// Package builtin constructs the built-in command table from the loaded
// configuration. The table mirrors the everyday dev loop of the project:
// compose-managed services, migrations, a foreground server, tests,
// lint/format, and cleanup.
package builtin

import (
	"github.com/runlabhq/devrun/internal/command"
	"github.com/runlabhq/devrun/internal/config"
)

// Register adds all built-in commands to the registry in display order.
// Built-ins are registered first so user-defined commands cannot shadow
// them.
func Register(reg *command.Registry, cfg *config.Configuration) {
	for _, spec := range Commands(cfg) {
		reg.MustRegister(spec)
	}
}

// Commands returns the built-in command specs in display order.
func Commands(cfg *config.Configuration) []command.Spec {
	migrate := func(args ...string) []string {
		return append(append([]string{}, cfg.MigrateCmd...), args...)
	}

	return []command.Spec{
		{
			Name:        "dev",
			Description: "Start services, apply migrations, and run the server",
			Steps: []command.Step{
				command.Say("Starting background services..."),
				command.Run(cfg.Compose("up", "-d")...),
				command.Wait(cfg.Warmup()),
				// Migration failure is tolerated here: a fresh checkout may
				// not have the migration tool configured yet, and the server
				// can still come up against an existing schema.
				command.RunTolerant(migrate("upgrade", "head")...),
				command.Run(cfg.ServerCmd...),
			},
		},
		{
			Name:        "docker",
			Description: "Build images and run the full stack in the foreground",
			Steps: []command.Step{
				command.Run(cfg.Compose("up", "--build")...),
			},
		},
		{
			Name:        "test",
			Description: "Run the test suite",
			Steps: []command.Step{
				command.Run(cfg.TestCmd...),
			},
		},
		{
			Name:        "migrate",
			Description: "Apply database migrations",
			Steps: []command.Step{
				command.Run(migrate("upgrade", "head")...),
			},
		},
		{
			Name:        "makemigration",
			Description: "Generate a new migration from model changes",
			Steps: []command.Step{
				command.Ask("Migration message: ", "message"),
				command.Run(migrate("revision", "--autogenerate", "-m", "{{message}}")...),
			},
		},
		{
			Name:        "lint",
			Description: "Run the linter",
			Steps: []command.Step{
				command.Run(cfg.LintCmd...),
			},
		},
		{
			Name:        "format",
			Description: "Run the code formatter",
			Steps: []command.Step{
				command.Run(cfg.FormatCmd...),
			},
		},
		{
			Name:        "db",
			Description: "Start background services only",
			Steps: []command.Step{
				command.Run(cfg.Compose("up", "-d")...),
			},
		},
		{
			Name:        "stop",
			Description: "Stop background services",
			Steps: []command.Step{
				command.Run(cfg.Compose("down")...),
			},
		},
		{
			Name:        "clean",
			Description: "Stop services, remove volumes, and delete local state",
			Steps: []command.Step{
				command.Run(cfg.Compose("down", "-v")...),
				command.Remove(cfg.LogDir),
				command.Remove(cfg.DBFile),
			},
		},
		{
			Name:        "install",
			Description: "Install project dependencies",
			Steps: []command.Step{
				command.Run(cfg.InstallCmd...),
			},
		},
	}
}
