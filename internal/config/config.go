// Package config provides hierarchical configuration management for devrun
// using koanf. Configuration is loaded with priority: environment variables
// (DEVRUN_*) > project config (.devrun/config.yml) > user config
// (~/.config/devrun/config.yml) > defaults. Tool invocations (compose,
// migrations, server, linter, installer) are all overridable so the same
// command table works across projects.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	devrunerrors "github.com/runlabhq/devrun/internal/errors"
)

// Configuration represents the devrun CLI tool configuration.
type Configuration struct {
	// ComposeCmd is the container orchestrator invocation, e.g.
	// ["docker-compose"] or ["docker", "compose"].
	ComposeCmd []string `koanf:"compose_cmd"`
	// ComposeFile is an explicit compose file path ("" = orchestrator default).
	ComposeFile string `koanf:"compose_file"`

	// Tool invocations dispatched as opaque subprocesses.
	ServerCmd  []string `koanf:"server_cmd"`
	MigrateCmd []string `koanf:"migrate_cmd"`
	TestCmd    []string `koanf:"test_cmd"`
	LintCmd    []string `koanf:"lint_cmd"`
	FormatCmd  []string `koanf:"format_cmd"`
	InstallCmd []string `koanf:"install_cmd"`

	// DBWarmup is how long 'dev' waits after starting background services
	// before running migrations (duration string, e.g. "3s").
	DBWarmup string `koanf:"db_warmup"`

	// Paths owned by the external tools but cleaned up by 'clean'.
	LogDir    string `koanf:"log_dir"`
	DBFile    string `koanf:"db_file"`
	ServerLog string `koanf:"server_log"`

	// EnvFile is the project dotenv file loaded before dispatch.
	EnvFile string `koanf:"env_file"`

	// HistoryDB overrides the run-history database path ("" = state dir).
	HistoryDB string `koanf:"history_db"`
	// MaxHistoryEntries caps retained history rows; oldest are pruned.
	MaxHistoryEntries int `koanf:"max_history_entries"`

	// SkipConfirmations answers prompt steps with an empty line.
	// Can also be set via DEVRUN_YES.
	SkipConfirmations bool `koanf:"skip_confirmations"`

	// Commands holds user-defined commands from the config file. They are
	// registered after the built-ins and may not shadow them.
	Commands map[string]UserCommand `koanf:"commands"`
}

// UserCommand is a config-file-defined command.
type UserCommand struct {
	Description string     `koanf:"description"`
	Steps       []UserStep `koanf:"steps"`
}

// UserStep is one step of a user-defined command. Exactly one of Run,
// Sleep, or Log should be set.
type UserStep struct {
	// Run is a shell-quoted argv, e.g. `docker-compose logs -f "api server"`.
	Run string `koanf:"run"`
	// Sleep is a duration string, e.g. "2s".
	Sleep string `koanf:"sleep"`
	// Log is an info-level status message.
	Log string `koanf:"log"`

	ContinueOnFailure bool `koanf:"continue_on_failure"`
	Background        bool `koanf:"background"`
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults.
// An explicit projectConfigPath overrides the default project location.
func Load(projectConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	userPath, _ := UserConfigPath()
	if err := loadFileIfExists(k, userPath, "user"); err != nil {
		return nil, err
	}

	projectPath := ProjectConfigPath()
	if projectConfigPath != "" {
		projectPath = projectConfigPath
	}
	if err := loadFileIfExists(k, projectPath, "project"); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("DEVRUN_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	return finalizeConfig(k)
}

// Defaults returns a Configuration populated with default values only,
// skipping files and environment. Used where only the static shape of
// the built-in table is needed (e.g. cobra command construction).
func Defaults() *Configuration {
	k := koanf.New(".")
	loadDefaults(k)
	cfg, err := finalizeConfig(k)
	if err != nil {
		// Defaults are static and validated by tests; this cannot happen.
		panic(err)
	}
	return cfg
}

// loadDefaults applies default configuration values.
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		_ = k.Set(key, value)
	}
}

// loadFileIfExists loads a YAML config file when present.
func loadFileIfExists(k *koanf.Koanf, path, configType string) error {
	if path == "" || !fileExists(path) {
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration.
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	if os.Getenv("DEVRUN_YES") != "" {
		cfg.SkipConfirmations = true
	}

	return &cfg, nil
}

// validate rejects configurations the dispatcher cannot act on.
func validate(cfg *Configuration) error {
	if len(cfg.ComposeCmd) == 0 {
		return devrunerrors.NewConfigError("compose_cmd must not be empty")
	}
	if _, err := time.ParseDuration(cfg.DBWarmup); err != nil {
		return devrunerrors.NewConfigError(
			fmt.Sprintf("invalid db_warmup duration %q", cfg.DBWarmup),
			`Use a Go duration string such as "3s" or "500ms"`,
		)
	}
	if cfg.MaxHistoryEntries < 0 {
		return devrunerrors.NewConfigError("max_history_entries must not be negative")
	}
	return nil
}

// Warmup returns the parsed db_warmup duration. Load has already
// validated the string, so parse errors cannot occur here.
func (c *Configuration) Warmup() time.Duration {
	d, _ := time.ParseDuration(c.DBWarmup)
	return d
}

// Compose builds a compose invocation with the configured command and
// file flag followed by the given subcommand arguments.
func (c *Configuration) Compose(args ...string) []string {
	argv := append([]string{}, c.ComposeCmd...)
	if c.ComposeFile != "" {
		argv = append(argv, "-f", c.ComposeFile)
	}
	return append(argv, args...)
}

// LoadDotenv loads the project dotenv file into the process environment
// so spawned tools see it. A missing file is not an error; the external
// tools own their own configuration.
func (c *Configuration) LoadDotenv() error {
	if c.EnvFile == "" || !fileExists(c.EnvFile) {
		return nil
	}
	if err := godotenv.Load(c.EnvFile); err != nil {
		return devrunerrors.Wrap(
			fmt.Errorf("loading %s: %w", c.EnvFile, err),
			devrunerrors.Configuration,
		)
	}
	return nil
}

// envTransform maps DEVRUN_FOO_BAR to the koanf key "foo_bar".
// Nested keys use double underscores: DEVRUN_COMMANDS__X maps to "commands.x".
func envTransform(s string) string {
	s = strings.TrimPrefix(s, "DEVRUN_")
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
