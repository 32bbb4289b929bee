package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runlabhq/devrun/internal/command"
)

// writeProjectConfig writes a temp config file and returns its path.
func writeProjectConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"docker-compose"}, cfg.ComposeCmd)
	assert.Equal(t, []string{"uvicorn", "app.main:app", "--reload"}, cfg.ServerCmd)
	assert.Equal(t, []string{"alembic"}, cfg.MigrateCmd)
	assert.Equal(t, []string{"pytest"}, cfg.TestCmd)
	assert.Equal(t, 3*time.Second, cfg.Warmup())
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, ".env", cfg.EnvFile)
	assert.Equal(t, 500, cfg.MaxHistoryEntries)
	assert.False(t, cfg.SkipConfirmations)
}

func TestLoadProjectConfigOverridesDefaults(t *testing.T) {
	path := writeProjectConfig(t, `
compose_cmd: [docker, compose]
compose_file: docker-compose.dev.yml
db_warmup: 5s
log_dir: var/log
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"docker", "compose"}, cfg.ComposeCmd)
	assert.Equal(t, 5*time.Second, cfg.Warmup())
	assert.Equal(t, "var/log", cfg.LogDir)
	// Untouched keys keep their defaults.
	assert.Equal(t, []string{"pytest"}, cfg.TestCmd)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeProjectConfig(t, "db_warmup: 5s\n")
	t.Setenv("DEVRUN_DB_WARMUP", "250ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Warmup())
}

func TestLoadRejectsInvalidWarmup(t *testing.T) {
	path := writeProjectConfig(t, "db_warmup: soon\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_warmup")
}

func TestDevrunYesEnablesSkipConfirmations(t *testing.T) {
	t.Setenv("DEVRUN_YES", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.True(t, cfg.SkipConfirmations)
}

func TestComposeBuildsInvocation(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, []string{"docker-compose", "up", "-d"}, cfg.Compose("up", "-d"))

	cfg.ComposeCmd = []string{"docker", "compose"}
	cfg.ComposeFile = "compose.dev.yml"
	assert.Equal(t,
		[]string{"docker", "compose", "-f", "compose.dev.yml", "down"},
		cfg.Compose("down"),
	)
}

func TestUserSpecsFromConfig(t *testing.T) {
	path := writeProjectConfig(t, `
commands:
  psql:
    description: Open a database shell
    steps:
      - run: docker-compose exec db psql -U postgres
  reset:
    steps:
      - log: Resetting local database
      - run: docker-compose down -v
        continue_on_failure: true
      - sleep: 1s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	specs, err := cfg.UserSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 2)

	// Sorted by name for deterministic registration.
	assert.Equal(t, "psql", specs[0].Name)
	assert.Equal(t, "Open a database shell", specs[0].Description)
	require.Len(t, specs[0].Steps, 1)
	assert.Equal(t, command.RunProcess, specs[0].Steps[0].Kind)
	assert.Equal(t, []string{"docker-compose", "exec", "db", "psql", "-U", "postgres"}, specs[0].Steps[0].Argv)

	reset := specs[1]
	require.Len(t, reset.Steps, 3)
	assert.Equal(t, command.Log, reset.Steps[0].Kind)
	assert.True(t, reset.Steps[1].ContinueOnFailure)
	assert.Equal(t, command.Sleep, reset.Steps[2].Kind)
	assert.Equal(t, time.Second, reset.Steps[2].Duration)
}

func TestUserSpecsShellQuoting(t *testing.T) {
	path := writeProjectConfig(t, `
commands:
  say:
    steps:
      - run: echo "hello world" tail
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	specs, err := cfg.UserSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, []string{"echo", "hello world", "tail"}, specs[0].Steps[0].Argv)
}

func TestUserSpecsRejectInvalidSteps(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{
			name: "no steps",
			config: `
commands:
  broken:
    description: nothing to do
    steps: []
`,
		},
		{
			name: "run and sleep on one step",
			config: `
commands:
  broken:
    steps:
      - run: echo hi
        sleep: 1s
`,
		},
		{
			name: "invalid sleep duration",
			config: `
commands:
  broken:
    steps:
      - sleep: whenever
`,
		},
		{
			name: "unbalanced quotes in run",
			config: `
commands:
  broken:
    steps:
      - run: echo "unterminated
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeProjectConfig(t, tt.config))
			require.NoError(t, err)

			_, err = cfg.UserSpecs()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotenvMissingFileIsFine(t *testing.T) {
	cfg := Defaults()
	cfg.EnvFile = filepath.Join(t.TempDir(), "no-such.env")
	assert.NoError(t, cfg.LoadDotenv())
}

func TestLoadDotenvSetsEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DEVRUN_TEST_DOTENV=loaded\n"), 0o644))

	cfg := Defaults()
	cfg.EnvFile = envFile
	require.NoError(t, cfg.LoadDotenv())
	t.Cleanup(func() { os.Unsetenv("DEVRUN_TEST_DOTENV") })

	assert.Equal(t, "loaded", os.Getenv("DEVRUN_TEST_DOTENV"))
}

func TestHistoryDBPathHonorsOverride(t *testing.T) {
	cfg := Defaults()
	cfg.HistoryDB = "/tmp/custom-history.db"

	path, err := cfg.HistoryDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-history.db", path)
}

func TestHistoryDBPathDefaultsToStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cfg := Defaults()
	path, err := cfg.HistoryDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_STATE_HOME"), "devrun", "history.db"), path)
}
