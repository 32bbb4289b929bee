package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runlabhq/devrun/internal/command"
)

func openTestStore(t *testing.T, maxEntries int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"), maxEntries)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func successResult(name string, steps int) command.ExecutionResult {
	result := command.ExecutionResult{Command: name, Status: command.Success}
	for i := 0; i < steps; i++ {
		result.Steps = append(result.Steps, command.StepResult{
			Index:    i,
			Kind:     command.RunProcess,
			Duration: 10 * time.Millisecond,
		})
	}
	return result
}

func TestOpenCreatesParentDirAndSchema(t *testing.T) {
	store := openTestStore(t, 0)

	entries, err := store.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t, 0)
	started := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	store.Record(successResult("test", 1), started, 1500*time.Millisecond)
	store.Record(command.ExecutionResult{
		Command:    "dev",
		Status:     command.Failed,
		FailedStep: 2,
		Steps: []command.StepResult{
			{Index: 0, Kind: command.Log},
			{Index: 1, Kind: command.RunProcess},
			{Index: 2, Kind: command.RunProcess, ExitCode: 1, Err: assert.AnError},
		},
	}, started.Add(time.Minute), 3*time.Second)

	entries, err := store.Recent(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	dev := entries[0]
	assert.Equal(t, "dev", dev.Command)
	assert.Equal(t, "failed", dev.Status)
	assert.Equal(t, 1, dev.ExitCode)
	assert.Equal(t, 3, dev.StepsTotal)
	assert.Equal(t, 3*time.Second, dev.Duration)

	run := entries[1]
	assert.Equal(t, "test", run.Command)
	assert.Equal(t, "success", run.Status)
	assert.Equal(t, 0, run.ExitCode)
	assert.True(t, run.StartedAt.Equal(started))
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openTestStore(t, 0)
	for i := 0; i < 5; i++ {
		store.Record(successResult("lint", 1), time.Now(), time.Millisecond)
	}

	entries, err := store.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecordPrunesOldestBeyondCap(t *testing.T) {
	store := openTestStore(t, 3)
	names := []string{"one", "two", "three", "four", "five"}
	for _, name := range names {
		store.Record(successResult(name, 2), time.Now(), time.Millisecond)
	}

	entries, err := store.Recent(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "five", entries[0].Command)
	assert.Equal(t, "three", entries[2].Command)

	// Cascade removes the pruned runs' step rows.
	var orphans int
	require.NoError(t, store.db.QueryRow(
		`SELECT COUNT(*) FROM run_steps WHERE run_id NOT IN (SELECT id FROM runs)`,
	).Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestClear(t *testing.T) {
	store := openTestStore(t, 0)
	store.Record(successResult("test", 1), time.Now(), time.Millisecond)
	require.NoError(t, store.Clear())

	entries, err := store.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := Open(path, 0)
	require.NoError(t, err)
	first.Record(successResult("test", 1), time.Now(), time.Millisecond)
	require.NoError(t, first.Close())

	second, err := Open(path, 0)
	require.NoError(t, err)
	defer second.Close()

	entries, err := second.Recent(0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
