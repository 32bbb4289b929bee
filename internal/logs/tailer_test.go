package logs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer so the test goroutine and the tailer
// can touch it concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestTailer(t *testing.T, path string) *Tailer {
	t.Helper()
	tailer, err := NewTailer(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tailer.Close() })
	return tailer
}

func TestTailDumpsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o644))

	tailer := newTestTailer(t, path)

	var buf bytes.Buffer
	require.NoError(t, tailer.Tail(context.Background(), &buf, false))
	assert.Equal(t, "line one\nline two\n", buf.String())
}

func TestTailFollowStreamsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o644))

	tailer := newTestTailer(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- tailer.Tail(ctx, out, true) }()

	require.Eventually(t, func() bool {
		return out.String() == "existing\n"
	}, 2*time.Second, 20*time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("appended\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return out.String() == "existing\nappended\n"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestTailWaitsForFileCreation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "app.log")

	tailer := newTestTailer(t, path)

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- tailer.Tail(context.Background(), out, false) }()

	// Give the tailer time to start watching before the file appears.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("late arrival\n"), 0o644))

	require.NoError(t, <-done)
	assert.Equal(t, "late arrival\n", out.String())
}

func TestTailWaitContextCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.log")
	tailer := newTestTailer(t, path)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	err := tailer.Tail(ctx, &buf, false)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTailHandlesTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("first run line\n"), 0o644))

	tailer := newTestTailer(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- tailer.Tail(ctx, out, true) }()

	require.Eventually(t, func() bool {
		return out.String() == "first run line\n"
	}, 2*time.Second, 20*time.Millisecond)

	// Truncate and rewrite, as a restarted server would.
	require.NoError(t, os.WriteFile(path, []byte("fresh\n"), 0o644))

	require.Eventually(t, func() bool {
		return out.String() == "first run line\nfresh\n"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestTailDumpIncludesUnterminatedFinalLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("complete\npartial"), 0o644))

	tailer := newTestTailer(t, path)

	var buf bytes.Buffer
	require.NoError(t, tailer.Tail(context.Background(), &buf, false))
	assert.Equal(t, "complete\npartial\n", buf.String())
}

func TestTailFollowWaitsForLineTermination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("start\n"), 0o644))

	tailer := newTestTailer(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- tailer.Tail(ctx, out, true) }()

	require.Eventually(t, func() bool {
		return out.String() == "start\n"
	}, 2*time.Second, 20*time.Millisecond)

	// A line still being written must not be emitted yet.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("par")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, "start\n", out.String())

	f, err = os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("tial\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return out.String() == "start\npartial\n"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
