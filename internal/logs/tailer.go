// Package logs streams the application server's log file to the terminal.
// It uses fsnotify for efficient change detection, with periodic polling
// as a backup for missed events.
package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Tailer streams lines from a log file as they are written. The file
// does not need to exist yet; the tailer waits for its creation.
type Tailer struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewTailer creates a Tailer for the given file path.
func NewTailer(path string) (*Tailer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Tailer{path: path, watcher: watcher}, nil
}

// Path returns the path being tailed.
func (t *Tailer) Path() string {
	return t.path
}

// Close stops the tailer and releases the watcher.
func (t *Tailer) Close() error {
	return t.watcher.Close()
}

// Tail writes the file's content to out. With follow it keeps streaming
// new lines until the context is cancelled; otherwise it dumps existing
// content and returns.
func (t *Tailer) Tail(ctx context.Context, out io.Writer, follow bool) error {
	if err := t.waitForFile(ctx); err != nil {
		return err
	}

	offset, err := t.copyExisting(out, !follow)
	if err != nil {
		return err
	}
	if !follow {
		return nil
	}

	if err := t.watcher.Add(t.path); err != nil {
		return fmt.Errorf("watching %s: %w", t.path, err)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-t.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name == t.path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				offset = t.copyNew(out, offset)
			}
		case <-ticker.C:
			offset = t.copyNew(out, offset)
		case _, ok := <-t.watcher.Errors:
			if !ok {
				return nil
			}
			// Polling covers reads when the watcher misbehaves.
		}
	}
}

// waitForFile blocks until the log file exists or the context ends.
func (t *Tailer) waitForFile(ctx context.Context) error {
	if _, err := os.Stat(t.path); err == nil {
		return nil
	}

	parent := filepath.Dir(t.path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if err := t.watcher.Add(parent); err != nil {
		return fmt.Errorf("watching parent directory: %w", err)
	}
	defer func() { _ = t.watcher.Remove(parent) }()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-t.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if event.Name == t.path && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				return nil
			}
		case <-ticker.C:
			if _, err := os.Stat(t.path); err == nil {
				return nil
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// copyExisting writes the file's current content to out and returns the
// ending offset for subsequent streaming.
func (t *Tailer) copyExisting(out io.Writer, flush bool) (int64, error) {
	file, err := os.Open(t.path)
	if err != nil {
		return 0, fmt.Errorf("opening log file: %w", err)
	}
	defer file.Close()

	return copyLines(file, out, 0, flush)
}

// copyNew writes content appearing after offset, handling truncation by
// restarting from the beginning of the file.
func (t *Tailer) copyNew(out io.Writer, offset int64) int64 {
	file, err := os.Open(t.path)
	if err != nil {
		return offset
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset
	}
	if info.Size() < offset {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset
	}

	newOffset, _ := copyLines(file, out, offset, false)
	return newOffset
}

// copyLines streams terminated lines from r to out, returning the
// offset after the last newline so a line still being written is picked
// up whole on a later pass. With flush, a trailing unterminated line is
// written as well; callers use that only when no later pass will come.
func copyLines(r io.Reader, out io.Writer, offset int64, flush bool) (int64, error) {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			fmt.Fprint(out, line)
			offset += int64(len(line))
			continue
		}
		if errors.Is(err, io.EOF) {
			if flush && line != "" {
				fmt.Fprintln(out, line)
			}
			return offset, nil
		}
		return offset, err
	}
}
