// Package testutil provides test utilities and helpers for devrun tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/runlabhq/devrun/internal/execx"
)

// CallRecord captures one invocation of the fake runner.
type CallRecord struct {
	Argv       []string
	Dir        string
	Env        map[string]string
	Background bool
	Timestamp  time.Time
	ExitCode   int
	Err        error
}

// FakeResult scripts the outcome for a fake invocation.
type FakeResult struct {
	ExitCode int
	Err      error
}

// FakeRunner is an execx.Runner that records calls instead of spawning
// processes. Outcomes can be scripted per binary name; unscripted calls
// succeed with exit 0.
type FakeRunner struct {
	mu      sync.Mutex
	calls   []CallRecord
	results map[string]FakeResult
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{results: make(map[string]FakeResult)}
}

// Script sets the outcome returned when binary is invoked.
func (f *FakeRunner) Script(binary string, result FakeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[binary] = result
}

// Run records the call and returns the scripted outcome.
func (f *FakeRunner) Run(_ context.Context, req execx.Request) (execx.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := FakeResult{}
	if len(req.Argv) > 0 {
		if scripted, ok := f.results[req.Argv[0]]; ok {
			result = scripted
		}
	}

	f.calls = append(f.calls, CallRecord{
		Argv:       append([]string{}, req.Argv...),
		Dir:        req.Dir,
		Env:        req.Env,
		Background: req.Background,
		Timestamp:  time.Now(),
		ExitCode:   result.ExitCode,
		Err:        result.Err,
	})

	return execx.Result{
		ExitCode: result.ExitCode,
		Started:  true,
	}, result.Err
}

// Calls returns a copy of the recorded calls in invocation order.
func (f *FakeRunner) Calls() []CallRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CallRecord{}, f.calls...)
}

// CallCount returns the number of recorded calls.
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
