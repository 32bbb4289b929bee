package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
)

// HelperProcessConfig configures the behavior of TestHelperProcess.
type HelperProcessConfig struct {
	// ExitCode is the exit code to return (default 0).
	ExitCode int `json:"exit_code"`
	// Stdout is the content to write to stdout.
	Stdout string `json:"stdout"`
	// Stderr is the content to write to stderr.
	Stderr string `json:"stderr"`
}

// Environment variable names used by TestHelperProcess.
const (
	// EnvWantHelperProcess signals that the test binary should run as a helper process.
	EnvWantHelperProcess = "GO_WANT_HELPER_PROCESS"
	// EnvHelperProcessConfig contains JSON-encoded HelperProcessConfig.
	EnvHelperProcessConfig = "GO_HELPER_PROCESS_CONFIG"
)

// TestHelperProcess implements the helper-process pattern for tests that
// exercise the real OS runner. When invoked with GO_WANT_HELPER_PROCESS=1
// it behaves as a scripted subprocess and exits without returning; in a
// normal test run it returns immediately.
//
// Usage in a test file:
//
//	func TestHelperProcess(t *testing.T) {
//	    testutil.TestHelperProcess(t)
//	}
func TestHelperProcess(t *testing.T) {
	if os.Getenv(EnvWantHelperProcess) != "1" {
		return
	}

	config := HelperProcessConfig{}
	if raw := os.Getenv(EnvHelperProcessConfig); raw != "" {
		// Ignore parse errors; use defaults on failure.
		_ = json.Unmarshal([]byte(raw), &config)
	}

	if config.Stdout != "" {
		fmt.Fprint(os.Stdout, config.Stdout)
	}
	if config.Stderr != "" {
		fmt.Fprint(os.Stderr, config.Stderr)
	}
	os.Exit(config.ExitCode)
}
