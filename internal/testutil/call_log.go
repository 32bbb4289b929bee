package testutil

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CallLogEntry represents a single call record in YAML format. It wraps
// CallRecord for serialization, handling error and time formatting.
type CallLogEntry struct {
	Argv       []string          `yaml:"argv"`
	Dir        string            `yaml:"dir,omitempty"`
	Env        map[string]string `yaml:"env,omitempty"`
	Background bool              `yaml:"background,omitempty"`
	Timestamp  string            `yaml:"timestamp"`
	ExitCode   int               `yaml:"exit_code"`
	Error      string            `yaml:"error,omitempty"`
}

// CallLog wraps []CallLogEntry for YAML serialization.
type CallLog struct {
	Entries []CallLogEntry `yaml:"entries"`
}

// WriteCallLog writes a slice of CallRecords to a YAML file. E2E-style
// tests use this to assert on the exact sequence of spawned commands.
func WriteCallLog(path string, records []CallRecord) error {
	log := CallLog{Entries: make([]CallLogEntry, 0, len(records))}
	for _, r := range records {
		entry := CallLogEntry{
			Argv:       r.Argv,
			Dir:        r.Dir,
			Env:        r.Env,
			Background: r.Background,
			Timestamp:  r.Timestamp.Format(time.RFC3339Nano),
			ExitCode:   r.ExitCode,
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		log.Entries = append(log.Entries, entry)
	}

	data, err := yaml.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshaling call log to YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing call log to %s: %w", path, err)
	}
	return nil
}

// ReadCallLog reads a YAML call log file. The Error field is a string
// since the original error type cannot be reconstructed.
func ReadCallLog(path string) (*CallLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading call log from %s: %w", path, err)
	}
	var log CallLog
	if err := yaml.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("unmarshaling call log YAML: %w", err)
	}
	return &log, nil
}
