package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutionResultExitCode(t *testing.T) {
	tests := []struct {
		name   string
		result ExecutionResult
		want   int
	}{
		{
			name:   "success is zero",
			result: ExecutionResult{Command: "dev", Status: Success},
			want:   0,
		},
		{
			name:   "not found without a name is zero",
			result: ExecutionResult{Status: NotFound},
			want:   0,
		},
		{
			name:   "not found with a name is one",
			result: ExecutionResult{Command: "bogus", Status: NotFound},
			want:   1,
		},
		{
			name: "failed propagates the step exit code",
			result: ExecutionResult{
				Command:    "test",
				Status:     Failed,
				FailedStep: 0,
				Steps:      []StepResult{{Index: 0, ExitCode: 5}},
			},
			want: 5,
		},
		{
			name: "failed without a usable code falls back to one",
			result: ExecutionResult{
				Command:    "dev",
				Status:     Failed,
				FailedStep: 0,
				Steps:      []StepResult{{Index: 0, ExitCode: 0}},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.ExitCode())
		})
	}
}

func TestStepKindString(t *testing.T) {
	assert.Equal(t, "run", RunProcess.String())
	assert.Equal(t, "sleep", Sleep.String())
	assert.Equal(t, "prompt", Prompt.String())
	assert.Equal(t, "remove", RemovePath.String())
	assert.Equal(t, "log", Log.String())
}
