package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandArgv(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		captures map[string]string
		want     []string
	}{
		{
			name:     "no captures returns argv unchanged",
			argv:     []string{"alembic", "-m", "{{message}}"},
			captures: nil,
			want:     []string{"alembic", "-m", "{{message}}"},
		},
		{
			name:     "single placeholder",
			argv:     []string{"alembic", "-m", "{{message}}"},
			captures: map[string]string{"message": "add users"},
			want:     []string{"alembic", "-m", "add users"},
		},
		{
			name:     "placeholder embedded in token",
			argv:     []string{"echo", "msg={{message}}!"},
			captures: map[string]string{"message": "hi"},
			want:     []string{"echo", "msg=hi!"},
		},
		{
			name:     "unknown keys stay visible",
			argv:     []string{"echo", "{{typo}}"},
			captures: map[string]string{"message": "hi"},
			want:     []string{"echo", "{{typo}}"},
		},
		{
			name:     "empty capture substitutes empty string",
			argv:     []string{"tool", "{{message}}"},
			captures: map[string]string{"message": ""},
			want:     []string{"tool", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandArgv(tt.argv, tt.captures))
		})
	}
}
