package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	task := NewTask(KindFile, "create a file", nil)

	assert.True(t, strings.HasPrefix(task.ID, "task_"), "ID = %q", task.ID)
	assert.Equal(t, KindFile, task.Kind)
	assert.Equal(t, TaskPending, task.Status)
	assert.NotNil(t, task.Payload, "nil payload must be normalized")
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.Nil(t, task.Result)
}

func TestNewTaskIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTaskID()
		require.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    TaskKind
		wantErr bool
	}{
		{"planning", KindPlanning, false},
		{"file", KindFile, false},
		{"terminal", KindTerminal, false},
		{"debug", KindDebug, false},
		{"", "", true},
		{"PLANNING", "", true},
		{"shell", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireString(t *testing.T) {
	task := NewTask(KindFile, "", map[string]any{
		"path":  "main.go",
		"count": 3,
		"empty": "",
	})

	got, err := requireString(task, "path")
	require.NoError(t, err)
	assert.Equal(t, "main.go", got)

	for _, key := range []string{"missing", "count", "empty"} {
		_, err := requireString(task, key)
		require.Error(t, err, "key %q", key)
		assert.Contains(t, err.Error(), key)
		assert.Contains(t, err.Error(), task.ID)
	}
}

func TestOptionalString(t *testing.T) {
	task := NewTask(KindTerminal, "", map[string]any{"workspace_dir": "/tmp/ws"})

	assert.Equal(t, "/tmp/ws", optionalString(task, "workspace_dir", "."))
	assert.Equal(t, ".", optionalString(task, "missing", "."))
}
