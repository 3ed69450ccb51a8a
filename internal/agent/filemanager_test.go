package agent

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileManagerCreateAndRead(t *testing.T) {
	fm := NewFileManager(afero.NewMemMapFs())

	require.NoError(t, fm.Create("/ws/server/main.go", "package main"))

	got, err := fm.Read("/ws/server/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main", got)
	assert.True(t, fm.Exists("/ws/server/main.go"))
}

func TestFileManagerUpdate(t *testing.T) {
	fm := NewFileManager(afero.NewMemMapFs())
	require.NoError(t, fm.Create("/ws/a.txt", "old"))

	require.NoError(t, fm.Update("/ws/a.txt", "new"))
	got, err := fm.Read("/ws/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestFileManagerUpdateMissingFile(t *testing.T) {
	fm := NewFileManager(afero.NewMemMapFs())

	err := fm.Update("/ws/missing.txt", "content")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
	assert.False(t, fm.Exists("/ws/missing.txt"), "update must never create")
}

func TestFileManagerDelete(t *testing.T) {
	fm := NewFileManager(afero.NewMemMapFs())
	require.NoError(t, fm.Create("/ws/a.txt", ""))

	require.NoError(t, fm.Delete("/ws/a.txt"))
	assert.False(t, fm.Exists("/ws/a.txt"))
}

func TestFileManagerList(t *testing.T) {
	fm := NewFileManager(afero.NewMemMapFs())
	require.NoError(t, fm.Create("/ws/main.go", ""))
	require.NoError(t, fm.Create("/ws/pkg/util.go", ""))
	require.NoError(t, fm.Create("/ws/pkg/deep/x.go", ""))

	files, err := fm.List("/ws")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go", "pkg/util.go", "pkg/deep/x.go"}, files)
}

func TestResolveWorkspacePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"relative file", "main.go", "/ws/main.go", false},
		{"nested", "src/app/main.go", "/ws/src/app/main.go", false},
		{"dot", ".", "/ws", false},
		{"cleans inner dots", "src/../main.go", "/ws/main.go", false},
		{"escape with dotdot", "../secrets", "", true},
		{"escape deep", "a/../../etc/passwd", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveWorkspacePath("/ws", tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
