package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// fsManager implements FileManager on top of an afero filesystem so the
// agents can be tested against an in-memory tree.
type fsManager struct {
	fs afero.Fs
}

// NewFileManager creates a FileManager backed by the given filesystem.
func NewFileManager(fs afero.Fs) FileManager {
	return &fsManager{fs: fs}
}

// Create writes a new file, creating missing parent directories.
func (f *fsManager) Create(path, content string) error {
	if err := f.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(f.fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	return nil
}

// Update overwrites an existing file. It never creates the target.
func (f *fsManager) Update(path, content string) error {
	if !f.Exists(path) {
		return fmt.Errorf("file not found: %s", path)
	}
	if err := afero.WriteFile(f.fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("update file %s: %w", path, err)
	}
	return nil
}

// Delete removes a file.
func (f *fsManager) Delete(path string) error {
	return f.fs.Remove(path)
}

// Read returns the full content of a file.
func (f *fsManager) Read(path string) (string, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Exists reports whether a path exists.
func (f *fsManager) Exists(path string) bool {
	_, err := f.fs.Stat(path)
	return err == nil
}

// List walks dir recursively and returns file paths relative to dir,
// directories excluded.
func (f *fsManager) List(dir string) ([]string, error) {
	var files []string
	err := afero.Walk(f.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

// resolveWorkspacePath joins a workspace root with a relative path and
// rejects results that escape the root.
func resolveWorkspacePath(workspaceDir, path string) (string, error) {
	root := filepath.Clean(workspaceDir)
	full := filepath.Clean(filepath.Join(root, path))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes workspace %q", path, workspaceDir)
	}
	return full, nil
}
