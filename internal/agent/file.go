package agent

import (
	"context"
	"fmt"
	"log/slog"
)

// filesAgent executes file-kind tasks against the FileManager. File
// operation failures are soft: they are reported inside the result, never
// returned as errors. Malformed payloads fail hard.
type filesAgent struct {
	files  FileManager
	logger *slog.Logger
}

func newFilesAgent(files FileManager, logger *slog.Logger) *filesAgent {
	return &filesAgent{files: files, logger: logger}
}

func (f *filesAgent) Kind() TaskKind { return KindFile }

func (f *filesAgent) Execute(ctx context.Context, task *Task) (*TaskResult, error) {
	f.logger.Info("file agent executing task", "task_id", task.ID)

	operation, err := requireString(task, "operation")
	if err != nil {
		return nil, err
	}

	switch operation {
	case "create":
		return f.create(task)
	case "update":
		return f.update(task)
	case "delete":
		return f.delete(task)
	case "read":
		return f.read(task)
	default:
		return nil, fmt.Errorf("task %s: unknown file operation: %s", task.ID, operation)
	}
}

// resolve extracts workspace_dir and path and verifies the result stays
// inside the workspace.
func (f *filesAgent) resolve(task *Task) (string, error) {
	path, err := requireString(task, "path")
	if err != nil {
		return "", err
	}
	workspaceDir, err := requireString(task, "workspace_dir")
	if err != nil {
		return "", err
	}
	return resolveWorkspacePath(workspaceDir, path)
}

func (f *filesAgent) create(task *Task) (*TaskResult, error) {
	fullPath, err := f.resolve(task)
	if err != nil {
		return nil, err
	}
	content := optionalString(task, "content", "")

	if err := f.files.Create(fullPath, content); err != nil {
		return &TaskResult{Success: false, Error: err.Error()}, nil
	}
	return &TaskResult{
		Success: true,
		Data:    map[string]any{"path": fullPath, "created": true},
	}, nil
}

func (f *filesAgent) update(task *Task) (*TaskResult, error) {
	fullPath, err := f.resolve(task)
	if err != nil {
		return nil, err
	}
	content, ok := task.Payload["content"].(string)
	if !ok {
		return nil, fmt.Errorf("task %s: required payload key %q missing or not a string", task.ID, "content")
	}

	if err := f.files.Update(fullPath, content); err != nil {
		return &TaskResult{Success: false, Error: err.Error()}, nil
	}
	return &TaskResult{
		Success: true,
		Data:    map[string]any{"path": fullPath, "updated": true},
	}, nil
}

func (f *filesAgent) delete(task *Task) (*TaskResult, error) {
	fullPath, err := f.resolve(task)
	if err != nil {
		return nil, err
	}
	if err := f.files.Delete(fullPath); err != nil {
		return &TaskResult{Success: false, Error: err.Error()}, nil
	}
	return &TaskResult{
		Success: true,
		Data:    map[string]any{"path": fullPath, "deleted": true},
	}, nil
}

func (f *filesAgent) read(task *Task) (*TaskResult, error) {
	fullPath, err := f.resolve(task)
	if err != nil {
		return nil, err
	}
	content, err := f.files.Read(fullPath)
	if err != nil {
		return &TaskResult{Success: false, Error: err.Error()}, nil
	}
	return &TaskResult{
		Success: true,
		Data:    map[string]any{"path": fullPath, "content": content},
	}, nil
}
