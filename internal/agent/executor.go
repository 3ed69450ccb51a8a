package agent

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"
)

// ShellExecutor runs command strings through the system shell, capturing
// both output streams in full. Executions are passed to the optional
// recorder for audit history.
type ShellExecutor struct {
	recorder ExecutionRecorder
	logger   *slog.Logger
}

// NewShellExecutor creates an executor. recorder may be nil.
func NewShellExecutor(recorder ExecutionRecorder, logger *slog.Logger) *ShellExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShellExecutor{recorder: recorder, logger: logger}
}

var _ CommandExecutor = (*ShellExecutor)(nil)

// Run executes one command. A non-zero exit produces a failed execution
// with the process error folded into the captured stderr; only a failure
// to start the shell itself is returned as an error.
func (e *ShellExecutor) Run(ctx context.Context, command, workingDir string) (*CommandExecution, error) {
	cmd := shellCommand(ctx, command)
	cmd.Dir = workingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startedAt := time.Now().UTC()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}
	waitErr := cmd.Wait()

	result := &CommandExecution{
		ID:         fmt.Sprintf("cmd_%d", startedAt.UnixNano()),
		Command:    command,
		WorkingDir: workingDir,
		Status:     ExecCompleted,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		CreatedAt:  startedAt,
	}
	if waitErr != nil {
		result.Status = ExecFailed
		result.Stderr = fmt.Sprintf("%s: %s", waitErr.Error(), stderr.String())
	}

	e.record(ctx, result)
	return result, nil
}

// RunSequence executes commands strictly in order and stops after the
// first failed execution. The returned slice includes the failing record.
func (e *ShellExecutor) RunSequence(ctx context.Context, commands []string, workingDir string) ([]*CommandExecution, error) {
	var results []*CommandExecution
	for _, command := range commands {
		result, err := e.Run(ctx, command, workingDir)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if result.Status == ExecFailed {
			break
		}
	}
	return results, nil
}

func (e *ShellExecutor) record(ctx context.Context, exec *CommandExecution) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, exec); err != nil {
		e.logger.Warn("record execution", "execution_id", exec.ID, "err", err)
	}
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command) // #nosec G204
	}
	return exec.CommandContext(ctx, "/bin/sh", "-c", command) // #nosec G204
}
