package agent

import (
	"context"
	"fmt"
	"log/slog"
)

// terminalAgent translates a natural-language instruction into a shell
// command via the language model and executes it. Command generation
// failure is hard; a failed command is reported as a soft result.
type terminalAgent struct {
	executor CommandExecutor
	llm      LLMClient
	logger   *slog.Logger
}

func newTerminalAgent(executor CommandExecutor, llm LLMClient, logger *slog.Logger) *terminalAgent {
	return &terminalAgent{executor: executor, llm: llm, logger: logger}
}

func (t *terminalAgent) Kind() TaskKind { return KindTerminal }

func (t *terminalAgent) Execute(ctx context.Context, task *Task) (*TaskResult, error) {
	t.logger.Info("terminal agent executing task", "task_id", task.ID)

	instruction, err := requireString(task, "instruction")
	if err != nil {
		return nil, err
	}
	workingDir := optionalString(task, "workspace_dir", ".")

	command, err := t.llm.GenerateCommand(ctx, instruction)
	if err != nil {
		return nil, fmt.Errorf("generate command: %w", err)
	}

	result, err := t.executor.Run(ctx, command, workingDir)
	if err != nil {
		return &TaskResult{Success: false, Error: err.Error()}, nil
	}
	return &TaskResult{
		Success: result.Stderr == "",
		Data: map[string]any{
			"command": command,
			"output":  result.Stdout,
			"error":   result.Stderr,
		},
	}, nil
}
