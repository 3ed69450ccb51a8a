package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalAgentSuccess(t *testing.T) {
	llmStub := &stubLLM{
		generateCommandFn: func(instruction string) (string, error) {
			assert.Equal(t, "list files", instruction)
			return "ls -la", nil
		},
	}
	executor := &stubExecutor{
		runFn: func(command, workingDir string) (*CommandExecution, error) {
			assert.Equal(t, "ls -la", command)
			assert.Equal(t, "/ws", workingDir)
			return &CommandExecution{Command: command, Status: ExecCompleted, Stdout: "main.go\n"}, nil
		},
	}
	agent := newTerminalAgent(executor, llmStub, testLogger())

	task := NewTask(KindTerminal, "", map[string]any{
		"instruction":   "list files",
		"workspace_dir": "/ws",
	})
	result, err := agent.Execute(context.Background(), task)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "ls -la", result.Data["command"])
	assert.Equal(t, "main.go\n", result.Data["output"])
	assert.Equal(t, "", result.Data["error"])
}

func TestTerminalAgentDefaultWorkingDir(t *testing.T) {
	executor := &stubExecutor{
		runFn: func(command, workingDir string) (*CommandExecution, error) {
			assert.Equal(t, ".", workingDir)
			return &CommandExecution{Command: command, Status: ExecCompleted}, nil
		},
	}
	agent := newTerminalAgent(executor, &stubLLM{}, testLogger())

	_, err := agent.Execute(context.Background(), NewTask(KindTerminal, "", map[string]any{
		"instruction": "do it",
	}))
	require.NoError(t, err)
}

func TestTerminalAgentFailedCommandIsSoftFailure(t *testing.T) {
	executor := &stubExecutor{
		runFn: func(command, workingDir string) (*CommandExecution, error) {
			return &CommandExecution{Command: command, Status: ExecFailed, Stderr: "exit status 1: no such file"}, nil
		},
	}
	agent := newTerminalAgent(executor, &stubLLM{}, testLogger())

	result, err := agent.Execute(context.Background(), NewTask(KindTerminal, "", map[string]any{
		"instruction": "remove file",
	}))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Data["error"], "no such file")
}

func TestTerminalAgentExecutorErrorIsSoftFailure(t *testing.T) {
	executor := &stubExecutor{
		runFn: func(command, workingDir string) (*CommandExecution, error) {
			return nil, errors.New("start command: shell not found")
		},
	}
	agent := newTerminalAgent(executor, &stubLLM{}, testLogger())

	result, err := agent.Execute(context.Background(), NewTask(KindTerminal, "", map[string]any{
		"instruction": "run something",
	}))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "shell not found")
}

func TestTerminalAgentGenerateCommandErrorIsHard(t *testing.T) {
	llmStub := &stubLLM{
		generateCommandFn: func(string) (string, error) {
			return "", errors.New("model timeout")
		},
	}
	executor := &stubExecutor{}
	agent := newTerminalAgent(executor, llmStub, testLogger())

	result, err := agent.Execute(context.Background(), NewTask(KindTerminal, "", map[string]any{
		"instruction": "do it",
	}))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, executor.calls, "no command may run without a generated command")
}

func TestTerminalAgentMissingInstruction(t *testing.T) {
	agent := newTerminalAgent(&stubExecutor{}, &stubLLM{}, testLogger())

	_, err := agent.Execute(context.Background(), NewTask(KindTerminal, "", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instruction")
}
