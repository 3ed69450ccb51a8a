package agent

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"agentd/internal/llm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubLLM implements LLMClient with overridable behavior per method.
type stubLLM struct {
	chatFn            func(messages []llm.Message) (string, error)
	generateCommandFn func(instruction string) (string, error)
	analyzeErrorFn    func(errorOutput, fileContent string) (string, error)
	planProjectFn     func(description string) (string, error)
	model             string
}

func (s *stubLLM) Chat(_ context.Context, messages []llm.Message) (string, error) {
	if s.chatFn == nil {
		return "ok", nil
	}
	return s.chatFn(messages)
}

func (s *stubLLM) ClassifyIntent(_ context.Context, _ string) (string, error) {
	return "GENERAL", nil
}

func (s *stubLLM) AnalyzeError(_ context.Context, errorOutput, fileContent string) (string, error) {
	if s.analyzeErrorFn == nil {
		return "analysis", nil
	}
	return s.analyzeErrorFn(errorOutput, fileContent)
}

func (s *stubLLM) GenerateCommand(_ context.Context, instruction string) (string, error) {
	if s.generateCommandFn == nil {
		return "echo stub", nil
	}
	return s.generateCommandFn(instruction)
}

func (s *stubLLM) PlanProject(_ context.Context, description string) (string, error) {
	if s.planProjectFn == nil {
		return "{}", nil
	}
	return s.planProjectFn(description)
}

func (s *stubLLM) GenerateCode(_ context.Context, _, _ string) (string, error) {
	return "code", nil
}

func (s *stubLLM) SetModel(model string) { s.model = model }
func (s *stubLLM) GetModel() string      { return s.model }

// stubExecutor records invocations instead of running a shell.
type stubExecutor struct {
	runFn func(command, workingDir string) (*CommandExecution, error)
	calls []string
}

func (s *stubExecutor) Run(_ context.Context, command, workingDir string) (*CommandExecution, error) {
	s.calls = append(s.calls, command)
	if s.runFn == nil {
		return &CommandExecution{
			ID:         "cmd_stub",
			Command:    command,
			WorkingDir: workingDir,
			Status:     ExecCompleted,
			Stdout:     "stub output",
			CreatedAt:  time.Now().UTC(),
		}, nil
	}
	return s.runFn(command, workingDir)
}

func (s *stubExecutor) RunSequence(ctx context.Context, commands []string, workingDir string) ([]*CommandExecution, error) {
	var results []*CommandExecution
	for _, command := range commands {
		result, err := s.Run(ctx, command, workingDir)
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

// captureRecorder collects command executions handed to the recorder.
type captureRecorder struct {
	records []*CommandExecution
	err     error
}

func (c *captureRecorder) Record(_ context.Context, exec *CommandExecution) error {
	c.records = append(c.records, exec)
	return c.err
}

// captureNotifier collects notifications. It is shared with the queue
// consumer goroutine, hence the mutex.
type captureNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (c *captureNotifier) Send(_ context.Context, title, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.titles = append(c.titles, title)
	c.bodies = append(c.bodies, body)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.titles)
}
