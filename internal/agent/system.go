package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// ErrQueueFull is returned by Submit when the bounded task queue is at
// capacity. Tasks are never dropped silently.
var ErrQueueFull = errors.New("task queue is full")

// ErrUnknownCommand is returned by DispatchCommand for unrecognized verbs.
var ErrUnknownCommand = errors.New("unknown command")

const defaultQueueSize = 100

// terminalIntentKeywords is the fixed vocabulary that routes a request
// straight to the terminal agent. Matching is case-insensitive containment.
var terminalIntentKeywords = []string{
	"run in terminal", "execute", "open terminal", "run command",
	"shell", "bash", "powershell", "/run",
}

func isTerminalIntent(request string) bool {
	lower := strings.ToLower(request)
	for _, k := range terminalIntentKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// storedResult keeps a result together with its storage time so the
// retention janitor can evict it later.
type storedResult struct {
	result   *TaskResult
	storedAt time.Time
}

// SystemConfig wires the orchestrator's collaborators. Zero values get
// sensible defaults.
type SystemConfig struct {
	LLM       LLMClient
	Files     FileManager
	Executor  CommandExecutor
	Notifier  Notifier
	QueueSize int
	Logger    *slog.Logger
}

// System owns the agent dispatch table, the bounded task queue with its
// single background consumer, and the result store. The dispatch table is
// fixed at construction and read-only afterwards; the result store and all
// task status transitions are guarded by one mutex, shared between
// synchronous callers and the consumer.
type System struct {
	agents   map[TaskKind]Agent
	llm      LLMClient
	queue    chan *Task
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	results map[string]storedResult

	consumerWG sync.WaitGroup
}

// NewSystem builds the orchestrator and registers the four agents.
func NewSystem(cfg SystemConfig) *System {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	files := cfg.Files
	if files == nil {
		files = NewFileManager(afero.NewOsFs())
	}
	executor := cfg.Executor
	if executor == nil {
		executor = NewShellExecutor(nil, logger)
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	s := &System{
		agents:   make(map[TaskKind]Agent),
		llm:      cfg.LLM,
		queue:    make(chan *Task, queueSize),
		notifier: cfg.Notifier,
		logger:   logger,
		results:  make(map[string]storedResult),
	}
	s.agents[KindPlanning] = newPlanningAgent(cfg.LLM, logger)
	s.agents[KindFile] = newFilesAgent(files, logger)
	s.agents[KindTerminal] = newTerminalAgent(executor, cfg.LLM, logger)
	s.agents[KindDebug] = newDebugAgent(cfg.LLM, files, logger)
	return s
}

// Start launches the background queue consumer. It processes submitted
// tasks strictly one at a time until ctx is cancelled.
func (s *System) Start(ctx context.Context) {
	s.consumerWG.Add(1)
	go s.consume(ctx)
}

// Stop returns a channel that is closed once the consumer has finished its
// in-flight task and exited. Cancel the Start context first.
func (s *System) Stop() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		s.consumerWG.Wait()
		close(done)
	}()
	return done
}

func (s *System) consume(ctx context.Context) {
	defer s.consumerWG.Done()
	// ctx only exits the loop. The in-flight task keeps a live context so
	// shutdown lets it run to completion; Stop callers bound the wait.
	execCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-s.queue:
			result, err := s.ExecuteTask(execCtx, task)
			if err != nil {
				// Consumer never stops on agent failures.
				s.logger.Error("queued task failed", "task_id", task.ID, "err", err)
			}
			s.notifyFinished(execCtx, task, result)
		}
	}
}

func (s *System) notifyFinished(ctx context.Context, task *Task, result *TaskResult) {
	if s.notifier == nil {
		return
	}
	title := fmt.Sprintf("task %s %s", task.ID, task.Status)
	body := task.Description
	if result != nil && result.Error != "" {
		body = result.Error
	}
	if err := s.notifier.Send(ctx, title, body); err != nil {
		s.logger.Warn("notify task finished", "task_id", task.ID, "err", err)
	}
}

// Submit enqueues a task for asynchronous processing. A full queue is
// reported explicitly with ErrQueueFull.
func (s *System) Submit(task *Task) error {
	select {
	case s.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// ExecuteTask dispatches one task to its agent and finalizes its state.
// The task moves Pending -> Running -> Completed|Failed; the result is
// stored under the task ID in every terminal case, including hard failures.
func (s *System) ExecuteTask(ctx context.Context, task *Task) (*TaskResult, error) {
	impl, ok := s.agents[task.Kind]
	if !ok {
		err := fmt.Errorf("agent not registered for kind %q", task.Kind)
		s.finalize(task, &TaskResult{Success: false, Error: err.Error()})
		return task.Result, err
	}

	s.setStatus(task, TaskRunning)

	result, err := impl.Execute(ctx, task)
	if err != nil {
		result = &TaskResult{Success: false, Error: err.Error()}
		s.finalize(task, result)
		return result, err
	}

	s.finalize(task, result)
	return result, nil
}

// ExecuteChain runs tasks strictly in order, stopping after the first
// result with Success=false (soft or hard). The partial list, including
// the failing result, is returned.
func (s *System) ExecuteChain(ctx context.Context, tasks []*Task) ([]*TaskResult, error) {
	var results []*TaskResult
	for _, task := range tasks {
		result, err := s.ExecuteTask(ctx, task)
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			return results, err
		}
		if !result.Success {
			break
		}
	}
	return results, nil
}

// Route is the top-level entry for free-form requests. Explicit terminal
// intent goes straight to the terminal agent; everything else becomes a
// planning task whose decomposition is returned to the caller as-is.
func (s *System) Route(ctx context.Context, request, workspaceDir string) (*TaskResult, error) {
	if isTerminalIntent(request) {
		task := NewTask(KindTerminal, "execute terminal command (intent classified)", map[string]any{
			"instruction":   request,
			"workspace_dir": workspaceDir,
		})
		return s.ExecuteTask(ctx, task)
	}

	task := NewTask(KindPlanning, "plan user request", map[string]any{
		"request":       request,
		"workspace_dir": workspaceDir,
	})
	result, err := s.ExecuteTask(ctx, task)
	if err != nil {
		return result, fmt.Errorf("process request: %w", err)
	}
	return result, nil
}

// DispatchCommand maps the fixed command verbs onto tasks.
func (s *System) DispatchCommand(ctx context.Context, command, args, workspaceDir string) (*TaskResult, error) {
	var task *Task
	switch command {
	case "/fix":
		task = NewTask(KindDebug, "fix error in code", map[string]any{
			"error_output":  args,
			"workspace_dir": workspaceDir,
		})
	case "/run":
		task = NewTask(KindTerminal, "execute command", map[string]any{
			"instruction":   args,
			"workspace_dir": workspaceDir,
		})
	case "/explain":
		task = NewTask(KindPlanning, "explain code or concept", map[string]any{
			"target":        args,
			"workspace_dir": workspaceDir,
		})
	case "/create-project":
		task = NewTask(KindPlanning, "create project from description", map[string]any{
			"description":   args,
			"workspace_dir": workspaceDir,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
	return s.ExecuteTask(ctx, task)
}

// Result returns the stored result for a task ID, if still retained.
func (s *System) Result(taskID string) (*TaskResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.results[taskID]
	if !ok {
		return nil, false
	}
	return stored.result, true
}

// EvictResults drops results stored longer than ttl ago and returns how
// many were removed.
func (s *System) EvictResults(ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, stored := range s.results {
		if stored.storedAt.Before(cutoff) {
			delete(s.results, id)
			evicted++
		}
	}
	return evicted
}

// SetModel switches the language model used for subsequent requests.
func (s *System) SetModel(model string) {
	s.llm.SetModel(model)
}

func (s *System) setStatus(task *Task, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.Status = status
	task.UpdatedAt = time.Now().UTC()
}

// finalize records the terminal status and stores the result. Soft
// failures (Success=false) finalize as failed, like hard ones.
func (s *System) finalize(task *Task, result *TaskResult) {
	status := TaskCompleted
	if !result.Success {
		status = TaskFailed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task.Status = status
	task.Result = result
	task.UpdatedAt = time.Now().UTC()
	s.results[task.ID] = storedResult{result: result, storedAt: time.Now().UTC()}
}
