// Package agent contains the task model, the four task agents and the
// orchestrating System that dispatches tasks to them.
package agent

import (
	"context"
	"time"

	"agentd/internal/llm"
)

// TaskKind selects the agent a task is dispatched to.
type TaskKind string

const (
	KindPlanning TaskKind = "planning"
	KindFile     TaskKind = "file"
	KindTerminal TaskKind = "terminal"
	KindDebug    TaskKind = "debug"
)

// TaskStatus describes the lifecycle state of a task. Transitions are
// forward-only: pending -> running -> completed|failed.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Task is a unit of requested work. Payload shape is agent-specific and is
// not validated here; each agent validates the keys it needs. Payload must
// not be mutated after the task has been dispatched.
type Task struct {
	ID          string         `json:"id"`
	Kind        TaskKind       `json:"kind"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"payload"`
	Status      TaskStatus     `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Result      *TaskResult    `json:"result,omitempty"`
}

// TaskResult is the outcome of executing a task. Data is populated only on
// success, Error only on failure; an empty success is legal.
type TaskResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Execution statuses for shell commands.
const (
	ExecCompleted = "completed"
	ExecFailed    = "failed"
)

// CommandExecution records a single shell invocation with fully captured
// output. A non-zero exit is a failed execution, not an error.
type CommandExecution struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	WorkingDir string    `json:"working_dir"`
	Status     string    `json:"status"`
	Stdout     string    `json:"stdout"`
	Stderr     string    `json:"stderr"`
	CreatedAt  time.Time `json:"created_at"`
}

// FileOperation is the payload shape describing one file mutation inside
// file-task results. It is not persisted on its own.
type FileOperation struct {
	Kind    string `json:"kind"` // create, update, delete, read
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ProjectPlan is the structured decomposition of a "create project" request.
type ProjectPlan struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Structure    ProjectStructure    `json:"structure"`
	TechStack    map[string]string   `json:"tech_stack"`
	Setup        []string            `json:"setup"`
	Dependencies map[string][]string `json:"dependencies"`
	Files        []ProjectFile       `json:"files"`
}

// ProjectStructure lists the folders and files of a planned project.
type ProjectStructure struct {
	Folders []string `json:"folders"`
	Files   []string `json:"files"`
}

// ProjectFile is a file to materialize when scaffolding a project.
type ProjectFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Agent executes tasks of exactly one kind. A returned error is a hard
// failure that aborts the request; operation-level failures are reported
// inside the TaskResult with Success=false.
type Agent interface {
	Kind() TaskKind
	Execute(ctx context.Context, task *Task) (*TaskResult, error)
}

// LLMClient is the external language-model capability. Any call may fail
// with an error wrapping llm.ErrUnavailable.
type LLMClient interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
	ClassifyIntent(ctx context.Context, request string) (string, error)
	AnalyzeError(ctx context.Context, errorOutput, fileContent string) (string, error)
	GenerateCommand(ctx context.Context, instruction string) (string, error)
	PlanProject(ctx context.Context, description string) (string, error)
	GenerateCode(ctx context.Context, requirements, context string) (string, error)
	SetModel(model string)
	GetModel() string
}

// FileManager performs file operations on already-resolved paths.
type FileManager interface {
	Create(path, content string) error
	Update(path, content string) error
	Delete(path string) error
	Read(path string) (string, error)
	Exists(path string) bool
	List(dir string) ([]string, error)
}

// CommandExecutor runs shell command strings.
type CommandExecutor interface {
	Run(ctx context.Context, command, workingDir string) (*CommandExecution, error)
	RunSequence(ctx context.Context, commands []string, workingDir string) ([]*CommandExecution, error)
}

// ExecutionRecorder receives a record of every completed shell invocation.
type ExecutionRecorder interface {
	Record(ctx context.Context, exec *CommandExecution) error
}

// Notifier is told when queued tasks finish. Implementations live in
// internal/notify.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
}
