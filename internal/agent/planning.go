package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"agentd/internal/llm"
)

// SystemPrompt frames every generic planning conversation.
const SystemPrompt = `You are an assistant that helps with code and terminal automation. Only suggest or execute terminal commands if the user explicitly asks for it (e.g., "run this in terminal", "execute", "open terminal and..."). For all other requests, provide code, explanations, or other help as appropriate. Never assume a command should be run unless the user is clear.`

// planningAgent handles high-level planning: project creation,
// explanations and decomposition of free-form requests into subtask
// descriptors. Decompositions are returned as data and never executed here.
type planningAgent struct {
	llm    LLMClient
	logger *slog.Logger
}

func newPlanningAgent(llm LLMClient, logger *slog.Logger) *planningAgent {
	return &planningAgent{llm: llm, logger: logger}
}

func (p *planningAgent) Kind() TaskKind { return KindPlanning }

func (p *planningAgent) Execute(ctx context.Context, task *Task) (*TaskResult, error) {
	p.logger.Info("planning agent executing task", "task_id", task.ID)

	// Command dispatch populates "target" or "description" directly; free
	// text arrives under "request" and is routed by prefix.
	if target, ok := task.Payload["target"].(string); ok && target != "" {
		return p.explain(ctx, target)
	}
	if description, ok := task.Payload["description"].(string); ok && description != "" {
		return p.createProject(ctx, description)
	}

	request, err := requireString(task, "request")
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(request, "/create-project") {
		description := strings.TrimSpace(strings.TrimPrefix(request, "/create-project"))
		return p.createProject(ctx, description)
	}
	if strings.HasPrefix(request, "/explain") {
		target := strings.TrimSpace(strings.TrimPrefix(request, "/explain"))
		return p.explain(ctx, target)
	}
	return p.decompose(ctx, request)
}

// decompose asks the model to break a request into an ordered list of
// subtask descriptors. The raw plan is returned to the caller, which is
// responsible for turning it into tasks and (optionally) a chain.
func (p *planningAgent) decompose(ctx context.Context, request string) (*TaskResult, error) {
	prompt := fmt.Sprintf(`%s
User request: %q
Generate a JSON array of tasks. Each task must have a "kind" (e.g., "file", "terminal"), a "description", and a "payload" object with necessary parameters.
For file tasks, payload should include "operation", "path", and "content".
For terminal tasks, payload should include "instruction".

Example Request: "create a new directory called 'server' and inside it, create a file named 'main.go' with a basic hello world program"
Example Response:
[
  {
    "kind": "file",
    "description": "Create main.go",
    "payload": {
      "operation": "create",
      "path": "server/main.go",
      "content": "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello world\")\n}"
    }
  }
]`, SystemPrompt, request)

	plan, err := p.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt},
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return &TaskResult{
		Success: true,
		Data:    map[string]any{"plan": plan},
	}, nil
}

func (p *planningAgent) explain(ctx context.Context, target string) (*TaskResult, error) {
	prompt := fmt.Sprintf("Explain the following code or concept in a clear, concise way for a developer: %q", target)
	explanation, err := p.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an expert programming instructor."},
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}
	return &TaskResult{
		Success: true,
		Data:    map[string]any{"explanation": explanation},
	}, nil
}

// createProject asks for a structured plan and parses it. A parse failure
// is hard and keeps the raw text for diagnosis.
func (p *planningAgent) createProject(ctx context.Context, description string) (*TaskResult, error) {
	planJSON, err := p.llm.PlanProject(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("generate project plan: %w", err)
	}

	var plan ProjectPlan
	if err := json.Unmarshal([]byte(extractJSON(planJSON)), &plan); err != nil {
		return nil, fmt.Errorf("parse project plan JSON: %w. Raw response: %s", err, planJSON)
	}
	return &TaskResult{
		Success: true,
		Data:    map[string]any{"plan": &plan},
	}, nil
}

// extractJSON trims surrounding prose or code fences from a model reply,
// keeping the outermost JSON value. Returns the input unchanged when no
// braces are found so the parse error reports the full raw text.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	end := strings.LastIndexAny(s, "}]")
	if start == -1 || end == -1 || end <= start {
		return s
	}
	return s[start : end+1]
}
