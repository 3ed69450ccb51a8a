package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agentd/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanningAgentDecompose(t *testing.T) {
	llmStub := &stubLLM{
		chatFn: func(messages []llm.Message) (string, error) {
			require.Len(t, messages, 2)
			assert.Equal(t, llm.RoleSystem, messages[0].Role)
			assert.Contains(t, messages[1].Content, "set up a go project")
			return `[{"kind":"file","description":"create main.go","payload":{"operation":"create","path":"main.go","content":"package main"}}]`, nil
		},
	}
	agent := newPlanningAgent(llmStub, testLogger())

	result, err := agent.Execute(context.Background(), NewTask(KindPlanning, "", map[string]any{
		"request": "set up a go project",
	}))
	require.NoError(t, err)
	require.True(t, result.Success)
	plan, ok := result.Data["plan"].(string)
	require.True(t, ok)
	assert.Contains(t, plan, `"kind":"file"`)
}

func TestPlanningAgentExplainViaTargetKey(t *testing.T) {
	llmStub := &stubLLM{
		chatFn: func(messages []llm.Message) (string, error) {
			assert.Contains(t, messages[1].Content, "goroutines")
			return "Goroutines are lightweight threads.", nil
		},
	}
	agent := newPlanningAgent(llmStub, testLogger())

	result, err := agent.Execute(context.Background(), NewTask(KindPlanning, "", map[string]any{
		"target": "goroutines",
	}))
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "Goroutines are lightweight threads.", result.Data["explanation"])
}

func TestPlanningAgentExplainViaRequestPrefix(t *testing.T) {
	llmStub := &stubLLM{
		chatFn: func(messages []llm.Message) (string, error) {
			assert.Contains(t, messages[1].Content, "channels")
			return "explained", nil
		},
	}
	agent := newPlanningAgent(llmStub, testLogger())

	result, err := agent.Execute(context.Background(), NewTask(KindPlanning, "", map[string]any{
		"request": "/explain channels",
	}))
	require.NoError(t, err)
	assert.Equal(t, "explained", result.Data["explanation"])
}

func TestPlanningAgentCreateProject(t *testing.T) {
	planJSON := `{
		"name": "todo-api",
		"description": "a todo API",
		"structure": {"folders": ["cmd", "internal"], "files": ["go.mod"]},
		"tech_stack": {"backend": "go"},
		"setup": ["go mod tidy"],
		"dependencies": {"backend": ["chi"]},
		"files": [{"path": "cmd/main.go", "content": "package main"}]
	}`
	llmStub := &stubLLM{
		planProjectFn: func(description string) (string, error) {
			assert.Equal(t, "a todo API in go", description)
			return "Here is the plan:\n```json\n" + planJSON + "\n```", nil
		},
	}
	agent := newPlanningAgent(llmStub, testLogger())

	result, err := agent.Execute(context.Background(), NewTask(KindPlanning, "", map[string]any{
		"description": "a todo API in go",
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	plan, ok := result.Data["plan"].(*ProjectPlan)
	require.True(t, ok, "plan type %T", result.Data["plan"])
	assert.Equal(t, "todo-api", plan.Name)
	assert.Equal(t, []string{"cmd", "internal"}, plan.Structure.Folders)
	assert.Equal(t, []string{"go mod tidy"}, plan.Setup)
	require.Len(t, plan.Files, 1)
	assert.Equal(t, "cmd/main.go", plan.Files[0].Path)
}

func TestPlanningAgentCreateProjectBadJSON(t *testing.T) {
	llmStub := &stubLLM{
		planProjectFn: func(string) (string, error) {
			return "sorry, I cannot produce a plan", nil
		},
	}
	agent := newPlanningAgent(llmStub, testLogger())

	_, err := agent.Execute(context.Background(), NewTask(KindPlanning, "", map[string]any{
		"description": "anything",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse project plan JSON")
	assert.Contains(t, err.Error(), "sorry, I cannot produce a plan")
}

func TestPlanningAgentLLMErrorIsHard(t *testing.T) {
	llmStub := &stubLLM{
		chatFn: func([]llm.Message) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	agent := newPlanningAgent(llmStub, testLogger())

	_, err := agent.Execute(context.Background(), NewTask(KindPlanning, "", map[string]any{
		"request": "plan something",
	}))
	require.Error(t, err)
}

func TestPlanningAgentMissingAllKeys(t *testing.T) {
	agent := newPlanningAgent(&stubLLM{}, testLogger())

	_, err := agent.Execute(context.Background(), NewTask(KindPlanning, "", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"bare array", `[1,2]`, `[1,2]`},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", `Sure! {"a":1} Hope that helps.`, `{"a":1}`},
		{"no json at all", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON(tt.input)
			assert.Equal(t, tt.want, strings.TrimSpace(got))
		})
	}
}
