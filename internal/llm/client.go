// Package llm wraps the Anthropic Messages API behind the small set of
// text-in/text-out operations the agents need.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrUnavailable marks any failure to obtain a model response (network,
// quota, malformed reply). Callers decide whether it is fatal to their task.
var ErrUnavailable = errors.New("language model unavailable")

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const defaultModel = anthropic.ModelClaudeSonnet4_20250514

// Client is a model client with a runtime-swappable model.
type Client struct {
	inner anthropic.Client

	mu    sync.RWMutex
	model anthropic.Model
}

// New creates a Client. If model is empty a default is used.
func New(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	m := anthropic.Model(model)
	if model == "" {
		m = defaultModel
	}
	return &Client{
		inner: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: m,
	}, nil
}

// SetModel changes the model used for subsequent requests.
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = anthropic.Model(model)
}

// GetModel returns the current model name.
func (c *Client) GetModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return string(c.model)
}

// Chat sends an ordered list of messages and returns the text response.
// System messages are lifted into the request's system prompt.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.GetModel()),
		MaxTokens: 8192,
		System:    system,
		Messages:  turns,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(variant.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	return out.String(), nil
}

// ClassifyIntent classifies a request as TERMINAL, CODE or GENERAL.
func (c *Client) ClassifyIntent(ctx context.Context, request string) (string, error) {
	prompt := fmt.Sprintf(`The user sent the following request: %q
Is the user explicitly asking to execute a command in the terminal, asking for code to be generated/modified, or something else?
Respond with only one of the following words: "TERMINAL", "CODE", or "GENERAL".`, request)

	answer, err := c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: "You are an expert at classifying user intent. Respond with only one word: TERMINAL, CODE, or GENERAL."},
		{Role: RoleUser, Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(answer)), nil
}

// AnalyzeError analyzes a terminal error together with optional source context.
func (c *Client) AnalyzeError(ctx context.Context, errorOutput, fileContent string) (string, error) {
	prompt := fmt.Sprintf(`Analyze this terminal error and suggest a fix:

Error Output:
%s

File Content:
%s

Please provide:
1. What caused the error
2. How to fix it
3. The corrected code if applicable

Respond in a clear, actionable format.`, errorOutput, fileContent)

	return c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: "You are an expert debugging assistant. Analyze errors and provide clear, actionable solutions."},
		{Role: RoleUser, Content: prompt},
	})
}

// GenerateCommand converts a natural language instruction to a shell command.
func (c *Client) GenerateCommand(ctx context.Context, instruction string) (string, error) {
	prompt := fmt.Sprintf(`Convert this natural language instruction to a shell command:

Instruction: %s

Provide only the shell command, no explanations. If multiple commands are needed, separate them with && or ; as appropriate.`, instruction)

	command, err := c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: "You are a command-line expert. Convert natural language to exact shell commands."},
		{Role: RoleUser, Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(command), nil
}

// PlanProject produces a machine-parseable project plan as JSON text.
func (c *Client) PlanProject(ctx context.Context, description string) (string, error) {
	prompt := fmt.Sprintf(`Create a detailed project plan for: %s

Include:
1. Project structure (folders and files)
2. Technology stack
3. Key files to create
4. Setup commands
5. Dependencies to install

Format as JSON with the following structure:
{
  "name": "project name",
  "description": "brief description",
  "structure": {
    "folders": ["list", "of", "folders"],
    "files": ["list", "of", "files"]
  },
  "tech_stack": {
    "frontend": "...",
    "backend": "...",
    "database": "..."
  },
  "setup": ["command1", "command2"],
  "dependencies": {
    "frontend": ["dep1", "dep2"],
    "backend": ["dep1", "dep2"]
  },
  "files": [
    {"path": "relative/path", "content": "file content"}
  ]
}`, description)

	return c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: "You are a project architect. Create detailed project plans from natural language descriptions. Respond with JSON only."},
		{Role: RoleUser, Content: prompt},
	})
}

// GenerateCode generates code from requirements plus free-form context.
func (c *Client) GenerateCode(ctx context.Context, requirements, context string) (string, error) {
	prompt := fmt.Sprintf(`Generate code based on these requirements:

Requirements: %s

Context: %s

Provide only the code, no explanations unless specifically requested.`, requirements, context)

	return c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: "You are an expert programmer. Generate clean, working code based on requirements."},
		{Role: RoleUser, Content: prompt},
	})
}
