package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"agentd/internal/llm"
)

// debugAgent analyzes error output and produces a suggested fix. Locating
// the offending file is best-effort and may come back empty; either model
// call failing is a hard failure.
type debugAgent struct {
	llm    LLMClient
	files  FileManager
	logger *slog.Logger
}

func newDebugAgent(llm LLMClient, files FileManager, logger *slog.Logger) *debugAgent {
	return &debugAgent{llm: llm, files: files, logger: logger}
}

func (d *debugAgent) Kind() TaskKind { return KindDebug }

func (d *debugAgent) Execute(ctx context.Context, task *Task) (*TaskResult, error) {
	d.logger.Info("debug agent executing task", "task_id", task.ID)

	errorOutput, err := requireString(task, "error_output")
	if err != nil {
		return nil, err
	}
	workspaceDir := optionalString(task, "workspace_dir", ".")

	filePath, fileContent := d.identifyErrorFile(errorOutput, workspaceDir)

	analysis, err := d.llm.AnalyzeError(ctx, errorOutput, fileContent)
	if err != nil {
		return nil, fmt.Errorf("analyze error: %w", err)
	}

	fix, err := d.generateFix(ctx, errorOutput, analysis)
	if err != nil {
		return nil, fmt.Errorf("generate fix: %w", err)
	}

	return &TaskResult{
		Success: true,
		Data: map[string]any{
			"analysis": analysis,
			"fix":      fix,
			"file":     filePath,
		},
	}, nil
}

// identifyErrorFile scans the error output for a token that looks like a
// path to an existing file inside the workspace. Empty results are fine;
// the analysis then proceeds without source context.
func (d *debugAgent) identifyErrorFile(errorOutput, workspaceDir string) (string, string) {
	for _, field := range strings.Fields(errorOutput) {
		token := strings.Trim(field, `"'(),;`)
		// compiler output is usually path:line:col
		if i := strings.IndexByte(token, ':'); i > 0 {
			token = token[:i]
		}
		if !strings.ContainsAny(token, "./") || strings.HasPrefix(token, "http") {
			continue
		}
		full, err := resolveWorkspacePath(workspaceDir, token)
		if err != nil || !d.files.Exists(full) {
			continue
		}
		content, err := d.files.Read(full)
		if err != nil {
			continue
		}
		return token, content
	}
	return "", ""
}

func (d *debugAgent) generateFix(ctx context.Context, errorOutput, analysis string) (string, error) {
	prompt := fmt.Sprintf(`Based on this error analysis:

%s

And the original error:
%s

Generate the corrected code. Provide only the fixed code, no explanations.`, analysis, errorOutput)

	return d.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an expert debugger. Generate corrected code based on error analysis."},
		{Role: llm.RoleUser, Content: prompt},
	})
}
