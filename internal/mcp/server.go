// Package mcp exposes the orchestrator's entry points as MCP tools over
// stdio, for editors that speak the protocol instead of HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"agentd/internal/agent"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer handles MCP protocol communication.
type MCPServer struct {
	system       *agent.System
	logger       *slog.Logger
	workspaceDir string
}

// NewMCPServer creates a new MCP server instance.
func NewMCPServer(system *agent.System, logger *slog.Logger, workspaceDir string) *MCPServer {
	return &MCPServer{
		system:       system,
		logger:       logger,
		workspaceDir: workspaceDir,
	}
}

// Run starts the MCP server using stdio transport.
func (s *MCPServer) Run() error {
	mcpServer := server.NewMCPServer(
		"agentd",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.logger.Info("MCP server starting on stdio")
	return server.ServeStdio(mcpServer)
}

func (s *MCPServer) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("agent_process",
		mcp.WithDescription("Process a natural-language request. Explicit terminal intent runs a command; everything else returns a plan."),
		mcp.WithString("request",
			mcp.Required(),
			mcp.Description("The natural-language request"),
		),
		mcp.WithString("workspace_dir",
			mcp.Description("Workspace directory the request applies to"),
		),
	), s.handleProcess)

	mcpServer.AddTool(mcp.NewTool("agent_command",
		mcp.WithDescription("Dispatch one of the fixed command verbs: /fix, /run, /explain, /create-project."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Command verb, e.g. /run"),
		),
		mcp.WithString("args",
			mcp.Description("Arguments for the command"),
		),
		mcp.WithString("workspace_dir",
			mcp.Description("Workspace directory the command applies to"),
		),
	), s.handleCommand)

	mcpServer.AddTool(mcp.NewTool("agent_task_result",
		mcp.WithDescription("Look up the stored result of a previously submitted task."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), s.handleTaskResult)
}

func (s *MCPServer) handleProcess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := mcp.ParseString(request, "request", "")
	if req == "" {
		return mcp.NewToolResultError("request is required"), nil
	}
	workspaceDir := mcp.ParseString(request, "workspace_dir", s.workspaceDir)

	result, err := s.system.Route(ctx, req, workspaceDir)
	if err != nil {
		s.logger.Error("process request", "err", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultText(result)
}

func (s *MCPServer) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := mcp.ParseString(request, "command", "")
	if command == "" {
		return mcp.NewToolResultError("command is required"), nil
	}
	args := mcp.ParseString(request, "args", "")
	workspaceDir := mcp.ParseString(request, "workspace_dir", s.workspaceDir)

	result, err := s.system.DispatchCommand(ctx, command, args, workspaceDir)
	if err != nil {
		s.logger.Error("dispatch command", "command", command, "err", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultText(result)
}

func (s *MCPServer) handleTaskResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := mcp.ParseString(request, "task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}
	result, ok := s.system.Result(taskID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no result for task %s", taskID)), nil
	}
	return resultText(result)
}

func resultText(result *agent.TaskResult) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
