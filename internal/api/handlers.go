package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"agentd/internal/agent"
	"agentd/internal/llm"

	"github.com/go-chi/chi/v5"
)

type processRequest struct {
	Request      string `json:"request"`
	WorkspaceDir string `json:"workspace_dir,omitempty"`
	Model        string `json:"model,omitempty"`
}

type commandRequest struct {
	Command      string `json:"command"`
	Args         string `json:"args,omitempty"`
	WorkspaceDir string `json:"workspace_dir,omitempty"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type submitTaskRequest struct {
	Kind        string         `json:"kind"`
	Description string         `json:"description,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// response mirrors TaskResult on the wire.
type response struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Model != "" {
		s.system.SetModel(req.Model)
	}

	result, err := s.system.Route(r.Context(), req.Request, s.resolveWorkspace(req.WorkspaceDir))
	if err != nil {
		s.logger.Error("process request", "err", err)
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendResult(w, result)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.system.DispatchCommand(r.Context(), req.Command, req.Args, s.resolveWorkspace(req.WorkspaceDir))
	if err != nil {
		s.logger.Error("dispatch command", "command", req.Command, "err", err)
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendResult(w, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := s.chat.Chat(r.Context(), []llm.Message{
		{Role: llm.RoleUser, Content: req.Message},
	})
	if err != nil {
		s.logger.Error("chat", "err", err)
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Data:    map[string]any{"message": reply},
	})
}

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	var req submitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := agent.ParseKind(req.Kind)
	if err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	task := agent.NewTask(kind, req.Description, req.Payload)
	if err := s.system.Submit(task); err != nil {
		if errors.Is(err, agent.ErrQueueFull) {
			sendError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": task.ID})
}

func (s *Server) handleTaskResult(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	result, ok := s.system.Result(taskID)
	if !ok {
		sendError(w, http.StatusNotFound, "no result for task "+taskID)
		return
	}
	sendResult(w, result)
}

func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	execs, err := s.history.ListExecutions(r.Context(), limit)
	if err != nil {
		s.logger.Error("list executions", "err", err)
		sendError(w, http.StatusInternalServerError, "failed to list executions")
		return
	}
	if execs == nil {
		execs = []*agent.CommandExecution{}
	}
	writeJSON(w, http.StatusOK, execs)
}

func (s *Server) resolveWorkspace(requested string) string {
	if requested != "" {
		return requested
	}
	return s.workspaceDir
}

func sendResult(w http.ResponseWriter, result *agent.TaskResult) {
	writeJSON(w, http.StatusOK, response{
		Success: result.Success,
		Data:    result.Data,
		Error:   result.Error,
	})
}

func sendError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{
		Success: false,
		Error:   message,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func parseIntDefault(value string, def int) int {
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
