// Package api exposes the orchestrator over HTTP to a locally-hosted
// editor companion.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"agentd/internal/agent"
	"agentd/internal/llm"
	"agentd/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// chatClient is the slice of the LLM client the /chat passthrough needs.
type chatClient interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// Server holds the HTTP server state.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	system     *agent.System
	chat       chatClient
	history    *store.Store
	logger     *slog.Logger

	workspaceDir string
	authToken    string
}

// NewServer constructs the HTTP API server. history may be nil when no
// execution history is recorded.
func NewServer(addr, authToken, workspaceDir string, system *agent.System, chat chatClient, history *store.Store, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(corsMiddleware)

	s := &Server{
		router:       router,
		system:       system,
		chat:         chat,
		history:      history,
		logger:       logger,
		workspaceDir: workspaceDir,
		authToken:    authToken,
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the underlying router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting new requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		if s.authToken != "" {
			r.Use(AuthMiddleware(s.authToken))
		}

		r.Post("/process", s.handleProcess)
		r.Post("/command", s.handleCommand)
		r.Post("/chat", s.handleChat)

		r.Post("/tasks", s.handleSubmitTask)
		r.Get("/tasks/{taskID}/result", s.handleTaskResult)
		r.Get("/executions", s.handleListExecutions)
	})
}
