package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agentd/internal/agent"
	"agentd/internal/api"
	"agentd/internal/config"
	"agentd/internal/llm"
	"agentd/internal/logging"
	agentdmcp "agentd/internal/mcp"
	"agentd/internal/notify"
	"agentd/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/spf13/afero"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	baseCtx := context.Background()
	storeInst, err := store.Open(baseCtx, cfg.StateDir)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer storeInst.DB.Close()

	client, err := llm.New(cfg.APIKey, cfg.Model)
	if err != nil {
		logger.Error("create llm client", "err", err)
		os.Exit(1)
	}

	var notifier agent.Notifier = &notify.NoOpNotifier{}
	if cfg.NotifyURL != "" {
		webhook, err := notify.NewWebhookNotifier(cfg.NotifyURL)
		if err != nil {
			logger.Error("create webhook notifier", "err", err)
			os.Exit(1)
		}
		notifier = webhook
	}

	system := agent.NewSystem(agent.SystemConfig{
		LLM:       client,
		Files:     agent.NewFileManager(afero.NewOsFs()),
		Executor:  agent.NewShellExecutor(storeInst, logger),
		Notifier:  notifier,
		QueueSize: cfg.QueueSize,
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	system.Start(ctx)

	janitor := startJanitor(ctx, cfg, system, storeInst, logger)
	defer janitor.Stop()

	switch cfg.Mode {
	case "http", "":
		runHTTPMode(cfg, system, client, storeInst, logger, cancel)
	case "mcp":
		runMCPMode(cfg, system, logger, cancel)
	case "both":
		runBothMode(cfg, system, client, storeInst, logger, cancel)
	default:
		logger.Error("invalid mode", "mode", cfg.Mode, "valid", []string{"http", "mcp", "both"})
		os.Exit(1)
	}
}

// startJanitor evicts expired task results and prunes command execution
// history on a fixed interval.
func startJanitor(ctx context.Context, cfg *config.Config, system *agent.System, storeInst *store.Store, logger *slog.Logger) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("@every 10m", func() {
		evicted := system.EvictResults(cfg.ResultTTL)
		if evicted > 0 {
			logger.Info("evicted expired task results", "count", evicted)
		}
		if err := storeInst.PruneExecutions(ctx, cfg.HistoryKeep); err != nil {
			logger.Warn("prune executions", "err", err)
		}
	})
	if err != nil {
		logger.Error("schedule janitor", "err", err)
		os.Exit(1)
	}
	c.Start()
	return c
}

// runHTTPMode starts only the HTTP server.
func runHTTPMode(cfg *config.Config, system *agent.System, client *llm.Client, storeInst *store.Store, logger *slog.Logger, cancel context.CancelFunc) {
	server := api.NewServer(cfg.Addr, cfg.AuthToken, cfg.WorkspaceDir, system, client, storeInst, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Info("received signal", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}

	cancel()
	waitForConsumer(system, cfg.ShutdownGrace, logger)
}

// runMCPMode starts only the MCP server.
func runMCPMode(cfg *config.Config, system *agent.System, logger *slog.Logger, cancel context.CancelFunc) {
	mcpServer := agentdmcp.NewMCPServer(system, logger, cfg.WorkspaceDir)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs
		logger.Info("received signal, shutting down...")
		cancel()
	}()

	if err := mcpServer.Run(); err != nil {
		logger.Error("mcp server error", "err", err)
		os.Exit(1)
	}
}

// runBothMode starts both HTTP and MCP servers.
func runBothMode(cfg *config.Config, system *agent.System, client *llm.Client, storeInst *store.Store, logger *slog.Logger, cancel context.CancelFunc) {
	mcpServer := agentdmcp.NewMCPServer(system, logger, cfg.WorkspaceDir)
	mcpErr := make(chan error, 1)
	go func() {
		if err := mcpServer.Run(); err != nil {
			mcpErr <- err
		}
	}()

	server := api.NewServer(cfg.Addr, cfg.AuthToken, cfg.WorkspaceDir, system, client, storeInst, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Info("received signal", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "err", err)
	case err := <-mcpErr:
		logger.Error("mcp server error", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}

	cancel()
	waitForConsumer(system, cfg.ShutdownGrace, logger)

	logger.Info("shutdown complete")
}

// waitForConsumer blocks until the queue consumer drains or the grace
// period elapses.
func waitForConsumer(system *agent.System, grace time.Duration, logger *slog.Logger) {
	select {
	case <-system.Stop():
	case <-time.After(grace):
		logger.Warn("queue consumer stop timed out")
	}
}
