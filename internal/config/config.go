package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the daemon.
type Config struct {
	Addr         string
	Mode         string // http, mcp or both
	AuthToken    string
	LogLevel     string
	StateDir     string
	WorkspaceDir string

	APIKey string
	Model  string

	QueueSize   int
	HistoryKeep int
	ResultTTL   time.Duration
	NotifyURL   string

	ShutdownGrace time.Duration
}

const (
	defaultAddr          = "0.0.0.0:8080"
	defaultMode          = "http"
	defaultLogLevel      = "info"
	defaultQueueSize     = 100
	defaultHistoryKeep   = 200
	defaultResultTTL     = time.Hour
	defaultShutdownGrace = 30 * time.Second
)

// getEnvString returns the environment variable value or default
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt returns the environment variable as int or default
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration returns the environment variable as duration or default
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// Parse builds configuration from CLI flags, environment variables and an
// optional .env file. Priority: flags > env > .env > defaults.
func Parse() (*Config, error) {
	// .env is optional; check the working directory then the user config dir.
	envFiles := []string{".env"}
	if configDir, err := os.UserConfigDir(); err == nil {
		envFiles = append(envFiles, filepath.Join(configDir, "agentd", ".env"))
	}
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		Addr:          getEnvString("AGENTD_ADDR", defaultAddr),
		Mode:          getEnvString("AGENTD_MODE", defaultMode),
		AuthToken:     getEnvString("AGENTD_AUTH_TOKEN", ""),
		LogLevel:      getEnvString("AGENTD_LOG_LEVEL", defaultLogLevel),
		StateDir:      getEnvString("AGENTD_STATE_DIR", ""),
		WorkspaceDir:  getEnvString("AGENTD_WORKSPACE_DIR", "."),
		APIKey:        getEnvString("ANTHROPIC_API_KEY", ""),
		Model:         getEnvString("AGENTD_MODEL", ""),
		QueueSize:     getEnvInt("AGENTD_QUEUE_SIZE", defaultQueueSize),
		HistoryKeep:   getEnvInt("AGENTD_HISTORY_KEEP", defaultHistoryKeep),
		ResultTTL:     getEnvDuration("AGENTD_RESULT_TTL", defaultResultTTL),
		NotifyURL:     getEnvString("AGENTD_NOTIFY_URL", ""),
		ShutdownGrace: getEnvDuration("AGENTD_SHUTDOWN_GRACE", defaultShutdownGrace),
	}

	var addr, mode, logLevel, stateDir, workspaceDir, model string
	var queueSize int
	var shutdownGrace time.Duration

	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides env)")
	flag.StringVar(&mode, "mode", "", "Run mode: http, mcp or both")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&stateDir, "state-dir", "", "Directory for the execution history database")
	flag.StringVar(&workspaceDir, "workspace-dir", "", "Default workspace directory for requests")
	flag.StringVar(&model, "model", "", "Language model to use")
	flag.IntVar(&queueSize, "queue-size", 0, "Capacity of the task queue")
	flag.DurationVar(&shutdownGrace, "shutdown-grace", 0, "Grace period when shutting down")

	flag.Parse()

	if addr != "" {
		cfg.Addr = addr
	}
	if mode != "" {
		cfg.Mode = mode
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	if workspaceDir != "" {
		cfg.WorkspaceDir = workspaceDir
	}
	if model != "" {
		cfg.Model = model
	}
	if queueSize > 0 {
		cfg.QueueSize = queueSize
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "shutdown-grace" {
			cfg.ShutdownGrace = shutdownGrace
		}
	})

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}

	switch strings.ToLower(cfg.Mode) {
	case "http", "mcp", "both":
		cfg.Mode = strings.ToLower(cfg.Mode)
	default:
		return nil, fmt.Errorf("invalid mode %q (valid: http, mcp, both)", cfg.Mode)
	}

	if cfg.StateDir == "" {
		dir, err := defaultStateDir()
		if err != nil {
			return nil, fmt.Errorf("resolve default state dir: %w", err)
		}
		cfg.StateDir = dir
	}

	if cfg.QueueSize < 1 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.HistoryKeep < 1 {
		cfg.HistoryKeep = defaultHistoryKeep
	}

	return cfg, nil
}

func defaultStateDir() (string, error) {
	baseDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(baseDir, "agentd")
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}
