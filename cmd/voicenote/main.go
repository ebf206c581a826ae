package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eacdc/VoiceNoteTool/internal/app"
	"github.com/eacdc/VoiceNoteTool/internal/backend"
	"github.com/eacdc/VoiceNoteTool/internal/cli"
	"github.com/eacdc/VoiceNoteTool/internal/config"
	"github.com/eacdc/VoiceNoteTool/internal/metrics"
	"github.com/eacdc/VoiceNoteTool/internal/server"
	"github.com/eacdc/VoiceNoteTool/internal/session"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := resolveConfigPath(os.Args[1:])

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := initLogger(cfg.Logging)

	backendClient, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.GetTimeoutDuration(),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	sessionPath, err := session.DefaultPath()
	if err != nil {
		return err
	}

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	application := app.New(cfg, logger, appMetrics, app.Dependencies{
		Backend:  backendClient,
		Sessions: session.NewStore(sessionPath),
	})

	if err := application.RestoreSession(); err != nil {
		logger.Warn("failed to restore session", slog.String("error", err.Error()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Ops.Enabled {
		opsServer := server.NewOpsServer(cfg.Ops, logger)
		if err := opsServer.Start(); err != nil {
			return fmt.Errorf("failed to start ops listener: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			opsServer.Stop(shutdownCtx)
		}()
	}

	rootCmd := cli.NewRootCmd(&cli.Dependencies{
		App:    application,
		Config: cfg,
	})
	return rootCmd.ExecuteContext(ctx)
}

// resolveConfigPath finds the --config flag ahead of cobra parsing; the
// configuration is needed before the command tree is built.
func resolveConfigPath(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if path := os.Getenv("VOICENOTE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// initLogger creates the structured logger from configuration.
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
