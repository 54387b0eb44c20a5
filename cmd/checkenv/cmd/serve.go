package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/checkenv/internal/logging"
	"github.com/Aman-CERP/checkenv/internal/mcp"
	"github.com/Aman-CERP/checkenv/pkg/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout so editor
assistants can check the environment and list the requirements.

stdout carries protocol messages only. Logs go to ~/.checkenv/logs/serve.log
unless --log-file is set.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := readConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if debugMode {
		level = "debug"
	}
	path := logFile
	if path == "" {
		path = cfg.Logging.File
	}
	cleanup, err := logging.SetupMCPMode(level, path)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()

	slog.Info("checkenv serve starting",
		slog.String("version", version.Version),
		slog.String("profile", cfg.Check.Profile))

	srv, err := mcp.NewServer(cfg, mcp.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}
