package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for the MCP server.
//
// stdout carries JSON-RPC exclusively while serving, and some clients treat
// stderr output as a failed start, so records go only to a JSON file.
// An empty path selects ServeLogPath.
func SetupMCPMode(level, path string) (func(), error) {
	if path == "" {
		path = ServeLogPath()
	}
	if level == "" {
		level = "info"
	}

	cfg := Config{
		Level:     level,
		FilePath:  path,
		MaxSizeMB: 10,
		MaxFiles:  5,
		Stderr:    nil,
	}

	cleanup, err := SetupDefault(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("MCP mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return cleanup, nil
}
