package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.checkenv/logs/).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".checkenv", "logs")
	}
	return filepath.Join(home, ".checkenv", "logs")
}

// DefaultLogPath returns the check log, written by --debug when no other
// log file is configured.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "checkenv.log")
}

// ServeLogPath returns the log path used by the MCP server.
func ServeLogPath() string {
	return filepath.Join(DefaultLogDir(), "serve.log")
}

// EnsureDir creates the directory that will hold the log file at path.
func EnsureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}
