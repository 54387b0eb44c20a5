// Package cmd provides the CLI commands for checkenv.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/checkenv/internal/config"
	cerrors "github.com/Aman-CERP/checkenv/internal/errors"
	"github.com/Aman-CERP/checkenv/internal/logging"
	"github.com/Aman-CERP/checkenv/pkg/version"
)

// Logging flags
var (
	debugMode      bool
	logFile        string
	loggingCleanup func()
	previousLogger *slog.Logger
)

// NewRootCmd creates the root command for the checkenv CLI.
func NewRootCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "checkenv",
		Short: "Check that a Python environment is ready for the workshop",
		Long: `checkenv imports every package the workshop tutorials need and
checks it against the minimum version, then tells you whether your
Python environment is good to go.

Run 'checkenv' with no arguments to check the default requirements.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.SetVersionTemplate("checkenv version {{.Version}}\n")

	// The bare command is a check, so it takes the same flags.
	addCheckFlags(cmd, opts)

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to stderr and the check log")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file (rotated)")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newRequirementsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging installs the CLI logger. The serve command logs to its own
// file and sets up logging itself.
func startLogging(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "serve" {
		return nil
	}

	lc := logging.DefaultConfig()
	lc.Stderr = cmd.ErrOrStderr()

	// A broken config is reported by the command that needs it.
	if cfg, err := readConfig(); err == nil {
		lc.Level = cfg.Logging.Level
		lc.FilePath = cfg.Logging.File
	}
	if logFile != "" {
		lc.FilePath = logFile
	}
	if debugMode {
		lc.Level = "debug"
		if lc.FilePath == "" {
			lc.FilePath = logging.DefaultLogPath()
		}
	} else if lc.FilePath != "" {
		lc.Stderr = nil
	}

	logger, cleanup, err := logging.Setup(lc)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	previousLogger = slog.Default()
	loggingCleanup = cleanup
	slog.SetDefault(logger)

	slog.Debug("Debug logging enabled",
		slog.String("log_file", lc.FilePath),
		slog.String("version", version.Version))
	return nil
}

// stopLogging flushes the log file and restores the previous logger.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	if previousLogger != nil {
		slog.SetDefault(previousLogger)
		previousLogger = nil
	}
	return nil
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		// Hooks are skipped when a command fails.
		_ = stopLogging(root, nil)
		reportError(root.ErrOrStderr(), err)
	}
	return err
}

// reportError prints err for the user. A failed check has already printed
// its report, so nothing more is added.
func reportError(w io.Writer, err error) {
	var failed *checkError
	if errors.As(err, &failed) {
		return
	}

	var ce *cerrors.CheckError
	if !errors.As(err, &ce) {
		ce = cerrors.Wrap(cerrors.ErrCodeInvalidInput, err)
	}
	_, _ = fmt.Fprint(w, cerrors.FormatForCLI(ce))
}

// readConfig reads the configuration for the current directory without
// validating it.
func readConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		root = cwd
	}
	return config.Read(root)
}
