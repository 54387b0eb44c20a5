package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/checkenv/internal/logging"
	"github.com/Aman-CERP/checkenv/internal/output"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
	logFile string
	source  string
}

func newLogsCmd() *cobra.Command {
	opts := logsOptions{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View checkenv log files",
		Long: `Show the last lines of the checkenv log files.

Log sources:
  check  - written by checks run with --debug (~/.checkenv/logs/checkenv.log)
  serve  - written by the MCP server (~/.checkenv/logs/serve.log)
  all    - both, merged by timestamp`,
		Example: `  # Show the last 50 lines of the check log
  checkenv logs

  # Follow the MCP server log
  checkenv logs --source serve -f

  # Show only failed components
  checkenv logs --level warn --filter numpy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.follow, "follow", "f", false, "Follow log output")
	f.IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	f.StringVar(&opts.level, "level", "", "Minimum level to show (debug|info|warn|error)")
	f.StringVar(&opts.filter, "filter", "", "Only show lines matching a regular expression")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	f.StringVar(&opts.logFile, "file", "", "Log file to read (overrides --source)")
	f.StringVar(&opts.source, "source", logging.SourceCheck, "Log source: check, serve, or all")

	return cmd
}

// logPaths resolves the files selected by --file or --source.
func (o logsOptions) logPaths() ([]string, error) {
	if o.logFile != "" {
		return []string{o.logFile}, nil
	}
	if o.source == "all" {
		return []string{logging.DefaultLogPath(), logging.ServeLogPath()}, nil
	}
	path, err := logging.LogPathForSource(o.source)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	paths, err := opts.logPaths()
	if err != nil {
		return err
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	stdout := cmd.OutOrStdout()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:      opts.level,
		Pattern:    pattern,
		NoColor:    opts.noColor || output.DetectNoColor() || !output.IsTTY(stdout),
		ShowSource: len(paths) > 1,
	}, stdout)

	stderr := cmd.ErrOrStderr()
	_, _ = fmt.Fprintf(stderr, "Log file: %s\n", strings.Join(paths, ", "))

	if opts.follow {
		if len(paths) > 1 {
			return fmt.Errorf("--follow needs a single log file, use --source check or --source serve")
		}
		return followLog(cmd.Context(), viewer, paths[0], stdout, stderr)
	}

	var entries []logging.LogEntry
	if len(paths) == 1 {
		entries, err = viewer.Tail(paths[0], opts.lines)
		if errors.Is(err, fs.ErrNotExist) {
			_, _ = fmt.Fprintln(stderr, "No log file yet. Run a check with --debug or start 'checkenv serve'.")
			return nil
		}
	} else {
		entries, err = viewer.TailMultiple(paths, opts.lines)
	}
	if err != nil {
		return err
	}

	viewer.Print(entries)
	return nil
}

func followLog(ctx context.Context, viewer *logging.Viewer, path string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintln(stderr, "Following... (Ctrl+C to stop)")

	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)
	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			_, _ = fmt.Fprintln(stdout, viewer.FormatEntry(entry))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			_, _ = fmt.Fprintln(stderr, "Stopped.")
			return nil
		}
	}
}
