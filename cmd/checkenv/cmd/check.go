package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/checkenv/internal/config"
	cerrors "github.com/Aman-CERP/checkenv/internal/errors"
	"github.com/Aman-CERP/checkenv/internal/output"
	"github.com/Aman-CERP/checkenv/internal/preflight"
	"github.com/Aman-CERP/checkenv/internal/probe"
)

// checkOptions holds the flags shared by the root and check commands.
type checkOptions struct {
	profile          string
	requirementsFile string
	manifest         string
	python           string
	scheme           string
	quiet            bool
	jsonOutput       bool
	color            bool
}

// newProber creates the prober for a check. Tests replace it.
var newProber = func(interpreter string, attrs []string) (probe.Prober, string, error) {
	p, err := probe.NewPythonProber(interpreter,
		probe.WithAttributes(attrs...),
		probe.WithLogger(slog.Default()))
	if err != nil {
		return nil, "", cerrors.New(cerrors.ErrCodeInterpreterNotFound, err.Error(), err).
			WithSuggestion("pass --python /path/to/python or set CHECKENV_PYTHON")
	}
	return p, p.Interpreter(), nil
}

// checkError reports a check that ran to completion with failures. The
// report has already been printed.
type checkError struct {
	failures int
}

func (e *checkError) Error() string {
	return fmt.Sprintf("%d component(s) failed the environment check", e.failures)
}

// checkReport is the --json form of a run.
type checkReport struct {
	Profile     string `json:"profile,omitempty"`
	Interpreter string `json:"interpreter"`
	Scheme      string `json:"scheme"`
	preflight.RunSummary
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check installed packages against the requirements",
		Long: `Import every required package and compare its version with the
minimum. One line is printed per package, followed by a summary.

The exit status is 0 when every package is available at an acceptable
version and 1 otherwise.`,
		Example: `  # Check the default requirements
  checkenv check

  # Check the first workshop's requirements with a specific interpreter
  checkenv check --profile 2017 --python ~/miniconda3/bin/python

  # Check an inventory captured on another machine
  checkenv check --manifest versions.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	addCheckFlags(cmd, opts)

	return cmd
}

func addCheckFlags(cmd *cobra.Command, opts *checkOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.profile, "profile", "", "Requirement profile to check (2017, 2019)")
	f.StringVar(&opts.requirementsFile, "requirements", "", "Read requirements from a YAML file")
	f.StringVar(&opts.manifest, "manifest", "", "Check a YAML name: version inventory instead of importing")
	f.StringVar(&opts.python, "python", "", "Python interpreter to use")
	f.StringVar(&opts.scheme, "scheme", "", "Version ordering: loose or semver")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Only print failures and the summary")
	f.BoolVar(&opts.jsonOutput, "json", false, "Output the results as JSON")
	f.BoolVar(&opts.color, "color", false, "Color the report when writing to a terminal")

	cmd.MarkFlagsMutuallyExclusive("profile", "requirements")
	cmd.MarkFlagsMutuallyExclusive("manifest", "python")
}

// applyFlags layers command line flags over the loaded configuration.
func (o *checkOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if o.python != "" {
		cfg.Python.Interpreter = o.python
	}
	if o.profile != "" {
		cfg.Check.Profile = o.profile
		cfg.Requirements = nil
	}
	if o.scheme != "" {
		cfg.Check.Scheme = o.scheme
	}
	if f.Changed("quiet") {
		cfg.Check.Quiet = o.quiet
	}
	if f.Changed("color") {
		cfg.Check.Color = o.color
	}
}

// requirementSet resolves what to check and a label for it.
func (o *checkOptions) requirementSet(cfg *config.Config) (*preflight.RequirementSet, string, error) {
	if o.requirementsFile != "" {
		p, err := config.LoadRequirementsFile(o.requirementsFile)
		if err != nil {
			return nil, "", err
		}
		set, err := p.RequirementSet(runtime.GOOS)
		return set, p.Name, err
	}

	set, err := cfg.RequirementSet(runtime.GOOS)
	if err != nil {
		return nil, "", err
	}
	if len(cfg.Requirements) > 0 {
		return set, "", nil
	}
	return set, cfg.Check.Profile, nil
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := readConfig()
	if err != nil {
		return err
	}
	opts.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	set, profile, err := opts.requirementSet(cfg)
	if err != nil {
		return err
	}
	scheme, err := cfg.Scheme()
	if err != nil {
		return cerrors.ConfigError(err.Error(), err)
	}
	strategies := preflight.DefaultStrategies().WithOverrides(set)

	var (
		prober      probe.Prober
		interpreter string
	)
	if opts.manifest != "" {
		m, err := probe.LoadManifest(opts.manifest)
		if err != nil {
			return cerrors.New(cerrors.ErrCodeManifestInvalid, err.Error(), err)
		}
		prober, interpreter = m, "manifest:"+opts.manifest
	} else {
		prober, interpreter, err = newProber(cfg.Python.Interpreter, strategies.Attributes())
		if err != nil {
			return err
		}
	}

	slog.Debug("check starting",
		slog.String("profile", profile),
		slog.String("interpreter", interpreter),
		slog.String("scheme", scheme.Name()),
		slog.Int("components", set.Len()))

	var w *output.Writer
	if opts.jsonOutput {
		w = output.New(io.Discard)
	} else {
		w = output.New(cmd.OutOrStdout(), output.WithColor(cfg.Check.Color))
	}

	checker := preflight.New(prober,
		preflight.WithWriter(w),
		preflight.WithVerbose(!cfg.Check.Quiet),
		preflight.WithStrategies(strategies),
		preflight.WithScheme(scheme),
		preflight.WithLogger(slog.Default()))
	summary := checker.RunChecks(ctx, set)

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return cerrors.New(cerrors.ErrCodeInternal, "check interrupted", err)
		}
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(checkReport{
			Profile:     profile,
			Interpreter: interpreter,
			Scheme:      scheme.Name(),
			RunSummary:  summary,
		}); err != nil {
			return err
		}
	}

	if !summary.AllSatisfied {
		return &checkError{failures: len(summary.Failures())}
	}
	return nil
}
