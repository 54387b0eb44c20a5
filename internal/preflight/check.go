package preflight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	cerrors "github.com/Aman-CERP/checkenv/internal/errors"
	"github.com/Aman-CERP/checkenv/internal/output"
	"github.com/Aman-CERP/checkenv/internal/probe"
	"github.com/Aman-CERP/checkenv/pkg/versioncmp"
)

// Checker checks components against minimum versions.
type Checker struct {
	prober     probe.Prober
	strategies StrategyTable
	scheme     versioncmp.Scheme
	verbose    bool
	out        *output.Writer
	logger     *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose controls whether "Found" lines are printed. Error lines and
// the summary line are always printed.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.out = output.New(w)
	}
}

// WithWriter sets a preconfigured output writer, e.g. one with color.
func WithWriter(w *output.Writer) Option {
	return func(c *Checker) {
		c.out = w
	}
}

// WithStrategies replaces the version strategy table.
func WithStrategies(t StrategyTable) Option {
	return func(c *Checker) {
		c.strategies = t
	}
}

// WithScheme sets the version ordering scheme.
func WithScheme(s versioncmp.Scheme) Option {
	return func(c *Checker) {
		c.scheme = s
	}
}

// WithLogger sets the logger for per-check diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// New creates a new Checker that loads components through prober.
func New(prober probe.Prober, opts ...Option) *Checker {
	c := &Checker{
		prober:     prober,
		strategies: DefaultStrategies(),
		scheme:     versioncmp.Default(),
		verbose:    true,
		out:        output.New(os.Stdout),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckComponent checks a single component against an optional minimum
// version (empty for none) and prints its report line.
func (c *Checker) CheckComponent(ctx context.Context, name, minimum string) CheckResult {
	return c.check(ctx, Requirement{Name: name, MinVersion: minimum})
}

// RunChecks checks every requirement in order, prints the summary line and
// returns the summary. It never stops early.
func (c *Checker) RunChecks(ctx context.Context, set *RequirementSet) RunSummary {
	reqs := set.Requirements()
	results := make([]CheckResult, 0, len(reqs))

	for _, r := range reqs {
		results = append(results, c.check(ctx, r))
	}

	summary := newRunSummary(results)
	c.out.Newline()
	c.out.Summary(summary.SummaryLine())

	c.logger.Info("environment check finished",
		slog.Int("components", len(results)),
		slog.Int("failures", len(summary.Failures())),
		slog.Bool("all_satisfied", summary.AllSatisfied))

	return summary
}

func (c *Checker) check(ctx context.Context, r Requirement) CheckResult {
	result := c.evaluate(ctx, r)
	c.report(result)
	return result
}

// evaluate probes one component and classifies the outcome.
func (c *Checker) evaluate(ctx context.Context, r Requirement) CheckResult {
	result := CheckResult{Name: r.Name, Minimum: r.MinVersion}

	h, err := c.prober.Probe(ctx, r.Name)
	if err != nil {
		return unavailable(result, err)
	}

	strategy := c.strategies.Lookup(r.Name)
	if r.Strategy != nil {
		strategy = *r.Strategy
	}

	installed, err := strategy.resolve(r.Name, h)
	if err != nil {
		if r.HasMinimum() {
			return hostFailure(result, err)
		}
		// Without a minimum any loaded component passes, even one that
		// does not report a version.
		c.logger.Debug("version unreadable",
			slog.String("component", r.Name),
			slog.String("strategy", strategy.String()),
			slog.String("error", err.Error()))
	}
	result.Installed = installed

	if r.HasMinimum() && strategy.Kind != KindNoVersion {
		older, err := versioncmp.Less(c.scheme, installed, r.MinVersion)
		if err != nil {
			return hostFailure(result, err)
		}
		if older {
			result.Outcome = OutcomeTooOld
			result.Err = cerrors.New(cerrors.ErrCodeVersionTooOld,
				r.Name+" is older than "+r.MinVersion, nil).
				WithDetail("installed", installed).
				WithDetail("minimum", r.MinVersion).
				WithSuggestion("upgrade " + r.Name)
			return result
		}
	}

	result.Outcome = OutcomeAvailable
	return result
}

func unavailable(result CheckResult, err error) CheckResult {
	result.Outcome = OutcomeUnavailable
	result.Detail = err.Error()

	var loadErr *probe.LoadError
	if errors.As(err, &loadErr) {
		result.Err = cerrors.New(cerrors.ErrCodeComponentUnavailable, err.Error(), err).
			WithSuggestion("install " + result.Name)
		return result
	}
	result.Err = cerrors.New(cerrors.ErrCodeUnexpectedHostFailure, err.Error(), err)
	return result
}

// hostFailure records a failure that is neither a missing component nor an
// old version. It is reported like a failed load, never as success.
func hostFailure(result CheckResult, err error) CheckResult {
	result.Outcome = OutcomeUnavailable
	result.Detail = err.Error()
	result.Err = cerrors.New(cerrors.ErrCodeUnexpectedHostFailure, err.Error(), err)
	return result
}

func (c *Checker) report(r CheckResult) {
	attrs := []any{
		slog.String("component", r.Name),
		slog.String("outcome", r.Outcome.String()),
		slog.String("installed", r.Installed),
		slog.String("minimum", r.Minimum),
	}
	for k, v := range cerrors.FormatForLog(r.Err) {
		attrs = append(attrs, slog.Any(k, v))
	}
	c.logger.Debug("component checked", attrs...)

	switch {
	case r.OK():
		if c.verbose {
			c.out.Success(r.Line())
		}
	default:
		c.out.Error(r.Line())
	}
}
