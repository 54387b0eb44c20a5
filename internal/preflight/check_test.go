package preflight

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/Aman-CERP/checkenv/internal/errors"
	"github.com/Aman-CERP/checkenv/internal/probe"
	"github.com/Aman-CERP/checkenv/pkg/versioncmp"
)

// spyProber counts attribute reads on the handles it returns.
type spyProber struct {
	inner *probe.StaticProber
	reads int
}

func (s *spyProber) Probe(ctx context.Context, name string) (probe.Handle, error) {
	h, err := s.inner.Probe(ctx, name)
	if err != nil {
		return nil, err
	}
	return spyHandle{h: h, spy: s}, nil
}

type spyHandle struct {
	h   probe.Handle
	spy *spyProber
}

func (s spyHandle) Attribute(name string) (string, bool) {
	s.spy.reads++
	return s.h.Attribute(name)
}

// brokenProber fails with an error that is not a load failure.
type brokenProber struct{}

func (brokenProber) Probe(context.Context, string) (probe.Handle, error) {
	return nil, errors.New("fork/exec /usr/bin/python3: resource temporarily unavailable")
}

func newTestChecker(p probe.Prober, opts ...Option) (*Checker, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(p, append([]Option{WithOutput(buf)}, opts...)...), buf
}

func TestChecker_New(t *testing.T) {
	// Given: default options
	checker := New(probe.NewStaticProber())

	// Then: checker is created with defaults
	assert.NotNil(t, checker)
	assert.True(t, checker.verbose)
	assert.Equal(t, versioncmp.SchemeLoose, checker.scheme.Name())
	assert.Equal(t, DefaultStrategies(), checker.strategies)
}

func TestChecker_NewWithOptions(t *testing.T) {
	semver, err := versioncmp.Lookup(versioncmp.SchemeSemver)
	require.NoError(t, err)

	checker := New(probe.NewStaticProber(),
		WithVerbose(false),
		WithScheme(semver),
		WithStrategies(StrategyTable{}),
	)

	assert.False(t, checker.verbose)
	assert.Equal(t, versioncmp.SchemeSemver, checker.scheme.Name())
	assert.Empty(t, checker.strategies)
}

func TestChecker_CheckComponent_TooOld(t *testing.T) {
	// Given: numpy 1.24 installed
	checker, buf := newTestChecker(probe.NewStaticProberFromVersions(map[string]string{"numpy": "1.24"}))

	// When: requiring 1.26
	result := checker.CheckComponent(context.Background(), "numpy", "1.26")

	// Then: too old, with the installed and minimum versions
	assert.Equal(t, OutcomeTooOld, result.Outcome)
	assert.Equal(t, "1.24", result.Installed)
	assert.Equal(t, "1.26", result.Minimum)
	assert.Equal(t, "Error: numpy version 1.26 or later is required, you have version 1.24\n", buf.String())
	assert.True(t, errors.Is(result.Err, cerrors.New(cerrors.ErrCodeVersionTooOld, "", nil)))
}

func TestChecker_CheckComponent_Found(t *testing.T) {
	checker, buf := newTestChecker(probe.NewStaticProberFromVersions(map[string]string{"numpy": "1.26"}))

	result := checker.CheckComponent(context.Background(), "numpy", "1.20")

	assert.Equal(t, OutcomeAvailable, result.Outcome)
	assert.Nil(t, result.Err)
	assert.Equal(t, "Found numpy 1.26\n", buf.String())
}

func TestChecker_CheckComponent_EqualVersionPasses(t *testing.T) {
	checker, _ := newTestChecker(probe.NewStaticProberFromVersions(map[string]string{"astropy": "3.1"}))

	result := checker.CheckComponent(context.Background(), "astropy", "3.1")

	assert.True(t, result.OK())
}

func TestChecker_CheckComponent_Unavailable(t *testing.T) {
	checker, buf := newTestChecker(probe.NewStaticProber())

	result := checker.CheckComponent(context.Background(), "doesnotexist", "")

	assert.Equal(t, OutcomeUnavailable, result.Outcome)
	assert.Equal(t, "No module named 'doesnotexist'", result.Detail)
	assert.Equal(t, "Error: Failed import: No module named 'doesnotexist'\n", buf.String())
	assert.Equal(t, cerrors.ErrCodeComponentUnavailable, cerrors.GetCode(result.Err))
}

func TestChecker_CheckComponent_UnavailableNeverReadsVersion(t *testing.T) {
	// Given: a prober where glue fails to load
	spy := &spyProber{inner: probe.NewStaticProber().SetFailure("glue", "DLL load failed")}
	checker, _ := newTestChecker(spy)

	// When: checking glue with a minimum
	result := checker.CheckComponent(context.Background(), "glue", "0.9.1")

	// Then: unavailable and no attribute was read
	assert.Equal(t, OutcomeUnavailable, result.Outcome)
	assert.Zero(t, spy.reads)
}

func TestChecker_CheckComponent_NoMinimumAlwaysPasses(t *testing.T) {
	versions := []string{"", "0", "0.0.1dev", "banana", "999"}

	for _, v := range versions {
		t.Run("version_"+v, func(t *testing.T) {
			checker, _ := newTestChecker(probe.NewStaticProberFromVersions(map[string]string{"pkg": v}))

			result := checker.CheckComponent(context.Background(), "pkg", "")

			assert.Equal(t, OutcomeAvailable, result.Outcome)
			assert.Equal(t, v, result.Installed)
		})
	}
}

func TestChecker_CheckComponent_NoVersionComponent(t *testing.T) {
	// Given: jupyter present, which reports no version
	p := probe.NewStaticProber().SetHandle("jupyter", probe.Attributes{})
	checker, buf := newTestChecker(p)

	// When: checking it, with and without a minimum
	noMin := checker.CheckComponent(context.Background(), "jupyter", "")
	withMin := checker.CheckComponent(context.Background(), "jupyter", "1.0")

	// Then: both pass with an empty version
	assert.True(t, noMin.OK())
	assert.True(t, withMin.OK())
	assert.Equal(t, "Found jupyter \nFound jupyter \n", buf.String())
}

func TestChecker_CheckComponent_AlternateAttribute(t *testing.T) {
	// Given: xlwt exposes its version on __VERSION__
	p := probe.NewStaticProber().SetHandle("xlwt", probe.Attributes{"__VERSION__": "1.3.0"})
	checker, buf := newTestChecker(p)

	result := checker.CheckComponent(context.Background(), "xlwt", "1.0")

	assert.True(t, result.OK())
	assert.Equal(t, "1.3.0", result.Installed)
	assert.Equal(t, "Found xlwt 1.3.0\n", buf.String())
}

func TestChecker_CheckComponent_MissingVersionAttributeWithoutMinimum(t *testing.T) {
	// Given: a component that loads but has no __version__
	p := probe.NewStaticProber().SetHandle("oddball", probe.Attributes{})
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	checker, buf := newTestChecker(p, WithLogger(logger))

	// When: no minimum is required
	result := checker.CheckComponent(context.Background(), "oddball", "")

	// Then: it passes with an empty version and the unreadable attribute
	// is logged
	assert.True(t, result.OK())
	assert.Empty(t, result.Installed)
	assert.Equal(t, "Found oddball \n", buf.String())
	assert.Contains(t, logs.String(), "version unreadable")
	assert.Contains(t, logs.String(), "component=oddball")
	assert.Contains(t, logs.String(), "__version__")
}

func TestChecker_CheckComponent_MissingVersionAttributeWithMinimum(t *testing.T) {
	// Given: a component that loads but has no __version__
	p := probe.NewStaticProber().SetHandle("oddball", probe.Attributes{})
	checker, buf := newTestChecker(p)

	// When: a minimum is required
	result := checker.CheckComponent(context.Background(), "oddball", "1.0")

	// Then: it is not treated as success
	assert.Equal(t, OutcomeUnavailable, result.Outcome)
	assert.Equal(t, "module 'oddball' has no attribute '__version__'", result.Detail)
	assert.Equal(t, cerrors.ErrCodeUnexpectedHostFailure, cerrors.GetCode(result.Err))
	assert.Contains(t, buf.String(), "Error: Failed import: module 'oddball' has no attribute")
}

func TestChecker_CheckComponent_UnparseableVersionUnderSemver(t *testing.T) {
	semver, err := versioncmp.Lookup(versioncmp.SchemeSemver)
	require.NoError(t, err)
	p := probe.NewStaticProberFromVersions(map[string]string{"photutils": "0.4.7dev9008"})
	checker, _ := newTestChecker(p, WithScheme(semver))

	result := checker.CheckComponent(context.Background(), "photutils", "0.3")

	assert.Equal(t, OutcomeUnavailable, result.Outcome)
	assert.Equal(t, cerrors.ErrCodeUnexpectedHostFailure, cerrors.GetCode(result.Err))
}

func TestChecker_CheckComponent_HostFailure(t *testing.T) {
	checker, _ := newTestChecker(brokenProber{})

	result := checker.CheckComponent(context.Background(), "numpy", "")

	assert.Equal(t, OutcomeUnavailable, result.Outcome)
	assert.Equal(t, cerrors.ErrCodeUnexpectedHostFailure, cerrors.GetCode(result.Err))
}

func TestChecker_CheckComponent_QuietSuppressesFoundOnly(t *testing.T) {
	p := probe.NewStaticProberFromVersions(map[string]string{"numpy": "1.26"})
	checker, buf := newTestChecker(p, WithVerbose(false))

	checker.CheckComponent(context.Background(), "numpy", "")
	checker.CheckComponent(context.Background(), "scipy", "")

	assert.Equal(t, "Error: Failed import: No module named 'scipy'\n", buf.String())
}

func TestChecker_RunChecks_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		versions map[string]string
		reqs     []Requirement
		want     string
		all      bool
	}{
		{
			name:     "too old",
			versions: map[string]string{"numpy": "1.24"},
			reqs:     []Requirement{{Name: "numpy", MinVersion: "1.26"}},
			want:     "Error: numpy version 1.26 or later is required, you have version 1.24\n\n" + SummaryFailed + "\n",
			all:      false,
		},
		{
			name:     "new enough",
			versions: map[string]string{"numpy": "1.26"},
			reqs:     []Requirement{{Name: "numpy", MinVersion: "1.20"}},
			want:     "Found numpy 1.26\n\n" + SummaryReady + "\n",
			all:      true,
		},
		{
			name:     "missing",
			versions: map[string]string{},
			reqs:     []Requirement{{Name: "doesnotexist"}},
			want:     "Error: Failed import: No module named 'doesnotexist'\n\n" + SummaryFailed + "\n",
			all:      false,
		},
		{
			name:     "jupyter without version",
			versions: map[string]string{"jupyter": ""},
			reqs:     []Requirement{{Name: "jupyter"}},
			want:     "Found jupyter \n\n" + SummaryReady + "\n",
			all:      true,
		},
		{
			name:     "empty set",
			versions: map[string]string{},
			reqs:     nil,
			want:     "\n" + SummaryReady + "\n",
			all:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, buf := newTestChecker(probe.NewStaticProberFromVersions(tt.versions))

			summary := checker.RunChecks(context.Background(), MustRequirementSet(tt.reqs...))

			assert.Equal(t, tt.want, buf.String())
			assert.Equal(t, tt.all, summary.AllSatisfied)
			assert.Len(t, summary.Results, len(tt.reqs))
		})
	}
}

func TestChecker_RunChecks_SingleFailureFlipsAggregate(t *testing.T) {
	versions := map[string]string{"numpy": "1.26", "scipy": "1.11", "astropy": "6.0"}
	base := []Requirement{
		{Name: "numpy", MinVersion: "1.14"},
		{Name: "scipy", MinVersion: "1.1"},
		{Name: "astropy", MinVersion: "3.1"},
	}

	checker, _ := newTestChecker(probe.NewStaticProberFromVersions(versions))
	require.True(t, checker.RunChecks(context.Background(), MustRequirementSet(base...)).AllSatisfied)

	for i := range base {
		// Too old at position i
		tooOld := append([]Requirement(nil), base...)
		tooOld[i].MinVersion = "99"
		summary := checker.RunChecks(context.Background(), MustRequirementSet(tooOld...))
		assert.False(t, summary.AllSatisfied, "too old at %d", i)
		assert.Len(t, summary.Failures(), 1)

		// Unavailable inserted at position i
		missing := append([]Requirement(nil), base[:i]...)
		missing = append(missing, Requirement{Name: "doesnotexist"})
		missing = append(missing, base[i:]...)
		summary = checker.RunChecks(context.Background(), MustRequirementSet(missing...))
		assert.False(t, summary.AllSatisfied, "missing at %d", i)
		assert.Len(t, summary.Results, len(base)+1)
	}
}

func TestChecker_RunChecks_OrderIndependence(t *testing.T) {
	// Given: the same requirements in two orders
	p := probe.NewStaticProberFromVersions(map[string]string{"numpy": "1.24", "pandas": "2.1"})
	forward := []Requirement{
		{Name: "numpy", MinVersion: "1.26"},
		{Name: "pandas", MinVersion: "0.23"},
		{Name: "glue"},
	}
	reversed := []Requirement{forward[2], forward[1], forward[0]}

	checker, _ := newTestChecker(p)

	// When: running both
	a := checker.RunChecks(context.Background(), MustRequirementSet(forward...))
	b := checker.RunChecks(context.Background(), MustRequirementSet(reversed...))

	// Then: per-component results match; only order differs
	for _, r := range a.Results {
		other, ok := b.Result(r.Name)
		require.True(t, ok)
		assert.Equal(t, r.Outcome, other.Outcome)
		assert.Equal(t, r.Installed, other.Installed)
		assert.Equal(t, r.Detail, other.Detail)
	}
	assert.Equal(t, "numpy", a.Results[0].Name)
	assert.Equal(t, "glue", b.Results[0].Name)
}

func TestChecker_RunChecks_ProbesEveryRequirementInOrder(t *testing.T) {
	p := probe.NewStaticProberFromVersions(map[string]string{"scipy": "1.1"})
	checker, _ := newTestChecker(p)

	checker.RunChecks(context.Background(), MustRequirementSet(
		Requirement{Name: "IPython"},
		Requirement{Name: "scipy", MinVersion: "2.0"},
		Requirement{Name: "numpy"},
	))

	assert.Equal(t, []string{"IPython", "scipy", "numpy"}, p.Calls())
}

func TestChecker_RunChecks_RequirementStrategyOverride(t *testing.T) {
	// Given: a requirement that reads a custom attribute
	alt := Alternate("version")
	p := probe.NewStaticProber().SetHandle("ginga", probe.Attributes{"version": "2.7.0"})
	checker, buf := newTestChecker(p)

	summary := checker.RunChecks(context.Background(), MustRequirementSet(
		Requirement{Name: "ginga", MinVersion: "2.6.1", Strategy: &alt},
	))

	assert.True(t, summary.AllSatisfied)
	assert.Contains(t, buf.String(), "Found ginga 2.7.0")
}
