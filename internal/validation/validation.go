// Package validation replays recorded environment scenarios through the MCP
// check_environment tool and compares the report with what a user would
// see on the command line.
//
// Scenarios are data-driven, loaded from testdata/scenarios.yaml, so new
// cases can be added without touching Go code.
package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/checkenv/internal/config"
	"github.com/Aman-CERP/checkenv/internal/mcp"
	"github.com/Aman-CERP/checkenv/internal/preflight"
	"github.com/Aman-CERP/checkenv/internal/probe"
)

// RequirementSpec is one requirement of a scenario.
type RequirementSpec struct {
	Name       string `yaml:"name"`
	MinVersion string `yaml:"min_version"`
}

// ScenarioSpec defines an environment and the report it must produce.
type ScenarioSpec struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Installed    map[string]string `yaml:"installed"`
	Broken       map[string]string `yaml:"broken"`
	Requirements []RequirementSpec `yaml:"requirements"`
	Lines        []string          `yaml:"lines"`
	AllSatisfied bool              `yaml:"all_satisfied"`
}

// ScenarioConfig holds all scenarios loaded from YAML.
type ScenarioConfig struct {
	Scenarios []ScenarioSpec `yaml:"scenarios"`
}

var (
	scenariosOnce sync.Once
	scenariosData *ScenarioConfig
	scenariosErr  error
)

// LoadScenarios loads scenarios from testdata/scenarios.yaml.
// Results are cached after first load.
func LoadScenarios() (*ScenarioConfig, error) {
	scenariosOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			scenariosErr = fmt.Errorf("failed to get current file path")
			return
		}

		path := filepath.Join(filepath.Dir(filename), "testdata", "scenarios.yaml")
		scenariosData, scenariosErr = LoadScenarioFile(path)
	})

	return scenariosData, scenariosErr
}

// LoadScenarioFile parses a scenario file.
func LoadScenarioFile(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios file %s: %w", path, err)
	}

	var cfg ScenarioConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios YAML: %w", err)
	}
	return &cfg, nil
}

// ResetScenarios clears the cached scenarios (for testing).
func ResetScenarios() {
	scenariosOnce = sync.Once{}
	scenariosData = nil
	scenariosErr = nil
}

// TestResult captures the outcome of a single scenario.
type TestResult struct {
	Spec     ScenarioSpec  `json:"spec"`
	Passed   bool          `json:"passed"`
	Duration time.Duration `json:"duration_ms"`
	Lines    []string      `json:"lines"`
	Summary  string        `json:"summary"`
	Mismatch string        `json:"mismatch,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// ValidationResult captures results of a full run.
type ValidationResult struct {
	Timestamp time.Time    `json:"timestamp"`
	Results   []TestResult `json:"results"`
	Passed    int          `json:"passed"`
	Total     int          `json:"total"`
}

// Validator runs scenarios against an MCP server backed by a static prober.
type Validator struct {
	config *config.Config
	goos   string
}

// NewValidator creates a validator. A nil cfg uses the defaults.
func NewValidator(cfg *config.Config) *Validator {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Validator{config: cfg, goos: runtime.GOOS}
}

// proberFor builds the environment a scenario describes.
func proberFor(spec ScenarioSpec) *probe.StaticProber {
	p := probe.NewStaticProberFromVersions(spec.Installed)
	for name, detail := range spec.Broken {
		p.SetFailure(name, detail)
	}
	return p
}

// Run executes a single scenario.
func (v *Validator) Run(ctx context.Context, spec ScenarioSpec) TestResult {
	start := time.Now()
	result := TestResult{Spec: spec}

	p := proberFor(spec)
	server, err := mcp.NewServer(v.config,
		mcp.WithGOOS(v.goos),
		mcp.WithProberFactory(func(string, []string) (probe.Prober, string, error) {
			return p, "scenario:" + spec.ID, nil
		}))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	reqs := make([]any, 0, len(spec.Requirements))
	for _, r := range spec.Requirements {
		reqs = append(reqs, map[string]any{"name": r.Name, "min_version": r.MinVersion})
	}

	resp, err := server.CallTool(ctx, "check_environment", map[string]any{"requirements": reqs})
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	out, ok := resp.(*mcp.CheckOutput)
	if !ok {
		result.Error = fmt.Sprintf("unexpected response type %T", resp)
		return result
	}

	for _, r := range out.Results {
		result.Lines = append(result.Lines, r.Line)
	}
	result.Summary = lastLine(out.Report)
	result.Mismatch = compare(spec, result.Lines, result.Summary, out.AllSatisfied)
	result.Passed = result.Mismatch == ""
	return result
}

// compare describes the first difference from the expected report, or
// returns "" when there is none.
func compare(spec ScenarioSpec, lines []string, summary string, all bool) string {
	if len(lines) != len(spec.Lines) {
		return fmt.Sprintf("got %d lines, want %d", len(lines), len(spec.Lines))
	}
	for i := range lines {
		if lines[i] != spec.Lines[i] {
			return fmt.Sprintf("line %d: got %q, want %q", i+1, lines[i], spec.Lines[i])
		}
	}
	if all != spec.AllSatisfied {
		return fmt.Sprintf("all_satisfied: got %v, want %v", all, spec.AllSatisfied)
	}
	want := preflight.SummaryFailed
	if spec.AllSatisfied {
		want = preflight.SummaryReady
	}
	if summary != want {
		return fmt.Sprintf("summary: got %q, want %q", summary, want)
	}
	return ""
}

func lastLine(report string) string {
	report = strings.TrimRight(report, "\n")
	if i := strings.LastIndexByte(report, '\n'); i >= 0 {
		return report[i+1:]
	}
	return report
}

// RunAll executes every loaded scenario and returns the results.
func (v *Validator) RunAll(ctx context.Context) (*ValidationResult, error) {
	cfg, err := LoadScenarios()
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{Timestamp: time.Now()}
	for _, spec := range cfg.Scenarios {
		tr := v.Run(ctx, spec)
		result.Results = append(result.Results, tr)
		result.Total++
		if tr.Passed {
			result.Passed++
		}
	}
	return result, nil
}
