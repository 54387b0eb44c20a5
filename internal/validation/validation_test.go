package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios_All replays every scenario in testdata/scenarios.yaml.
func TestScenarios_All(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := LoadScenarios()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Scenarios)

	v := NewValidator(nil)
	for _, spec := range cfg.Scenarios {
		t.Run(spec.ID+"_"+spec.Name, func(t *testing.T) {
			result := v.Run(ctx, spec)

			require.Empty(t, result.Error)
			assert.True(t, result.Passed, result.Mismatch)
			assert.Equal(t, spec.Lines, result.Lines)
		})
	}
}

func TestRunAll_CountsPasses(t *testing.T) {
	// Given: the bundled scenarios
	ResetScenarios()
	cfg, err := LoadScenarios()
	require.NoError(t, err)

	// When: running them all
	result, err := NewValidator(nil).RunAll(context.Background())

	// Then: every scenario passes
	require.NoError(t, err)
	assert.Equal(t, len(cfg.Scenarios), result.Total)
	assert.Equal(t, result.Total, result.Passed)
	assert.False(t, result.Timestamp.IsZero())
}

func TestLoadScenarios_UniqueIDs(t *testing.T) {
	cfg, err := LoadScenarios()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, s := range cfg.Scenarios {
		assert.NotEmpty(t, s.ID)
		assert.False(t, seen[s.ID], "duplicate scenario id %s", s.ID)
		seen[s.ID] = true
		assert.NotEmpty(t, s.Requirements, "scenario %s has no requirements", s.ID)
		assert.Len(t, s.Lines, len(s.Requirements), "scenario %s", s.ID)
	}
}

func TestLoadScenarioFile_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("scenarios: [:"), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.yaml")},
		{name: "invalid yaml", path: bad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenarioFile(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestRun_ReportsMismatch(t *testing.T) {
	// Given: a scenario whose expected line is wrong
	spec := ScenarioSpec{
		ID:           "X1",
		Installed:    map[string]string{"numpy": "1.24"},
		Requirements: []RequirementSpec{{Name: "numpy", MinVersion: "1.26"}},
		Lines:        []string{"Found numpy 1.24"},
		AllSatisfied: true,
	}

	// When: running it
	result := NewValidator(nil).Run(context.Background(), spec)

	// Then: it fails with the first differing line
	require.Empty(t, result.Error)
	assert.False(t, result.Passed)
	assert.Contains(t, result.Mismatch, "line 1")
	assert.Equal(t, "There are errors that you must resolve before running the tutorials.", result.Summary)
}

func TestRun_InvalidRequirements(t *testing.T) {
	// Given: a scenario that lists a component twice
	spec := ScenarioSpec{
		ID: "X2",
		Requirements: []RequirementSpec{
			{Name: "numpy", MinVersion: "1.0"},
			{Name: "numpy", MinVersion: "1.1"},
		},
	}

	// When: running it
	result := NewValidator(nil).Run(context.Background(), spec)

	// Then: the tool rejects the table
	assert.False(t, result.Passed)
	assert.NotEmpty(t, result.Error)
}
