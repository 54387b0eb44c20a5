package preflight

import (
	"fmt"
)

// Outcome is the result kind of a single component check.
type Outcome int

const (
	// OutcomeAvailable means the component loaded and meets the minimum.
	OutcomeAvailable Outcome = iota
	// OutcomeTooOld means the component loaded but is older than the minimum.
	OutcomeTooOld
	// OutcomeUnavailable means the component could not be loaded.
	OutcomeUnavailable
)

// String returns the string representation of an Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeAvailable:
		return "available"
	case OutcomeTooOld:
		return "too_old"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome as its string form in JSON.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// CheckResult holds the result of checking one component.
type CheckResult struct {
	Name      string  `json:"name"`
	Outcome   Outcome `json:"outcome"`
	Installed string  `json:"installed,omitempty"`
	Minimum   string  `json:"minimum,omitempty"`
	Detail    string  `json:"detail,omitempty"`
	// Err is the structured error for failed checks, nil otherwise.
	Err error `json:"-"`
}

// OK returns true if the component is available at an acceptable version.
func (r CheckResult) OK() bool {
	return r.Outcome == OutcomeAvailable
}

// Line returns the report line for this result.
func (r CheckResult) Line() string {
	switch r.Outcome {
	case OutcomeAvailable:
		return fmt.Sprintf("Found %s %s", r.Name, r.Installed)
	case OutcomeTooOld:
		return fmt.Sprintf("Error: %s version %s or later is required, you have version %s",
			r.Name, r.Minimum, r.Installed)
	default:
		return fmt.Sprintf("Error: Failed import: %s", r.Detail)
	}
}

// Summary lines printed after all components are checked.
const (
	SummaryFailed = "There are errors that you must resolve before running the tutorials."
	SummaryReady  = "Your Python environment is good to go!"
)

// RunSummary aggregates the results of one run, in requirement order.
type RunSummary struct {
	Results      []CheckResult `json:"results"`
	AllSatisfied bool          `json:"all_satisfied"`
}

// newRunSummary derives AllSatisfied from the results. An empty run is
// vacuously satisfied.
func newRunSummary(results []CheckResult) RunSummary {
	all := true
	for _, r := range results {
		if !r.OK() {
			all = false
			break
		}
	}
	return RunSummary{Results: results, AllSatisfied: all}
}

// SummaryLine returns the final line for this run.
func (s RunSummary) SummaryLine() string {
	if s.AllSatisfied {
		return SummaryReady
	}
	return SummaryFailed
}

// Failures returns the results that are not OK.
func (s RunSummary) Failures() []CheckResult {
	var out []CheckResult
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Result returns the result for name, if it was checked.
func (s RunSummary) Result(name string) (CheckResult, bool) {
	for _, r := range s.Results {
		if r.Name == name {
			return r, true
		}
	}
	return CheckResult{}, false
}
