// Package preflight checks that the components a workshop needs are
// installed at or above a minimum version.
//
// A Checker probes each Requirement through a probe.Prober, resolves the
// installed version with a per-component Strategy, compares it against the
// minimum with a versioncmp.Scheme and reports one line per component plus
// a final summary line:
//
//	checker := preflight.New(prober)
//	summary := checker.RunChecks(ctx, set)
//	if !summary.AllSatisfied {
//	    // exit non-zero
//	}
//
// Checks run sequentially and never abort early: a component that is
// missing or too old is recorded and the next one is checked.
package preflight
