package preflight

import (
	"fmt"
	"strings"

	cerrors "github.com/Aman-CERP/checkenv/internal/errors"
)

// Requirement names a component and the oldest acceptable version.
type Requirement struct {
	// Name is the component name, e.g. "numpy".
	Name string
	// MinVersion is the minimum version. Empty accepts any version,
	// including a component that reports no version at all.
	MinVersion string
	// Strategy overrides the StrategyTable entry for this component.
	Strategy *Strategy
}

// HasMinimum reports whether a minimum version is set.
func (r Requirement) HasMinimum() bool {
	return r.MinVersion != ""
}

// RequirementSet is an ordered collection of requirements with unique names.
// It is immutable once built.
type RequirementSet struct {
	reqs []Requirement
}

// NewRequirementSet builds a set, preserving order. Empty or duplicate names
// are rejected.
func NewRequirementSet(reqs ...Requirement) (*RequirementSet, error) {
	seen := make(map[string]bool, len(reqs))
	out := make([]Requirement, 0, len(reqs))

	for i, r := range reqs {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return nil, cerrors.New(cerrors.ErrCodeInvalidInput,
				fmt.Sprintf("requirement %d has no component name", i+1), nil)
		}
		if seen[r.Name] {
			return nil, cerrors.New(cerrors.ErrCodeDuplicateComponent,
				fmt.Sprintf("component %q is listed more than once", r.Name), nil).
				WithDetail("component", r.Name)
		}
		seen[r.Name] = true
		r.MinVersion = strings.TrimSpace(r.MinVersion)
		out = append(out, r)
	}

	return &RequirementSet{reqs: out}, nil
}

// MustRequirementSet is like NewRequirementSet but panics on error.
// Intended for tables fixed at compile time.
func MustRequirementSet(reqs ...Requirement) *RequirementSet {
	s, err := NewRequirementSet(reqs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Requirements returns a copy of the requirements in order.
func (s *RequirementSet) Requirements() []Requirement {
	if s == nil {
		return nil
	}
	out := make([]Requirement, len(s.reqs))
	copy(out, s.reqs)
	return out
}

// Len returns the number of requirements.
func (s *RequirementSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.reqs)
}

// Names returns the component names in order.
func (s *RequirementSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.reqs))
	for i, r := range s.reqs {
		names[i] = r.Name
	}
	return names
}
