package preflight

import (
	"fmt"
	"sort"

	"github.com/Aman-CERP/checkenv/internal/probe"
)

// StandardAttribute is the attribute most components expose their version on.
const StandardAttribute = "__version__"

// StrategyKind selects how a component's version is read.
type StrategyKind int

const (
	// KindStandard reads StandardAttribute.
	KindStandard StrategyKind = iota
	// KindAlternate reads a component-specific attribute.
	KindAlternate
	// KindNoVersion never reads a version; any minimum is satisfied.
	KindNoVersion
)

// String returns the string representation of a StrategyKind.
func (k StrategyKind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindAlternate:
		return "alternate"
	case KindNoVersion:
		return "none"
	default:
		return "unknown"
	}
}

// Strategy describes how to read the installed version of a component.
type Strategy struct {
	Kind StrategyKind
	// Attribute is the attribute read by KindAlternate.
	Attribute string
}

// Standard returns the default strategy.
func Standard() Strategy {
	return Strategy{Kind: KindStandard}
}

// Alternate returns a strategy reading attr instead of StandardAttribute.
func Alternate(attr string) Strategy {
	return Strategy{Kind: KindAlternate, Attribute: attr}
}

// NoVersion returns a strategy for components that report no version.
func NoVersion() Strategy {
	return Strategy{Kind: KindNoVersion}
}

// attribute returns the attribute this strategy reads, or "" for none.
func (s Strategy) attribute() string {
	switch s.Kind {
	case KindAlternate:
		return s.Attribute
	case KindNoVersion:
		return ""
	default:
		return StandardAttribute
	}
}

// String describes the strategy, e.g. "attribute __VERSION__".
func (s Strategy) String() string {
	if s.Kind == KindNoVersion {
		return "no version"
	}
	return "attribute " + s.attribute()
}

// resolve reads the installed version from a loaded component. A missing
// attribute is an error: the component loaded but does not say what it is.
func (s Strategy) resolve(name string, h probe.Handle) (string, error) {
	attr := s.attribute()
	if attr == "" {
		return "", nil
	}
	v, ok := h.Attribute(attr)
	if !ok {
		return "", fmt.Errorf("module '%s' has no attribute '%s'", name, attr)
	}
	return v, nil
}

// StrategyTable maps component names to the strategy used to read their
// version. Components not in the table use Standard.
type StrategyTable map[string]Strategy

// DefaultStrategies returns the components known to break the
// __version__ convention.
func DefaultStrategies() StrategyTable {
	return StrategyTable{
		"xlwt":    Alternate("__VERSION__"),
		"jupyter": NoVersion(),
		"keyring": NoVersion(),
	}
}

// Lookup returns the strategy for name.
func (t StrategyTable) Lookup(name string) Strategy {
	if s, ok := t[name]; ok {
		return s
	}
	return Standard()
}

// Attributes returns every distinct attribute the table reads, sorted, with
// StandardAttribute first. Probers use it to know what to report.
func (t StrategyTable) Attributes() []string {
	seen := map[string]bool{StandardAttribute: true}
	var extra []string
	for _, s := range t {
		if a := s.attribute(); a != "" && !seen[a] {
			seen[a] = true
			extra = append(extra, a)
		}
	}
	sort.Strings(extra)
	return append([]string{StandardAttribute}, extra...)
}

// WithOverrides returns a copy of t with the per-requirement strategies of
// set applied on top.
func (t StrategyTable) WithOverrides(set *RequirementSet) StrategyTable {
	out := make(StrategyTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	for _, r := range set.Requirements() {
		if r.Strategy != nil {
			out[r.Name] = *r.Strategy
		}
	}
	return out
}
