// Package probe loads named components from the host environment so their
// presence and version can be checked.
//
// A Prober is the only place checkenv touches the environment. The checker
// treats it as opaque, which keeps every checker path testable with the
// StaticProber.
package probe

import (
	"context"
	"fmt"
)

// Handle is a successfully loaded component.
type Handle interface {
	// Attribute returns the string value of a named attribute of the loaded
	// component, and whether the component has that attribute.
	Attribute(name string) (string, bool)
}

// Prober loads components by name.
type Prober interface {
	// Probe attempts to load the named component. A component that cannot be
	// loaded yields a *LoadError; any other error means the host environment
	// itself misbehaved.
	Probe(ctx context.Context, name string) (Handle, error)
}

// LoadError reports that a component could not be loaded.
type LoadError struct {
	// Component is the name that was probed.
	Component string
	// Detail is the human-readable reason, e.g. "No module named 'numpy'".
	Detail string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the detail, which is what users see after "Failed import:".
func (e *LoadError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return fmt.Sprintf("cannot load %s", e.Component)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Attributes is a Handle backed by a fixed attribute map.
type Attributes map[string]string

// Attribute implements Handle.
func (a Attributes) Attribute(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}
