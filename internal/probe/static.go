package probe

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// StaticProber answers probes from a fixed table. Components that are not
// in the table fail to load with the same wording Python uses for a missing
// module.
type StaticProber struct {
	mu       sync.Mutex
	handles  map[string]Handle
	failures map[string]string
	calls    []string
}

// NewStaticProber creates an empty StaticProber.
func NewStaticProber() *StaticProber {
	return &StaticProber{
		handles:  make(map[string]Handle),
		failures: make(map[string]string),
	}
}

// NewStaticProberFromVersions creates a StaticProber where every listed
// component is present with the given version.
func NewStaticProberFromVersions(versions map[string]string) *StaticProber {
	p := NewStaticProber()
	for name, v := range versions {
		p.SetVersion(name, v)
	}
	return p
}

// SetVersion marks name as present. The version is reported for whichever
// attribute the checker asks for.
func (p *StaticProber) SetVersion(name, version string) *StaticProber {
	return p.SetHandle(name, versionHandle(version))
}

// SetHandle marks name as present with an arbitrary handle.
func (p *StaticProber) SetHandle(name string, h Handle) *StaticProber {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failures, name)
	p.handles[name] = h
	return p
}

// SetFailure makes probing name fail with the given detail.
func (p *StaticProber) SetFailure(name, detail string) *StaticProber {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.handles, name)
	p.failures[name] = detail
	return p
}

// Calls returns the component names probed so far, in order.
func (p *StaticProber) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// Probe implements Prober.
func (p *StaticProber) Probe(ctx context.Context, name string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, name)

	if detail, ok := p.failures[name]; ok {
		return nil, &LoadError{Component: name, Detail: detail}
	}
	if h, ok := p.handles[name]; ok {
		return h, nil
	}
	return nil, &LoadError{Component: name, Detail: missingModuleDetail(name)}
}

// LoadManifest reads a YAML (or JSON) mapping of component name to installed
// version and returns a StaticProber for it. It lets a requirement set be
// checked against an inventory captured on another machine.
func LoadManifest(path string) (*StaticProber, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var versions map[string]string
	if err := yaml.Unmarshal(data, &versions); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	return NewStaticProberFromVersions(versions), nil
}

// versionHandle reports the same version for every attribute.
type versionHandle string

func (v versionHandle) Attribute(string) (string, bool) {
	return string(v), true
}

func missingModuleDetail(name string) string {
	return fmt.Sprintf("No module named '%s'", name)
}
