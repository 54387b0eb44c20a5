package config

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/checkenv/configs"
	cerrors "github.com/Aman-CERP/checkenv/internal/errors"
	"github.com/Aman-CERP/checkenv/internal/preflight"
)

// RequirementEntry is one component in a requirement table.
type RequirementEntry struct {
	Name       string `yaml:"name" json:"name"`
	MinVersion string `yaml:"min_version,omitempty" json:"min_version,omitempty"`

	// SkipOn lists GOOS values on which the component is not checked.
	SkipOn []string `yaml:"skip_on,omitempty" json:"skip_on,omitempty"`

	// VersionAttr reads the version from this attribute instead of
	// __version__.
	VersionAttr string `yaml:"version_attr,omitempty" json:"version_attr,omitempty"`

	// NoVersion marks a component that reports no version.
	NoVersion bool `yaml:"no_version,omitempty" json:"no_version,omitempty"`
}

// SkippedOn reports whether the entry is skipped on goos.
func (e RequirementEntry) SkippedOn(goos string) bool {
	for _, s := range e.SkipOn {
		if strings.EqualFold(strings.TrimSpace(s), goos) {
			return true
		}
	}
	return false
}

func (e RequirementEntry) requirement() (preflight.Requirement, error) {
	r := preflight.Requirement{Name: e.Name, MinVersion: e.MinVersion}

	switch {
	case e.NoVersion && e.VersionAttr != "":
		return r, cerrors.New(cerrors.ErrCodeManifestInvalid,
			fmt.Sprintf("requirement %q sets both version_attr and no_version", e.Name), nil)
	case e.NoVersion:
		s := preflight.NoVersion()
		r.Strategy = &s
	case e.VersionAttr != "":
		s := preflight.Alternate(e.VersionAttr)
		r.Strategy = &s
	}
	return r, nil
}

// BuildRequirementSet turns entries into a RequirementSet for goos,
// dropping entries skipped on that platform. Names must be unique across
// all entries, skipped or not.
func BuildRequirementSet(entries []RequirementEntry, goos string) (*preflight.RequirementSet, error) {
	seen := make(map[string]bool, len(entries))
	reqs := make([]preflight.Requirement, 0, len(entries))

	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name != "" && seen[name] {
			return nil, cerrors.New(cerrors.ErrCodeDuplicateComponent,
				fmt.Sprintf("component %q is listed more than once", name), nil).
				WithDetail("component", name)
		}
		seen[name] = true

		r, err := e.requirement()
		if err != nil {
			return nil, err
		}
		if e.SkippedOn(goos) {
			continue
		}
		reqs = append(reqs, r)
	}

	return preflight.NewRequirementSet(reqs...)
}

// Profile is a named requirement table.
type Profile struct {
	Name         string             `yaml:"name" json:"name"`
	Description  string             `yaml:"description,omitempty" json:"description,omitempty"`
	Requirements []RequirementEntry `yaml:"requirements" json:"requirements"`
}

// RequirementSet returns the profile's requirements for goos.
func (p *Profile) RequirementSet(goos string) (*preflight.RequirementSet, error) {
	return BuildRequirementSet(p.Requirements, goos)
}

// ParseProfile parses a requirement table from YAML (or JSON).
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, cerrors.New(cerrors.ErrCodeManifestInvalid, "failed to parse requirement table", err)
	}
	return &p, nil
}

// LoadProfile returns the embedded profile called name. An empty name
// selects the default profile.
func LoadProfile(name string) (*Profile, error) {
	if name == "" {
		name = configs.DefaultProfile
	}

	data, err := configs.Profiles.ReadFile(path.Join("profiles", name+".yaml"))
	if err != nil {
		return nil, cerrors.New(cerrors.ErrCodeUnknownProfile,
			fmt.Sprintf("unknown profile %q", name), err).
			WithSuggestion("available profiles: " + strings.Join(ProfileNames(), ", "))
	}

	p, err := ParseProfile(data)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

// ProfileNames returns the embedded profile names, sorted.
func ProfileNames() []string {
	entries, err := fs.ReadDir(configs.Profiles, "profiles")
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if n := e.Name(); strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}

// LoadRequirementsFile reads a requirement table from a file. It uses the
// same format as the embedded profiles.
func LoadRequirementsFile(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, cerrors.New(cerrors.ErrCodeConfigNotFound,
			fmt.Sprintf("failed to read requirements file %s", filename), err)
	}

	p, err := ParseProfile(data)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = filename
	}
	return p, nil
}
