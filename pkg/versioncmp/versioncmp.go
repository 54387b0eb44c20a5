package versioncmp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Scheme orders two version strings.
type Scheme interface {
	// Name returns the identifier used in configuration ("loose", "semver").
	Name() string
	// Compare returns -1, 0 or +1 as a is less than, equal to or greater than b.
	Compare(a, b string) (int, error)
}

const (
	// SchemeLoose is the name of the lenient dotted ordering.
	SchemeLoose = "loose"
	// SchemeSemver is the name of the strict semantic version ordering.
	SchemeSemver = "semver"
)

var schemes = map[string]Scheme{
	SchemeLoose:  looseScheme{},
	SchemeSemver: semverScheme{},
}

// Default returns the loose scheme.
func Default() Scheme {
	return looseScheme{}
}

// Lookup returns the scheme registered under name. An empty name selects the
// default scheme.
func Lookup(name string) (Scheme, error) {
	if name == "" {
		return Default(), nil
	}
	s, ok := schemes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown version scheme %q (use: %s)", name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names returns the registered scheme names, sorted.
func Names() []string {
	names := make([]string, 0, len(schemes))
	for n := range schemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Less reports whether installed is strictly older than minimum under s.
func Less(s Scheme, installed, minimum string) (bool, error) {
	c, err := s.Compare(installed, minimum)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}

type looseScheme struct{}

func (looseScheme) Name() string { return SchemeLoose }

func (looseScheme) Compare(a, b string) (int, error) {
	return CompareLoose(a, b), nil
}

// CompareLoose compares two version strings with the loose ordering.
//
// Each version is split into runs of digits and runs of other characters;
// dots only separate runs. Digit runs compare by value, other runs as
// case-sensitive strings, and a non-digit run sorts before a digit run at
// the same position. When every shared run is equal the shorter version is
// less. "1.7rc1" is therefore [1 7 rc 1], older than "1.7.1" and "1.8".
func CompareLoose(a, b string) int {
	as := splitRuns(a)
	bs := splitRuns(b)

	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareRun(as[i], bs[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

// splitRuns breaks v into maximal digit and non-digit runs, dropping dots.
func splitRuns(v string) []string {
	v = strings.TrimSpace(v)
	var runs []string
	start := -1
	for i := 0; i <= len(v); i++ {
		if start >= 0 && (i == len(v) || v[i] == '.' || isDigit(v[i]) != isDigit(v[start])) {
			runs = append(runs, v[start:i])
			start = -1
		}
		if i < len(v) && v[i] != '.' && start < 0 {
			start = i
		}
	}
	return runs
}

func compareRun(a, b string) int {
	ad, bd := isDigit(a[0]), isDigit(b[0])
	switch {
	case ad && bd:
		return compareNumeric(a, b)
	case ad:
		return 1
	case bd:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// compareNumeric compares two digit strings by value without converting to
// a fixed-width integer, so arbitrarily long segments never overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

type semverScheme struct{}

func (semverScheme) Name() string { return SchemeSemver }

func (semverScheme) Compare(a, b string) (int, error) {
	va, err := semver.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("parse version %q: %w", a, err)
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("parse version %q: %w", b, err)
	}
	return va.Compare(vb), nil
}
