package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_SemverOrDev(t *testing.T) {
	if Version == "dev" {
		return
	}
	_, err := semver.NewVersion(Version)
	require.NoError(t, err, "Version should be a semantic version, got %s", Version)
}

func TestString_ContainsBuildInfo(t *testing.T) {
	str := String()

	assert.Contains(t, str, "checkenv "+Version)
	assert.Contains(t, str, "commit: "+Commit)
	assert.Contains(t, str, "go: "+GoVersion)
}

func TestShort(t *testing.T) {
	assert.Equal(t, Version, Short())
}

func TestGetInfo_JSON(t *testing.T) {
	// Given: overridden build info
	orig := Version
	Version = "1.2.3"
	defer func() { Version = orig }()

	// When: encoding it
	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	// Then: every field is present
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "1.2.3", decoded["version"])
	assert.Equal(t, runtime.GOOS, decoded["os"])
	assert.Equal(t, runtime.GOARCH, decoded["arch"])
	assert.Contains(t, decoded, "commit")
	assert.Contains(t, decoded, "date")
	assert.Contains(t, decoded, "go_version")
}
