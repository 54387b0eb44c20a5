package cmd

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementsCmd_Table(t *testing.T) {
	// Given the default configuration
	isolateCLI(t)

	// When listing requirements
	stdout, _, err := executeCmd(t, "requirements")

	// Then the 2019 table is printed
	require.NoError(t, err)
	assert.Contains(t, stdout, "Profile: 2019 ("+runtime.GOOS+")")
	assert.Contains(t, stdout, "Package")
	assert.Contains(t, stdout, "IPython")
	assert.Contains(t, stdout, "2.2.3")
	assert.Contains(t, stdout, "attribute __version__")
}

func TestRequirementsCmd_JSON(t *testing.T) {
	isolateCLI(t)

	stdout, _, err := executeCmd(t, "requirements", "--profile", "2017", "--json")

	require.NoError(t, err)
	var got requirementsJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "2017", got.Profile)
	assert.Equal(t, runtime.GOOS, got.Platform)
	require.NotEmpty(t, got.Requirements)
	assert.Equal(t, requirementJSON{Name: "IPython", MinVersion: "5.1", Version: "attribute __version__"},
		got.Requirements[0])

	var names []string
	for _, r := range got.Requirements {
		names = append(names, r.Name)
	}
	if runtime.GOOS == "windows" {
		assert.NotContains(t, names, "imexam")
	} else {
		assert.Contains(t, names, "imexam")
	}
}

func TestRequirementsCmd_FileStrategies(t *testing.T) {
	// Given a requirements file with version overrides
	dir := isolateCLI(t)
	reqs := writeFile(t, dir, "reqs.yaml", `
name: custom
requirements:
  - name: xlwt
    min_version: "1.0"
  - name: keyring
  - name: mylib
    version_attr: VERSION
`)

	// When listing it
	stdout, _, err := executeCmd(t, "requirements", "--requirements", reqs, "--json")

	// Then each component reports how its version is read
	require.NoError(t, err)
	var got requirementsJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "custom", got.Profile)
	assert.Equal(t, []requirementJSON{
		{Name: "xlwt", MinVersion: "1.0", Version: "attribute __VERSION__"},
		{Name: "keyring", Version: "no version"},
		{Name: "mylib", Version: "attribute VERSION"},
	}, got.Requirements)
}

func TestRequirementsCmd_Profiles(t *testing.T) {
	isolateCLI(t)

	stdout, _, err := executeCmd(t, "requirements", "--profiles")

	require.NoError(t, err)
	assert.Equal(t, []string{"2017", "2019"}, strings.Fields(stdout))
}

func TestRequirementsCmd_UnknownProfile(t *testing.T) {
	isolateCLI(t)

	_, stderr, err := executeCmd(t, "requirements", "--profile", "2030")

	require.Error(t, err)
	assert.Contains(t, stderr, "Hint: available profiles: 2017, 2019")
}
