package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/checkenv/internal/config"
)

func TestConfigPathCmd(t *testing.T) {
	isolateCLI(t)

	stdout, _, err := executeCmd(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath(), strings.TrimSpace(stdout))
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "checkenv", "config.yaml"), strings.TrimSpace(stdout))
}

func TestConfigInitCmd(t *testing.T) {
	// Given no user config
	isolateCLI(t)

	// When initializing it
	stdout, _, err := executeCmd(t, "config", "init")

	// Then the template is written and loads cleanly
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created user configuration")
	require.True(t, config.UserConfigExists())
	cfg, err := config.LoadUserConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	// And a second init leaves it alone
	stdout, _, err = executeCmd(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
}

func TestConfigInitCmd_ForceKeepsBackup(t *testing.T) {
	isolateCLI(t)
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("check:\n  profile: \"2017\"\n"), 0o644))

	stdout, _, err := executeCmd(t, "config", "init", "--force")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Backup: ")
	backups, err := config.ListUserConfigBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "2017")
}

func TestConfigRestoreCmd(t *testing.T) {
	// Given a config replaced by init --force
	isolateCLI(t)
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("check:\n  profile: \"2017\"\n"), 0o644))
	_, _, err := executeCmd(t, "config", "init", "--force")
	require.NoError(t, err)

	// When restoring the newest backup
	stdout, _, err := executeCmd(t, "config", "restore")

	// Then the old settings are back
	require.NoError(t, err)
	assert.Contains(t, stdout, "Restored user configuration")
	cfg, err := config.LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "2017", cfg.Check.Profile)
}

func TestConfigRestoreCmd_NoBackups(t *testing.T) {
	isolateCLI(t)

	_, stderr, err := executeCmd(t, "config", "restore")

	require.Error(t, err)
	assert.Contains(t, stderr, "no backups found")
}

func TestConfigShowCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		setup   func(t *testing.T, dir string)
		profile string
	}{
		{
			name:    "defaults",
			args:    []string{"--source", "defaults"},
			profile: "2019",
		},
		{
			name: "merged with project",
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, ".checkenv.yaml", "check:\n  profile: \"2017\"\n")
			},
			profile: "2017",
		},
		{
			name: "merged with env",
			setup: func(t *testing.T, _ string) {
				t.Setenv("CHECKENV_PROFILE", "2017")
			},
			profile: "2017",
		},
		{
			name: "project only",
			args: []string{"--source", "project"},
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, ".checkenv.yml", "check:\n  scheme: semver\n")
			},
			profile: "2019",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolateCLI(t)
			if tt.setup != nil {
				tt.setup(t, dir)
			}

			args := append([]string{"config", "show", "--json"}, tt.args...)
			stdout, _, err := executeCmd(t, args...)

			require.NoError(t, err)
			var cfg config.Config
			require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
			assert.Equal(t, tt.profile, cfg.Check.Profile)
		})
	}
}

func TestConfigShowCmd_YAMLAndMissingSources(t *testing.T) {
	isolateCLI(t)

	stdout, _, err := executeCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Configuration source: merged")
	assert.Contains(t, stdout, "profile: \"2019\"")

	stdout, _, err = executeCmd(t, "config", "show", "--source", "user")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No user configuration file found")

	_, _, err = executeCmd(t, "config", "show", "--source", "nowhere")
	require.Error(t, err)
}
