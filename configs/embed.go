// Package configs holds the files embedded into the checkenv binary.
//
// Requirement profiles live under profiles/, one YAML file per workshop
// edition. The file name without extension is the profile name used by
// --profile and CHECKENV_PROFILE.
//
// config.example.yaml is written by `checkenv config init` as the starting
// point for a user configuration.
package configs

import "embed"

// DefaultProfile is the profile used when none is configured.
const DefaultProfile = "2019"

// Profiles contains the embedded requirement tables.
//
//go:embed profiles/*.yaml
var Profiles embed.FS

// ConfigTemplate is the commented user configuration template.
//
//go:embed config.example.yaml
var ConfigTemplate string
