package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/checkenv/internal/config"
	"github.com/Aman-CERP/checkenv/internal/output"
	"github.com/Aman-CERP/checkenv/internal/preflight"
)

// requirementJSON is one row of the --json listing.
type requirementJSON struct {
	Name       string `json:"name"`
	MinVersion string `json:"min_version,omitempty"`
	Version    string `json:"version"`
}

type requirementsJSON struct {
	Profile      string            `json:"profile,omitempty"`
	Platform     string            `json:"platform"`
	Requirements []requirementJSON `json:"requirements"`
}

func newRequirementsCmd() *cobra.Command {
	var (
		profile          string
		requirementsFile string
		jsonOutput       bool
		listProfiles     bool
	)

	cmd := &cobra.Command{
		Use:     "requirements",
		Aliases: []string{"reqs"},
		Short:   "List the packages that would be checked",
		Long: `List the packages and minimum versions that a check would use on
this platform, without importing anything.`,
		Example: `  # Show the active requirements
  checkenv requirements

  # Show the first workshop's table as JSON
  checkenv requirements --profile 2017 --json

  # List the built-in profiles
  checkenv requirements --profiles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listProfiles {
				for _, name := range config.ProfileNames() {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			return runRequirements(cmd, profile, requirementsFile, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Requirement profile to list")
	cmd.Flags().StringVar(&requirementsFile, "requirements", "", "Read requirements from a YAML file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&listProfiles, "profiles", false, "List the built-in profile names")
	cmd.MarkFlagsMutuallyExclusive("profile", "requirements")

	return cmd
}

func runRequirements(cmd *cobra.Command, profile, requirementsFile string, jsonOutput bool) error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}
	opts := &checkOptions{profile: profile, requirementsFile: requirementsFile}
	opts.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	set, label, err := opts.requirementSet(cfg)
	if err != nil {
		return err
	}
	strategies := preflight.DefaultStrategies().WithOverrides(set)

	rows := make([]requirementJSON, 0, set.Len())
	for _, r := range set.Requirements() {
		rows = append(rows, requirementJSON{
			Name:       r.Name,
			MinVersion: r.MinVersion,
			Version:    strategies.Lookup(r.Name).String(),
		})
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(requirementsJSON{
			Profile:      label,
			Platform:     runtime.GOOS,
			Requirements: rows,
		})
	}

	out := output.New(cmd.OutOrStdout())
	if label != "" {
		out.Line(fmt.Sprintf("Profile: %s (%s)", label, runtime.GOOS))
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		minimum := r.MinVersion
		if minimum == "" {
			minimum = "any"
		}
		table = append(table, []string{r.Name, minimum, r.Version})
	}
	out.Table([]string{"Package", "Minimum", "Version"}, table)
	return nil
}
