package mcp

// CheckInput defines the input schema for the check_environment tool.
type CheckInput struct {
	Profile      string             `json:"profile,omitempty" jsonschema:"embedded requirement table to check, e.g. 2019; defaults to the configured profile"`
	Requirements []RequirementInput `json:"requirements,omitempty" jsonschema:"explicit requirements; when set they replace the profile table"`
	Scheme       string             `json:"scheme,omitempty" jsonschema:"version ordering: loose or semver"`
}

// RequirementInput is one requirement supplied by the client.
type RequirementInput struct {
	Name        string `json:"name" jsonschema:"component name as imported, e.g. numpy"`
	MinVersion  string `json:"min_version,omitempty" jsonschema:"oldest acceptable version; empty accepts any"`
	VersionAttr string `json:"version_attr,omitempty" jsonschema:"attribute holding the version when it is not __version__"`
	NoVersion   bool   `json:"no_version,omitempty" jsonschema:"the component reports no version"`
}

// CheckOutput defines the output schema for the check_environment tool.
type CheckOutput struct {
	Profile      string         `json:"profile,omitempty" jsonschema:"profile that was checked, empty for explicit requirements"`
	Interpreter  string         `json:"interpreter" jsonschema:"Python interpreter used to import components"`
	AllSatisfied bool           `json:"all_satisfied" jsonschema:"true when every component is available at an acceptable version"`
	Results      []ResultOutput `json:"results" jsonschema:"one entry per component, in check order"`
	Report       string         `json:"report" jsonschema:"the report exactly as the command line prints it"`
}

// ResultOutput is the outcome for one component.
type ResultOutput struct {
	Name      string `json:"name"`
	Outcome   string `json:"outcome" jsonschema:"available, too_old or unavailable"`
	Installed string `json:"installed,omitempty"`
	Minimum   string `json:"minimum,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Line      string `json:"line" jsonschema:"the report line for this component"`
}

// ListRequirementsInput defines the input schema for the list_requirements tool.
type ListRequirementsInput struct {
	Profile string `json:"profile,omitempty" jsonschema:"embedded requirement table; defaults to the configured profile"`
}

// ListRequirementsOutput defines the output schema for the list_requirements tool.
type ListRequirementsOutput struct {
	Profile      string              `json:"profile,omitempty" jsonschema:"profile listed, empty for configured requirements"`
	Description  string              `json:"description,omitempty"`
	Profiles     []string            `json:"profiles" jsonschema:"every embedded profile name"`
	Requirements []RequirementOutput `json:"requirements"`
}

// RequirementOutput describes one requirement on this platform.
type RequirementOutput struct {
	Name       string `json:"name"`
	MinVersion string `json:"min_version,omitempty"`
	Version    string `json:"version" jsonschema:"how the installed version is read"`
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

const (
	toolCheckEnvironment = "check_environment"
	toolListRequirements = "list_requirements"

	checkEnvironmentDescription = "Check that the Python packages the workshop tutorials need are installed at or above their minimum versions. Returns one result per package and whether the environment is ready."
	listRequirementsDescription = "List the packages and minimum versions a check would use on this platform (the configured table, or the named profile), without importing anything."
)
