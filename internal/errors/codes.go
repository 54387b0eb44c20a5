// Package errors provides structured error handling for checkenv.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Probe errors (component load, version)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryProbe indicates a component could not be loaded or is too old.
	CategoryProbe Category = "PROBE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound  = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid   = "ERR_102_CONFIG_INVALID"
	ErrCodeUnknownProfile  = "ERR_103_UNKNOWN_PROFILE"
	ErrCodeManifestInvalid = "ERR_104_MANIFEST_INVALID"

	// Probe errors (200-299)
	ErrCodeComponentUnavailable = "ERR_201_COMPONENT_UNAVAILABLE"
	ErrCodeVersionTooOld        = "ERR_202_VERSION_TOO_OLD"
	ErrCodeInterpreterNotFound  = "ERR_203_INTERPRETER_NOT_FOUND"

	// Validation errors (400-499)
	ErrCodeInvalidInput       = "ERR_401_INVALID_INPUT"
	ErrCodeDuplicateComponent = "ERR_402_DUPLICATE_COMPONENT"
	ErrCodeInvalidVersion     = "ERR_403_INVALID_VERSION"

	// Internal errors (500-599)
	ErrCodeUnexpectedHostFailure = "ERR_501_UNEXPECTED_HOST_FAILURE"
	ErrCodeInternal              = "ERR_502_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "101" from "ERR_101_CONFIG_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryProbe
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Probe failures are recorded per component and never stop a run.
func severityFromCode(code string) Severity {
	if code == ErrCodeUnexpectedHostFailure {
		return SeverityError
	}
	if categoryFromCode(code) == CategoryProbe {
		return SeverityError
	}
	return SeverityFatal
}
