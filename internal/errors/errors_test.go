package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("exec: \"python3\": executable file not found in $PATH")

	// When: wrapping with CheckError
	checkErr := New(ErrCodeInterpreterNotFound, "python interpreter not found", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, checkErr)
	assert.Equal(t, originalErr, errors.Unwrap(checkErr))
	assert.True(t, errors.Is(checkErr, originalErr))
}

func TestCheckError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "probe error",
			code:     ErrCodeComponentUnavailable,
			message:  "No module named 'numpy'",
			expected: "[ERR_201_COMPONENT_UNAVAILABLE] No module named 'numpy'",
		},
		{
			name:     "validation error",
			code:     ErrCodeDuplicateComponent,
			message:  "numpy listed twice",
			expected: "[ERR_402_DUPLICATE_COMPONENT] numpy listed twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestCheckError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeVersionTooOld, "numpy too old", nil)
	err2 := New(ErrCodeVersionTooOld, "scipy too old", nil)

	assert.True(t, errors.Is(err1, err2))
}

func TestCheckError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeVersionTooOld, "numpy too old", nil)
	err2 := New(ErrCodeComponentUnavailable, "numpy missing", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestCheckError_WithDetail_AddsContext(t *testing.T) {
	// Given: a base error
	err := New(ErrCodeVersionTooOld, "numpy too old", nil)

	// When: adding details
	err = err.WithDetail("installed", "1.24").WithDetail("minimum", "1.26")

	// Then: details are available
	assert.Equal(t, "1.24", err.Details["installed"])
	assert.Equal(t, "1.26", err.Details["minimum"])
}

func TestCheckError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeUnknownProfile, CategoryConfig},
		{ErrCodeComponentUnavailable, CategoryProbe},
		{ErrCodeVersionTooOld, CategoryProbe},
		{ErrCodeInterpreterNotFound, CategoryProbe},
		{ErrCodeDuplicateComponent, CategoryValidation},
		{ErrCodeInvalidVersion, CategoryValidation},
		{ErrCodeUnexpectedHostFailure, CategoryInternal},
		{ErrCodeInternal, CategoryInternal},
		{"BAD", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestCheckError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeConfigInvalid, SeverityFatal},
		{ErrCodeDuplicateComponent, SeverityFatal},
		{ErrCodeComponentUnavailable, SeverityError},
		{ErrCodeVersionTooOld, SeverityError},
		{ErrCodeUnexpectedHostFailure, SeverityError},
		{ErrCodeInternal, SeverityFatal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWrap_CreatesCheckErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	checkErr := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, checkErr)
	assert.Equal(t, ErrCodeInternal, checkErr.Code)
	assert.Equal(t, "something went wrong", checkErr.Message)
	assert.Equal(t, originalErr, checkErr.Cause)
}

func TestConstructors_SetCategory(t *testing.T) {
	assert.Equal(t, CategoryConfig, ConfigError("bad yaml", nil).Category)
	assert.Equal(t, CategoryValidation, ValidationError("bad input", nil).Category)
	assert.Equal(t, CategoryInternal, InternalError("boom", nil).Category)
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.True(t, IsFatal(ConfigError("bad yaml", nil)))
	assert.False(t, IsFatal(New(ErrCodeComponentUnavailable, "missing", nil)))
}

func TestGetCodeAndCategory(t *testing.T) {
	err := New(ErrCodeVersionTooOld, "too old", nil)

	assert.Equal(t, ErrCodeVersionTooOld, GetCode(err))
	assert.Equal(t, CategoryProbe, GetCategory(err))
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.Empty(t, GetCategory(errors.New("plain")))
}
