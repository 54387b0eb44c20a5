// Package mcp exposes the environment check as a Model Context Protocol
// server over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	cerrors "github.com/Aman-CERP/checkenv/internal/errors"
	"github.com/Aman-CERP/checkenv/internal/probe"
)

// Custom MCP error codes for checkenv.
const (
	// ErrCodeConfigInvalid indicates the profile or requirement list is unusable.
	ErrCodeConfigInvalid = -32001

	// ErrCodeInterpreterNotFound indicates no Python interpreter could be found.
	ErrCodeInterpreterNotFound = -32002

	// ErrCodeCanceled indicates the request was canceled or timed out.
	ErrCodeCanceled = -32003

	// ErrCodeResourceNotFound indicates an unknown resource URI.
	ErrCodeResourceNotFound = -32004

	// Standard JSON-RPC error codes.
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var ce *cerrors.CheckError
	if errors.As(err, &ce) {
		return mapCheckError(ce)
	}

	switch {
	case errors.Is(err, probe.ErrInterpreterNotFound):
		return &MCPError{Code: ErrCodeInterpreterNotFound, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeCanceled, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeCanceled, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

// mapCheckError converts a CheckError to an MCPError, keeping the
// suggestion so the client can relay it.
func mapCheckError(ce *cerrors.CheckError) *MCPError {
	message := ce.Message
	if ce.Suggestion != "" {
		message = fmt.Sprintf("%s (%s)", ce.Message, ce.Suggestion)
	}

	switch ce.Category {
	case cerrors.CategoryConfig:
		return &MCPError{Code: ErrCodeConfigInvalid, Message: message}
	case cerrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case cerrors.CategoryProbe:
		if ce.Code == cerrors.ErrCodeInterpreterNotFound {
			return &MCPError{Code: ErrCodeInterpreterNotFound, Message: message}
		}
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
