package config

import (
	"errors"
	"fmt"
)

// Sentinels wrapped by the errors below. Match them with errors.Is.
var (
	ErrInvalidYAML          = errors.New("invalid YAML syntax")
	ErrValidationFailed     = errors.New("configuration validation failed")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidValue         = errors.New("invalid field value")
	ErrInvalidReference     = errors.New("invalid configuration reference")

	// Registry lookups.
	ErrAgentNotFound     = errors.New("agent not found")
	ErrMCPServerNotFound = errors.New("MCP server not found")
)

// FieldError reports a rejected setting by its key path in scout.yaml,
// e.g. "agents.search.max_iterations".
type FieldError struct {
	Key string
	Err error
}

func fieldError(key string, err error) *FieldError {
	return &FieldError{Key: key, Err: err}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FileError is a failure to read or parse a configuration file.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
