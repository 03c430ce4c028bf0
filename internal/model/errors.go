package model

import "fmt"

// ArgumentError reports invalid constructor input, such as an empty
// parameter name. It is not recoverable.
type ArgumentError struct {
	// Argument is the name of the offending constructor argument.
	Argument string

	// Message is the human-readable error description.
	Message string
}

// Error satisfies the error interface.
func (e *ArgumentError) Error() string {
	return e.Message
}

// InvalidConfigurationError is returned when assembling a ConfigurationSet
// violates one of its invariants. The message names the offending
// environment or parameter and is a stable, user-facing contract.
type InvalidConfigurationError struct {
	Message string
}

// Error satisfies the error interface.
func (e *InvalidConfigurationError) Error() string {
	return e.Message
}

// ExitCode defines standard CLI exit codes.
// These codes allow scripts and CI systems to programmatically determine
// the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitUnknownFormat indicates no source driver handles the file extension.
	ExitUnknownFormat ExitCode = 2

	// ExitSourceRead indicates the source is not valid in its base syntax
	// (malformed YAML, XML or JSON).
	ExitSourceRead ExitCode = 3

	// ExitInvalidFormat indicates the source is well-formed but does not
	// follow the expected configuration layout.
	ExitInvalidFormat ExitCode = 4

	// ExitInvalidConfiguration indicates the configuration breaks a domain
	// invariant (duplicates, unknown environments, missing values).
	ExitInvalidConfiguration ExitCode = 5

	// ExitFileError indicates a source or target file could not be accessed.
	ExitFileError ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
