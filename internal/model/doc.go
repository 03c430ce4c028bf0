// Package model defines the domain types and value objects for the
// merlin configuration converter.
//
// This package contains pure data structures with no external dependencies.
// A ConfigurationSet is the aggregate root: an ordered list of environments
// and an ordered list of parameters, each parameter holding a default value
// and optional per-environment overrides. Instances are validated eagerly on
// construction and never mutated afterwards.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
