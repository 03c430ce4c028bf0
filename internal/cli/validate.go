package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the "validate" cobra command. It reads a file
// and reports whether it holds a valid configuration dictionary; the exit
// code tells which check failed.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a configuration dictionary is valid",
		Long: `Read a configuration dictionary and report whether it is valid.

Exit codes:
  0  valid
  1  invalid settings or command usage
  2  unknown file extension
  3  malformed YAML, JSON or XML
  4  layout does not follow the configuration format
  5  configuration is inconsistent (duplicates, unknown environments)
  6  file cannot be read

Examples:
  merlin validate config.yml
  merlin validate --json config.xml`,

		// Args validates that exactly one positional argument (the file) is
		// provided.
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0])
		},
	}
}

// validateResult is the JSON output of the validate command.
type validateResult struct {
	// File is the validated path.
	File string `json:"file"`

	// Valid is always true in output; invalid files produce an error and
	// a non-zero exit code instead.
	Valid bool `json:"valid"`

	// Environments is the number of declared environments.
	Environments int `json:"environments"`

	// Parameters is the number of parameters.
	Parameters int `json:"parameters"`
}

// runValidate reads path and reports its size. Any read, format or
// consistency error is returned as is for exit-code mapping.
func runValidate(out io.Writer, path string) error {
	// Step 1: Read the file. A successful read means every check passed.
	cs, err := readConfiguration(path, settings)
	if err != nil {
		return err
	}

	// Step 2: Output results in the appropriate format.
	result := validateResult{
		File:         path,
		Valid:        true,
		Environments: len(cs.Environments()),
		Parameters:   len(cs.Parameters()),
	}
	if IsJSONOutput() {
		return printJSON(out, result)
	}
	_, err = fmt.Fprintf(out, "%s: valid (%d environments, %d parameters)\n",
		result.File, result.Environments, result.Parameters)
	return err
}
