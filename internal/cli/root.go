// Package cli implements the cobra-based CLI commands for merlin.
//
// Each subcommand (convert, validate, list) is defined in its own file
// within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags, settings loading
// and the translation of errors into exit codes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/merlin/internal/config"
	"github.com/shinji-kodama/merlin/internal/model"
	"github.com/shinji-kodama/merlin/internal/source"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose enables debug logging on stderr.
	verbose bool

	// configPath is an explicit settings file; empty means the standard
	// locations are searched.
	configPath string
)

// settings holds the values loaded before any subcommand runs.
var settings = config.Default()

// logger is the CLI's structured logger. It writes to stderr so that
// stdout stays reserved for command output.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "merlin",
	Level:  log.WarnLevel,
})

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action. It provides help
// text, global flags and loads settings for the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "merlin",
		Short: "Environment-aware configuration dictionary converter",
		Long: `merlin converts configuration dictionaries between YAML, JSON and
Excel 2003 XML spreadsheets.

A configuration dictionary lists parameters with a default value and
optional overrides per deployment environment. The file extension
selects the format: .yml/.yaml, .json or .xml.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors lets Execute format errors (text or JSON).
		SilenceErrors: true,

		// Version is displayed when the --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// PersistentPreRunE runs before every subcommand, so settings and the
		// logger are ready when RunE is called.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings(cmd)
		},
	}

	// PersistentFlags are inherited by all subcommands, so --json, --verbose
	// and --config work after any subcommand name as well.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Settings file (default: ./merlin.yaml or $HOME/.config/merlin/merlin.yaml)")

	// Register subcommands. Each subcommand is defined in its own file.
	rootCmd.AddCommand(NewConvertCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewListCommand())

	return rootCmd
}

// loadSettings reads the settings file and environment and configures the
// logger. The --verbose flag wins over the `verbose` setting.
func loadSettings(cmd *cobra.Command) error {
	// Step 1: Load settings. Out-of-range values are usage errors; anything
	// else means the settings file could not be read.
	s, err := config.Load(configPath)
	if err != nil {
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			return model.WrapCLIError(model.ExitGeneralError, "invalid settings", err)
		}
		return model.WrapCLIError(model.ExitFileError, "failed to load settings", err)
	}
	settings = s

	// Step 2: Configure the logger. Log output follows the command's stderr
	// so that tests can capture it.
	logger.SetOutput(cmd.ErrOrStderr())
	if verbose || s.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	logger.Debug("settings loaded",
		"sheet", s.Excel.SheetName, "yamlIndent", s.YAML.Indent, "jsonIndent", s.JSON.Indent)
	return nil
}

// Execute runs the root command and exits the process with the exit code
// matching the outcome. This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	os.Exit(int(execute(rootCmd)))
}

// execute runs rootCmd, prints any error and returns the exit code.
func execute(rootCmd *cobra.Command) model.ExitCode {
	err := rootCmd.Execute()
	if err == nil {
		return model.ExitSuccess
	}

	cliErr := toCLIError(err)
	printError(rootCmd.ErrOrStderr(), cliErr.Message, cliErr.Err)
	return cliErr.Code
}

// toCLIError maps an error returned by a command to its exit code. Errors
// that already carry a code pass through; codec and model errors are
// classified by type; anything else is a general error.
func toCLIError(err error) *model.CLIError {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var readErr *source.ReadError
	if errors.As(err, &readErr) {
		return model.WrapCLIError(model.ExitSourceRead, readErr.Message, readErr.Err)
	}

	var formatErr *source.FormatError
	if errors.As(err, &formatErr) {
		return model.NewCLIError(model.ExitInvalidFormat, formatErr.Message)
	}

	var configErr *model.InvalidConfigurationError
	if errors.As(err, &configErr) {
		return model.NewCLIError(model.ExitInvalidConfiguration, configErr.Message)
	}

	var argErr *model.ArgumentError
	if errors.As(err, &argErr) {
		return model.NewCLIError(model.ExitInvalidConfiguration, argErr.Message)
	}

	return model.NewCLIError(model.ExitGeneralError, err.Error())
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		_, _ = fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		_, _ = fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		_, _ = fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog emits a debug message, visible only when verbose mode is
// enabled.
func VerboseLog(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
