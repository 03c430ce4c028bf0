// convert.go implements the "merlin convert" command.
//
// Orchestration steps:
//  1. Select the source and target drivers from the file extensions
//  2. Read the source into a ConfigurationSet
//  3. Serialize it into memory with the target driver
//  4. Write the target file (created with its parent directories)
//
// The target file is only touched once serialization succeeded.

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/merlin/internal/model"
)

// convertFlags holds the flag values for the convert command.
type convertFlags struct {
	from string // --from: source file
	to   string // --to: target file
}

// NewConvertCommand creates the "convert" cobra command.
func NewConvertCommand() *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert --from <source> --to <target>",
		Short: "Convert a configuration dictionary to another format",
		Long: `Convert a configuration dictionary between formats.

The format of each file is selected by its extension:
  .yml, .yaml   YAML
  .json         JSON (comments allowed on read)
  .xml          Excel 2003 XML spreadsheet

Examples:
  merlin convert --from config.yml --to config.xml
  merlin convert -f config.xml -t config.yml`,

		// Source and target are flags, not positional arguments.
		Args: cobra.NoArgs,

		// RunE returns an error to the root command's error handler, which
		// maps it to an exit code.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.OutOrStdout(), flags)
		},
	}

	// Register command-specific flags. Both are mandatory; cobra reports a
	// missing one before RunE is called.
	cmd.Flags().StringVarP(&flags.from, "from", "f", "", "Source file")
	cmd.Flags().StringVarP(&flags.to, "to", "t", "", "Target file")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// convertResult summarizes a finished conversion. It is the JSON output of
// the command.
type convertResult struct {
	// Source is the path the configuration was read from.
	Source string `json:"source"`

	// Target is the path the configuration was written to.
	Target string `json:"target"`

	// Environments is the number of declared environments.
	Environments int `json:"environments"`

	// Parameters is the number of converted parameters.
	Parameters int `json:"parameters"`
}

// runConvert is the main orchestration function for the convert command.
func runConvert(out io.Writer, flags *convertFlags) error {
	// Step 1: Resolve the target driver first so an unsupported target fails
	// before any file is read.
	target, err := driverFor(flags.to, settings)
	if err != nil {
		return err
	}

	// Step 2: Read the source. The source driver is selected by extension
	// inside readConfiguration.
	cs, err := readConfiguration(flags.from, settings)
	if err != nil {
		return err
	}

	// Step 3: Serialize into memory. The target file is not touched when
	// this fails.
	var buf bytes.Buffer
	if err := target.Write(&buf, cs); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to serialize configuration", err)
	}
	VerboseLog("Serialized %d bytes for %s", buf.Len(), flags.to)

	// Step 4: Create missing parent directories and write the target file.
	if dir := filepath.Dir(flags.to); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return model.WrapCLIError(model.ExitFileError, fmt.Sprintf("failed to create directory %s", dir), err)
		}
	}
	if err := os.WriteFile(flags.to, buf.Bytes(), 0o644); err != nil {
		return model.WrapCLIError(model.ExitFileError, fmt.Sprintf("failed to write %s", flags.to), err)
	}

	// Step 5: Output results in the appropriate format.
	result := convertResult{
		Source:       flags.from,
		Target:       flags.to,
		Environments: len(cs.Environments()),
		Parameters:   len(cs.Parameters()),
	}
	if IsJSONOutput() {
		return printJSON(out, result)
	}
	_, err = fmt.Fprintf(out, "Converted %s to %s (%d environments, %d parameters)\n",
		result.Source, result.Target, result.Environments, result.Parameters)
	return err
}
