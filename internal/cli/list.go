// list.go implements the "merlin list" command.
//
// The list command reads a configuration dictionary and shows every
// parameter with its effective value per environment, as a text table or a
// JSON document depending on the --json flag.
//
// An optional --environment flag restricts the environment columns.

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/merlin/internal/model"
)

// listFlags holds the flag values for the list command.
type listFlags struct {
	// environments restricts the output to the named environments.
	// Empty means all declared environments in configured order.
	environments []string
}

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List parameters with their value per environment",
		Long: `List the parameters of a configuration dictionary.

Each parameter is shown with its description, its default value and the
value that applies in every environment. Unknown values are shown as "-".

Examples:
  merlin list config.yml
  merlin list --environment Test config.xml
  merlin list --json config.json`,

		// Args validates that exactly one positional argument (the file) is
		// provided.
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout(), args[0], flags)
		},
	}

	// Register the --environment flag. StringArray keeps each value intact,
	// so environment names containing commas can be selected.
	cmd.Flags().StringArrayVarP(&flags.environments, "environment", "e", nil,
		"Only show the given environment (repeatable)")

	return cmd
}

// runList is the main logic function for the list command.
func runList(out io.Writer, path string, flags *listFlags) error {
	// Step 1: Read the configuration dictionary.
	cs, err := readConfiguration(path, settings)
	if err != nil {
		return err
	}

	// Step 2: Apply the --environment filter. Undeclared names are errors
	// rather than empty columns.
	envs, err := selectEnvironments(cs, flags.environments)
	if err != nil {
		return err
	}
	VerboseLog("Listing %d parameters for %d environments", len(cs.Parameters()), len(envs))

	// Step 3: Output results in the appropriate format.
	if IsJSONOutput() {
		return printListResultJSON(out, cs, envs)
	}
	return printListResultText(out, cs, envs)
}

// selectEnvironments resolves the --environment filter against the
// declared environments.
func selectEnvironments(cs *model.ConfigurationSet, names []string) ([]model.Environment, error) {
	if len(names) == 0 {
		return cs.Environments(), nil
	}

	envs := make([]model.Environment, 0, len(names))
	for _, name := range names {
		env := model.NewEnvironment(name)
		if !cs.HasEnvironment(env) {
			return nil, model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("environment `%s` is not declared in the configuration", name))
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// listParameterJSON is the JSON output structure for a single parameter.
type listParameterJSON struct {
	// Name is the parameter name.
	Name string `json:"name"`

	// Description is omitted when the parameter has none.
	Description string `json:"description,omitempty"`

	// Default is the default value; empty means no default.
	Default string `json:"default"`

	// Values maps each listed environment to its effective value.
	Values map[string]string `json:"values"`
}

// printListResultJSON outputs the parameters as structured JSON. Values
// hold the effective value per listed environment.
func printListResultJSON(out io.Writer, cs *model.ConfigurationSet, envs []model.Environment) error {
	type resultJSON struct {
		Environments []string            `json:"environments"`
		Parameters   []listParameterJSON `json:"parameters"`
	}

	result := resultJSON{
		// Empty slices instead of nil so that JSON shows [] instead of null.
		Environments: make([]string, 0, len(envs)),
		Parameters:   make([]listParameterJSON, 0, len(cs.Parameters())),
	}
	for _, env := range envs {
		result.Environments = append(result.Environments, env.Name())
	}

	for _, p := range cs.Parameters() {
		entry := listParameterJSON{
			Name:        p.Name(),
			Description: p.Description(),
			Default:     p.DefaultValue(),
			Values:      make(map[string]string, len(envs)),
		}
		for _, env := range envs {
			entry.Values[env.Name()] = p.EffectiveValue(env)
		}
		result.Parameters = append(result.Parameters, entry)
	}

	return printJSON(out, result)
}

// printListResultText outputs the parameters as a table:
//
//	┌────────────┬───────────────┬─────────┬───────┬──────┐
//	│NAME        │DESCRIPTION    │DEFAULT  │Local  │Test  │
//	├────────────┼───────────────┼─────────┼───────┼──────┤
//	│maxThreads  │Max threads    │5        │15     │5     │
//	└────────────┴───────────────┴─────────┴───────┴──────┘
func printListResultText(out io.Writer, cs *model.ConfigurationSet, envs []model.Environment) error {
	params := cs.Parameters()
	if len(params) == 0 {
		_, err := fmt.Fprintln(out, "No parameters found.")
		return err
	}

	headers := []string{"NAME", "DESCRIPTION", "DEFAULT"}
	for _, env := range envs {
		headers = append(headers, env.Name())
	}

	rows := make([][]string, 0, len(params))
	for _, p := range params {
		row := []string{p.Name(), FormatValue(p.Description()), FormatValue(p.DefaultValue())}
		for _, env := range envs {
			row = append(row, FormatValue(p.EffectiveValue(env)))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().PaddingRight(1)
		})

	_, err := fmt.Fprintln(out, t.Render())
	return err
}

// FormatValue returns the display text for a value. Unknown values are
// shown as "-".
//
// Example:
//
//	"15" → "15"
//	""   → "-"
func FormatValue(value string) string {
	if model.IsValueUnknown(value) {
		return "-"
	}
	return value
}
