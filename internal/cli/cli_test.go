package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/merlin/internal/config"
	"github.com/shinji-kodama/merlin/internal/model"
	"github.com/shinji-kodama/merlin/internal/source"
	"github.com/shinji-kodama/merlin/internal/source/excelsource"
	"github.com/shinji-kodama/merlin/internal/source/jsonsource"
	"github.com/shinji-kodama/merlin/internal/source/yamlsource"
)

// runCLI executes the root command with args and returns the exit code and
// the captured output. HOME points to an empty directory so that no user
// settings file is picked up.
func runCLI(t *testing.T, args ...string) (model.ExitCode, string, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	code := execute(root)
	return code, stdout.String(), stderr.String()
}

// assertSameEffectiveValues compares two sets by what they resolve to:
// environments, parameter names, descriptions, defaults and the value
// applying in every environment.
func assertSameEffectiveValues(t *testing.T, want, got *model.ConfigurationSet) {
	t.Helper()
	require.Equal(t, want.Environments(), got.Environments())
	require.Len(t, got.Parameters(), len(want.Parameters()))
	for i, wp := range want.Parameters() {
		gp := got.Parameters()[i]
		assert.Equal(t, wp.Name(), gp.Name())
		assert.Equal(t, wp.Description(), gp.Description(), wp.Name())
		assert.Equal(t, wp.DefaultValue(), gp.DefaultValue(), wp.Name())
		for _, env := range want.Environments() {
			assert.Equal(t, wp.EffectiveValue(env), gp.EffectiveValue(env), "%s/%s", wp.Name(), env)
		}
	}
}

func mustRead(t *testing.T, path string) *model.ConfigurationSet {
	t.Helper()
	cs, err := readConfiguration(path, config.Default())
	require.NoError(t, err)
	return cs
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		path string
		want interface{}
	}{
		{path: "config.yml", want: &yamlsource.Driver{}},
		{path: "config.yaml", want: &yamlsource.Driver{}},
		{path: "dir/Config.YML", want: &yamlsource.Driver{}},
		{path: "config.xml", want: &excelsource.Driver{}},
		{path: "config.json", want: &jsonsource.Driver{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d, err := driverFor(tt.path, config.Default())
			require.NoError(t, err)
			assert.IsType(t, tt.want, d)
		})
	}

	for _, path := range []string{"config.txt", "config", "config.xlsx", "config.yml.bak"} {
		t.Run(path, func(t *testing.T) {
			_, err := driverFor(path, config.Default())
			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr))
			assert.Equal(t, model.ExitUnknownFormat, cliErr.Code)
			assert.Equal(t, "Unknown file extension. Cannot create a source driver.", cliErr.Message)
		})
	}
}

// TestToCLIError verifies that each error family maps to its exit code.
func TestToCLIError(t *testing.T) {
	cause := errors.New("line 3: did not find expected node content")
	tests := []struct {
		name     string
		err      error
		wantCode model.ExitCode
		wantMsg  string
	}{
		{
			name:     "CLI error passes through",
			err:      model.NewCLIError(model.ExitFileError, "failed to open config.yml"),
			wantCode: model.ExitFileError,
			wantMsg:  "failed to open config.yml",
		},
		{
			name:     "read error",
			err:      &source.ReadError{Message: "Invalid YAML syntax in configuration source provided.", Err: cause},
			wantCode: model.ExitSourceRead,
			wantMsg:  "Invalid YAML syntax in configuration source provided.",
		},
		{
			name:     "format error",
			err:      source.NewFormatError(source.FormatExcel, "A1 cell should be `Name`"),
			wantCode: model.ExitInvalidFormat,
			wantMsg:  "A1 cell should be `Name`",
		},
		{
			name:     "invalid configuration",
			err:      &model.InvalidConfigurationError{Message: "Parameter `a` cannot occur multiple times."},
			wantCode: model.ExitInvalidConfiguration,
			wantMsg:  "Parameter `a` cannot occur multiple times.",
		},
		{
			name:     "argument error",
			err:      &model.ArgumentError{Argument: "name", Message: "Parameter name must not be empty."},
			wantCode: model.ExitInvalidConfiguration,
			wantMsg:  "Parameter name must not be empty.",
		},
		{
			name:     "generic error",
			err:      errors.New("boom"),
			wantCode: model.ExitGeneralError,
			wantMsg:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cliErr := toCLIError(tt.err)
			assert.Equal(t, tt.wantCode, cliErr.Code)
			assert.Equal(t, tt.wantMsg, cliErr.Message)
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "15", FormatValue("15"))
	assert.Equal(t, " ", FormatValue(" "))
	assert.Equal(t, "-", FormatValue(""))
}

func TestFixturesAreEquivalent(t *testing.T) {
	want := mustRead(t, "testdata/config.yml")
	assertSameEffectiveValues(t, want, mustRead(t, "testdata/config.json"))
	assertSameEffectiveValues(t, want, mustRead(t, "testdata/config.xml"))
}

// TestConvert_RoundTripThroughSpreadsheet converts YAML to a spreadsheet
// and back, and checks that every effective value survives.
func TestConvert_RoundTripThroughSpreadsheet(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "nested", "config.xml")
	backPath := filepath.Join(dir, "back.yml")

	code, stdout, stderr := runCLI(t, "convert", "--from", "testdata/config.yml", "--to", xmlPath)
	require.Equal(t, model.ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Converted testdata/config.yml to "+xmlPath+" (2 environments, 3 parameters)")

	code, _, stderr = runCLI(t, "convert", "-f", xmlPath, "-t", backPath)
	require.Equal(t, model.ExitSuccess, code, stderr)

	assertSameEffectiveValues(t, mustRead(t, "testdata/config.yml"), mustRead(t, backPath))
}

func TestConvert_ToJSONWithJSONOutput(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.json")

	code, stdout, stderr := runCLI(t, "--json", "convert", "--from", "testdata/config.xml", "--to", target)
	require.Equal(t, model.ExitSuccess, code, stderr)

	var result convertResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, convertResult{
		Source:       "testdata/config.xml",
		Target:       target,
		Environments: 2,
		Parameters:   3,
	}, result)

	assertSameEffectiveValues(t, mustRead(t, "testdata/config.yml"), mustRead(t, target))
}

// TestConvert_Errors checks exit codes and that the target is never
// created when conversion fails.
func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name       string
		from       string
		to         string
		wantCode   model.ExitCode
		wantStderr string
	}{
		{
			name:       "unknown target extension",
			from:       "testdata/config.yml",
			to:         "config.txt",
			wantCode:   model.ExitUnknownFormat,
			wantStderr: "Unknown file extension. Cannot create a source driver.",
		},
		{
			name:       "unknown source extension",
			from:       "testdata/config.txt",
			to:         "config.xml",
			wantCode:   model.ExitUnknownFormat,
			wantStderr: "Unknown file extension. Cannot create a source driver.",
		},
		{
			name:       "malformed source",
			from:       "testdata/broken.yml",
			to:         "config.xml",
			wantCode:   model.ExitSourceRead,
			wantStderr: "Invalid YAML syntax in configuration source provided.",
		},
		{
			name:       "unknown section",
			from:       "testdata/unknown-section.yml",
			to:         "config.xml",
			wantCode:   model.ExitInvalidFormat,
			wantStderr: "Unknown section `settings`.",
		},
		{
			name:       "unknown environment",
			from:       "testdata/unknown-environment.yml",
			to:         "config.xml",
			wantCode:   model.ExitInvalidConfiguration,
			wantStderr: "Unknown environment `Prod` for which parameter `callTimeoutSeconds` is configured.",
		},
		{
			name:       "missing source",
			from:       "testdata/missing.yml",
			to:         "config.xml",
			wantCode:   model.ExitFileError,
			wantStderr: "failed to open testdata/missing.yml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), tt.to)

			code, stdout, stderr := runCLI(t, "convert", "--from", tt.from, "--to", target)
			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error: "+tt.wantStderr)

			_, err := os.Stat(target)
			assert.True(t, os.IsNotExist(err), "target must not be created")
		})
	}
}

func TestConvert_RequiresFlags(t *testing.T) {
	code, _, stderr := runCLI(t, "convert", "--from", "testdata/config.yml")
	assert.Equal(t, model.ExitGeneralError, code)
	assert.Contains(t, stderr, "to")
}

func TestConvert_SettingsFile(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "merlin.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("excel:\n  sheet_name: Dictionary\n"), 0o644))
	target := filepath.Join(dir, "config.xml")

	code, _, stderr := runCLI(t, "--config", settingsPath, "convert", "-f", "testdata/config.yml", "-t", target)
	require.Equal(t, model.ExitSuccess, code, stderr)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<Worksheet ss:Name="Dictionary">`)
}

func TestConvert_MissingSettingsFile(t *testing.T) {
	code, _, stderr := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"validate", "testdata/config.yml")
	assert.Equal(t, model.ExitFileError, code)
	assert.Contains(t, stderr, "failed to load settings")
}

func TestValidate(t *testing.T) {
	for _, path := range []string{"testdata/config.yml", "testdata/config.json", "testdata/config.xml"} {
		t.Run(path, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, "validate", path)
			require.Equal(t, model.ExitSuccess, code, stderr)
			assert.Equal(t, path+": valid (2 environments, 3 parameters)\n", stdout)
		})
	}
}

func TestValidate_JSONOutput(t *testing.T) {
	code, stdout, _ := runCLI(t, "validate", "--json", "testdata/empty.yml")
	require.Equal(t, model.ExitSuccess, code)

	var result validateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, validateResult{File: "testdata/empty.yml", Valid: true, Environments: 1}, result)
}

func TestValidate_JSONError(t *testing.T) {
	code, _, stderr := runCLI(t, "--json", "validate", "testdata/broken.yml")
	assert.Equal(t, model.ExitSourceRead, code)

	var out struct {
		Error struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stderr), &out))
	assert.Equal(t, "Invalid YAML syntax in configuration source provided.", out.Error.Message)
	assert.NotEmpty(t, out.Error.Detail)
}

func TestValidate_VerboseLogsToStderr(t *testing.T) {
	code, stdout, stderr := runCLI(t, "validate", "-v", "testdata/config.yml")
	require.Equal(t, model.ExitSuccess, code)
	assert.Contains(t, stderr, "reading configuration")
	assert.NotContains(t, stdout, "reading configuration")
}

func TestList_Text(t *testing.T) {
	code, stdout, stderr := runCLI(t, "list", "testdata/config.yml")
	require.Equal(t, model.ExitSuccess, code, stderr)

	for _, want := range []string{"NAME", "DESCRIPTION", "DEFAULT", "Local", "Test",
		"maxThreads", "Max number of threads", "importLocation", "//share/imports/", "callTimeoutSeconds", "30"} {
		assert.Contains(t, stdout, want)
	}
}

func TestList_TextEmpty(t *testing.T) {
	code, stdout, _ := runCLI(t, "list", "testdata/empty.yml")
	require.Equal(t, model.ExitSuccess, code)
	assert.Equal(t, "No parameters found.\n", stdout)
}

func TestList_JSONWithEnvironmentFilter(t *testing.T) {
	code, stdout, stderr := runCLI(t, "list", "--json", "--environment", "Test", "testdata/config.xml")
	require.Equal(t, model.ExitSuccess, code, stderr)

	var result struct {
		Environments []string            `json:"environments"`
		Parameters   []listParameterJSON `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))

	assert.Equal(t, []string{"Test"}, result.Environments)
	assert.Equal(t, []listParameterJSON{
		{Name: "maxThreads", Description: "Max number of threads", Default: "5", Values: map[string]string{"Test": "5"}},
		{Name: "importLocation", Default: "//share/imports/", Values: map[string]string{"Test": "//share/imports/"}},
		{Name: "callTimeoutSeconds", Default: "", Values: map[string]string{"Test": "10"}},
	}, result.Parameters)
}

func TestList_UndeclaredEnvironmentFilter(t *testing.T) {
	code, _, stderr := runCLI(t, "list", "-e", "Prod", "testdata/config.yml")
	assert.Equal(t, model.ExitGeneralError, code)
	assert.Contains(t, stderr, "environment `Prod` is not declared in the configuration")
}

// TestSettingsErrors separates unreadable settings files from settings with
// out-of-range values.
func TestSettingsErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("yaml:\n  indent: 1\n"), 0o644))

	tests := []struct {
		name       string
		path       string
		wantCode   model.ExitCode
		wantStderr string
	}{
		{
			name:       "value out of range",
			path:       invalid,
			wantCode:   model.ExitGeneralError,
			wantStderr: "Error: invalid settings: invalid yaml.indent 1",
		},
		{
			name:       "missing file",
			path:       filepath.Join(dir, "missing.yaml"),
			wantCode:   model.ExitFileError,
			wantStderr: "Error: failed to load settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "--config", tt.path, "validate", "testdata/config.yml")
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

// TestList_EnvironmentNameWithComma verifies that --environment values are
// taken verbatim and not split on commas.
func TestList_EnvironmentNameWithComma(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yml")
	require.NoError(t, os.WriteFile(path, []byte(`environments:
  - EU,West
  - US
parameters:
  - region:
      value:
        - EU,West: eu-west-1
        - default: us-east-1
`), 0o644))

	code, stdout, stderr := runCLI(t, "list", "--json", "-e", "EU,West", path)
	require.Equal(t, model.ExitSuccess, code, stderr)

	var result struct {
		Environments []string            `json:"environments"`
		Parameters   []listParameterJSON `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, []string{"EU,West"}, result.Environments)
	require.Len(t, result.Parameters, 1)
	assert.Equal(t, map[string]string{"EU,West": "eu-west-1"}, result.Parameters[0].Values)

	code, stdout, stderr = runCLI(t, "list", "--json", "-e", "EU,West", "-e", "US", path)
	require.Equal(t, model.ExitSuccess, code, stderr)
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, []string{"EU,West", "US"}, result.Environments)
}
