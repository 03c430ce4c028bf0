package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty working directory with an empty HOME so
// that no real settings file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoad_FileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merlin.yaml"),
		[]byte("verbose: true\nexcel:\n  sheet_name: Settings\nyaml:\n  indent: 4\n"), 0o644))

	s, err := Load("")
	require.NoError(t, err)
	assert.True(t, s.Verbose)
	assert.Equal(t, "Settings", s.Excel.SheetName)
	assert.Equal(t, 4, s.YAML.Indent)
	assert.Equal(t, 2, s.JSON.Indent, "unset keys keep their default")
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("json:\n  indent: 4\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, s.JSON.Indent)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read settings file")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merlin.yaml"),
		[]byte("excel:\n  sheet_name: FromFile\n"), 0o644))
	t.Setenv("MERLIN_EXCEL_SHEET_NAME", "FromEnv")
	t.Setenv("MERLIN_VERBOSE", "true")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "FromEnv", s.Excel.SheetName)
	assert.True(t, s.Verbose)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr string
	}{
		{name: "defaults", modify: func(*Settings) {}},
		{name: "yaml indent too small", modify: func(s *Settings) { s.YAML.Indent = 1 }, wantErr: "invalid yaml.indent 1"},
		{name: "yaml indent too large", modify: func(s *Settings) { s.YAML.Indent = 10 }, wantErr: "invalid yaml.indent 10"},
		{name: "json indent zero", modify: func(s *Settings) { s.JSON.Indent = 0 }, wantErr: "invalid json.indent 0"},
		{name: "blank sheet name", modify: func(s *Settings) { s.Excel.SheetName = " " }, wantErr: "excel.sheet_name must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			var validationErr *ValidationError
			assert.True(t, errors.As(err, &validationErr))
		})
	}
}

func TestLoad_InvalidValueIsValidationError(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merlin.yaml"), []byte("yaml:\n  indent: 1\n"), 0o644))

	_, err := Load("")
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "yaml.indent", validationErr.Key)
}
