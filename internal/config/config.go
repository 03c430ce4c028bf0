// Package config loads optional merlin settings from a YAML file and the
// environment using github.com/spf13/viper.
//
// Lookup order (later wins): built-in defaults, the settings file, MERLIN_*
// environment variables. The settings file is `merlin.yaml` in the current
// directory or in $HOME/.config/merlin, unless an explicit path is given.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the settings file name searched for without extension.
const FileName = "merlin"

// EnvPrefix is the prefix of environment variables overriding settings,
// e.g. MERLIN_EXCEL_SHEET_NAME.
const EnvPrefix = "MERLIN"

// Settings holds the complete merlin configuration.
type Settings struct {
	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`

	Excel ExcelSettings `mapstructure:"excel"`
	YAML  YAMLSettings  `mapstructure:"yaml"`
	JSON  JSONSettings  `mapstructure:"json"`
}

// ExcelSettings configures the spreadsheet writer.
type ExcelSettings struct {
	SheetName string `mapstructure:"sheet_name"`
}

// YAMLSettings configures the YAML writer.
type YAMLSettings struct {
	Indent int `mapstructure:"indent"`
}

// JSONSettings configures the JSON writer.
type JSONSettings struct {
	Indent int `mapstructure:"indent"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Excel: ExcelSettings{SheetName: "ConfigurationDictionary"},
		YAML:  YAMLSettings{Indent: 2},
		JSON:  JSONSettings{Indent: 2},
	}
}

// Load reads settings. When path is empty the standard locations are
// searched and a missing file is not an error; an explicit path must exist.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/merlin")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ValidationError reports a setting whose value is out of range. It is
// distinct from errors reading the settings file.
type ValidationError struct {
	// Key is the dotted settings key, e.g. "yaml.indent".
	Key string

	// Message is the human-readable error description.
	Message string
}

// Error satisfies the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks value ranges the writers cannot work with.
func (s *Settings) Validate() error {
	if s.YAML.Indent < 2 || s.YAML.Indent > 9 {
		return &ValidationError{Key: "yaml.indent",
			Message: fmt.Sprintf("invalid yaml.indent %d (must be between 2 and 9)", s.YAML.Indent)}
	}
	if s.JSON.Indent < 1 {
		return &ValidationError{Key: "json.indent",
			Message: fmt.Sprintf("invalid json.indent %d (must be positive)", s.JSON.Indent)}
	}
	if strings.TrimSpace(s.Excel.SheetName) == "" {
		return &ValidationError{Key: "excel.sheet_name", Message: "excel.sheet_name must not be empty"}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("excel.sheet_name", defaults.Excel.SheetName)
	v.SetDefault("yaml.indent", defaults.YAML.Indent)
	v.SetDefault("json.indent", defaults.JSON.Indent)
}
