package yamlsource

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/merlin/internal/model"
	"github.com/shinji-kodama/merlin/internal/source"
)

// DefaultIndent is the number of spaces used per nesting level on write.
const DefaultIndent = 2

// Driver retrieves and stores configuration sets from and to YAML streams.
// The zero value is not usable; create drivers with NewDriver.
type Driver struct {
	indent int
}

// Option customizes a Driver.
type Option func(*Driver)

// WithIndent sets the indentation width used by Write. Values below 2 are
// ignored because yaml.v3 does not support them.
func WithIndent(spaces int) Option {
	return func(d *Driver) {
		if spaces >= 2 {
			d.indent = spaces
		}
	}
}

// NewDriver creates a YAML driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{indent: DefaultIndent}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ source.Driver = (*Driver)(nil)

// Read parses a single YAML document into a ConfigurationSet.
//
// Returns a *source.ReadError when the document breaks YAML syntax, a
// *source.FormatError when it does not follow the expected layout, and the
// model errors when the resulting configuration is invalid.
func (d *Driver) Read(r io.Reader) (*model.ConfigurationSet, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		// yaml.v3 reports a stream without any document as io.EOF.
		if errors.Is(err, io.EOF) {
			return nil, source.NewFormatError(source.FormatYAML, "Empty YAML source. Cannot read configuration.")
		}
		return nil, &source.ReadError{Message: "Invalid YAML syntax in configuration source provided.", Err: err}
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 0 {
		return nil, source.NewFormatError(source.FormatYAML, "Empty YAML source. Cannot read configuration.")
	}
	return Decode(&doc, source.FormatYAML)
}

// Write serializes cs as a YAML document.
func (d *Driver) Write(w io.Writer, cs *model.ConfigurationSet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(d.indent)
	if err := enc.Encode(Encode(cs)); err != nil {
		return fmt.Errorf("failed to serialize configuration YAML: %w", err)
	}
	// Close flushes the emitter; it does not close w.
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush configuration YAML: %w", err)
	}
	return nil
}
