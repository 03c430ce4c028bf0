package jsonsource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/merlin/internal/model"
	"github.com/shinji-kodama/merlin/internal/source"
	"github.com/shinji-kodama/merlin/internal/source/yamlsource"
)

// DefaultIndent is the indentation string used by Write.
const DefaultIndent = "  "

// Driver retrieves and stores configuration sets from and to JSON streams.
type Driver struct {
	indent string
}

// Option customizes a Driver.
type Option func(*Driver)

// WithIndent sets the number of spaces used per nesting level by Write.
// Values below 1 are ignored.
func WithIndent(spaces int) Option {
	return func(d *Driver) {
		if spaces >= 1 {
			d.indent = string(bytes.Repeat([]byte{' '}, spaces))
		}
	}
}

// NewDriver creates a JSON driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{indent: DefaultIndent}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ source.Driver = (*Driver)(nil)

// Read parses a JSON (or JSONC) document into a ConfigurationSet.
//
// Returns a *source.ReadError when the document is not valid JSON after
// comment stripping, and otherwise the same errors as the YAML reader with
// FormatError.Format set to "json".
func (d *Driver) Read(r io.Reader) (*model.ConfigurationSet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &source.ReadError{Message: "Unable to read configuration source.", Err: err}
	}

	// Strip comments and trailing commas before parsing.
	clean := jsonc.ToJSON(raw)
	if len(bytes.TrimSpace(clean)) == 0 {
		return nil, source.NewFormatError(source.FormatJSON, "Empty JSON source. Cannot read configuration.")
	}
	if !json.Valid(clean) {
		return nil, &source.ReadError{
			Message: "Invalid JSON syntax in configuration source provided.",
			Err:     syntaxError(clean),
		}
	}

	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.UseNumber()
	root, err := decodeNode(dec)
	if err != nil {
		return nil, &source.ReadError{Message: "Invalid JSON syntax in configuration source provided.", Err: err}
	}

	return yamlsource.Decode(root, source.FormatJSON)
}

// syntaxError recovers the decoder's description of why clean is invalid.
func syntaxError(clean []byte) error {
	var v interface{}
	if err := json.Unmarshal(clean, &v); err != nil {
		return err
	}
	return fmt.Errorf("invalid JSON")
}

// Write serializes cs as indented JSON. All values are written as strings.
func (d *Driver) Write(w io.Writer, cs *model.ConfigurationSet) error {
	var compact bytes.Buffer
	if err := encodeNode(&compact, yamlsource.Encode(cs)); err != nil {
		return fmt.Errorf("failed to serialize configuration JSON: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", d.indent); err != nil {
		return fmt.Errorf("failed to indent configuration JSON: %w", err)
	}
	out.WriteByte('\n')

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write configuration JSON: %w", err)
	}
	return nil
}
