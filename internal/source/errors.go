package source

import "fmt"

// Format names used in FormatError.Format.
const (
	FormatYAML  = "yaml"
	FormatExcel = "excel"
	FormatJSON  = "json"
)

// ReadError is returned when a source cannot be read at all, typically
// because it breaks the base syntax of its encoding (malformed YAML, XML
// or JSON). The parser error is preserved as the cause.
type ReadError struct {
	// Message is the stable, user-facing description.
	Message string

	// Err is the underlying parser or stream error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *ReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// FormatError is returned when a source is well-formed in its base syntax
// but does not follow the expected configuration layout (missing header
// cells, unknown sections, malformed parameter definitions, ...).
//
// Error returns Message verbatim; the messages are a stable contract.
type FormatError struct {
	// Format identifies the driver that rejected the source.
	Format string

	// Message is the stable, user-facing description.
	Message string
}

// Error satisfies the error interface.
func (e *FormatError) Error() string {
	return e.Message
}

// NewFormatError creates a FormatError with a formatted message.
func NewFormatError(format, msgFormat string, args ...interface{}) *FormatError {
	return &FormatError{Format: format, Message: fmt.Sprintf(msgFormat, args...)}
}
