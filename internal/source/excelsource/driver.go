package excelsource

import (
	"github.com/shinji-kodama/merlin/internal/source"
)

// Namespace is the SpreadsheetML namespace, bound to the `ss` prefix.
const Namespace = "urn:schemas-microsoft-com:office:spreadsheet"

// DefaultSheetName is the name of the worksheet created by Write.
const DefaultSheetName = "ConfigurationDictionary"

// Driver retrieves and stores configuration sets from and to Excel 2003 XML
// streams. Create drivers with NewDriver.
type Driver struct {
	sheetName string
}

// Option customizes a Driver.
type Option func(*Driver)

// WithSheetName sets the worksheet name used by Write. Empty names are
// ignored.
func WithSheetName(name string) Option {
	return func(d *Driver) {
		if name != "" {
			d.sheetName = name
		}
	}
}

// NewDriver creates a spreadsheet driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{sheetName: DefaultSheetName}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ source.Driver = (*Driver)(nil)

// Fixed header titles of the first three columns.
var headerTitles = []string{"Name", "Description", "Default"}

// firstEnvironmentColumn is the 1-based index of the first environment
// column; the columns before it hold name, description and default.
const firstEnvironmentColumn = 4

// columnName converts a 1-based column index to its spreadsheet letter
// (1 → A, 26 → Z, 27 → AA).
func columnName(index int) string {
	var name []byte
	for index > 0 {
		index--
		name = append([]byte{byte('A' + index%26)}, name...)
		index /= 26
	}
	return string(name)
}
