package excelsource

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/shinji-kodama/merlin/internal/model"
	"github.com/shinji-kodama/merlin/internal/source"
)

// xmlWorkbook mirrors the subset of SpreadsheetML the reader needs. The
// root element name is not checked; only namespaced children are matched.
type xmlWorkbook struct {
	Worksheets []xmlWorksheet `xml:"urn:schemas-microsoft-com:office:spreadsheet Worksheet"`
}

type xmlWorksheet struct {
	Name  string    `xml:"urn:schemas-microsoft-com:office:spreadsheet Name,attr"`
	Table *xmlTable `xml:"urn:schemas-microsoft-com:office:spreadsheet Table"`
}

type xmlTable struct {
	Rows []xmlRow `xml:"urn:schemas-microsoft-com:office:spreadsheet Row"`
}

type xmlRow struct {
	// Index is set when the row follows skipped (blank) rows.
	Index *string   `xml:"urn:schemas-microsoft-com:office:spreadsheet Index,attr"`
	Cells []xmlCell `xml:"urn:schemas-microsoft-com:office:spreadsheet Cell"`
}

type xmlCell struct {
	// Index is set when the cell follows skipped (blank) cells.
	Index *string  `xml:"urn:schemas-microsoft-com:office:spreadsheet Index,attr"`
	Data  *xmlData `xml:"urn:schemas-microsoft-com:office:spreadsheet Data"`
}

// xmlData is a cell's Data element. Rich-text cells nest HTML formatting
// elements (<B>, <I>, <Font>) inside Data, so Value joins the text of all
// descendants.
type xmlData struct {
	Type  string
	Value string
}

// UnmarshalXML collects every character data token up to the matching end
// element.
func (d *xmlData) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "Type" && (attr.Name.Space == Namespace || attr.Name.Space == "") {
			d.Type = attr.Value
		}
	}

	var text strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				d.Value = text.String()
				return nil
			}
			depth--
		case xml.CharData:
			text.Write(t)
		}
	}
}

func (c xmlCell) value() string {
	if c.Data == nil {
		return ""
	}
	return c.Data.Value
}

// rows returns the rows of the first worksheet that has a table.
func (wb *xmlWorkbook) rows() []xmlRow {
	for _, ws := range wb.Worksheets {
		if ws.Table != nil {
			return ws.Table.Rows
		}
	}
	return nil
}

// Read parses an Excel 2003 XML stream into a ConfigurationSet.
//
// A source without any row yields an empty ConfigurationSet. Malformed XML
// is reported as a *source.ReadError, layout problems as a
// *source.FormatError.
func (d *Driver) Read(r io.Reader) (*model.ConfigurationSet, error) {
	var wb xmlWorkbook
	if err := xml.NewDecoder(r).Decode(&wb); err != nil {
		return nil, &source.ReadError{Message: "Invalid XML syntax in configuration source provided.", Err: err}
	}

	rows := wb.rows()
	if len(rows) == 0 {
		return model.NewConfigurationSet(nil, nil)
	}

	environments, err := readHeader(rows[0])
	if err != nil {
		return nil, err
	}

	parameters, err := readParameters(rows[1:], environments)
	if err != nil {
		return nil, err
	}

	return model.NewConfigurationSet(parameters, environments)
}

// readHeader validates the fixed titles and collects the environment
// columns, stopping at the first cell that follows a gap.
func readHeader(header xmlRow) ([]model.Environment, error) {
	cells := header.Cells
	for i, title := range headerTitles {
		if len(cells) <= i || cells[i].value() != title {
			return nil, source.NewFormatError(source.FormatExcel, "%s1 cell should be `%s`", columnName(i+1), title)
		}
	}

	var environments []model.Environment
	for i := len(headerTitles); i < len(cells); i++ {
		if cells[i].Index != nil {
			break
		}

		name := cells[i].value()
		if model.IsValueUnknown(name) {
			return nil, source.NewFormatError(source.FormatExcel, "%s1 cell should name an environment", columnName(i+1))
		}
		env := model.NewEnvironment(name)
		if env.IsReserved() {
			return nil, source.NewFormatError(source.FormatExcel,
				"`%s` name is prohibited for environment name.", model.ReservedEnvironmentName)
		}
		environments = append(environments, env)
	}
	return environments, nil
}

// readParameters reads one parameter per row until the first row that
// follows a gap.
func readParameters(rows []xmlRow, environments []model.Environment) ([]*model.Parameter, error) {
	var parameters []*model.Parameter
	for _, row := range rows {
		if row.Index != nil {
			break
		}
		p, err := readParameter(row, environments)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, p)
	}
	return parameters, nil
}

// readParameter walks the cells of a row with a column pointer. A cell's
// ss:Index moves the pointer; otherwise it advances by one. Empty cells are
// skipped, so a blank environment cell means "no override".
func readParameter(row xmlRow, environments []model.Environment) (*model.Parameter, error) {
	lastColumn := len(environments) + firstEnvironmentColumn - 1
	values := make(map[model.Environment]string)
	var name, description, defaultValue string

	column := 1
	for _, cell := range row.Cells {
		if cell.Index != nil {
			index, err := strconv.Atoi(*cell.Index)
			if err != nil || index < 1 {
				return nil, source.NewFormatError(source.FormatExcel, "Invalid `ss:Index` value `%s`.", *cell.Index)
			}
			column = index
		}
		if column > lastColumn {
			break
		}

		if v := cell.value(); !model.IsValueUnknown(v) {
			switch column {
			case 1:
				name = v
			case 2:
				description = v
			case 3:
				defaultValue = v
			default:
				values[environments[column-firstEnvironmentColumn]] = v
			}
		}
		column++
	}

	return model.NewParameter(name, defaultValue, values, model.WithDescription(description))
}
