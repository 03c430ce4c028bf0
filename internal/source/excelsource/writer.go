package excelsource

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/shinji-kodama/merlin/internal/model"
)

// documentProlog is written before the workbook. The mso-application
// instruction lets Excel open the file directly.
const documentProlog = `<?xml version="1.0"?>` + "\n" + `<?mso-application progid="Excel.Sheet"?>` + "\n"

// Write serializes cs as an Excel 2003 XML workbook with a single sheet.
//
// The header row holds Name, Description, Default and the environment names
// in configured order. Each parameter row holds its name, description,
// default and, per environment, the override when one is recorded or the
// default otherwise.
func (d *Driver) Write(w io.Writer, cs *model.ConfigurationSet) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(documentProlog); err != nil {
		return fmt.Errorf("failed to write workbook prolog: %w", err)
	}

	enc := xml.NewEncoder(bw)
	enc.Indent("", " ")
	sw := &sheetWriter{enc: enc}

	environments := cs.Environments()

	sw.start("Workbook", xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: Namespace},
		xml.Attr{Name: xml.Name{Local: "xmlns:ss"}, Value: Namespace})
	sw.start("Worksheet", xml.Attr{Name: xml.Name{Local: "ss:Name"}, Value: d.sheetName})
	sw.start("Table")

	header := append([]string(nil), headerTitles...)
	for _, env := range environments {
		header = append(header, env.Name())
	}
	sw.row(header)

	for _, p := range cs.Parameters() {
		cells := []string{p.Name(), p.Description(), p.DefaultValue()}
		for _, env := range environments {
			cells = append(cells, p.EffectiveValue(env))
		}
		sw.row(cells)
	}

	sw.end("Table")
	sw.end("Worksheet")
	sw.end("Workbook")

	if sw.err != nil {
		return fmt.Errorf("failed to serialize workbook: %w", sw.err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	// Flush the internal buffer; w itself belongs to the caller.
	return bw.Flush()
}

// sheetWriter emits SpreadsheetML tokens and keeps the first error, so the
// document structure above reads top to bottom.
type sheetWriter struct {
	enc *xml.Encoder
	err error
}

func (sw *sheetWriter) token(t xml.Token) {
	if sw.err == nil {
		sw.err = sw.enc.EncodeToken(t)
	}
}

// Element names are written with their literal prefix, because the default
// namespace is declared once on the root.
func (sw *sheetWriter) start(name string, attrs ...xml.Attr) {
	sw.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (sw *sheetWriter) end(name string) {
	sw.token(xml.EndElement{Name: xml.Name{Local: name}})
}

// row writes every value as a string-typed Data node, empty values included,
// so that cell positions never need an ss:Index attribute.
func (sw *sheetWriter) row(values []string) {
	sw.start("Row")
	for _, v := range values {
		sw.start("Cell")
		sw.start("Data", xml.Attr{Name: xml.Name{Local: "ss:Type"}, Value: "String"})
		sw.token(xml.CharData(v))
		sw.end("Data")
		sw.end("Cell")
	}
	sw.end("Row")
}
