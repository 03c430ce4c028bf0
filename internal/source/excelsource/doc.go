// Package excelsource reads and writes configuration sets in the
// Excel 2003 XML spreadsheet format (SpreadsheetML).
//
// The first worksheet's table holds one header row followed by one row per
// parameter:
//
//	| Name       | Description           | Default | Local | Test |
//	| maxThreads | Max number of threads | 5       | 15    | 25   |
//
// Columns from the fourth onward name environments. SpreadsheetML marks gaps
// with an ss:Index attribute on the cell or row that follows them; the
// reader uses it both to reposition the column pointer and to detect where
// the header and the parameter list end.
package excelsource
