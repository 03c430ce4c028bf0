// Package source defines the contract shared by every configuration source
// driver and the errors they report while reading.
//
// A driver maps between a model.ConfigurationSet and one textual encoding.
// The concrete drivers live in sub-packages:
//
//   - yamlsource: hierarchical YAML format
//   - excelsource: Excel 2003 XML spreadsheet format
//   - jsonsource: JSON (with comments) using the same layout as YAML
//
// Drivers are stateless: every Read builds a fresh ConfigurationSet and every
// Write only reads the given one, so a single driver value can serve
// concurrent callers working on independent streams.
package source
