// Package datafile reads the JSON and YAML data files that drive generated
// tests and turns each entry into its canonical JSON text.
//
// The format is chosen strictly by file extension (case-insensitive):
// "json" decodes as JSON, "yaml" and "yml" decode as YAML. Both formats must
// hold a top-level sequence; every element becomes one test case.
//
// Canonical text is the common interchange form between the decoded entry
// and the typed deserialization performed by generated code: objects with
// sorted keys, no HTML escaping, numbers from JSON sources kept exactly as
// written.
package datafile
