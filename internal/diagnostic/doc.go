// Package diagnostic provides positioned errors and warnings for the
// datafile-test generator.
//
// Every generation-time failure is reported as a Diagnostic bound to a
// source position (usually the //datafile:test directive) so that editors
// and CI logs can jump to the offending annotation.
//
// Key capabilities:
//   - Error, warning and info collection per generation run
//   - A single-diagnostic Error type returned by the expansion engine
//   - Terminal-aware printing of collected diagnostics
package diagnostic
