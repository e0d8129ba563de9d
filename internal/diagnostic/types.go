package diagnostic

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"datafile-test/internal/common"
)

// Diagnostic codes reported by the loader, the expansion engine and the generator.
const (
	CodeArity                = "arity"
	CodeParamForm            = "param_form"
	CodeReceiver             = "receiver"
	CodeGeneric              = "generic"
	CodeResults              = "results"
	CodeParamShadowsTesting  = "param_shadows_testing"
	CodeMalformedAnnotation  = "malformed_annotation"
	CodeDuplicateAnnotation  = "duplicate_annotation"
	CodeIgnoredAnnotation    = "ignored_annotation"
	CodeUnknownDirective     = "unknown_directive"
	CodeReadFailed           = "read_failed"
	CodeUnsupportedExtension = "unsupported_extension"
	CodeDecodeFailed         = "decode_failed"
	CodeEncodeFailed         = "encode_failed"
	CodeExprFailed           = "expr_failed"
	CodeNotDiscoverable      = "not_discoverable"
	CodeLoadFailed           = "load_failed"
	CodeFormatFailed         = "format_failed"
	CodeStaleOutput          = "stale_output"
)

// Diagnostics holds all diagnostic information from a generation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Pos is the source location the diagnostic is bound to (if any).
	Pos token.Position
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add appends d to the list matching its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message string, pos token.Position) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Pos: pos})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message string, pos token.Position) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Pos: pos})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message string, pos token.Position) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Pos: pos})
}

// AddErr records err as an error diagnostic. A *Error keeps its own code
// and position; any other error is recorded under fallbackCode at pos.
func (d *Diagnostics) AddErr(err error, fallbackCode string, pos token.Position) {
	var de *Error
	if errors.As(err, &de) {
		d.Add(de.Diagnostic)
		return
	}

	d.AddError(fallbackCode, err.Error(), pos)
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// All returns errors, warnings and infos in that order.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string in the usual
// "file:line:col: [code] message" compiler layout.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if d.Pos.IsValid() || d.Pos.Filename != "" {
		return d.Pos.String() + ": " + msg
	}

	return msg
}

// Error is a single error diagnostic usable as a Go error.
type Error struct {
	Diagnostic
}

// Errorf builds an *Error with the given code and position.
func Errorf(pos token.Position, code, format string, args ...any) *Error {
	return &Error{Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	}}
}

func (e *Error) Error() string {
	return e.Diagnostic.String()
}

// CodeOf returns the diagnostic code carried by err, or "" if err is not a
// diagnostic.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}

	return ""
}
