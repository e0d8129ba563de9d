package expand

import (
	"bytes"
	"fmt"
	"go/parser"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"datafile-test/internal/datafile"
	"datafile-test/internal/diagnostic"
)

// Default values for Options.
const (
	DefaultTestingParam  = "t"
	DefaultRuntimeImport = "datafile-test/casebind"
	DefaultRuntimeName   = "casebind"
)

// Options configure an Engine.
type Options struct {
	// BaseDir resolves relative annotation paths. Empty means the process
	// working directory.
	BaseDir string
	// TestingParam is the name of the *testing.T parameter of generated units.
	TestingParam string
	// RuntimeName is the package name generated units use to reach Decode.
	RuntimeName string
}

func (o Options) withDefaults() Options {
	if o.TestingParam == "" {
		o.TestingParam = DefaultTestingParam
	}

	if o.RuntimeName == "" {
		o.RuntimeName = DefaultRuntimeName
	}

	return o
}

// Engine expands annotated functions into generated test units.
// It holds no state between calls.
type Engine struct {
	opts Options
}

// NewEngine creates a new Engine with the given options.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the effective options of the engine.
func (e *Engine) Options() Options {
	return e.opts
}

// Unit is one generated test function.
type Unit struct {
	// Name is "<function>_case_<index>".
	Name string
	// Index is the 0-based position of the entry in the data file.
	Index int
	// Canonical is the canonical JSON text of the entry.
	Canonical string
	// Source is the rendered Go function declaration.
	Source string
}

// UnitName returns the name of the generated unit for entry i of fn.
func UnitName(fn string, i int) string {
	return fn + "_case_" + strconv.Itoa(i)
}

// Discoverable reports whether go test would run a function with this name.
func Discoverable(name string) bool {
	rest, ok := strings.CutPrefix(name, "Test")
	if !ok {
		return false
	}

	if rest == "" {
		return true
	}

	r, _ := utf8.DecodeRuneInString(rest)

	return !unicode.IsLower(r)
}

// Expand reads the data file named by ann and produces one unit per entry,
// in document order. Any structural failure aborts the whole expansion.
func (e *Engine) Expand(ann Annotation, fn *Function) ([]Unit, error) {
	path := e.resolve(ann.Path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagnostic.Errorf(ann.Pos, diagnostic.CodeReadFailed,
			"failed to read data file %q: %v", ann.Path, err)
	}

	format, err := datafile.FormatOf(path)
	if err != nil {
		return nil, diagnostic.Errorf(ann.Pos, diagnostic.CodeUnsupportedExtension,
			"data file %q: %v", ann.Path, err)
	}

	entries, err := datafile.Decode(format, data)
	if err != nil {
		return nil, diagnostic.Errorf(ann.Pos, diagnostic.CodeDecodeFailed,
			"failed to parse %s file %q: %v", strings.ToUpper(format.String()), ann.Path, err)
	}

	units := make([]Unit, 0, len(entries))

	for i, entry := range entries {
		text, err := datafile.Canonical(entry)
		if err != nil {
			return nil, diagnostic.Errorf(ann.Pos, diagnostic.CodeEncodeFailed,
				"failed to convert test case %d of %q to JSON: %v", i, ann.Path, err)
		}

		expr := e.decodeExpr(fn.ParamType, text)
		if _, err := parser.ParseExpr(expr); err != nil {
			return nil, diagnostic.Errorf(ann.Pos, diagnostic.CodeExprFailed,
				"failed to parse test case %d of %q as a Go expression: %v", i, ann.Path, err)
		}

		unit := Unit{
			Name:      UnitName(fn.Name, i),
			Index:     i,
			Canonical: text,
		}

		unit.Source, err = e.render(unit.Name, fn, expr)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", unit.Name, err)
		}

		units = append(units, unit)
	}

	return units, nil
}

// Fragment concatenates units into the source that replaces the annotated
// function. Zero units yield an empty fragment.
func Fragment(units []Unit) string {
	parts := make([]string, 0, len(units))
	for _, u := range units {
		parts = append(parts, u.Source)
	}

	return strings.Join(parts, "\n")
}

func (e *Engine) resolve(path string) string {
	if filepath.IsAbs(path) || e.opts.BaseDir == "" {
		return path
	}

	return filepath.Join(e.opts.BaseDir, path)
}

// decodeExpr builds the expression constructing the parameter value from
// its canonical text.
func (e *Engine) decodeExpr(paramType, text string) string {
	return fmt.Sprintf("%s.Decode[%s](%s, %s)", e.opts.RuntimeName, paramType, e.opts.TestingParam, goLiteral(text))
}

// goLiteral prefers a raw string literal for readability.
func goLiteral(s string) string {
	if strconv.CanBackquote(s) {
		return "`" + s + "`"
	}

	return strconv.Quote(s)
}

type unitData struct {
	Name         string
	T            string
	Param        string
	Type         string
	Results      string
	Body         string
	Expr         string
	ReturnsError bool
}

var unitTemplate = template.Must(template.New("unit").Parse(`func {{.Name}}({{.T}} *testing.T) {
{{- if .ReturnsError}}
	if err := func({{.Param}} {{.Type}}) {{.Results}} {{"{"}}{{.Body}}{{"}"}}({{.Expr}}); err != nil {
		{{.T}}.Fatal(err)
	}
{{- else}}
	func({{.Param}} {{.Type}}) {{"{"}}{{.Body}}{{"}"}}({{.Expr}})
{{- end}}
}
`))

func (e *Engine) render(name string, fn *Function, expr string) (string, error) {
	data := unitData{
		Name:         name,
		T:            e.opts.TestingParam,
		Param:        fn.ParamName,
		Type:         fn.ParamType,
		Results:      fn.Results,
		Body:         fn.Body,
		Expr:         expr,
		ReturnsError: fn.Result == ResultError,
	}

	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}
