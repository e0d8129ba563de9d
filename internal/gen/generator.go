package gen

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"
	gofumpt "mvdan.cc/gofumpt/format"

	"datafile-test/internal/analyze"
	"datafile-test/internal/common"
	"datafile-test/internal/ctxlog"
	"datafile-test/internal/diagnostic"
	"datafile-test/internal/expand"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Tag is the build tag marking template files.
	Tag string
	// BaseDir resolves relative data file paths. Empty means the directory
	// of each template file, which is where go generate and go test run.
	BaseDir string
	// TestingParam is the *testing.T parameter name of generated tests.
	TestingParam string
	// RuntimeImport is the import path of the package providing Decode.
	RuntimeImport string
	// OutputSuffix replaces ".go" (and a "_test" before it) of the template name.
	OutputSuffix string
	// Gofumpt applies gofumpt formatting after goimports.
	Gofumpt bool
	// DebugUnformatted writes a sidecar with the unformatted source when
	// formatting fails.
	DebugUnformatted bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Tag:           analyze.DefaultTag,
		TestingParam:  expand.DefaultTestingParam,
		RuntimeImport: expand.DefaultRuntimeImport,
		OutputSuffix:  "_datafile_test.go",
		Gofumpt:       true,
	}
}

// Generator generates Go test files from template files.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Template is the path of the template file the output came from.
	Template string
	// Path is the output path (e.g., "add_datafile_test.go" next to the template).
	Path string
	// Content is the formatted Go source code.
	Content []byte
	// Units is the number of generated test functions.
	Units int
}

// OutputPath returns the generated file path for a template path.
func (g *Generator) OutputPath(templatePath string) string {
	base := strings.TrimSuffix(templatePath, ".go")
	base = strings.TrimSuffix(base, "_test")

	return base + g.config.OutputSuffix
}

// Generate expands every template file. Files with error diagnostics are
// skipped; their diagnostics are merged into diags.
func (g *Generator) Generate(
	ctx context.Context,
	files []*analyze.TemplateFile,
	diags *diagnostic.Diagnostics,
) []GeneratedFile {
	var out []GeneratedFile

	for _, tf := range files {
		file, fileDiags := g.GenerateFile(ctx, tf)
		diags.Merge(fileDiags)

		if file != nil {
			out = append(out, *file)
		}
	}

	return out
}

// edit replaces src[start:end] with text.
type edit struct {
	start, end int
	text       string
}

// GenerateFile expands a single template file. It returns nil when any
// annotated function in the file fails.
func (g *Generator) GenerateFile(ctx context.Context, tf *analyze.TemplateFile) (*GeneratedFile, diagnostic.Diagnostics) {
	log := ctxlog.FromContext(ctx)

	var diags diagnostic.Diagnostics

	baseDir := g.config.BaseDir
	if baseDir == "" {
		baseDir = tf.Dir()
	}

	engine := expand.NewEngine(expand.Options{
		BaseDir:      baseDir,
		TestingParam: g.config.TestingParam,
		RuntimeName:  common.PkgAlias(g.config.RuntimeImport),
	})

	var (
		edits []edit
		units int
	)

	for _, target := range tf.Targets {
		if target.Err != nil {
			diags.AddErr(target.Err, diagnostic.CodeMalformedAnnotation, tf.Fset.Position(target.Decl.Pos()))
			continue
		}

		fn, err := expand.NewFunction(tf.Fset, target.Decl, tf.Src, engine.Options().TestingParam)
		if err != nil {
			diags.AddErr(err, diagnostic.CodeParamForm, tf.Fset.Position(target.Decl.Pos()))
			continue
		}

		if !expand.Discoverable(fn.Name) {
			diags.AddWarning(diagnostic.CodeNotDiscoverable,
				fmt.Sprintf("go test will not run %s_case_N: name must start with Test followed by a non-lowercase letter", fn.Name),
				fn.Pos)
		}

		expanded, err := engine.Expand(*target.Annotation, fn)
		if err != nil {
			diags.AddErr(err, diagnostic.CodeReadFailed, target.Annotation.Pos)
			continue
		}

		log.Debug("expanded function", "function", fn.Name, "data", target.Annotation.Path, "units", len(expanded))

		start := target.Decl.Pos()
		if target.Decl.Doc != nil {
			start = target.Decl.Doc.Pos()
		}

		edits = append(edits, edit{
			start: tf.Fset.Position(start).Offset,
			end:   tf.Fset.Position(target.Decl.End()).Offset,
			text:  expand.Fragment(expanded),
		})
		units += len(expanded)
	}

	if diags.HasErrors() {
		return nil, diags
	}

	if tf.Constraint != nil {
		edits = append(edits, edit{
			start: tf.Fset.Position(tf.Constraint.Pos()).Offset,
			end:   tf.Fset.Position(tf.Constraint.End()).Offset,
			text:  "//go:build " + analyze.NegateTag(tf.ConstraintExpr, g.config.Tag).String(),
		})
	}

	outPath := g.OutputPath(tf.Path)
	header := fmt.Sprintf("// Code generated by datafile-test from %s. DO NOT EDIT.\n\n", filepath.Base(tf.Path))
	src := header + splice(tf.Src, edits)

	content, err := g.format(outPath, []byte(src))
	if err != nil {
		if g.config.DebugUnformatted {
			_ = writeDebugUnformatted(outPath, []byte(src))
		}

		diags.AddError(diagnostic.CodeFormatFailed, err.Error(), token.Position{Filename: tf.Path})

		return nil, diags
	}

	return &GeneratedFile{
		Template: tf.Path,
		Path:     outPath,
		Content:  content,
		Units:    units,
	}, diags
}

// splice applies non-overlapping edits to src.
func splice(src []byte, edits []edit) string {
	sort.Slice(edits, func(i, j int) bool {
		return edits[i].start < edits[j].start
	})

	var (
		b    strings.Builder
		last int
	)

	for _, e := range edits {
		b.Write(src[last:e.start])
		b.WriteString(e.text)
		last = e.end
	}

	b.Write(src[last:])

	return b.String()
}

// format adds the imports generated units need, then lets goimports drop
// the unused ones and format the file.
func (g *Generator) format(filename string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing generated code: %w", err)
	}

	astutil.AddImport(fset, file, "testing")
	astutil.AddImport(fset, file, g.config.RuntimeImport)

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, fmt.Errorf("printing generated code: %w", err)
	}

	out, err := goImportsAndFormat(buf.Bytes(), filename, localPrefix(g.config.RuntimeImport))
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}

	if g.config.Gofumpt {
		out, err = gofumpt.Source(out, gofumpt.Options{ModulePath: g.config.RuntimeImport})
		if err != nil {
			return nil, fmt.Errorf("gofumpt: %w", err)
		}
	}

	return out, nil
}

// importsMu guards imports.LocalPrefix, which goimports only takes as a
// package variable.
var importsMu sync.Mutex

// goImportsAndFormat formats the Go code and removes unused imports. Imports
// under local are grouped after third-party ones.
func goImportsAndFormat(source []byte, filename, local string) ([]byte, error) {
	options := &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: false,
	}

	importsMu.Lock()
	defer importsMu.Unlock()

	imports.LocalPrefix = local

	return imports.Process(filename, source, options)
}

// localPrefix returns the first element of a runtime import path without a
// dot, such as "datafile-test". goimports would otherwise group such paths
// with the standard library.
func localPrefix(importPath string) string {
	first, _, _ := strings.Cut(importPath, "/")
	if strings.Contains(first, ".") {
		return ""
	}

	return first
}
