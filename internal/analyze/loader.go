package analyze

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/tools/go/packages"

	"datafile-test/internal/common"
	"datafile-test/internal/ctxlog"
	"datafile-test/internal/diagnostic"
	"datafile-test/internal/expand"
)

// LoadMode specifies what information to load from packages.
// Template bodies are never type-checked.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax

// DefaultTag is the build tag marking template files.
const DefaultTag = "datafiletest"

// Loader finds template files and annotated functions in Go packages.
type Loader struct {
	tag string
	dir string
}

// NewLoader creates a Loader for the given template tag. dir is the
// directory package patterns are resolved in; empty means the working
// directory.
func NewLoader(tag, dir string) *Loader {
	if tag == "" {
		tag = DefaultTag
	}

	return &Loader{tag: tag, dir: dir}
}

// Tag returns the template build tag.
func (l *Loader) Tag() string {
	return l.tag
}

// Load loads the packages matching patterns (e.g. "./...") and returns
// their template files sorted by path. Package errors are reported as
// diagnostics; only a failure to run the loader at all is returned as error.
func (l *Loader) Load(ctx context.Context, patterns ...string) (*Result, error) {
	log := ctxlog.FromContext(ctx)

	if common.IsEmpty(patterns) {
		patterns = []string{"."}
	}

	sources := &sync.Map{} // key: file path, value: []byte
	cfg := &packages.Config{
		Context:    ctx,
		Mode:       LoadMode,
		Dir:        l.dir,
		Tests:      true,
		BuildFlags: []string{"-tags=" + l.tag},
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			sources.Store(filename, src)
			return parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
		},
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	result := &Result{}
	seen := make(map[string]bool)

	var pkgErrs []packages.Error

	for _, pkg := range pkgs {
		pkgErrs = append(pkgErrs, pkg.Errors...)

		for _, file := range pkg.Syntax {
			path := pkg.Fset.Position(file.Package).Filename
			if seen[path] {
				continue
			}

			seen[path] = true

			src, ok := sources.Load(path)
			if !ok {
				return nil, fmt.Errorf("no source captured for %s", path)
			}

			tf := l.inspectFile(pkg, file, src.([]byte), &result.Diagnostics)
			if tf == nil {
				continue
			}

			log.Debug("found template file", "path", tf.Path, "targets", len(tf.Targets))
			result.Files = append(result.Files, tf)
		}
	}

	l.reportErrors(ctx, pkgErrs, result)

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})

	return result, nil
}

// wrongSignature matches the go list check of Test functions in _test.go
// files. Template functions take a data parameter instead of *testing.T.
var wrongSignature = regexp.MustCompile(`wrong signature for (\w+), must be`)

// errorPos splits "file:line[:col]" off a package error position or message.
var errorPos = regexp.MustCompile(`^(.+?):\d+(?::\d+)?(?::|$)`)

// reportErrors records package errors as diagnostics. go list checks of
// template files are dropped: template functions are never valid tests on
// their own and only their syntax matters here. Parse errors are kept.
func (l *Loader) reportErrors(ctx context.Context, errs []packages.Error, result *Result) {
	log := ctxlog.FromContext(ctx)

	templates := make(map[string]bool)
	targets := make(map[string]bool)

	for _, tf := range result.Files {
		templates[tf.Path] = true

		for _, target := range tf.Targets {
			targets[target.Decl.Name.Name] = true
		}
	}

	seenErrs := make(map[string]bool)

	for _, e := range errs {
		if e.Kind == packages.TypeError || seenErrs[e.Error()] {
			continue
		}

		seenErrs[e.Error()] = true

		if e.Kind != packages.ParseError {
			if file := errorFile(e, l.dir); file != "" && templates[file] {
				log.Debug("ignoring package error in template file", "error", e.Error())
				continue
			}

			if m := wrongSignature.FindStringSubmatch(e.Msg); m != nil && targets[m[1]] {
				log.Debug("ignoring test signature check of template function", "function", m[1])
				continue
			}
		}

		result.Diagnostics.AddError(diagnostic.CodeLoadFailed, e.Msg, token.Position{Filename: e.Pos})
	}
}

// errorFile returns the absolute path of the file an error points at, or "".
// Relative paths are resolved against dir.
func errorFile(e packages.Error, dir string) string {
	for _, text := range []string{e.Pos, e.Msg} {
		m := errorPos.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		path := m[1]
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}

		return m[1]
	}

	return ""
}

// inspectFile returns the template file view of file, or nil when file is
// not guarded by the template tag. Directives in unguarded files are
// reported as warnings: the generator never touches them.
func (l *Loader) inspectFile(
	pkg *packages.Package,
	file *ast.File,
	src []byte,
	diags *diagnostic.Diagnostics,
) *TemplateFile {
	comment, expr := BuildConstraint(file)
	isTemplate := expr != nil && MentionsTag(expr, l.tag)

	var targets []Target

	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}

		l.checkLookalikes(pkg, fd, diags)

		ann, err := expand.FindAnnotation(pkg.Fset, fd.Doc)
		if ann == nil && err == nil {
			continue
		}

		if !isTemplate {
			diags.AddWarning(diagnostic.CodeIgnoredAnnotation,
				fmt.Sprintf("%s is annotated but the file is not guarded by //go:build %s", fd.Name.Name, l.tag),
				pkg.Fset.Position(fd.Name.Pos()))

			continue
		}

		targets = append(targets, Target{Decl: fd, Annotation: ann, Err: err})
	}

	if !isTemplate {
		return nil
	}

	path := pkg.Fset.Position(file.Package).Filename
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	return &TemplateFile{
		Path:           path,
		PkgPath:        pkg.PkgPath,
		PkgName:        file.Name.Name,
		Src:            src,
		Fset:           pkg.Fset,
		File:           file,
		Constraint:     comment,
		ConstraintExpr: expr,
		Targets:        targets,
	}
}

// checkLookalikes warns about doc comment lines that resemble the directive
// closely enough to be a typo of it.
func (l *Loader) checkLookalikes(pkg *packages.Package, fd *ast.FuncDecl, diags *diagnostic.Diagnostics) {
	if fd.Doc == nil {
		return
	}

	for _, c := range fd.Doc.List {
		if !expand.Lookalike(c.Text) {
			continue
		}

		diags.AddWarning(diagnostic.CodeUnknownDirective,
			fmt.Sprintf("%q is not a directive; write %s \"path\" with no space after //", c.Text, expand.Directive),
			pkg.Fset.Position(c.Slash))
	}
}
