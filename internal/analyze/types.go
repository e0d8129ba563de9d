package analyze

import (
	"go/ast"
	"go/build/constraint"
	"go/token"
	"path/filepath"

	"datafile-test/internal/diagnostic"
	"datafile-test/internal/expand"
)

// TemplateFile is a Go file guarded by the template build tag.
type TemplateFile struct {
	// Path is the absolute file path.
	Path string
	// PkgPath is the import path of the package the file belongs to.
	PkgPath string
	// PkgName is the package clause name (may end in _test).
	PkgName string
	// Src is the file content the syntax tree was parsed from.
	Src []byte
	// Fset positions File.
	Fset *token.FileSet
	// File is the parsed syntax tree, comments included.
	File *ast.File
	// Constraint is the //go:build comment and its parsed expression.
	Constraint     *ast.Comment
	ConstraintExpr constraint.Expr
	// Targets are the annotated functions in declaration order.
	Targets []Target
}

// Dir returns the directory holding the file.
func (f *TemplateFile) Dir() string {
	return filepath.Dir(f.Path)
}

// Target is a function declaration carrying the //datafile:test directive.
type Target struct {
	Decl *ast.FuncDecl
	// Annotation is nil when Err is set.
	Annotation *expand.Annotation
	// Err is the directive parse error, if any.
	Err error
}

// Result is the output of a Loader run.
type Result struct {
	Files       []*TemplateFile
	Diagnostics diagnostic.Diagnostics
}
