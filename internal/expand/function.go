package expand

import (
	"go/ast"
	"go/token"

	"datafile-test/internal/diagnostic"
)

// ResultKind describes what an annotated function returns.
type ResultKind int

const (
	ResultNone  ResultKind = iota // no results
	ResultError                   // a single error
)

// Function is a validated annotated function.
type Function struct {
	// Name is the function identifier, the prefix of every unit name.
	Name string
	// ParamName is the identifier the decoded value is bound to.
	ParamName string
	// ParamType is the parameter type expression as written in the source.
	ParamType string
	// Body is the source text between the body braces, copied verbatim.
	Body string
	// Result is the result shape of the function.
	Result ResultKind
	// Results is the result list as written in the source, e.g. "(err error)".
	Results string
	// Pos is the position of the function name.
	Pos token.Position
}

// NewFunction validates decl and extracts the pieces the engine needs.
// src must be the content of the file decl was parsed from. testingParam
// is the name the generated test binds its *testing.T to.
func NewFunction(fset *token.FileSet, decl *ast.FuncDecl, src []byte, testingParam string) (*Function, error) {
	pos := fset.Position(decl.Name.Pos())

	if decl.Recv != nil {
		return nil, diagnostic.Errorf(pos, diagnostic.CodeReceiver,
			"%s must be a plain function, not a method", decl.Name.Name)
	}

	if decl.Type.TypeParams != nil && decl.Type.TypeParams.NumFields() > 0 {
		return nil, diagnostic.Errorf(pos, diagnostic.CodeGeneric,
			"%s must not declare type parameters", decl.Name.Name)
	}

	if decl.Body == nil {
		return nil, diagnostic.Errorf(pos, diagnostic.CodeParamForm,
			"%s has no body", decl.Name.Name)
	}

	if n := decl.Type.Params.NumFields(); n != 1 {
		return nil, diagnostic.Errorf(pos, diagnostic.CodeArity,
			"%s must have exactly one parameter, found %d", decl.Name.Name, n)
	}

	param := decl.Type.Params.List[0]
	paramPos := fset.Position(param.Pos())

	if len(param.Names) == 0 {
		return nil, diagnostic.Errorf(paramPos, diagnostic.CodeParamForm,
			"%s parameter must be named", decl.Name.Name)
	}

	name := param.Names[0].Name
	if name == "_" {
		return nil, diagnostic.Errorf(paramPos, diagnostic.CodeParamForm,
			"%s parameter must not be the blank identifier", decl.Name.Name)
	}

	switch param.Type.(type) {
	case *ast.Ellipsis:
		return nil, diagnostic.Errorf(paramPos, diagnostic.CodeParamForm,
			"%s parameter must not be variadic", decl.Name.Name)
	case *ast.StarExpr:
		return nil, diagnostic.Errorf(paramPos, diagnostic.CodeParamForm,
			"%s parameter must be a value type, not a pointer", decl.Name.Name)
	}

	if name == testingParam {
		return nil, diagnostic.Errorf(paramPos, diagnostic.CodeParamShadowsTesting,
			"%s parameter %q collides with the *testing.T of the generated tests", decl.Name.Name, name)
	}

	result, err := resultKind(fset, decl)
	if err != nil {
		return nil, err
	}

	var results string
	if decl.Type.Results != nil {
		results = string(src[offset(fset, decl.Type.Results.Pos()):offset(fset, decl.Type.Results.End())])
	}

	return &Function{
		Name:      decl.Name.Name,
		ParamName: name,
		ParamType: string(src[offset(fset, param.Type.Pos()):offset(fset, param.Type.End())]),
		Body:      string(src[offset(fset, decl.Body.Lbrace)+1 : offset(fset, decl.Body.Rbrace)]),
		Result:    result,
		Results:   results,
		Pos:       pos,
	}, nil
}

func resultKind(fset *token.FileSet, decl *ast.FuncDecl) (ResultKind, error) {
	results := decl.Type.Results
	if results.NumFields() == 0 {
		return ResultNone, nil
	}

	if results.NumFields() == 1 {
		if ident, ok := results.List[0].Type.(*ast.Ident); ok && ident.Name == "error" {
			return ResultError, nil
		}
	}

	return ResultNone, diagnostic.Errorf(fset.Position(results.Pos()), diagnostic.CodeResults,
		"%s may only return nothing or a single error", decl.Name.Name)
}

func offset(fset *token.FileSet, p token.Pos) int {
	return fset.Position(p).Offset
}
