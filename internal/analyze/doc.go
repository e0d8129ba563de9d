// Package analyze loads Go packages and finds the template files and
// annotated functions the generator expands.
//
// It uses golang.org/x/tools/go/packages with the template build tag
// enabled and test files included. Only syntax is loaded: template bodies
// refer to the *testing.T of the generated tests and would not type-check
// on their own.
//
// Key types:
//   - TemplateFile: a file guarded by the template tag, with its source
//   - Target: one function carrying a //datafile:test directive
//   - Result: the template files plus loader diagnostics
package analyze
