// Package gen turns template files into generated _test.go files.
//
// Generation approach: the template source is spliced rather than
// re-printed, so everything outside the annotated functions (license
// headers, helper declarations, comments) survives. Each
// annotated function is replaced by the fragment the expansion engine
// produces; the //go:build line is rewritten with the template tag
// negated; imports are then fixed with golang.org/x/tools/imports and the
// result is optionally run through gofumpt.
//
// A template file with any error diagnostic produces no output at all.
package gen
