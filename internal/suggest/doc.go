// Package suggest finds the closest known spelling of a mistyped word, for
// "did you mean" hints in diagnostics.
package suggest
