package datafile

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Query evaluates a JSONPath expression against the decoded entries of a
// data file. The entries slice is the root, so "$[0].input" selects the
// input of the first case.
func Query(entries []any, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}

	return x.Get(entries), nil
}
