// Package casebind is the runtime side of datafile-test. Generated tests call
// Decode to turn the canonical JSON of one data-file entry into the value of
// the annotated function's parameter type; tests that prefer not to generate
// code call Run to iterate a data file directly.
package casebind

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"datafile-test/internal/datafile"
)

// Decode unmarshals text into a T. A failure aborts only the calling test.
func Decode[T any](t testing.TB, text string) T {
	t.Helper()

	var v T

	err := json.Unmarshal([]byte(text), &v)
	require.NoError(t, err, "test case does not decode into %T: %s", v, text)

	return v
}

// Run loads the JSON or YAML data file at path, relative to the package
// directory, and runs fn for every entry as subtest "case_<i>". A data file
// that cannot be loaded fails t; an entry that does not decode fails only its
// subtest.
func Run[T any](t *testing.T, path string, fn func(t *testing.T, tc T)) {
	t.Helper()

	entries, err := datafile.Load(filepath.FromSlash(path))
	require.NoError(t, err)

	for i, entry := range entries {
		text, err := datafile.Canonical(entry)
		require.NoError(t, err, "test case %d", i)

		t.Run("case_"+strconv.Itoa(i), func(t *testing.T) {
			fn(t, Decode[T](t, text))
		})
	}
}
