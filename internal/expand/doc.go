// Package expand is the expansion engine: it turns one annotated template
// function into one independent Go test function per data file entry.
//
// An annotated function looks like this:
//
//	//datafile:test "testdata/cases.yml"
//	func TestAdd(tc TestCase) {
//		if tc.Input.A+tc.Input.B != tc.Output {
//			t.Fatalf("got %d, want %d", tc.Input.A+tc.Input.B, tc.Output)
//		}
//	}
//
// and expands to TestAdd_case_0 ... TestAdd_case_{n-1}. Each unit decodes
// the canonical JSON text of its entry into the parameter type at test run
// time and runs the original body with the value bound to the parameter.
//
// Naming is positional: a unit name depends only on the function name and
// the entry index, never on the entry content.
//
// Structural problems (unreadable file, unknown extension, malformed
// document, entries without a JSON form) fail generation for the whole
// file. Shape mismatches between an entry and the parameter type are left
// to the generated unit and fail only that unit.
package expand
