package analyze

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"datafile-test/internal/diagnostic"
)

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	files["go.mod"] = "module example.com/cases\n\ngo 1.22\n"

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return dir
}

func TestLoader_Load(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"cases.go": "package cases\n\ntype TestCase struct{ A, B, Sum int }\n",
		"add_test.go": `//go:build datafiletest

package cases

import "testing"

//datafile:test "testdata/add.yml"
func TestAdd(tc TestCase) {
	if tc.A+tc.B != tc.Sum {
		t.Fatal("sum")
	}
}

func helper() {}

//datafile:test 42
func TestBroken(tc TestCase) {}
`,
		"plain_test.go": `package cases

//datafile:test "testdata/ignored.yml"
func TestIgnored(tc TestCase) {}
`,
		"generated_datafile_test.go": "//go:build !datafiletest\n\npackage cases\n\nfunc TestAdd_case_0(t *testing.T) {}\n",
		"cases_x_test.go":            "//go:build datafiletest\n\npackage cases_test\n\nfunc TestNothing() {}\n",
	})

	res, err := NewLoader("", dir).Load(t.Context(), "./...")
	require.NoError(t, err)
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())

	require.Len(t, res.Files, 2, "each template file is reported once across test variants")

	tf := res.Files[0]
	assert.Equal(t, filepath.Join(dir, "add_test.go"), evalPath(t, tf.Path, dir))
	assert.Equal(t, "cases", tf.PkgName)
	assert.Equal(t, "example.com/cases", tf.PkgPath)
	assert.Equal(t, "//go:build datafiletest", tf.Constraint.Text)
	assert.Contains(t, string(tf.Src), "func helper() {}")

	require.Len(t, tf.Targets, 2)
	assert.Equal(t, "TestAdd", tf.Targets[0].Decl.Name.Name)
	require.NotNil(t, tf.Targets[0].Annotation)
	assert.Equal(t, "testdata/add.yml", tf.Targets[0].Annotation.Path)
	assert.Equal(t, "TestBroken", tf.Targets[1].Decl.Name.Name)
	assert.Nil(t, tf.Targets[1].Annotation)
	assert.Equal(t, diagnostic.CodeMalformedAnnotation, diagnostic.CodeOf(tf.Targets[1].Err))

	other := res.Files[1]
	assert.Equal(t, "cases_test", other.PkgName)
	assert.Empty(t, other.Targets)

	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeIgnoredAnnotation, res.Diagnostics.Warnings[0].Code)
	assert.Contains(t, res.Diagnostics.Warnings[0].Message, "TestIgnored")
}

func TestLoader_CustomTag(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"cases.go":  "package cases\n",
		"a_test.go": "//go:build cases\n\npackage cases\n\n//datafile:test \"a.json\"\nfunc TestA(tc int) {}\n",
		"b_test.go": "//go:build datafiletest\n\npackage cases\n\n//datafile:test \"b.json\"\nfunc TestB(tc int) {}\n",
	})

	loader := NewLoader("cases", dir)
	assert.Equal(t, "cases", loader.Tag())

	res, err := loader.Load(t.Context())
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "TestA", res.Files[0].Targets[0].Decl.Name.Name)
}

func TestLoader_PackageErrors(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"cases.go":    "package cases\n",
		"bad_test.go": "//go:build datafiletest\n\npackage cases\n\nfunc TestBad( {\n",
	})

	res, err := NewLoader("", dir).Load(t.Context(), ".")
	require.NoError(t, err)
	assert.True(t, res.Diagnostics.HasErrors())
	assert.Equal(t, diagnostic.CodeLoadFailed, res.Diagnostics.Errors[0].Code)
}

func TestLoader_TestNamedTemplatesAreNotTestFuncs(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"arith.go":      "package arith\n\nfunc Add(a, b int) int { return a + b }\n",
		"cases_test.go": "package arith\n\ntype TestCase struct{ A, B, Want int }\n",
		"arith_test.go": `//go:build datafiletest

package arith

//datafile:test "testdata/add.json"
func TestAdd(tc TestCase) {
	if got := Add(tc.A, tc.B); got != tc.Want {
		t.Fatalf("Add = %d, want %d", got, tc.Want)
	}
}

//datafile:test "testdata/add.json"
func TestAddErr(tc TestCase) error {
	return nil
}
`,
	})

	res, err := NewLoader("", dir).Load(t.Context(), "./...")
	require.NoError(t, err)
	assert.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Error())

	require.Len(t, res.Files, 1)
	require.Len(t, res.Files[0].Targets, 2)
	assert.Equal(t, "TestAdd", res.Files[0].Targets[0].Decl.Name.Name)
}

func TestErrorFile(t *testing.T) {
	abs, err := filepath.Abs("add_test.go")
	require.NoError(t, err)

	assert.Equal(t, abs, errorFile(packages.Error{Pos: "add_test.go:13:1", Msg: "wrong signature for TestAdd"}, ""))
	assert.Equal(t, "/x/add_test.go", errorFile(packages.Error{Pos: "./add_test.go:13:1"}, "/x"))
	assert.Equal(t, "/x/add_test.go", errorFile(packages.Error{Msg: "/x/add_test.go:13:1: wrong signature for TestAdd"}, "/y"))
	assert.Equal(t, "/x/add_test.go", errorFile(packages.Error{Pos: "/x/add_test.go:13"}, ""))
	assert.Empty(t, errorFile(packages.Error{Msg: "no Go files in /x"}, ""))
}

func TestLoader_LookalikeDirective(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"cases.go": "package cases\n",
		"a_test.go": "//go:build datafiletest\n\npackage cases\n\n// datafile:test \"a.json\"\nfunc TestA(tc int) {}\n\n" +
			"//datafile:tests \"b.json\"\nfunc TestB(tc int) {}\n",
	})

	res, err := NewLoader("", dir).Load(t.Context(), ".")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Empty(t, res.Files[0].Targets)

	require.Len(t, res.Diagnostics.Warnings, 2)
	assert.Equal(t, diagnostic.CodeUnknownDirective, res.Diagnostics.Warnings[0].Code)
	assert.Equal(t, 5, res.Diagnostics.Warnings[0].Pos.Line)
	assert.Contains(t, res.Diagnostics.Warnings[1].Message, "//datafile:tests")
}

// evalPath resolves symlinks (macOS temp dirs) so paths compare equal.
func evalPath(t *testing.T, path, dir string) string {
	t.Helper()

	realDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	realPath, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)

	rel, err := filepath.Rel(realDir, realPath)
	require.NoError(t, err)

	return filepath.Join(dir, rel)
}
