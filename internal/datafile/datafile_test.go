package datafile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "testdata/testcase.json", want: FormatJSON},
		{path: "CASES.JSON", want: FormatJSON},
		{path: "cases.yml", want: FormatYAML},
		{path: "cases.Yaml", want: FormatYAML},
		{path: "cases.txt", wantErr: true},
		{path: "cases", wantErr: true},
		{path: "cases.json.bak", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedExtension)
				assert.Equal(t, FormatUnknown, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatOf_SuggestsExtension(t *testing.T) {
	_, err := FormatOf("cases.jsn")
	require.ErrorIs(t, err, ErrUnsupportedExtension)
	assert.Contains(t, err.Error(), `(did you mean "json"?)`)

	_, err = FormatOf("cases.txt")
	require.ErrorIs(t, err, ErrUnsupportedExtension)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "yaml", FormatYAML.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
	assert.Equal(t, "Format(7)", Format(7).String())
}

func TestLoad_JSONAndYAMLConverge(t *testing.T) {
	want := []string{
		`{"input":{"a":1,"b":2},"output":3}`,
		`{"input":{"a":2,"b":3},"output":5}`,
	}

	for _, path := range []string{"testdata/testcase.json", "testdata/testcase.yml"} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			entries, err := Load(path)
			require.NoError(t, err)
			require.Len(t, entries, 2)

			var got []string
			for _, e := range entries {
				text, err := Canonical(e)
				require.NoError(t, err)

				got = append(got, text)
			}

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("canonical text mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCanonical_RoundTripJSON(t *testing.T) {
	src := `[{"name":"x","tags":["a","b"],"ratio":1.50,"big":12345678901234567890,"nested":{"ok":true,"none":null}}]`

	entries, err := Decode(FormatJSON, []byte(src))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	text, err := Canonical(entries[0])
	require.NoError(t, err)
	assert.Contains(t, text, `"ratio":1.50`)
	assert.Contains(t, text, `"big":12345678901234567890`)

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var back any
	require.NoError(t, dec.Decode(&back))

	if diff := cmp.Diff(entries[0], back); diff != "" {
		t.Errorf("round trip mismatch (-orig +back):\n%s", diff)
	}
}

func TestCanonical_SortsKeysAndKeepsHTML(t *testing.T) {
	text, err := Canonical(map[string]any{"z": "<b>&</b>", "a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"z":"<b>&</b>"}`, text)
}

func TestCanonical_Failures(t *testing.T) {
	entries, err := Decode(FormatYAML, []byte("- 1: one\n- .nan\n- ok\n"))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	_, err = Canonical(entries[0])
	require.Error(t, err, "non-string keys have no JSON form")

	_, err = Canonical(entries[1])
	require.Error(t, err, "NaN has no JSON form")

	text, err := Canonical(entries[2])
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, text)
}

func TestDecode_EmptySequences(t *testing.T) {
	entries, err := Decode(FormatJSON, []byte(" [ ] "))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)

	entries, err = Decode(FormatYAML, []byte("[]\n"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = Decode(FormatYAML, []byte(""))
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = Decode(FormatYAML, []byte("# only a comment\n"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name        string
		format      Format
		data        string
		notSequence bool
		is          error
	}{
		{name: "json object", format: FormatJSON, data: `{"a":1}`, notSequence: true},
		{name: "json scalar", format: FormatJSON, data: `42`, notSequence: true},
		{name: "json null", format: FormatJSON, data: `null`, notSequence: true},
		{name: "json empty", format: FormatJSON, data: ``},
		{name: "json malformed", format: FormatJSON, data: `[{"a":1,}]`},
		{name: "json trailing data", format: FormatJSON, data: `[1] [2]`},
		{name: "yaml content in json file", format: FormatJSON, data: "- input:\n    a: 1\n"},
		{name: "yaml mapping", format: FormatYAML, data: "a: 1\n", notSequence: true},
		{name: "yaml scalar", format: FormatYAML, data: "hello\n", notSequence: true},
		{name: "yaml malformed", format: FormatYAML, data: "- [unclosed\n"},
		{name: "yaml two documents", format: FormatYAML, data: "- 1\n---\n- 2\n", is: ErrMultipleDocuments},
		{name: "yaml second document malformed", format: FormatYAML, data: "- 1\n---\n- [unclosed\n"},
		{name: "json invalid utf8 in string", format: FormatJSON, data: "[\"\xff\"]"},
		{name: "json invalid utf8 in key", format: FormatJSON, data: "[{\"a\xfe\":1}]"},
		{name: "unknown format", format: FormatUnknown, data: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Decode(tt.format, []byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, entries)

			if tt.notSequence {
				assert.ErrorIs(t, err, ErrNotSequence)
			}

			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestDecode_YAMLSingleDocumentMarkers(t *testing.T) {
	entries, err := Decode(FormatYAML, []byte("---\n- 1\n- 2\n...\n"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = Decode(FormatYAML, []byte("---\n- 1\n---\n- 2\n- 3\n"))
	require.ErrorIs(t, err, ErrMultipleDocuments)
	assert.Contains(t, err.Error(), "second document")
}

func TestDecode_InvalidUTF8(t *testing.T) {
	_, err := Decode(FormatJSON, []byte("[{\"name\":\"caf\xe9\"}]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid UTF-8")

	entries, err := Decode(FormatJSON, []byte(`[{"name":"café"}]`))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "café"}}, entries)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	txt := filepath.Join(dir, "cases.txt")
	require.NoError(t, os.WriteFile(txt, []byte("[]"), 0o644))

	_, err = Load(txt)
	require.ErrorIs(t, err, ErrUnsupportedExtension)

	bad := filepath.Join(dir, "cases.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("a: b\n"), 0o644))

	_, err = Load(bad)
	require.ErrorIs(t, err, ErrNotSequence)
	assert.Contains(t, err.Error(), "failed to parse yaml file")
}

func TestQuery(t *testing.T) {
	entries, err := Load("testdata/testcase.json")
	require.NoError(t, err)

	got, err := Query(entries, "$[1].output")
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("5")}, got)

	got, err = Query(entries, "$[*].input.a")
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, got)

	_, err = Query(entries, "$[")
	require.Error(t, err)
}
