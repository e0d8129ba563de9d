package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"datafile-test/internal/gen"
)

// FileName is the configuration file looked up by Find.
const FileName = ".datafile-test.yaml"

// File is the on-disk configuration. Unset fields keep the generator defaults.
type File struct {
	// Tag is the build tag marking template files.
	Tag string `yaml:"tag,omitempty"`
	// BaseDir resolves relative data paths. A relative value is taken
	// relative to the configuration file.
	BaseDir string `yaml:"base_dir,omitempty"`
	// TestingParam names the *testing.T parameter of generated tests.
	TestingParam string `yaml:"testing_param,omitempty"`
	// RuntimeImport is the import path of the Decode helper package.
	RuntimeImport string `yaml:"runtime_import,omitempty"`
	// OutputSuffix names generated files.
	OutputSuffix string `yaml:"output_suffix,omitempty"`
	// Gofumpt toggles gofumpt formatting.
	Gofumpt *bool `yaml:"gofumpt,omitempty"`
	// DebugUnformatted writes the unformatted source when formatting fails.
	DebugUnformatted *bool `yaml:"debug_unformatted,omitempty"`

	// path is where the file was loaded from.
	path string
}

// Path returns the file the configuration was loaded from, or "" when it was
// parsed from memory.
func (f *File) Path() string {
	return f.path
}

// LoadFile loads and parses a configuration file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f.path = path
	if f.BaseDir != "" && !filepath.IsAbs(f.BaseDir) {
		f.BaseDir = filepath.Join(filepath.Dir(path), f.BaseDir)
	}

	return f, nil
}

// Parse parses YAML data into a File. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &f, nil
}

// Find looks for FileName in dir and its parents. It returns "" when no
// file exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, FileName)

		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}

		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// Load returns the configuration at path, or when path is empty the one
// found from dir upwards. It returns nil when there is none.
func Load(path, dir string) (*File, error) {
	if path == "" {
		found, err := Find(dir)
		if err != nil || found == "" {
			return nil, err
		}

		path = found
	}

	return LoadFile(path)
}

// Apply overlays the set fields of f on cfg.
func (f *File) Apply(cfg *gen.GeneratorConfig) {
	if f == nil {
		return
	}

	setString(&cfg.Tag, f.Tag)
	setString(&cfg.BaseDir, f.BaseDir)
	setString(&cfg.TestingParam, f.TestingParam)
	setString(&cfg.RuntimeImport, f.RuntimeImport)
	setString(&cfg.OutputSuffix, f.OutputSuffix)

	if f.Gofumpt != nil {
		cfg.Gofumpt = *f.Gofumpt
	}

	if f.DebugUnformatted != nil {
		cfg.DebugUnformatted = *f.DebugUnformatted
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
