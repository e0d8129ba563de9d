package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files next to their templates.
func WriteFiles(files []GeneratedFile) error {
	for _, file := range files {
		err := os.MkdirAll(filepath.Dir(file.Path), dirPerm)
		if err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		err = os.WriteFile(file.Path, file.Content, filePerm)
		if err != nil {
			return fmt.Errorf("writing file %s: %w", file.Path, err)
		}
	}

	return nil
}

// StaleFiles returns the files whose content differs from what is on disk,
// including files that do not exist yet.
func StaleFiles(files []GeneratedFile) ([]GeneratedFile, error) {
	var stale []GeneratedFile

	for _, file := range files {
		current, err := os.ReadFile(file.Path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", file.Path, err)
		}

		if !bytes.Equal(current, file.Content) {
			stale = append(stale, file)
		}
	}

	return stale, nil
}
