package gen

import (
	"os"
	"path/filepath"
	"strings"
)

// writeDebugUnformatted writes unformatted code to a sidecar file next to the
// intended output. This is best-effort and should never make generation fail
// harder.
func writeDebugUnformatted(outputPath string, content []byte) error {
	if outputPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), dirPerm); err != nil {
		return err
	}
	// Not a .go file: the sidecar must never be compiled with the package.
	debugPath := strings.TrimSuffix(outputPath, ".go") + ".unformatted.go.txt"

	return os.WriteFile(debugPath, content, filePerm)
}
