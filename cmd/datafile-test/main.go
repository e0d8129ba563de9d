// Package main provides the CLI entrypoint for datafile-test.
//
// datafile-test turns functions annotated with //datafile:test "path" in
// template files (guarded by //go:build datafiletest) into one ordinary Go
// test per entry of the referenced JSON or YAML data file. It is meant to be
// run from a //go:generate line:
//
//	//go:generate go run datafile-test/cmd/datafile-test generate
package main

import (
	"context"
	"errors"
	"io"
	"os"

	"datafile-test/internal/diagnostic"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if !errors.Is(err, errReported) {
		printer := diagnostic.NewPrinter(stderr)

		var de *diagnostic.Error
		if errors.As(err, &de) {
			printer.PrintOne(de.Diagnostic)
		} else {
			printer.PrintOne(diagnostic.Diagnostic{Severity: diagnostic.DiagnosticError, Message: err.Error()})
		}
	}

	return 1
}
