package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"datafile-test/internal/ctxlog"
)

// errReported is returned by commands whose diagnostics were already printed.
var errReported = errors.New("errors reported")

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "datafile-test",
		Short: "Generate one Go test per entry of a JSON or YAML data file",
		Long: `datafile-test expands functions annotated with //datafile:test "path"
into one test function per entry of the referenced data file.

Annotated functions live in template files guarded by //go:build datafiletest.
Each takes exactly one named parameter; its type must decode from the JSON
form of an entry. The generated file <name>_datafile_test.go carries the
negated constraint and replaces every annotated function by
<Func>_case_0 ... <Func>_case_<n-1>.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug details to stderr")

	cmd.AddCommand(
		newGenerateCmd(),
		newCheckCmd(),
		newInspectCmd(),
		newVersionCmd(),
	)

	return cmd
}
