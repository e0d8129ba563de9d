package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"datafile-test/internal/datafile"
)

type inspectOptions struct {
	query string
	dump  bool
	name  string
}

func newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <datafile>",
		Short: "Show the test cases a data file expands to",
		Long: `inspect decodes a JSON or YAML data file the way generate does and prints,
per entry, the generated test name and the canonical JSON text the test
decodes at run time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := datafile.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if opts.query != "" {
				entries, err = datafile.Query(entries, opts.query)
				if err != nil {
					return err
				}
			}

			if opts.dump {
				spew.Fdump(out, entries)
				return nil
			}

			for i, entry := range entries {
				text, err := datafile.Canonical(entry)
				if err != nil {
					return fmt.Errorf("test case %d: %w", i, err)
				}

				_, _ = fmt.Fprintf(out, "%s_case_%d\t%s\n", opts.name, i, text)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.query, "query", "", "JSONPath selecting values from the entries (e.g. '$[*].input')")
	flags.BoolVar(&opts.dump, "dump", false, "dump the decoded Go values instead of canonical JSON")
	flags.StringVar(&opts.name, "func", "F", "function name used to label generated tests")

	return cmd
}
