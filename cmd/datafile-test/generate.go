package main

import (
	"context"
	"fmt"
	"go/token"

	"github.com/spf13/cobra"

	"datafile-test/internal/analyze"
	"datafile-test/internal/common"
	"datafile-test/internal/config"
	"datafile-test/internal/ctxlog"
	"datafile-test/internal/diagnostic"
	"datafile-test/internal/gen"
)

// pipelineOptions are the flags shared by generate and check.
type pipelineOptions struct {
	configPath       string
	tag              string
	baseDir          string
	gofumpt          bool
	debugUnformatted bool
}

func (o *pipelineOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.configPath, "config", "", "configuration file (default: "+config.FileName+" in the working directory or a parent)")
	flags.StringVar(&o.tag, "tag", analyze.DefaultTag, "build tag marking template files")
	flags.StringVar(&o.baseDir, "base-dir", "", "directory relative data file paths resolve against (default: the template's directory)")
	flags.BoolVar(&o.gofumpt, "gofumpt", true, "format generated files with gofumpt")
	flags.BoolVar(&o.debugUnformatted, "debug-unformatted", false, "write a .unformatted.go.txt sidecar when formatting fails")
}

// generatorConfig layers defaults, the configuration file and explicitly set
// flags, in that order.
func (o *pipelineOptions) generatorConfig(cmd *cobra.Command) (gen.GeneratorConfig, error) {
	cfg := gen.DefaultGeneratorConfig()

	file, err := config.Load(o.configPath, ".")
	if err != nil {
		return cfg, err
	}

	if file != nil {
		ctxlog.FromContext(cmd.Context()).Debug("loaded config", "path", file.Path())
		file.Apply(&cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("tag") {
		cfg.Tag = o.tag
	}

	if flags.Changed("base-dir") {
		cfg.BaseDir = o.baseDir
	}

	if flags.Changed("gofumpt") {
		cfg.Gofumpt = o.gofumpt
	}

	if flags.Changed("debug-unformatted") {
		cfg.DebugUnformatted = o.debugUnformatted
	}

	return cfg, nil
}

// runPipeline loads the packages matching patterns and expands their
// template files. Files with errors produce no output.
func runPipeline(
	ctx context.Context,
	cfg gen.GeneratorConfig,
	patterns []string,
) ([]gen.GeneratedFile, diagnostic.Diagnostics, error) {
	res, err := analyze.NewLoader(cfg.Tag, "").Load(ctx, patterns...)
	if err != nil {
		return nil, diagnostic.Diagnostics{}, err
	}

	diags := res.Diagnostics
	if common.IsEmpty(res.Files) {
		diags.AddInfo("", fmt.Sprintf("no template files tagged %q found", cfg.Tag), token.Position{})
	}

	files := gen.NewGenerator(cfg).Generate(ctx, res.Files, &diags)

	return files, diags, nil
}

func newGenerateCmd() *cobra.Command {
	opts := &pipelineOptions{}

	cmd := &cobra.Command{
		Use:   "generate [packages]",
		Short: "Write <name>_datafile_test.go next to every template file",
		Long: `generate loads the given packages (default ".") with the template tag set,
expands every annotated function and writes one generated file per template
file. A template file with any error is left without output; the command then
exits with status 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := ctxlog.FromContext(ctx)

			cfg, err := opts.generatorConfig(cmd)
			if err != nil {
				return err
			}

			files, diags, err := runPipeline(ctx, cfg, args)
			if err != nil {
				return err
			}

			if err := gen.WriteFiles(files); err != nil {
				return err
			}

			for _, f := range files {
				log.Info("generated", "file", f.Path, "tests", f.Units)
			}

			diagnostic.NewPrinter(cmd.ErrOrStderr()).Print(&diags)

			if diags.HasErrors() {
				return errReported
			}

			return nil
		},
	}

	opts.register(cmd)

	return cmd
}

func newCheckCmd() *cobra.Command {
	opts := &pipelineOptions{}

	cmd := &cobra.Command{
		Use:   "check [packages]",
		Short: "Fail when generated files are missing or out of date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := opts.generatorConfig(cmd)
			if err != nil {
				return err
			}

			files, diags, err := runPipeline(ctx, cfg, args)
			if err != nil {
				return err
			}

			stale, err := gen.StaleFiles(files)
			if err != nil {
				return err
			}

			for _, f := range stale {
				diags.AddError(diagnostic.CodeStaleOutput,
					"out of date; run datafile-test generate",
					token.Position{Filename: f.Path})
			}

			diagnostic.NewPrinter(cmd.ErrOrStderr()).Print(&diags)

			if diags.HasErrors() {
				return errReported
			}

			return nil
		},
	}

	opts.register(cmd)

	return cmd
}
