package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"safedi/diagnostic"
	"safedi/internal/config"
	"safedi/internal/obslog"
	"safedi/pipeline"
)

var generateOpts config.Options
var jsonDiagnostics bool

var generateCmd = &cobra.Command{
	Use:   "generate <sources-file>",
	Short: "Build, validate, and emit generated source for one target",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintln(os.Stdout, Version)
			return nil
		}
		if len(args) == 1 {
			generateOpts.SourcesFilePath = args[0]
		}
		generateOpts.ShowVersion = showVersion
		generateOpts.JSONDiagnostics = jsonDiagnostics
		return runGenerate(generateOpts)
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.StringArrayVar(&generateOpts.Include, "include", nil, "path to a dependency module-info file (repeatable)")
	flags.StringVar(&generateOpts.IncludeFilePath, "include-file-path", "", "file listing dependency module-info paths, one per line")
	flags.StringVar(&generateOpts.ModuleInfoOutput, "module-info-output", "", "path to write this target's aggregated module info")
	flags.StringVar(&generateOpts.DependentModuleInfoFilePath, "dependent-module-info-file-path", "", "alternate path to write this target's aggregated module info")
	flags.StringVar(&generateOpts.DependencyTreeOutput, "dependency-tree-output", "", "directory to write generated builder source into")
	flags.StringVar(&generateOpts.DotFileOutput, "dot-file-output", "", "path to write a DOT visualization of the dependency graph")
	flags.StringArrayVar(&generateOpts.AdditionalImportedModules, "additional-imported-modules", nil, "module name to prepend to every generated file (repeatable)")
	flags.StringVar(&generateOpts.AdditionalImportedModulesFilePath, "additional-imported-modules-file-path", "", "file listing additional imported module names, one per line")
	flags.BoolVarP(&generateOpts.Verbose, "verbose", "v", false, "trace pipeline stage progress")
	flags.BoolVar(&jsonDiagnostics, "json-diagnostics", false, "render diagnostics as JSON instead of text")
}

func runGenerate(opts config.Options) error {
	if opts.ShowVersion {
		fmt.Fprintln(os.Stdout, Version)
		return nil
	}
	if err := config.Validate(opts); err != nil {
		return renderOrReturn(opts, err)
	}

	logger := obslog.New(os.Stderr, opts.Verbose)
	app := pipeline.NewApp(opts, logger)

	result, err := app.Run()
	if err != nil {
		return renderOrReturn(opts, err)
	}

	return pipeline.WriteOutputs(opts, result)
}

// renderOrReturn renders err through the diagnostic.Renderer when it's a
// *diagnostic.Bundle — the shape a pipeline run and config.Validate's
// missing-sources check fail with — or passes any other error (struct-tag
// validation failures, I/O, flag parsing) straight through.
func renderOrReturn(opts config.Options, err error) error {
	bundle, ok := err.(*diagnostic.Bundle)
	if !ok {
		return err
	}
	format := diagnostic.FormatText
	if opts.JSONDiagnostics {
		format = diagnostic.FormatJSON
	}
	renderer := diagnostic.Renderer{Format: format}
	if renderErr := renderer.Render(os.Stderr, bundle); renderErr != nil {
		return renderErr
	}
	return fmt.Errorf("generate: %d diagnostic(s)", bundle.Len())
}
