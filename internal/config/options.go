// Package config defines the CLI's option surface and validates it the
// same way a request DTO gets validated: struct tags read by
// github.com/go-playground/validator/v10, checked once up front instead
// of scattered ad-hoc nil checks through the pipeline.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"safedi/diagnostic"
)

// Options mirrors the CLI's flag surface exactly, one field per flag.
type Options struct {
	// SourcesFilePath names a file listing, one per line, the paths to
	// the module-summary JSON files that make up the target currently
	// being generated for. Required unless ShowVersion is set and unless
	// Include or IncludeFilePath was provided instead.
	SourcesFilePath string

	// Include lists additional module-summary file paths read as
	// dependencies of the current target: their Instantiables are
	// indexed alongside the target's own, and a root found among them is
	// emitted like any other; they are loaded before the
	// current target's own summaries so a duplicate fulfillment in the
	// current target is flagged instead of silently shadowing one of
	// its dependencies.
	Include []string

	// IncludeFilePath names a file listing additional Include paths, one
	// per line, for when the list is too long to pass as repeated flags.
	IncludeFilePath string

	// ModuleInfoOutput, if set, writes the current target's own
	// aggregated ModuleSummary (the Instantiables of every loaded summary,
	// Include dependencies included, merged into one) so a downstream
	// target can pass it via Include.
	ModuleInfoOutput string

	// DependentModuleInfoFilePath is a second, equivalent sink for the
	// aggregated ModuleSummary — kept as its own flag because the real
	// SafeDI CLI exposes both spellings for build-system integration
	// convenience.
	DependentModuleInfoFilePath string

	// DependencyTreeOutput is the directory the single combined
	// generated builder source file is written into. Required unless
	// ShowVersion is set.
	DependencyTreeOutput string `validate:"required_without=ShowVersion"`

	// DotFileOutput, if set, additionally writes a Graphviz DOT
	// visualization of the dependency graph to this path.
	DotFileOutput string

	// AdditionalImportedModules lists import module names to prepend to
	// every generated file regardless of what the module summaries
	// themselves recorded — e.g. a module needed only by hand-written
	// code the generator doesn't see.
	AdditionalImportedModules []string

	// AdditionalImportedModulesFilePath names a file listing additional
	// imported module names, one per line.
	AdditionalImportedModulesFilePath string

	// ShowVersion, if set, short-circuits the rest of the pipeline and
	// just prints the build version.
	ShowVersion bool

	// Verbose enables info-level pipeline tracing via obslog.
	Verbose bool

	// JSONDiagnostics renders diagnostics as JSON instead of text.
	JSONDiagnostics bool
}

var validate = validator.New()

// missingSourcesMessage is surfaced verbatim, matching the message the
// real SafeDI driver prints for the same missing-input condition.
const missingSourcesMessage = "Must provide 'swift-sources-file-path', '--include', or '--include-file-path'"

// Validate checks opts against its struct tags, returning a wrapped
// validator error describing every violated field in one pass rather
// than stopping at the first one. The driver accepts its module
// summaries either as a SourcesFilePath or as Include/IncludeFilePath
// entries — struct tags alone can't express "required unless one of
// these other two is set" with a caller-facing message, so that
// either-or check runs first and short-circuits with a
// diagnostic.ConfigurationError before the generic struct validation.
func Validate(opts Options) error {
	if !opts.ShowVersion && opts.SourcesFilePath == "" && len(opts.Include) == 0 && opts.IncludeFilePath == "" {
		return diagnostic.NewBundle([]diagnostic.Diagnostic{
			diagnostic.ConfigurationError{Message: missingSourcesMessage},
		})
	}
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
