package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"safedi/internal/config"
	"safedi/summary"
	"safedi/types"
)

// additionalImports resolves opts.AdditionalImportedModules and
// opts.AdditionalImportedModulesFilePath into wholesale ImportStatements
// prepended to generated output regardless of what any module summary
// itself recorded.
func additionalImports(opts config.Options) ([]types.ImportStatement, error) {
	names := append([]string(nil), opts.AdditionalImportedModules...)
	if opts.AdditionalImportedModulesFilePath != "" {
		data, err := os.ReadFile(opts.AdditionalImportedModulesFilePath)
		if err != nil {
			return nil, fmt.Errorf("pipeline: reading additional imported modules file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			names = append(names, line)
		}
	}
	out := make([]types.ImportStatement, len(names))
	for i, n := range names {
		out[i] = types.ImportStatement{ModuleName: n}
	}
	return out, nil
}

// WriteOutputs persists a Result to disk per opts: every generated source
// file in result.Files (RenderAll produces one combined file for all
// roots) under DependencyTreeOutput, the DOT file (if requested)
// at DotFileOutput, and the aggregated module summary (if requested) at
// ModuleInfoOutput and/or DependentModuleInfoFilePath.
func WriteOutputs(opts config.Options, result *Result) error {
	if opts.DependencyTreeOutput != "" {
		if err := os.MkdirAll(opts.DependencyTreeOutput, 0o755); err != nil {
			return fmt.Errorf("pipeline: creating dependency tree output directory: %w", err)
		}
		for name, content := range result.Files {
			if name == "safedi-graph.dot" {
				continue
			}
			if err := os.WriteFile(filepath.Join(opts.DependencyTreeOutput, name), []byte(content), 0o644); err != nil {
				return fmt.Errorf("pipeline: writing %s: %w", name, err)
			}
		}
	}

	if opts.DotFileOutput != "" {
		dot, ok := result.Files["safedi-graph.dot"]
		if ok {
			if err := os.MkdirAll(filepath.Dir(opts.DotFileOutput), 0o755); err != nil {
				return fmt.Errorf("pipeline: creating dot output directory: %w", err)
			}
			if err := os.WriteFile(opts.DotFileOutput, []byte(dot), 0o644); err != nil {
				return fmt.Errorf("pipeline: writing dot output: %w", err)
			}
		}
	}

	for _, path := range []string{opts.ModuleInfoOutput, opts.DependentModuleInfoFilePath} {
		if path == "" {
			continue
		}
		if err := summary.Write(result.Merged, path); err != nil {
			return fmt.Errorf("pipeline: writing module info to %s: %w", path, err)
		}
	}
	return nil
}
