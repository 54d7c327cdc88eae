// Package pipeline wires the four analysis stages (registry, scope,
// validator, emitter) into one driver the CLI invokes, built around the
// same "collect every module's providers before building the container"
// shape an fx-based application module manager uses, generalized from
// fx providers/controllers to ModuleSummary Instantiables/Imports.
package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"safedi/summary"
	"safedi/types"
)

// ModuleLoader reads module-summary files from disk and orders them for
// registry.Build: dependency summaries (read via Include /
// IncludeFilePath) are loaded first, the current target's own summaries
// (read via the sources file) last, so that in a fulfilled-type conflict
// the dependency's provider is indexed first and the current target's
// conflicting declaration is the one flagged as a DuplicateInstantiable
// — a target should not silently shadow a dependency's provider.
type ModuleLoader struct{}

// NewModuleLoader constructs a ModuleLoader.
func NewModuleLoader() *ModuleLoader { return &ModuleLoader{} }

// Load resolves sourcesFilePath and the include paths (direct plus those
// listed in includeFilePath) into ordered module summaries. A caller may
// omit sourcesFilePath entirely when the target is driven purely by
// Include/IncludeFilePath dependencies — config.Validate already
// enforces that at least one of the three was provided.
func (l *ModuleLoader) Load(sourcesFilePath string, include []string, includeFilePath string) ([]types.ModuleSummary, error) {
	depPaths, err := l.resolveIncludePaths(include, includeFilePath)
	if err != nil {
		return nil, err
	}
	var ownPaths []string
	if sourcesFilePath != "" {
		ownPaths, err = readPathList(sourcesFilePath)
		if err != nil {
			return nil, fmt.Errorf("pipeline: reading sources file %s: %w", sourcesFilePath, err)
		}
	}

	var out []types.ModuleSummary
	for _, p := range depPaths {
		s, err := summary.Read(p)
		if err != nil {
			return nil, fmt.Errorf("pipeline: loading dependency module summary: %w", err)
		}
		out = append(out, s)
	}
	for _, p := range ownPaths {
		s, err := summary.Read(p)
		if err != nil {
			return nil, fmt.Errorf("pipeline: loading module summary: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (l *ModuleLoader) resolveIncludePaths(include []string, includeFilePath string) ([]string, error) {
	paths := append([]string(nil), include...)
	if includeFilePath != "" {
		fromFile, err := readPathList(includeFilePath)
		if err != nil {
			return nil, fmt.Errorf("pipeline: reading include file %s: %w", includeFilePath, err)
		}
		paths = append(paths, fromFile...)
	}
	return paths, nil
}

// readPathList reads one path per non-blank line of path, resolving each
// relative to path's own directory so a sources file can be invoked from
// any working directory.
func readPathList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// Merge aggregates every Instantiable and deduplicated Import across
// summaries into a single ModuleSummary, the shape written to
// --module-info-output for a downstream target to Include.
func Merge(summaries []types.ModuleSummary) types.ModuleSummary {
	var merged types.ModuleSummary
	seenImports := map[string]bool{}
	for _, s := range summaries {
		merged.Instantiables = append(merged.Instantiables, s.Instantiables...)
		for _, imp := range s.Imports {
			key := imp.ModuleName + "|" + imp.Kind + "|" + imp.Symbol
			if seenImports[key] {
				continue
			}
			seenImports[key] = true
			merged.Imports = append(merged.Imports, imp)
		}
	}
	return merged
}
