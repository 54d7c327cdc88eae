// Package summary persists and loads per-module ModuleSummary records.
// It is pure data in, pure data out: no semantic validation happens here,
// only the bookkeeping needed to round-trip a types.ModuleSummary through
// a path-addressed file.
package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"safedi/types"
)

// formatVersion is bumped whenever the on-disk envelope's shape changes in
// a way a reader needs to branch on. Within a version, fields are only
// ever added, never removed or repurposed.
const formatVersion = 1

// envelope is the on-disk document. Keeping the summary wrapped (rather
// than writing types.ModuleSummary directly at the document root) gives
// Read somewhere to check the format version before trusting the rest of
// the payload.
type envelope struct {
	Version int                 `json:"version"`
	Summary types.ModuleSummary `json:"summary"`
}

// Write serializes summary as versioned JSON to path, creating parent
// directories as needed. I/O errors are returned as-is (wrapped with
// path context) and treated as fatal to the caller.
func Write(s types.ModuleSummary, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("summary: creating directory for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(envelope{Version: formatVersion, Summary: s}, "", "  ")
	if err != nil {
		return fmt.Errorf("summary: encoding %s: %w", path, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("summary: writing %s: %w", path, err)
	}
	return nil
}

// Read loads and decodes a ModuleSummary previously written by Write.
// A missing or malformed file fails with a diagnostic that names path.
func Read(path string) (types.ModuleSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ModuleSummary{}, fmt.Errorf("summary: reading %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return types.ModuleSummary{}, fmt.Errorf("summary: malformed module summary file %s: %w", path, err)
	}
	if env.Version > formatVersion {
		return types.ModuleSummary{}, fmt.Errorf(
			"summary: %s was written by a newer format (version %d > %d supported)",
			path, env.Version, formatVersion,
		)
	}
	return env.Summary, nil
}
