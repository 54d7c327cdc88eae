package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedi/internal/config"
	"safedi/types"
)

func TestAdditionalImportsCombinesFlagsAndFile(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "imports.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("Combine\n"), 0o644))

	opts := config.Options{
		AdditionalImportedModules:        []string{"Foundation"},
		AdditionalImportedModulesFilePath: listPath,
	}

	imports, err := additionalImports(opts)
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, "Foundation", imports[0].ModuleName)
	assert.Equal(t, "Combine", imports[1].ModuleName)
}

func TestWriteOutputsWritesSourceDotAndModuleInfo(t *testing.T) {
	dir := t.TempDir()
	opts := config.Options{
		DependencyTreeOutput: filepath.Join(dir, "generated"),
		DotFileOutput:        filepath.Join(dir, "graph.dot"),
		ModuleInfoOutput:     filepath.Join(dir, "module-info.json"),
	}
	result := &Result{
		Merged: types.ModuleSummary{Instantiables: []types.Instantiable{{ConcreteType: types.Simple{Name: "A"}}}},
		Files: map[string]string{
			"A+SafeDI.swift": "// generated\n",
			"safedi-graph.dot": "graph SafeDI {}\n",
		},
	}

	require.NoError(t, WriteOutputs(opts, result))

	assert.FileExists(t, filepath.Join(dir, "generated", "A+SafeDI.swift"))
	assert.FileExists(t, filepath.Join(dir, "graph.dot"))
	assert.FileExists(t, filepath.Join(dir, "module-info.json"))
}
