package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"safedi/emitter"
	"safedi/internal/config"
	"safedi/internal/obslog"
	"safedi/summary"
	"safedi/types"
)

func TestAppRunProducesGeneratedSourceForValidGraph(t *testing.T) {
	dir := t.TempDir()

	root := types.Instantiable{
		ConcreteType:    types.Simple{Name: "AppRoot"},
		IsRoot:          true,
		DeclarationKind: types.DeclarationClass,
		Dependencies: []types.Dependency{
			{Property: types.Property{Label: "network", Type: types.Simple{Name: "NetworkService"}}, Source: types.Instantiated{}},
		},
	}
	network := types.Instantiable{ConcreteType: types.Simple{Name: "NetworkService"}, DeclarationKind: types.DeclarationClass}

	summaryPath := filepath.Join(dir, "module.json")
	require.NoError(t, summary.Write(types.ModuleSummary{Instantiables: []types.Instantiable{root, network}}, summaryPath))

	sourcesFile := filepath.Join(dir, "sources.txt")
	require.NoError(t, os.WriteFile(sourcesFile, []byte(summaryPath+"\n"), 0o644))

	opts := config.Options{
		SourcesFilePath:      sourcesFile,
		DependencyTreeOutput: filepath.Join(dir, "out"),
	}

	app := NewApp(opts, obslog.New(&bytes.Buffer{}, false))
	result, err := app.Run()
	require.NoError(t, err)
	require.NotNil(t, result.Graph)
	require.Contains(t, result.Files, emitter.GeneratedFileName)
	require.Contains(t, result.Files[emitter.GeneratedFileName], "let appRoot = AppRoot(network: networkService)")
}

func TestAppRunReturnsBundleOnMissingProvider(t *testing.T) {
	dir := t.TempDir()

	root := types.Instantiable{
		ConcreteType:    types.Simple{Name: "AppRoot"},
		IsRoot:          true,
		DeclarationKind: types.DeclarationClass,
		Dependencies: []types.Dependency{
			{Property: types.Property{Label: "network", Type: types.Simple{Name: "NetworkService"}}, Source: types.Instantiated{}},
		},
	}

	summaryPath := filepath.Join(dir, "module.json")
	require.NoError(t, summary.Write(types.ModuleSummary{Instantiables: []types.Instantiable{root}}, summaryPath))

	sourcesFile := filepath.Join(dir, "sources.txt")
	require.NoError(t, os.WriteFile(sourcesFile, []byte(summaryPath+"\n"), 0o644))

	opts := config.Options{
		SourcesFilePath:      sourcesFile,
		DependencyTreeOutput: filepath.Join(dir, "out"),
	}

	app := NewApp(opts, obslog.New(&bytes.Buffer{}, false))
	_, err := app.Run()
	require.Error(t, err)
}
