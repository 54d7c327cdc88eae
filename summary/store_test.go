package summary

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedi/types"
)

func exampleSummary() types.ModuleSummary {
	return types.ModuleSummary{
		Imports: []types.ImportStatement{
			{ModuleName: "Foundation"},
			{ModuleName: "UIKit", Kind: "class", Symbol: "UIKit.UIViewController"},
		},
		Instantiables: []types.Instantiable{
			{
				ConcreteType:    types.Simple{Name: "NetworkService"},
				DeclarationKind: types.DeclarationClass,
				Initializer: &types.Initializer{
					IsPublicOrOpen: true,
					Arguments: []types.Argument{
						{InnerLabel: "logger", Type: types.Simple{Name: "Logger"}},
					},
				},
				Dependencies: []types.Dependency{
					{
						Property: types.Property{Label: "logger", Type: types.Simple{Name: "Logger"}},
						Source:   types.Instantiated{},
					},
				},
			},
			{
				ConcreteType:    types.Simple{Name: "Root"},
				IsRoot:          true,
				DeclarationKind: types.DeclarationStruct,
				Dependencies: []types.Dependency{
					{
						Property: types.Property{Label: "networkService", Type: types.Simple{Name: "NetworkService"}},
						Source:   types.Instantiated{},
					},
				},
			},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "Module.safedi.json")

	original := exampleSummary()
	require.NoError(t, Write(original, path))

	loaded, err := Read(path)
	require.NoError(t, err)

	// A field-by-field comparison here would miss a field silently
	// dropped by the wire translation; cmp.Diff walks the whole struct,
	// interface fields included, so a regression shows up as a concrete
	// diff instead of a test that quietly stops checking the new field.
	if diff := cmp.Diff(original, loaded); diff != "" {
		t.Errorf("round-trip mismatch (-original +loaded):\n%s", diff)
	}
}

func TestReadMissingFileFails(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReadMalformedFileNamesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, writeRaw(path, "{not json"))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
