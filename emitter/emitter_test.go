package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedi/registry"
	"safedi/scope"
	"safedi/types"
)

func instantiatedDep(label, typeName string) types.Dependency {
	return types.Dependency{Property: types.Property{Label: label, Type: types.Simple{Name: typeName}}, Source: types.Instantiated{}}
}

func buildGraph(t *testing.T, instantiables ...types.Instantiable) *scope.Graph {
	t.Helper()
	reg, diags := registry.Build([]types.ModuleSummary{{Instantiables: instantiables}})
	require.Empty(t, diags)
	return scope.Build(reg)
}

func TestRenderRootProducesOrderedLetBindings(t *testing.T) {
	network := types.Instantiable{ConcreteType: types.Simple{Name: "NetworkService"}, DeclarationKind: types.DeclarationClass}
	root := types.Instantiable{
		ConcreteType:    types.Simple{Name: "AppRoot"},
		IsRoot:          true,
		DeclarationKind: types.DeclarationClass,
		Dependencies:    []types.Dependency{instantiatedDep("network", "NetworkService")},
	}

	graph := buildGraph(t, network, root)
	require.Len(t, graph.Roots, 1)

	out := New(nil).RenderRoot(graph.Roots[0])
	networkIdx := strings.Index(out, "let networkService = NetworkService()")
	rootIdx := strings.Index(out, "let appRoot = AppRoot(network: networkService)")
	require.GreaterOrEqual(t, networkIdx, 0)
	require.GreaterOrEqual(t, rootIdx, 0)
	assert.Less(t, networkIdx, rootIdx, "dependency must be declared before its dependent")
	assert.Contains(t, out, "return appRoot")
}

func TestRenderRootKeepsReceivedPropertyNameAsIs(t *testing.T) {
	child := types.Instantiable{
		ConcreteType:    types.Simple{Name: "Child"},
		DeclarationKind: types.DeclarationClass,
		Dependencies: []types.Dependency{
			{Property: types.Property{Label: "x", Type: types.Simple{Name: "X"}}, Source: types.Received{}},
		},
	}
	root := types.Instantiable{
		ConcreteType:    types.Simple{Name: "AppRoot"},
		IsRoot:          true,
		DeclarationKind: types.DeclarationClass,
		Dependencies: []types.Dependency{
			instantiatedDep("x", "X"),
			instantiatedDep("child", "Child"),
		},
	}

	graph := buildGraph(t, child, root)
	out := New(nil).RenderRoot(graph.Roots[0])
	assert.Contains(t, out, "let child = Child(x: x)")
}

func TestDeduplicateImportsPrefersWholesale(t *testing.T) {
	imports := []types.ImportStatement{
		{ModuleName: "Foundation", Kind: "class", Symbol: "Foundation.Data"},
		{ModuleName: "Foundation"},
		{ModuleName: "UIKit", Kind: "class", Symbol: "UIKit.UIView"},
	}
	out := DeduplicateImports(imports)
	require.Len(t, out, 2)
	assert.Equal(t, "Foundation", out[0].ModuleName)
	assert.True(t, out[0].IsWholesale())
	assert.Equal(t, "UIKit", out[1].ModuleName)
}

func TestRenderDOTSeparatesRootsWithBlankLine(t *testing.T) {
	a := types.Instantiable{ConcreteType: types.Simple{Name: "A"}, IsRoot: true, DeclarationKind: types.DeclarationClass}
	b := types.Instantiable{ConcreteType: types.Simple{Name: "B"}, IsRoot: true, DeclarationKind: types.DeclarationClass}

	graph := buildGraph(t, a, b)
	out := RenderDOT(graph)
	assert.Contains(t, out, "graph SafeDI {")
	assert.Contains(t, out, "ranksep=2")
	assert.Equal(t, "graph SafeDI {\n    ranksep=2\n\n}\n", out)
}

func TestExporterRegistryOrdersDotAfterSource(t *testing.T) {
	a := types.Instantiable{ConcreteType: types.Simple{Name: "A"}, IsRoot: true, DeclarationKind: types.DeclarationClass}
	graph := buildGraph(t, a)

	reg := NewExporterRegistry()
	files, err := reg.RunAll(New(nil), graph)
	require.NoError(t, err)
	assert.Contains(t, files, "safedi-graph.dot")
	assert.Contains(t, files, GeneratedFileName)

	ordered, err := reg.order()
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, "source", ordered[0].Name())
	assert.Equal(t, "dot", ordered[1].Name())
}

func TestRenderAllProducesOneCombinedFileWithBlankLineBetweenRoots(t *testing.T) {
	a := types.Instantiable{ConcreteType: types.Simple{Name: "A"}, IsRoot: true, DeclarationKind: types.DeclarationClass}
	b := types.Instantiable{ConcreteType: types.Simple{Name: "B"}, IsRoot: true, DeclarationKind: types.DeclarationClass}

	graph := buildGraph(t, a, b)
	files := New(nil).RenderAll(graph)

	require.Len(t, files, 1)
	out := files[GeneratedFileName]
	assert.True(t, strings.HasPrefix(out, Header))
	assert.Contains(t, out, "extension A {")
	assert.Contains(t, out, "extension B {")
	assert.Contains(t, out, "}\n\nextension B {", "roots must be separated by a blank line")
}

func TestRenderAllWritesNoRootsMarkerForEmptyGraph(t *testing.T) {
	graph := buildGraph(t)
	files := New(nil).RenderAll(graph)

	require.Len(t, files, 1)
	out := files[GeneratedFileName]
	assert.True(t, strings.HasPrefix(out, Header))
	assert.Contains(t, out, NoRootsMarker)
	assert.NotContains(t, out, "extension")
}

func TestRenderLazyArgumentHoistsNestedEagerDependency(t *testing.T) {
	innermost := types.Instantiable{ConcreteType: types.Simple{Name: "Logger"}, DeclarationKind: types.DeclarationClass}
	built := types.Instantiable{
		ConcreteType:    types.Simple{Name: "NetworkService"},
		DeclarationKind: types.DeclarationClass,
		Dependencies:    []types.Dependency{instantiatedDep("logger", "Logger")},
	}
	root := types.Instantiable{
		ConcreteType:    types.Simple{Name: "AppRoot"},
		IsRoot:          true,
		DeclarationKind: types.DeclarationClass,
		Dependencies: []types.Dependency{
			{
				Property: types.Property{Label: "networkBuilder", Type: types.Simple{Name: "Instantiator<NetworkService>"}},
				Source:   types.Instantiated{FulfilledByType: types.Simple{Name: "NetworkService"}},
			},
		},
	}

	graph := buildGraph(t, innermost, built, root)
	out := New(nil).RenderRoot(graph.Roots[0])

	assert.Contains(t, out, "let logger = Logger()", "Logger has no outer let binding; it must be declared inside the closure")
	assert.Contains(t, out, "let networkService = NetworkService(logger: logger)")
	assert.Contains(t, out, "return networkService")
	assert.NotContains(t, out, "networkBuilder: { in NetworkService(logger: logger) }", "a nested eager dependency must not be rendered as an undeclared reference")
}
