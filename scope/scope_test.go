package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedi/registry"
	"safedi/types"
)

func instantiable(name string, isRoot bool, deps ...types.Dependency) types.Instantiable {
	return types.Instantiable{
		ConcreteType:     types.Simple{Name: name},
		IsRoot:           isRoot,
		DeclarationKind:  types.DeclarationClass,
		Dependencies:     deps,
	}
}

func instantiatedDep(label, typeName string) types.Dependency {
	return types.Dependency{Property: types.Property{Label: label, Type: types.Simple{Name: typeName}}, Source: types.Instantiated{}}
}

func TestBuildAttachesInstantiatedChildren(t *testing.T) {
	network := instantiable("NetworkService", false)
	root := instantiable("AppRoot", true, instantiatedDep("network", "NetworkService"))

	reg, diags := registry.Build([]types.ModuleSummary{{Instantiables: []types.Instantiable{network, root}}})
	require.Empty(t, diags)

	graph := Build(reg)
	require.Len(t, graph.Roots, 1)
	require.Len(t, graph.Roots[0].Properties, 1)
	child := graph.Roots[0].Properties[0].Child
	require.NotNil(t, child)
	assert.Equal(t, "NetworkService", child.Instantiable.ConcreteType.AsSource())
}

func TestBuildDropsRootReachableAsChild(t *testing.T) {
	leaf := instantiable("Leaf", true)
	parent := instantiable("Parent", true, instantiatedDep("leaf", "Leaf"))

	reg, _ := registry.Build([]types.ModuleSummary{{Instantiables: []types.Instantiable{leaf, parent}}})
	graph := Build(reg)

	require.Len(t, graph.Roots, 1)
	assert.Equal(t, "Parent", graph.Roots[0].Instantiable.ConcreteType.AsSource())
}

func TestBuildSortsRootsByCanonicalSource(t *testing.T) {
	z := instantiable("ZRoot", true)
	a := instantiable("ARoot", true)

	reg, _ := registry.Build([]types.ModuleSummary{{Instantiables: []types.Instantiable{z, a}}})
	graph := Build(reg)

	require.Len(t, graph.Roots, 2)
	assert.Equal(t, "ARoot", graph.Roots[0].Instantiable.ConcreteType.AsSource())
	assert.Equal(t, "ZRoot", graph.Roots[1].Instantiable.ConcreteType.AsSource())
}

func TestBuildLeavesUnresolvedInstantiatedChildNil(t *testing.T) {
	root := instantiable("AppRoot", true, instantiatedDep("network", "NetworkService"))
	reg, _ := registry.Build([]types.ModuleSummary{{Instantiables: []types.Instantiable{root}}})

	graph := Build(reg)
	require.Len(t, graph.Roots, 1)
	assert.Nil(t, graph.Roots[0].Properties[0].Child)
}

func TestOrderForAliasingPlacesAliasAfterSource(t *testing.T) {
	alias := types.Dependency{
		Property: types.Property{Label: "aliasedNetwork", Type: types.Simple{Name: "NetworkServicing"}},
		Source: types.Aliased{FulfillingProperty: types.Property{
			Label: "network", Type: types.Simple{Name: "NetworkService"},
		}},
	}
	source := instantiatedDep("network", "NetworkService")

	ordered := orderForAliasing([]types.Dependency{alias, source})
	require.Len(t, ordered, 2)
	assert.Equal(t, "network", ordered[0].Property.Label)
	assert.Equal(t, "aliasedNetwork", ordered[1].Property.Label)
}
