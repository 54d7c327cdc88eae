package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedi/types"
)

type NetworkService struct{}

type UserSession struct {
	_       bool           `safedi:"root"`
	Network NetworkService `safedi:"instantiated"`
	Config  *string        `safedi:"received,onlyIfAvailable"`
}

func TestBuildReadsRootAndDependencyTags(t *testing.T) {
	inst, err := Build(&UserSession{})
	require.NoError(t, err)

	assert.True(t, inst.IsRoot)
	assert.Equal(t, "UserSession", inst.ConcreteType.AsSource())
	require.Len(t, inst.Dependencies, 2)

	assert.Equal(t, "network", inst.Dependencies[0].Property.Label)
	assert.True(t, inst.Dependencies[0].IsInstantiated())

	assert.Equal(t, "config", inst.Dependencies[1].Property.Label)
	assert.True(t, inst.Dependencies[1].IsReceived())
}

type Renamed struct {
	Source NetworkService `safedi:"instantiated"`
	Target NetworkService `safedi:"aliased,from=Source"`
}

func TestBuildReadsAliasedFromSiblingField(t *testing.T) {
	inst, err := Build(&Renamed{})
	require.NoError(t, err)
	require.Len(t, inst.Dependencies, 2)

	aliased, ok := inst.Dependencies[1].Source.(types.Aliased)
	require.True(t, ok)
	assert.Equal(t, "source", aliased.FulfillingProperty.Label)
}

type BadTag struct {
	X NetworkService `safedi:"bogus"`
}

func TestBuildRejectsUnknownTagKind(t *testing.T) {
	_, err := Build(&BadTag{})
	assert.Error(t, err)
}
