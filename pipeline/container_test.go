package pipeline

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ n int }
type gadget struct{ w *widget }

func TestContainerResolvesTransitiveDependency(t *testing.T) {
	c := newContainer()
	require.NoError(t, c.register(func() *widget { return &widget{n: 7} }))
	require.NoError(t, c.register(func(w *widget) *gadget { return &gadget{w: w} }))

	v, err := c.resolve(reflect.TypeOf(&gadget{}))
	require.NoError(t, err)
	g := v.Interface().(*gadget)
	assert.Equal(t, 7, g.w.n)
}

func TestContainerMemoizesSingleton(t *testing.T) {
	c := newContainer()
	calls := 0
	require.NoError(t, c.register(func() *widget { calls++; return &widget{n: calls} }))

	t1 := reflect.TypeOf(&widget{})
	v1, err := c.resolve(t1)
	require.NoError(t, err)
	v2, err := c.resolve(t1)
	require.NoError(t, err)

	assert.Same(t, v1.Interface(), v2.Interface())
	assert.Equal(t, 1, calls)
}

func TestContainerRejectsCircularDependency(t *testing.T) {
	c := newContainer()
	require.NoError(t, c.register(func(g *gadget) *widget { return &widget{} }))
	err := c.register(func(w *widget) *gadget { return &gadget{} })
	assert.Error(t, err)
}

func TestContainerReportsMissingProvider(t *testing.T) {
	c := newContainer()
	_, err := c.resolve(reflect.TypeOf(&widget{}))
	assert.Error(t, err)
}
