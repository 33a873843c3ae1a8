package container_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/logos/framework/container"
)

func params(values map[string]any) *container.Registry {
	resources := make(map[string]container.Resource, len(values))
	for name, v := range values {
		resources[name] = container.Parameter(v)
	}
	return container.NewRegistry(resources)
}

// opaque hides a container's concrete type from Stack.Names.
type opaque struct {
	container.Resolver
}

// ── Registry ─────────────────────────────────────────────────────────────────

func TestRegistry_GetUnknown(t *testing.T) {
	reg := params(map[string]any{"k": 1})

	_, err := reg.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, container.IsNotRegistered(err))

	var ce *container.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "nope", ce.Name)
}

func TestRegistry_HasNeverResolves(t *testing.T) {
	factory := &widgetFactory{}
	reg := container.NewRegistry(map[string]container.Resource{
		"widgets": container.Parameter(factory),
		"svc":     container.MustService(container.ServiceSpec{Factory: "widgets"}),
	})

	assert.True(t, reg.Has("svc"))
	assert.False(t, reg.Has("other"))
	assert.Equal(t, 0, factory.calls)
}

func TestRegistry_CopiesInput(t *testing.T) {
	resources := map[string]container.Resource{"k": container.Parameter(1)}
	reg := container.NewRegistry(resources)
	resources["late"] = container.Parameter(2)

	assert.False(t, reg.Has("late"))
	assert.Equal(t, []string{"k"}, reg.Names())
}

func TestRegistry_HasThenGetNeverNotRegistered(t *testing.T) {
	reg := params(map[string]any{"a": 1, "b": "two", "c": []any{3}})

	for _, name := range reg.Names() {
		require.True(t, reg.Has(name))
		_, err := reg.Get(context.Background(), name)
		assert.False(t, container.IsNotRegistered(err), name)
	}
}

// ── Stack ────────────────────────────────────────────────────────────────────

func TestStack_LastLayerWins(t *testing.T) {
	l1 := params(map[string]any{"k": 1})
	l2 := params(map[string]any{"k": 2})
	ctx := context.Background()

	got, err := container.NewStack(l1, l2).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = container.NewStack(l2, l1).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestStack_FallsThroughToLowerLayers(t *testing.T) {
	stack := container.NewStack(
		params(map[string]any{"low": "l"}),
		params(map[string]any{"high": "h"}),
	)

	got, err := stack.Get(context.Background(), "low")
	require.NoError(t, err)
	assert.Equal(t, "l", got)
	assert.True(t, stack.Has("low"))
	assert.True(t, stack.Has("high"))
	assert.False(t, stack.Has("none"))
}

func TestStack_MissReportsBottomLayerError(t *testing.T) {
	stack := container.NewStack(params(nil), params(nil))

	_, err := stack.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, container.IsNotRegistered(err))
}

func TestStack_EmptyMiss(t *testing.T) {
	_, err := container.NewStack().Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, container.IsNotRegistered(err))
}

func TestStack_AppendDoesNotMutate(t *testing.T) {
	base := container.NewStack(params(map[string]any{"k": 1}))
	extended := base.Append(params(map[string]any{"k": 2}))

	got, err := base.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = extended.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Len(t, base.Layers(), 1)
	assert.Len(t, extended.Layers(), 2)
}

func TestStack_NamesFlattensNestedStacks(t *testing.T) {
	inner := container.NewStack(
		params(map[string]any{"a": 1}),
		params(map[string]any{"b": 2}),
	)
	outer := container.NewStack(
		inner,
		params(map[string]any{"c": 3, "a": 4}),
		opaque{params(map[string]any{"hidden": 5})},
	)

	assert.Equal(t, []string{"a", "b", "c"}, outer.Names())
	assert.True(t, outer.Has("hidden"))
}
