package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lattice/internal/model"
)

func TestTypeHierarchy_DeclaredOrderAndRootExclusion(t *testing.T) {
	t.Parallel()
	f := newFakeModel()
	object := f.addType("java.lang.Object", model.KindClass, "java")
	animal := f.addType("zoo.Animal", model.KindClass, "java")
	runnable := f.addType("zoo.Runnable", model.KindInterface, "java")
	dog := f.addType("zoo.Dog", model.KindClass, "java")
	f.extend(animal, object, false)
	f.extend(dog, animal, false)
	f.extend(dog, runnable, true)

	th, err := javaResolver(f).TypeHierarchy(context.Background(), dog)
	require.NoError(t, err)

	assert.Equal(t, "Dog", th.Node.Name)
	require.Len(t, th.Node.Supertypes, 2)
	// Superclass before interfaces, Object nowhere.
	assert.Equal(t, "Animal", th.Node.Supertypes[0].Name)
	assert.Empty(t, th.Node.Supertypes[0].Supertypes)
	assert.Equal(t, "Runnable", th.Node.Supertypes[1].Name)
	assert.Equal(t, model.KindInterface, th.Node.Supertypes[1].Kind)
}

func TestTypeHierarchy_UnresolvedSupertypeBecomesLeaf(t *testing.T) {
	t.Parallel()
	f := newFakeModel()
	svc := f.addType("app.Service", model.KindClass, "java")
	f.extendUnresolved(svc, "spring.Component", true)

	th, err := javaResolver(f).TypeHierarchy(context.Background(), svc)
	require.NoError(t, err)

	require.Len(t, th.Node.Supertypes, 1)
	leaf := th.Node.Supertypes[0]
	assert.Equal(t, "spring.Component", leaf.Name)
	assert.Equal(t, model.KindInterface, leaf.Kind)
	assert.Empty(t, leaf.File)
	assert.Empty(t, leaf.Supertypes)
}

func TestTypeHierarchy_DiamondAppearsOncePerPath(t *testing.T) {
	t.Parallel()
	f := newFakeModel()
	a := f.addType("d.A", model.KindInterface, "java")
	b := f.addType("d.B", model.KindClass, "java")
	c := f.addType("d.C", model.KindInterface, "java")
	d := f.addType("d.D", model.KindClass, "java")
	f.extend(b, a, true)
	f.extend(c, a, true)
	f.extend(d, b, false)
	f.extend(d, c, true)

	th, err := javaResolver(f).TypeHierarchy(context.Background(), d)
	require.NoError(t, err)

	// A is reachable through both branches and appears under each, once.
	require.Len(t, th.Node.Supertypes, 2)
	for _, branch := range th.Node.Supertypes {
		require.Len(t, branch.Supertypes, 1)
		assert.Equal(t, "A", branch.Supertypes[0].Name)
	}
}

func TestTypeHierarchy_CyclicGraphTerminates(t *testing.T) {
	t.Parallel()
	f := newFakeModel()
	a := f.addType("cyc.A", model.KindClass, "java")
	b := f.addType("cyc.B", model.KindClass, "java")
	f.extend(a, b, false)
	f.extend(b, a, false)

	th, err := javaResolver(f).TypeHierarchy(context.Background(), a)
	require.NoError(t, err)

	require.Len(t, th.Node.Supertypes, 1)
	assert.Equal(t, "B", th.Node.Supertypes[0].Name)
	// A is already on the path, so B gains no children.
	assert.Empty(t, th.Node.Supertypes[0].Supertypes)
}

func TestTypeHierarchy_SubtypesFlatAndCapped(t *testing.T) {
	t.Parallel()
	f := newFakeModel()
	base := f.addType("big.Base", model.KindClass, "java")
	for i := 0; i < maxSubtypes+20; i++ {
		sub := f.addType(fmt.Sprintf("big.Sub%03d", i), model.KindClass, "java")
		f.extend(sub, base, false)
	}

	th, err := javaResolver(f).TypeHierarchy(context.Background(), base)
	require.NoError(t, err)
	assert.Len(t, th.Subtypes, maxSubtypes)
	for _, sub := range th.Subtypes {
		assert.Empty(t, sub.Supertypes, "subtype list is flat")
	}
}

func TestTypeHierarchy_Idempotent(t *testing.T) {
	t.Parallel()
	f := newFakeModel()
	animal := f.addType("zoo.Animal", model.KindClass, "java")
	dog := f.addType("zoo.Dog", model.KindClass, "java")
	cat := f.addType("zoo.Cat", model.KindClass, "java")
	f.extend(dog, animal, false)
	f.extend(cat, animal, false)

	r := javaResolver(f)
	first, err := r.TypeHierarchy(context.Background(), animal)
	require.NoError(t, err)
	second, err := r.TypeHierarchy(context.Background(), animal)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTypeHierarchy_Cancelled(t *testing.T) {
	t.Parallel()
	f := newFakeModel()
	animal := f.addType("zoo.Animal", model.KindClass, "java")
	dog := f.addType("zoo.Dog", model.KindClass, "java")
	f.extend(dog, animal, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := javaResolver(f).TypeHierarchy(ctx, dog)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImplementations_TypeReturnsSubtypes(t *testing.T) {
	t.Parallel()
	f := newFakeModel()
	shape := f.addType("geo.Shape", model.KindInterface, "java")
	circle := f.addType("geo.Circle", model.KindClass, "java")
	square := f.addType("geo.Square", model.KindClass, "java")
	f.extend(circle, shape, true)
	f.extend(square, shape, true)

	impls, err := javaResolver(f).Implementations(context.Background(), shape)
	require.NoError(t, err)
	require.Len(t, impls, 2)
	names := []string{impls[0].Name, impls[1].Name}
	assert.Contains(t, names, "Circle")
	assert.Contains(t, names, "Square")
}

func TestImplementations_MethodReturnsOverrides(t *testing.T) {
	t.Parallel()
	f := newFakeModel()
	shape := f.addType("geo.Shape", model.KindInterface, "java")
	circle := f.addType("geo.Circle", model.KindClass, "java")
	f.extend(circle, shape, true)
	area := f.addMethod(shape, "area", "()")
	f.addMethod(circle, "area", "()")
	f.addMethod(circle, "area", "(int)") // overload, not an override

	impls, err := javaResolver(f).Implementations(context.Background(), area)
	require.NoError(t, err)
	require.Len(t, impls, 1)
	assert.Equal(t, "area", impls[0].Name)
	assert.Equal(t, model.KindMethod, impls[0].Kind)
}
