package lattice_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lattice"
)

const shapesJava = `package shapes;

interface Drawable {
    void draw();
}

abstract class Shape implements Drawable {
    public void draw() {
    }

    double area() {
        return 0;
    }
}

class Circle extends Shape {
    public void draw() {
    }

    double area() {
        return 3.14;
    }
}

class Square extends Shape {
    public void draw() {
    }
}

class Canvas {
    void render() {
        draw();
    }
}
`

// newIndexedEngine writes the fixture sources into a temp dir, indexes it,
// and returns the engine plus the dir the sources live in.
func newIndexedEngine(t *testing.T, sources map[string]string, opts ...lattice.Option) (*lattice.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	for name, src := range sources {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".lattice"), 0o755))
	e, err := lattice.New(filepath.Join(dir, ".lattice", "index.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	require.NoError(t, e.IndexDirectory(context.Background(), dir))
	return e, dir
}

func TestQuery_BeforeIndexingReturnsNotReady(t *testing.T) {
	t.Parallel()
	e, err := lattice.New(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Query().SearchSymbols(context.Background(), "anything", lattice.ScopeProject, 10)
	assert.ErrorIs(t, err, lattice.ErrIndexNotReady)

	_, err = e.Query().TypeHierarchy(context.Background(), lattice.Ref{QualifiedName: "shapes.Circle"})
	assert.ErrorIs(t, err, lattice.ErrIndexNotReady)
}

func TestTypeHierarchy_EndToEnd(t *testing.T) {
	t.Parallel()
	e, _ := newIndexedEngine(t, map[string]string{"Shapes.java": shapesJava})
	ctx := context.Background()

	th, err := e.Query().TypeHierarchy(ctx, lattice.Ref{QualifiedName: "shapes.Circle"})
	require.NoError(t, err)

	assert.Equal(t, "Circle", th.Node.Name)
	require.Len(t, th.Node.Supertypes, 1)
	assert.Equal(t, "Shape", th.Node.Supertypes[0].Name)
	require.Len(t, th.Node.Supertypes[0].Supertypes, 1)
	assert.Equal(t, "Drawable", th.Node.Supertypes[0].Supertypes[0].Name)
	assert.Empty(t, th.Subtypes)

	th, err = e.Query().TypeHierarchy(ctx, lattice.Ref{QualifiedName: "shapes.Shape"})
	require.NoError(t, err)
	var subs []string
	for _, s := range th.Subtypes {
		subs = append(subs, s.Name)
	}
	assert.ElementsMatch(t, []string{"Circle", "Square"}, subs)
}

func TestSuperMethods_EndToEnd(t *testing.T) {
	t.Parallel()
	e, _ := newIndexedEngine(t, map[string]string{"Shapes.java": shapesJava})

	sm, err := e.Query().SuperMethods(context.Background(), lattice.Ref{QualifiedName: "shapes.Circle.draw"})
	require.NoError(t, err)

	assert.Equal(t, "draw", sm.Method.Name)
	assert.Equal(t, "Circle", sm.Method.Container)
	require.Len(t, sm.Hierarchy, 2)
	assert.Equal(t, "Shape", sm.Hierarchy[0].Container)
	assert.Equal(t, 1, sm.Hierarchy[0].Depth)
	assert.Equal(t, "Drawable", sm.Hierarchy[1].Container)
	assert.Equal(t, 2, sm.Hierarchy[1].Depth)
	assert.True(t, sm.Hierarchy[1].IsInterface)
}

func TestCallers_SeeCallsThroughSupertypeDeclaration(t *testing.T) {
	t.Parallel()
	e, _ := newIndexedEngine(t, map[string]string{"Shapes.java": shapesJava})

	// Canvas.render calls draw() through the interface declaration; callers of
	// the concrete override must still surface it.
	ch, err := e.Query().Callers(context.Background(), lattice.Ref{QualifiedName: "shapes.Circle.draw"}, 2)
	require.NoError(t, err)

	assert.Equal(t, "Circle.draw()", ch.Node.Name)
	var names []string
	for _, c := range ch.Calls {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Canvas.render()")
}

func TestImplementations_EndToEnd(t *testing.T) {
	t.Parallel()
	e, _ := newIndexedEngine(t, map[string]string{"Shapes.java": shapesJava})
	ctx := context.Background()

	impls, err := e.Query().Implementations(ctx, lattice.Ref{QualifiedName: "shapes.Drawable"})
	require.NoError(t, err)
	var names []string
	for _, im := range impls {
		names = append(names, im.Name)
	}
	assert.ElementsMatch(t, []string{"Shape", "Circle", "Square"}, names)

	impls, err = e.Query().Implementations(ctx, lattice.Ref{QualifiedName: "shapes.Shape.area"})
	require.NoError(t, err)
	require.Len(t, impls, 1)
	assert.Equal(t, "area", impls[0].Name)
}

func TestSearchSymbols_EndToEnd(t *testing.T) {
	t.Parallel()
	e, _ := newIndexedEngine(t, map[string]string{"Shapes.java": shapesJava})

	matches, err := e.Query().SearchSymbols(context.Background(), "shape", lattice.ScopeProject, 10)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "Shape", matches[0].Name)
	assert.Equal(t, "java", matches[0].Language)
}

func TestSearchSymbols_RubyMatchesOnce(t *testing.T) {
	t.Parallel()
	e, _ := newIndexedEngine(t, map[string]string{
		"app/kennel.rb": "class Kennel\n  def open\n  end\nend\n",
	})

	// Ruby is served by the dynamic family under an extra tag; the shared
	// resolver must be queried once, so the declaration appears once.
	matches, err := e.Query().SearchSymbols(context.Background(), "kennel", lattice.ScopeProject, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Kennel", matches[0].Name)
	assert.Equal(t, "ruby", matches[0].Language)
}

func TestResolveAt_PositionRef(t *testing.T) {
	t.Parallel()
	src := "class Alpha {\n    void go() {\n    }\n}\n"
	e, dir := newIndexedEngine(t, map[string]string{"Alpha.java": src})

	th, err := e.Query().TypeHierarchy(context.Background(), lattice.Ref{
		File: filepath.Join(dir, "Alpha.java"),
		Line: 1,
		Col:  7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", th.Node.Name)
}

func TestQuery_ErrorKinds(t *testing.T) {
	t.Parallel()
	e, _ := newIndexedEngine(t, map[string]string{"Shapes.java": shapesJava})
	ctx := context.Background()

	_, err := e.Query().TypeHierarchy(ctx, lattice.Ref{QualifiedName: "shapes.Missing"})
	assert.ErrorIs(t, err, lattice.ErrNoElement)

	_, err = e.Query().TypeHierarchy(ctx, lattice.Ref{QualifiedName: "shapes.Circle.draw"})
	assert.ErrorIs(t, err, lattice.ErrNotTypeOrMethod)

	_, err = e.Query().SuperMethods(ctx, lattice.Ref{QualifiedName: "shapes.Circle"})
	assert.ErrorIs(t, err, lattice.ErrNotTypeOrMethod)
}

func TestWithLanguages_RestrictsIndexing(t *testing.T) {
	t.Parallel()
	e, _ := newIndexedEngine(t, map[string]string{
		"Shapes.java": shapesJava,
		"pets/dog.py": "class Dog:\n    def bark(self):\n        pass\n",
	}, lattice.WithLanguages("java"))

	matches, err := e.Query().SearchSymbols(context.Background(), "dog", lattice.ScopeProject, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = e.Query().SearchSymbols(context.Background(), "circle", lattice.ScopeProject, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestIndexDirectory_Reindex(t *testing.T) {
	t.Parallel()
	e, dir := newIndexedEngine(t, map[string]string{"Shapes.java": shapesJava})
	ctx := context.Background()

	// Unchanged reindex keeps the model queryable.
	require.NoError(t, e.IndexDirectory(ctx, dir))
	_, err := e.Query().TypeHierarchy(ctx, lattice.Ref{QualifiedName: "shapes.Circle"})
	require.NoError(t, err)

	// An edit that removes a type is reflected after reindex.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Shapes.java"),
		[]byte("package shapes;\n\nclass Circle {\n}\n"), 0o644))
	require.NoError(t, e.IndexDirectory(ctx, dir))

	_, err = e.Query().TypeHierarchy(ctx, lattice.Ref{QualifiedName: "shapes.Shape"})
	assert.ErrorIs(t, err, lattice.ErrNoElement)
	th, err := e.Query().TypeHierarchy(ctx, lattice.Ref{QualifiedName: "shapes.Circle"})
	require.NoError(t, err)
	assert.Empty(t, th.Node.Supertypes)
}
