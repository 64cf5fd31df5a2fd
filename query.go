package lattice

import (
	"context"
	"fmt"

	"github.com/jward/lattice/internal/model"
	"github.com/jward/lattice/internal/registry"
	"github.com/jward/lattice/internal/resolve"
	"github.com/jward/lattice/internal/store"
)

// Ref names the element a query starts from: either an exact source
// position or a qualified declaration name. When QualifiedName is set the
// position fields are ignored.
type Ref struct {
	File          string
	Line          int // 1-based
	Col           int // 1-based
	QualifiedName string
}

func (r Ref) String() string {
	if r.QualifiedName != "" {
		return r.QualifiedName
	}
	return fmt.Sprintf("%s:%d:%d", r.File, r.Line, r.Col)
}

// QueryBuilder provides the query operations over a built index. Queries
// are stateless; each call re-resolves its starting Ref, so a QueryBuilder
// stays valid across reindexes and is safe for concurrent use.
type QueryBuilder struct {
	model    *store.CodeModel
	registry *registry.Registry
}

// resolveRef resolves a Ref to an element. Returns ErrIndexNotReady before
// the first link pass and ErrNoElement when nothing is at the Ref.
func (q *QueryBuilder) resolveRef(ctx context.Context, ref Ref) (*model.Element, error) {
	if err := q.model.Ready(); err != nil {
		return nil, err
	}

	var el *model.Element
	var err error
	if ref.QualifiedName != "" {
		el, err = q.model.ResolveName(ctx, ref.QualifiedName)
	} else {
		el, err = q.model.ResolveAt(ctx, ref.File, ref.Line, ref.Col)
	}
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, ref)
	}
	return el, nil
}

// TypeHierarchy returns the supertype tree and flat subtype list of the
// type at ref. Returns ErrNotTypeOrMethod when ref names a non-type.
func (q *QueryBuilder) TypeHierarchy(ctx context.Context, ref Ref) (*TypeHierarchyResult, error) {
	el, err := q.resolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !el.Kind.IsType() {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotTypeOrMethod, el.Name, el.Kind)
	}
	p, ok := q.registry.Select(registry.CapTypeHierarchy, el)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, el.Language)
	}
	return p.(registry.TypeHierarchyProvider).TypeHierarchy(ctx, el)
}

// CallHierarchy returns callers of or callees from the method at ref, down
// to depth levels (clamped to [MinCallDepth, MaxCallDepth]; zero means
// DefaultCallDepth).
func (q *QueryBuilder) CallHierarchy(ctx context.Context, ref Ref, direction Direction, depth int) (*CallHierarchyResult, error) {
	el, err := q.resolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !el.Kind.IsCallable() {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotTypeOrMethod, el.Name, el.Kind)
	}
	p, ok := q.registry.Select(registry.CapCallHierarchy, el)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, el.Language)
	}
	return p.(registry.CallHierarchyProvider).CallHierarchy(ctx, el, direction, depth)
}

// Callers is shorthand for CallHierarchy in the caller direction.
func (q *QueryBuilder) Callers(ctx context.Context, ref Ref, depth int) (*CallHierarchyResult, error) {
	return q.CallHierarchy(ctx, ref, Callers, depth)
}

// Callees is shorthand for CallHierarchy in the callee direction.
func (q *QueryBuilder) Callees(ctx context.Context, ref Ref, depth int) (*CallHierarchyResult, error) {
	return q.CallHierarchy(ctx, ref, Callees, depth)
}

// SuperMethods returns the chain of declarations the method at ref
// overrides, nearest ancestor first.
func (q *QueryBuilder) SuperMethods(ctx context.Context, ref Ref) (*SuperMethodsResult, error) {
	el, err := q.resolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !el.Kind.IsCallable() {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotTypeOrMethod, el.Name, el.Kind)
	}
	p, ok := q.registry.Select(registry.CapSuperMethods, el)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, el.Language)
	}
	return p.(registry.SuperMethodsProvider).SuperMethods(ctx, el)
}

// Implementations returns the concrete overrides of the method at ref, or
// the transitive subtypes of the type at ref.
func (q *QueryBuilder) Implementations(ctx context.Context, ref Ref) ([]ImplementationEntry, error) {
	el, err := q.resolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !el.Kind.IsType() && !el.Kind.IsCallable() {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotTypeOrMethod, el.Name, el.Kind)
	}
	p, ok := q.registry.Select(registry.CapImplementations, el)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, el.Language)
	}
	return p.(registry.ImplementationsProvider).Implementations(ctx, el)
}

// searchGrouper is implemented by providers whose search results come from
// a shared namespace, so one query covers every registration of the group.
type searchGrouper interface {
	SearchGroup() string
}

// SearchSymbols finds declarations matching pattern across every available
// provider family, merged and ranked (exact name matches first, then by
// edit distance). limit <= 0 means DefaultSearchLimit.
func (q *QueryBuilder) SearchSymbols(ctx context.Context, pattern string, scope Scope, limit int) ([]SymbolMatch, error) {
	if err := q.model.Ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	// Families registered under several tags share one resolver that already
	// enumerates every language of the family, so query each search namespace
	// once, not once per registration.
	matches := []SymbolMatch{}
	seenGroups := make(map[string]bool)
	for _, p := range q.registry.Available(registry.CapSymbolSearch) {
		sp, ok := p.(registry.SymbolSearchProvider)
		if !ok {
			continue
		}
		group := p.Name()
		if g, ok := p.(searchGrouper); ok {
			group = g.SearchGroup()
		}
		if seenGroups[group] {
			continue
		}
		seenGroups[group] = true
		found, err := sp.SearchSymbols(ctx, pattern, scope, limit)
		if err != nil {
			return nil, err
		}
		matches = append(matches, found...)
	}

	resolve.RankMatches(pattern, matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
