package resolve

import (
	"context"

	"github.com/jward/lattice/internal/model"
)

// TypeHierarchy resolves the supertype tree and flat subtype list for a
// type. Supertypes are emitted in declared order (superclass before
// interfaces); the language's universal base type is excluded. A declared
// supertype that cannot be resolved still appears as a leaf carrying the
// declared name with no file/line.
func (r *Resolver) TypeHierarchy(ctx context.Context, t *model.Element) (*TypeHierarchyResult, error) {
	node := newTypeNode(t)

	visited := map[string]bool{typeKey(t): true}
	supers, err := r.expandSupertypes(ctx, t, visited, 0)
	if err != nil {
		return nil, err
	}
	node.Supertypes = supers

	subs, err := r.Model.TransitiveSubtypes(ctx, t, maxSubtypes)
	if err != nil {
		return nil, err
	}
	subtypes := make([]TypeNode, 0, len(subs))
	for _, sub := range subs {
		subtypes = append(subtypes, newTypeNode(sub))
	}

	return &TypeHierarchyResult{Node: node, Subtypes: subtypes}, nil
}

// expandSupertypes walks declared supertypes depth-first. visited holds the
// qualified names on the current path; entries are removed on backtrack so a
// diamond ancestor may legitimately appear under two different branches, but
// never twice on one root-to-leaf path.
func (r *Resolver) expandSupertypes(ctx context.Context, t *model.Element, visited map[string]bool, depth int) ([]TypeNode, error) {
	if depth >= maxSupertypeDepth {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refs, err := r.Model.Supertypes(ctx, t)
	if err != nil {
		return nil, err
	}

	var out []TypeNode
	for _, ref := range refs {
		if ref.Target == nil {
			if r.Profile.IsRootName(ref.Name) {
				continue
			}
			kind := model.KindClass
			if ref.Interface {
				kind = model.KindInterface
			}
			out = append(out, TypeNode{Name: ref.Name, Kind: kind, Language: t.Language})
			continue
		}
		if r.Profile.IsRoot(ref.Target) {
			continue
		}
		key := typeKey(ref.Target)
		if visited[key] {
			continue
		}
		visited[key] = true
		child := newTypeNode(ref.Target)
		children, err := r.expandSupertypes(ctx, ref.Target, visited, depth+1)
		delete(visited, key)
		if err != nil {
			return nil, err
		}
		child.Supertypes = children
		out = append(out, child)
	}
	return out, nil
}

// Implementations returns concrete overriding methods for a method, or
// inheriting types for a type, capped at a fixed limit.
func (r *Resolver) Implementations(ctx context.Context, el *model.Element) ([]ImplementationEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var els []*model.Element
	var err error
	if el.Kind.IsCallable() {
		els, err = r.Model.OverridingMethods(ctx, el, r.Profile.MatchSignatures, maxImplementations)
	} else {
		els, err = r.Model.TransitiveSubtypes(ctx, el, maxImplementations)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]ImplementationEntry, 0, len(els))
	for _, e := range els {
		entries = append(entries, newImplementationEntry(e))
	}
	return entries, nil
}
