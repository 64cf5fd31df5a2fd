package resolve

import (
	"context"

	"github.com/jward/lattice/internal/model"
)

// ancestorMatch is one ancestor declaration of a method, found after hops
// hierarchy hops from the starting method's declaring type.
type ancestorMatch struct {
	el          *model.Element
	hops        int
	isInterface bool
}

// SuperMethods builds the ordered ancestor chain for a method: every
// super-declaration of the same method reachable through the declaring
// type's supertype graph, with depth counting hierarchy hops (1 = nearest
// ancestor). Reconverging inheritance paths visit each ancestor type once.
func (r *Resolver) SuperMethods(ctx context.Context, m *model.Element) (*SuperMethodsResult, error) {
	result := &SuperMethodsResult{
		Method:    newMethodInfo(m),
		Hierarchy: []SuperMethodEntry{},
	}

	matches, err := r.ancestorMethods(ctx, m, 0)
	if err != nil {
		return nil, err
	}
	for _, am := range matches {
		result.Hierarchy = append(result.Hierarchy, SuperMethodEntry{
			Name:          am.el.Name,
			Signature:     am.el.Signature,
			Container:     am.el.Container,
			ContainerKind: am.el.ContainerKind,
			File:          am.el.File,
			Line:          am.el.Line,
			IsInterface:   am.isInterface,
			Depth:         am.hops,
			Language:      am.el.Language,
		})
	}
	return result, nil
}

// ancestorMethods walks the supertype graph of m's declaring type and
// collects ancestor declarations of m. A limit of 0 means unbounded (the
// depth ceiling still applies). Unlike the supertype tree walk, the visited
// set here is shared across branches: when multiple inheritance paths
// reconverge on one ancestor, its method is reported once.
func (r *Resolver) ancestorMethods(ctx context.Context, m *model.Element, limit int) ([]ancestorMatch, error) {
	start, err := r.Model.ContainerOf(ctx, m)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, nil
	}

	visited := make(map[string]bool)
	var out []ancestorMatch
	err = r.walkAncestors(ctx, start, m, 1, limit, visited, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) walkAncestors(ctx context.Context, t, m *model.Element, hops, limit int, visited map[string]bool, out *[]ancestorMatch) error {
	if hops > maxSupertypeDepth {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	refs, err := r.Model.Supertypes(ctx, t)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if ref.Target == nil || r.Profile.IsRoot(ref.Target) {
			continue
		}
		key := typeKey(ref.Target)
		if visited[key] {
			continue
		}
		visited[key] = true

		matches, err := r.methodsOn(ctx, ref.Target, m)
		if err != nil {
			return err
		}
		iface := ref.Interface || isInterfaceKind(ref.Target.Kind)
		for _, match := range matches {
			*out = append(*out, ancestorMatch{el: match, hops: hops, isInterface: iface})
			if limit > 0 && len(*out) >= limit {
				return nil
			}
		}

		if err := r.walkAncestors(ctx, ref.Target, m, hops+1, limit, visited, out); err != nil {
			return err
		}
		if limit > 0 && len(*out) >= limit {
			return nil
		}
	}
	return nil
}

func isInterfaceKind(k model.Kind) bool {
	switch k {
	case model.KindInterface, model.KindTrait, model.KindProtocol:
		return true
	}
	return false
}
