package resolve

import (
	"context"

	"github.com/jward/lattice/internal/model"
)

// CallHierarchy resolves callers or callees of a method down to depth
// hierarchy levels. Two bounds apply simultaneously: the caller-supplied
// depth (clamped to 1..5) and an absolute recursion ceiling that protects
// against reference graphs with very wide fan-out. One visited set spans the
// entire traversal, so a method reachable via two paths appears once.
func (r *Resolver) CallHierarchy(ctx context.Context, m *model.Element, direction Direction, depth int) (*CallHierarchyResult, error) {
	if depth < MinCallDepth {
		depth = DefaultCallDepth
	}
	if depth > MaxCallDepth {
		depth = MaxCallDepth
	}

	visited := map[string]bool{methodKey(m): true}
	var calls []CallNode
	var err error
	if direction == Callees {
		calls, err = r.expandCallees(ctx, m, depth, 0, visited)
	} else {
		calls, err = r.expandCallers(ctx, m, depth, 0, visited)
	}
	if err != nil {
		return nil, err
	}
	if calls == nil {
		calls = []CallNode{}
	}
	return &CallHierarchyResult{Node: newCallNode(m), Calls: calls}, nil
}

// expandCallers finds the methods calling m. A call through a supertype
// declaration dispatches here polymorphically at runtime, so references are
// searched for m plus every method it transitively overrides (capped).
// References resolving into the search set itself, or to a method already
// expanded anywhere in this query, are dropped.
func (r *Resolver) expandCallers(ctx context.Context, m *model.Element, remaining, stackDepth int, visited map[string]bool) ([]CallNode, error) {
	if remaining <= 0 || stackDepth >= maxCallStackDepth {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	searchSet, err := r.overrideSearchSet(ctx, m)
	if err != nil {
		return nil, err
	}
	inSearchSet := make(map[string]bool, len(searchSet))
	for _, el := range searchSet {
		inSearchSet[methodKey(el)] = true
	}

	// Merge references across the search set, de-duplicated by method key.
	var callers []*model.Element
	var leaves []CallNode
	full := func() bool { return len(callers)+len(leaves) >= maxNodesPerLevel }

	for _, target := range searchSet {
		if full() {
			break
		}
		err := r.Model.EachReferenceTo(ctx, target, func(occ model.Occurrence) bool {
			if occ.Enclosing == nil {
				// Reference outside any declaration (top-level code): emit a
				// leaf rather than dropping the occurrence.
				leaves = append(leaves, CallNode{Name: "(top level)", File: occ.File, Line: occ.Line})
				return !full()
			}
			key := methodKey(occ.Enclosing)
			if inSearchSet[key] || visited[key] {
				return true
			}
			visited[key] = true
			callers = append(callers, occ.Enclosing)
			return !full()
		})
		if err != nil {
			return nil, err
		}
	}

	var out []CallNode
	for _, caller := range callers {
		node := newCallNode(caller)
		children, err := r.expandCallers(ctx, caller, remaining-1, stackDepth+1, visited)
		if err != nil {
			return nil, err
		}
		node.Calls = children
		out = append(out, node)
	}
	out = append(out, leaves...)
	return out, nil
}

// expandCallees walks call expressions inside m's body. Unresolved call
// targets are still emitted as leaves flagged Unresolved.
func (r *Resolver) expandCallees(ctx context.Context, m *model.Element, remaining, stackDepth int, visited map[string]bool) ([]CallNode, error) {
	if remaining <= 0 || stackDepth >= maxCallStackDepth {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sites, err := r.Model.CallSitesWithin(ctx, m)
	if err != nil {
		return nil, err
	}

	var out []CallNode
	siblingSeen := make(map[string]bool)
	for _, site := range sites {
		if len(out) >= maxNodesPerLevel {
			break
		}
		if site.Target == nil {
			key := site.Name + "\x00" + site.File
			if siblingSeen[key] {
				continue
			}
			siblingSeen[key] = true
			out = append(out, CallNode{
				Name:       site.Name + "(?)",
				File:       site.File,
				Line:       site.Line,
				Unresolved: true,
			})
			continue
		}
		key := methodKey(site.Target)
		if visited[key] {
			continue
		}
		visited[key] = true
		node := newCallNode(site.Target)
		children, err := r.expandCallees(ctx, site.Target, remaining-1, stackDepth+1, visited)
		if err != nil {
			return nil, err
		}
		node.Calls = children
		out = append(out, node)
	}
	return out, nil
}

// overrideSearchSet returns m plus the methods it transitively overrides,
// capped at maxOverrideAncestors ancestors.
func (r *Resolver) overrideSearchSet(ctx context.Context, m *model.Element) ([]*model.Element, error) {
	set := []*model.Element{m}
	ancestors, err := r.ancestorMethods(ctx, m, maxOverrideAncestors)
	if err != nil {
		return nil, err
	}
	for _, am := range ancestors {
		set = append(set, am.el)
	}
	return set, nil
}
