// Package resolve implements the hierarchy and search algorithms shared by
// all language providers. Each algorithm is a pure function of its starting
// element and the code model; visited sets and depth counters are allocated
// fresh per call, so a Resolver is safe for concurrent queries.
package resolve

import (
	"context"

	"github.com/jward/lattice/internal/model"
)

// Traversal bounds. The depth ceilings are enforced independently of any
// caller-supplied depth so pathological or adversarial inputs stay bounded.
const (
	maxSupertypeDepth    = 64  // recursion ceiling for supertype walks
	maxSubtypes          = 100 // flat subtype list cap
	maxOverrideAncestors = 10  // polymorphic caller search-set cap
	maxCallStackDepth    = 50  // absolute call traversal recursion ceiling
	maxNodesPerLevel     = 20  // call hierarchy per-level result cap
	maxImplementations   = 100 // implementations list cap
)

// Call hierarchy depth bounds exposed to the façade.
const (
	MinCallDepth     = 1
	MaxCallDepth     = 5
	DefaultCallDepth = 3
)

// DefaultSearchLimit applies when a search caller passes limit <= 0.
const DefaultSearchLimit = 50

// Direction selects caller or callee traversal.
type Direction string

const (
	Callers Direction = "callers"
	Callees Direction = "callees"
)

// Profile carries the language-family specifics the shared algorithms are
// parameterized over.
type Profile struct {
	// Languages are the language tags this resolver serves; search
	// enumeration is restricted to them.
	Languages []string

	// RootTypes are implicit universal base types (by simple or qualified
	// name) excluded from hierarchy output.
	RootTypes map[string]bool

	// MatchSignatures enables parameter-signature comparison when matching
	// overrides. Dynamically typed families match by name alone.
	MatchSignatures bool
}

// IsRoot reports whether a type is the language's implicit universal base.
func (p Profile) IsRoot(el *model.Element) bool {
	return p.RootTypes[el.Name] || p.RootTypes[el.QualifiedName]
}

// IsRootName reports whether a declared (possibly unresolved) supertype name
// is the language's implicit universal base.
func (p Profile) IsRootName(name string) bool {
	return p.RootTypes[name]
}

// Resolver binds the shared algorithms to a code model and a language
// family profile.
type Resolver struct {
	Model   model.Access
	Profile Profile
}

// methodKey identifies a method declaration: declaring-type qualified name +
// method name + parameter signature, so overloads are distinct.
func methodKey(el *model.Element) string {
	if el.QualifiedName != "" {
		return el.QualifiedName + el.Signature
	}
	return el.Container + "." + el.Name + el.Signature
}

// typeKey identifies a type along a hierarchy path.
func typeKey(el *model.Element) string {
	if el.QualifiedName != "" {
		return el.QualifiedName
	}
	return el.Name
}

// renderCallName renders a method as "Container.method(paramTypes)".
func renderCallName(el *model.Element) string {
	sig := el.Signature
	if sig == "" {
		sig = "()"
	}
	if el.Container != "" {
		return el.Container + "." + el.Name + sig
	}
	return el.Name + sig
}

// signatureMatches compares a candidate override against the starting
// method under the profile's signature rules.
func (r *Resolver) signatureMatches(m, candidate *model.Element) bool {
	if !r.Profile.MatchSignatures {
		return true
	}
	return m.Signature == candidate.Signature
}

// methodsOn returns methods named like m declared directly on t, filtered
// by the profile's signature rules.
func (r *Resolver) methodsOn(ctx context.Context, t *model.Element, m *model.Element) ([]*model.Element, error) {
	candidates, err := r.Model.MethodsNamed(ctx, t, m.Name)
	if err != nil {
		return nil, err
	}
	var out []*model.Element
	for _, c := range candidates {
		if r.signatureMatches(m, c) {
			out = append(out, c)
		}
	}
	return out, nil
}
