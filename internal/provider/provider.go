// Package provider defines the language families served by the engine.
// Each family is one concrete provider built on the shared resolution
// algorithms; families differ only in their profile (universal root types,
// signature matching) and availability probe. Every provider is compiled
// in, but only instantiated providers whose probe succeeds become
// dispatchable.
package provider

import (
	"context"
	"slices"

	"github.com/jward/lattice/internal/extract"
	"github.com/jward/lattice/internal/model"
	"github.com/jward/lattice/internal/resolve"
)

// Family is a concrete capability provider for one language family.
type Family struct {
	name     string
	tags     []string
	resolver resolve.Resolver
	probe    func() error
}

// NewClassic returns the provider family for class-based statically typed
// languages (tag "java"): the implicit java.lang.Object root is excluded
// from hierarchies and override matching compares parameter signatures.
func NewClassic(m model.Access) *Family {
	return &Family{
		name: "classic",
		tags: []string{"java"},
		resolver: resolve.Resolver{
			Model: m,
			Profile: resolve.Profile{
				Languages:       []string{"java"},
				RootTypes:       map[string]bool{"Object": true, "java.lang.Object": true},
				MatchSignatures: true,
			},
		},
		probe: func() error { return extract.Probe("java") },
	}
}

// NewDynamic returns the provider family for dynamically typed languages
// (tag "python"): universal roots of the family's languages are excluded
// and overrides match by name alone. Ruby shares this family's declaration
// model and is registered through a Delegate wrapper.
func NewDynamic(m model.Access) *Family {
	return &Family{
		name: "dynamic",
		tags: []string{"python"},
		resolver: resolve.Resolver{
			Model: m,
			Profile: resolve.Profile{
				Languages:       []string{"python", "ruby"},
				RootTypes:       map[string]bool{"object": true, "Object": true, "BasicObject": true},
				MatchSignatures: false,
			},
		},
		probe: func() error { return extract.Probe("python") },
	}
}

func (f *Family) Name() string { return f.name }

// SearchGroup identifies the search namespace this provider enumerates.
// A Tagged delegate shares its family's resolver (whose profile already
// spans the delegate's language), so the promoted method reports the family
// name and symbol search queries the namespace once.
func (f *Family) SearchGroup() string { return f.name }

func (f *Family) LanguageTags() []string { return f.tags }

func (f *Family) CanHandle(el *model.Element) bool {
	return slices.Contains(f.tags, el.Language)
}

func (f *Family) Probe() error { return f.probe() }

func (f *Family) TypeHierarchy(ctx context.Context, el *model.Element) (*resolve.TypeHierarchyResult, error) {
	return f.resolver.TypeHierarchy(ctx, el)
}

func (f *Family) CallHierarchy(ctx context.Context, el *model.Element, direction resolve.Direction, depth int) (*resolve.CallHierarchyResult, error) {
	return f.resolver.CallHierarchy(ctx, el, direction, depth)
}

func (f *Family) SuperMethods(ctx context.Context, el *model.Element) (*resolve.SuperMethodsResult, error) {
	return f.resolver.SuperMethods(ctx, el)
}

func (f *Family) SearchSymbols(ctx context.Context, pattern string, scope model.Scope, limit int) ([]resolve.SymbolMatch, error) {
	return f.resolver.SearchSymbols(ctx, pattern, scope, limit)
}

func (f *Family) Implementations(ctx context.Context, el *model.Element) ([]resolve.ImplementationEntry, error) {
	return f.resolver.Implementations(ctx, el)
}

// Tagged wraps a Family under a different dispatch tag. Delegation, not
// inheritance: only the tag-related methods change, every capability call
// goes straight to the wrapped family.
type Tagged struct {
	*Family
	tag   string
	probe func() error
}

// Delegate registers an existing family under an additional language tag,
// for languages sharing one declaration/override model. The wrapper probes
// its own tag so grammar availability stays per-language.
func Delegate(f *Family, tag string) *Tagged {
	return &Tagged{
		Family: f,
		tag:    tag,
		probe:  func() error { return extract.Probe(tag) },
	}
}

func (t *Tagged) Name() string { return t.Family.Name() + ":" + t.tag }

func (t *Tagged) LanguageTags() []string { return []string{t.tag} }

func (t *Tagged) CanHandle(el *model.Element) bool { return el.Language == t.tag }

func (t *Tagged) Probe() error { return t.probe() }
