// Package registry dispatches query capabilities to per-language providers.
// The unit of dispatch is (capability, language tag): one concrete provider
// may serve several tags when those languages share a declaration model.
package registry

import (
	"context"
	"fmt"

	"github.com/jward/lattice/internal/model"
	"github.com/jward/lattice/internal/resolve"
)

// Capability names one of the query operations a provider can serve.
type Capability string

const (
	CapTypeHierarchy   Capability = "type_hierarchy"
	CapCallHierarchy   Capability = "call_hierarchy"
	CapSuperMethods    Capability = "super_methods"
	CapSymbolSearch    Capability = "symbol_search"
	CapImplementations Capability = "implementations"
)

// Provider is the common contract all capability providers satisfy.
type Provider interface {
	// Name identifies the provider family in diagnostics.
	Name() string

	// LanguageTags are the language tags this provider is dispatched for.
	LanguageTags() []string

	// CanHandle reports whether this provider serves the element's language.
	CanHandle(el *model.Element) bool

	// Probe checks that the language family's support is usable in this
	// process. The registry calls it once per provider and caches the result.
	Probe() error
}

// Capability contracts. A provider implements the subset it registers for.

type TypeHierarchyProvider interface {
	Provider
	TypeHierarchy(ctx context.Context, el *model.Element) (*resolve.TypeHierarchyResult, error)
}

type CallHierarchyProvider interface {
	Provider
	CallHierarchy(ctx context.Context, el *model.Element, direction resolve.Direction, depth int) (*resolve.CallHierarchyResult, error)
}

type SuperMethodsProvider interface {
	Provider
	SuperMethods(ctx context.Context, el *model.Element) (*resolve.SuperMethodsResult, error)
}

type SymbolSearchProvider interface {
	Provider
	SearchSymbols(ctx context.Context, pattern string, scope model.Scope, limit int) ([]resolve.SymbolMatch, error)
}

type ImplementationsProvider interface {
	Provider
	Implementations(ctx context.Context, el *model.Element) ([]resolve.ImplementationEntry, error)
}

type entry struct {
	provider  Provider
	available bool
}

// Registry holds providers keyed by capability, in registration order.
// Registration happens once at startup; afterwards the table is read-only
// and safe for concurrent readers without synchronization.
type Registry struct {
	entries map[Capability][]*entry
	probed  map[Provider]bool // cached probe results, one probe per provider
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[Capability][]*entry),
		probed:  make(map[Provider]bool),
	}
}

// Register adds a provider for a capability. The availability probe runs
// once per provider instance and is cached across capabilities. A probe
// failure (including a panic) marks only that provider unavailable; other
// families register normally.
func (r *Registry) Register(cap Capability, p Provider) {
	available, probed := r.probed[p]
	if !probed {
		available = probe(p) == nil
		r.probed[p] = available
	}
	r.entries[cap] = append(r.entries[cap], &entry{provider: p, available: available})
}

// probe isolates provider availability checks: a panicking probe is treated
// as a failed probe, not a crashed process.
func probe(p Provider) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("provider %s: probe panic: %v", p.Name(), rec)
		}
	}()
	return p.Probe()
}

// Select returns the first available provider registered for the capability
// that can handle the element. Ties between providers claiming the same
// language tag break in favor of the first registered.
func (r *Registry) Select(cap Capability, el *model.Element) (Provider, bool) {
	for _, e := range r.entries[cap] {
		if e.available && e.provider.CanHandle(el) {
			return e.provider, true
		}
	}
	return nil, false
}

// Available returns every available provider registered for the capability,
// in registration order. Used by operations without a starting element,
// such as symbol search.
func (r *Registry) Available(cap Capability) []Provider {
	var out []Provider
	for _, e := range r.entries[cap] {
		if e.available {
			out = append(out, e.provider)
		}
	}
	return out
}
