// Package model defines the code model contract the resolution algorithms
// are parameterized over: declaration elements, their kinds, and the Access
// interface a backing store implements. The algorithms never touch storage
// directly, so any pre-built semantic index can sit behind Access.
package model

import (
	"context"
	"errors"
)

// ErrIndexNotReady is returned by Access implementations whose backing model
// is still being built. Callers treat it as recoverable and retry later.
var ErrIndexNotReady = errors.New("code model index is not ready")

// Kind classifies a declaration.
type Kind string

const (
	KindClass         Kind = "class"
	KindInterface     Kind = "interface"
	KindAbstractClass Kind = "abstract_class"
	KindEnum          Kind = "enum"
	KindAnnotation    Kind = "annotation"
	KindRecord        Kind = "record"
	KindStruct        Kind = "struct"
	KindTrait         Kind = "trait"
	KindProtocol      Kind = "protocol"
	KindObject        Kind = "object"

	KindMethod      Kind = "method"
	KindFunction    Kind = "function"
	KindConstructor Kind = "constructor"

	KindField    Kind = "field"
	KindVariable Kind = "variable"
	KindConstant Kind = "constant"
)

// IsType reports whether the kind is a type declaration.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindInterface, KindAbstractClass, KindEnum, KindAnnotation,
		KindRecord, KindStruct, KindTrait, KindProtocol, KindObject:
		return true
	}
	return false
}

// IsCallable reports whether the kind is a method-like declaration.
func (k Kind) IsCallable() bool {
	switch k {
	case KindMethod, KindFunction, KindConstructor:
		return true
	}
	return false
}

// Scope restricts queries to project declarations or widens them to include
// external/library placeholders.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeAll     Scope = "all"
)

// NameKind selects which name namespace to enumerate during symbol search.
type NameKind int

const (
	TypeNames NameKind = iota
	CallableNames
	FieldNames
)

// Element is a handle to one declaration in the code model. Elements are
// read-only snapshots; they own no reference back into the store.
type Element struct {
	ID            int64
	Name          string
	QualifiedName string
	Kind          Kind
	Language      string
	File          string // empty for external/library placeholders
	Line          int
	Signature     string // rendered parameter list for callables, e.g. "(int, String)"
	ContainerID   int64  // 0 for top-level declarations
	Container     string // declaring type name, empty for top-level
	ContainerKind Kind
	External      bool
}

// TypeRef is one declared supertype edge. Target is nil when the reference
// could not be resolved to a declaration; Name always carries the declared
// name so hierarchy walks can still emit a partial leaf.
type TypeRef struct {
	Name      string
	Target    *Element
	Interface bool
}

// Occurrence is a single reference to a method, mapped to the declaration
// that lexically encloses the reference site. Enclosing is nil for
// references outside any declaration (top-level script code).
type Occurrence struct {
	File      string
	Line      int
	Enclosing *Element
}

// CallSite is a call expression inside a method body. Target is nil when the
// callee could not be resolved.
type CallSite struct {
	Name   string
	File   string
	Line   int
	Target *Element
}

// Access is the read-only code model contract. Implementations must be safe
// for concurrent use once the underlying index is built. Sequence-returning
// operations take a visitor so callers can short-circuit without the store
// materializing the full result.
type Access interface {
	// Ready returns ErrIndexNotReady while the backing model is being built.
	Ready() error

	ResolveAt(ctx context.Context, file string, line, col int) (*Element, error)
	ResolveName(ctx context.Context, qualifiedName string) (*Element, error)

	// ContainerOf returns the declaration containing el (a method's declaring
	// type, a field's owner). Returns nil, nil for top-level declarations.
	ContainerOf(ctx context.Context, el *Element) (*Element, error)

	// Supertypes returns the declared supertypes of a type in declaration
	// order: superclass first, then interfaces.
	Supertypes(ctx context.Context, t *Element) ([]TypeRef, error)

	// TransitiveSubtypes returns the transitive subtype closure of a type,
	// capped at limit. Transitivity is the store's responsibility.
	TransitiveSubtypes(ctx context.Context, t *Element, limit int) ([]*Element, error)

	// MethodsNamed returns methods declared directly on t with the given name.
	MethodsNamed(ctx context.Context, t *Element, name string) ([]*Element, error)

	// OverridingMethods returns methods in the transitive subtype closure of
	// m's declaring type that override m, capped at limit. When
	// matchSignature is false, overrides are matched by name alone.
	OverridingMethods(ctx context.Context, m *Element, matchSignature bool, limit int) ([]*Element, error)

	// EachReferenceTo visits every reference occurrence targeting m, stopping
	// early when the visitor returns false.
	EachReferenceTo(ctx context.Context, m *Element, fn func(Occurrence) bool) error

	// CallSitesWithin returns the call expressions found inside m's body, in
	// source order. Unresolved calls carry a nil Target.
	CallSitesWithin(ctx context.Context, m *Element) ([]CallSite, error)

	// EachDeclaredName visits distinct declared names of the given kind,
	// restricted to the given languages (all languages when langs is empty),
	// stopping early when the visitor returns false.
	EachDeclaredName(ctx context.Context, kind NameKind, scope Scope, langs []string, fn func(string) bool) error

	// DeclarationsNamed returns every declaration with the given name.
	DeclarationsNamed(ctx context.Context, name string, kind NameKind, scope Scope, langs []string) ([]*Element, error)
}
