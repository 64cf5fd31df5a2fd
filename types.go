package lattice

import (
	"github.com/jward/lattice/internal/model"
	"github.com/jward/lattice/internal/resolve"
)

// Result and model types re-exported from the internal packages, so callers
// never import internals directly.
type (
	Element             = model.Element
	Kind                = model.Kind
	Scope               = model.Scope
	TypeNode            = resolve.TypeNode
	TypeHierarchyResult = resolve.TypeHierarchyResult
	CallNode            = resolve.CallNode
	CallHierarchyResult = resolve.CallHierarchyResult
	MethodInfo          = resolve.MethodInfo
	SuperMethodEntry    = resolve.SuperMethodEntry
	SuperMethodsResult  = resolve.SuperMethodsResult
	SymbolMatch         = resolve.SymbolMatch
	ImplementationEntry = resolve.ImplementationEntry
	Direction           = resolve.Direction
)

const (
	Callers = resolve.Callers
	Callees = resolve.Callees

	ScopeProject = model.ScopeProject
	ScopeAll     = model.ScopeAll
)

// Call hierarchy depth bounds. Depths outside [MinCallDepth, MaxCallDepth]
// are clamped; zero means DefaultCallDepth.
const (
	MinCallDepth     = resolve.MinCallDepth
	MaxCallDepth     = resolve.MaxCallDepth
	DefaultCallDepth = resolve.DefaultCallDepth
)

// DefaultSearchLimit applies when SearchSymbols is called with limit <= 0.
const DefaultSearchLimit = resolve.DefaultSearchLimit
