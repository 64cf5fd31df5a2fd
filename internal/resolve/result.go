package resolve

import "github.com/jward/lattice/internal/model"

// TypeNode is one type in a hierarchy. Supertypes nest recursively; within
// any root-to-leaf path a qualified name appears at most once.
type TypeNode struct {
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualified_name,omitempty"`
	File          string     `json:"file,omitempty"`
	Line          int        `json:"line,omitempty"`
	Kind          model.Kind `json:"kind"`
	Language      string     `json:"language,omitempty"`
	Supertypes    []TypeNode `json:"supertypes,omitempty"`
}

// TypeHierarchyResult pairs a type's supertype tree (nested under Node) with
// its flat, capped subtype list.
type TypeHierarchyResult struct {
	Node     TypeNode   `json:"node"`
	Subtypes []TypeNode `json:"subtypes"`
}

// CallNode is one method in a call hierarchy, rendered as
// "Container.method(paramTypes)". Unresolved marks call expressions whose
// target declaration could not be found.
type CallNode struct {
	Name       string     `json:"name"`
	File       string     `json:"file,omitempty"`
	Line       int        `json:"line,omitempty"`
	Language   string     `json:"language,omitempty"`
	Unresolved bool       `json:"unresolved,omitempty"`
	Calls      []CallNode `json:"calls,omitempty"`
}

// CallHierarchyResult pairs the starting method with its first level of
// callers or callees; deeper levels nest inside each CallNode.
type CallHierarchyResult struct {
	Node  CallNode   `json:"node"`
	Calls []CallNode `json:"calls"`
}

// MethodInfo describes the starting method of a super-method query.
type MethodInfo struct {
	Name          string     `json:"name"`
	Signature     string     `json:"signature,omitempty"`
	Container     string     `json:"container,omitempty"`
	ContainerKind model.Kind `json:"container_kind,omitempty"`
	File          string     `json:"file,omitempty"`
	Line          int        `json:"line,omitempty"`
	Language      string     `json:"language,omitempty"`
}

// SuperMethodEntry is one ancestor declaration of a method. Depth counts
// hierarchy hops from the starting method's declaring type (1 = nearest).
type SuperMethodEntry struct {
	Name          string     `json:"name"`
	Signature     string     `json:"signature,omitempty"`
	Container     string     `json:"container"`
	ContainerKind model.Kind `json:"container_kind,omitempty"`
	File          string     `json:"file,omitempty"`
	Line          int        `json:"line,omitempty"`
	IsInterface   bool       `json:"is_interface,omitempty"`
	Depth         int        `json:"depth"`
	Language      string     `json:"language,omitempty"`
}

// SuperMethodsResult is an ordered ancestor chain, not a tree.
type SuperMethodsResult struct {
	Method    MethodInfo         `json:"method"`
	Hierarchy []SuperMethodEntry `json:"hierarchy"`
}

// SymbolMatch is one ranked symbol search hit.
type SymbolMatch struct {
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualified_name,omitempty"`
	Kind          model.Kind `json:"kind"`
	File          string     `json:"file,omitempty"`
	Line          int        `json:"line,omitempty"`
	Container     string     `json:"container,omitempty"`
	Language      string     `json:"language,omitempty"`
}

// ImplementationEntry is one concrete overriding method or inheriting type.
type ImplementationEntry struct {
	Name     string     `json:"name"`
	File     string     `json:"file,omitempty"`
	Line     int        `json:"line,omitempty"`
	Kind     model.Kind `json:"kind"`
	Language string     `json:"language,omitempty"`
}

func newTypeNode(el *model.Element) TypeNode {
	return TypeNode{
		Name:          el.Name,
		QualifiedName: el.QualifiedName,
		File:          el.File,
		Line:          el.Line,
		Kind:          el.Kind,
		Language:      el.Language,
	}
}

func newCallNode(el *model.Element) CallNode {
	return CallNode{
		Name:     renderCallName(el),
		File:     el.File,
		Line:     el.Line,
		Language: el.Language,
	}
}

func newMethodInfo(el *model.Element) MethodInfo {
	return MethodInfo{
		Name:          el.Name,
		Signature:     el.Signature,
		Container:     el.Container,
		ContainerKind: el.ContainerKind,
		File:          el.File,
		Line:          el.Line,
		Language:      el.Language,
	}
}

func newSymbolMatch(el *model.Element) SymbolMatch {
	return SymbolMatch{
		Name:          el.Name,
		QualifiedName: el.QualifiedName,
		Kind:          el.Kind,
		File:          el.File,
		Line:          el.Line,
		Container:     el.Container,
		Language:      el.Language,
	}
}

func newImplementationEntry(el *model.Element) ImplementationEntry {
	return ImplementationEntry{
		Name:     el.Name,
		File:     el.File,
		Line:     el.Line,
		Kind:     el.Kind,
		Language: el.Language,
	}
}
