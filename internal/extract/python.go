package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lattice/internal/store"
)

type pyScope struct {
	prefix      string
	containerID *int64
	enclosingID *int64
	inClass     bool
}

func walkPython(root *sitter.Node, s *fileSink, sc pyScope) error {
	return pyChildren(root, s, sc)
}

func pyChildren(n *sitter.Node, s *fileSink, sc pyScope) error {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if err := pyNode(n.NamedChild(i), s, sc); err != nil {
			return err
		}
	}
	return nil
}

func pyNode(n *sitter.Node, s *fileSink, sc pyScope) error {
	switch n.Type() {
	case "class_definition":
		return pyClass(n, s, sc)
	case "function_definition":
		return pyFunction(n, s, sc)
	case "decorated_definition":
		if def := n.ChildByFieldName("definition"); def != nil {
			return pyNode(def, s, sc)
		}
		return nil
	case "call":
		if err := pyCall(n, s, sc); err != nil {
			return err
		}
	case "assignment":
		// Assignments directly in a class body declare attributes.
		if sc.inClass && sc.enclosingID == nil {
			if err := pyClassAttr(n, s, sc); err != nil {
				return err
			}
		}
	}
	return pyChildren(n, s, sc)
}

func pyClass(n *sitter.Node, s *fileSink, sc pyScope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := s.content(nameNode)

	d := &store.Decl{
		Name:          name,
		QualifiedName: qualify(sc.prefix, name),
		Kind:          "class",
		ContainerID:   sc.containerID,
	}
	span(d, n, nameNode)
	id, err := s.decl(d)
	if err != nil {
		return err
	}

	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		ordinal := 0
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			c := supers.NamedChild(i)
			base := pyBaseName(c, s)
			if base == "" || strings.Contains(base, "=") {
				// keyword arguments like metaclass= are not bases
				continue
			}
			if err := s.superRef(id, base, false, ordinal); err != nil {
				return err
			}
			ordinal++
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	inner := pyScope{prefix: d.QualifiedName, containerID: &id, inClass: true}
	return pyChildren(body, s, inner)
}

// pyBaseName renders a base-class expression as its dotted name, or "" for
// expressions that are not plain names (subscripts, calls).
func pyBaseName(n *sitter.Node, s *fileSink) string {
	switch n.Type() {
	case "identifier", "attribute":
		return s.content(n)
	}
	return ""
}

func pyFunction(n *sitter.Node, s *fileSink, sc pyScope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := s.content(nameNode)

	kind := "function"
	if sc.inClass {
		kind = "method"
		if name == "__init__" {
			kind = "constructor"
		}
	}

	sig, argc := pySignature(n.ChildByFieldName("parameters"), s, sc.inClass)
	d := &store.Decl{
		Name:          name,
		QualifiedName: qualify(sc.prefix, name),
		Kind:          kind,
		Signature:     sig,
		ArgCount:      argc,
		ContainerID:   sc.containerID,
	}
	span(d, n, nameNode)
	id, err := s.decl(d)
	if err != nil {
		return err
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	inner := sc
	inner.enclosingID = &id
	inner.inClass = false
	inner.prefix = d.QualifiedName
	return pyChildren(body, s, inner)
}

// pySignature renders parameter names as "(a,b)". The receiver parameter of
// methods (self, cls) is excluded from both the rendering and the count.
func pySignature(params *sitter.Node, s *fileSink, inClass bool) (string, int) {
	if params == nil {
		return "()", 0
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		var name string
		switch p.Type() {
		case "identifier":
			name = s.content(p)
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			if nn := p.ChildByFieldName("name"); nn != nil {
				name = s.content(nn)
			} else if p.NamedChildCount() > 0 && p.NamedChild(0).Type() == "identifier" {
				name = s.content(p.NamedChild(0))
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			name = s.content(p)
		default:
			continue
		}
		if name == "" {
			continue
		}
		if inClass && len(names) == 0 && (name == "self" || name == "cls") {
			continue
		}
		names = append(names, name)
	}
	return "(" + strings.Join(names, ",") + ")", len(names)
}

func pyClassAttr(n *sitter.Node, s *fileSink, sc pyScope) error {
	left := n.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return nil
	}
	name := s.content(left)
	d := &store.Decl{
		Name:          name,
		QualifiedName: qualify(sc.prefix, name),
		Kind:          "field",
		ContainerID:   sc.containerID,
	}
	span(d, n, left)
	_, err := s.decl(d)
	return err
}

func pyCall(n *sitter.Node, s *fileSink, sc pyScope) error {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	var nameNode *sitter.Node
	switch fn.Type() {
	case "identifier":
		nameNode = fn
	case "attribute":
		nameNode = fn.ChildByFieldName("attribute")
	}
	if nameNode == nil {
		return nil
	}
	argc := namedCount(n.ChildByFieldName("arguments"))
	return s.ref(s.content(nameNode), argc, nameNode, sc.enclosingID)
}
