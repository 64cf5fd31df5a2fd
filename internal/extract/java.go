package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lattice/internal/store"
)

// javaScope carries the enclosing context down the syntax tree: the
// qualified-name prefix (package plus nesting types), the innermost type for
// container edges, and the innermost callable for call references.
type javaScope struct {
	prefix      string
	containerID *int64
	enclosingID *int64
}

func walkJava(root *sitter.Node, s *fileSink, sc javaScope) error {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "package_declaration" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				c := child.NamedChild(j)
				if c.Type() == "scoped_identifier" || c.Type() == "identifier" {
					sc.prefix = s.content(c)
					break
				}
			}
			continue
		}
		if err := javaNode(child, s, sc); err != nil {
			return err
		}
	}
	return nil
}

func javaNode(n *sitter.Node, s *fileSink, sc javaScope) error {
	switch n.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return javaType(n, s, sc)
	case "method_declaration", "constructor_declaration":
		return javaCallable(n, s, sc)
	case "field_declaration":
		return javaField(n, s, sc)
	case "method_invocation":
		if name := n.ChildByFieldName("name"); name != nil {
			argc := namedCount(n.ChildByFieldName("arguments"))
			if err := s.ref(s.content(name), argc, name, sc.enclosingID); err != nil {
				return err
			}
		}
	case "object_creation_expression":
		// new Foo(...) references Foo's constructor by type name.
		if t := n.ChildByFieldName("type"); t != nil {
			argc := namedCount(n.ChildByFieldName("arguments"))
			name := s.content(t)
			if idx := strings.Index(name, "<"); idx > 0 {
				name = name[:idx]
			}
			if err := s.ref(name, argc, t, sc.enclosingID); err != nil {
				return err
			}
		}
	}
	return javaChildren(n, s, sc)
}

func javaChildren(n *sitter.Node, s *fileSink, sc javaScope) error {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if err := javaNode(n.NamedChild(i), s, sc); err != nil {
			return err
		}
	}
	return nil
}

func javaType(n *sitter.Node, s *fileSink, sc javaScope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := s.content(nameNode)

	d := &store.Decl{
		Name:          name,
		QualifiedName: qualify(sc.prefix, name),
		Kind:          javaTypeKind(n, s),
		ContainerID:   sc.containerID,
	}
	span(d, n, nameNode)
	id, err := s.decl(d)
	if err != nil {
		return err
	}

	ordinal := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "superclass":
			for _, t := range javaSuperNames(c, s) {
				if err := s.superRef(id, t, false, ordinal); err != nil {
					return err
				}
				ordinal++
			}
		case "super_interfaces", "extends_interfaces":
			for _, t := range javaSuperNames(c, s) {
				if err := s.superRef(id, t, true, ordinal); err != nil {
					return err
				}
				ordinal++
			}
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	inner := javaScope{prefix: d.QualifiedName, containerID: &id}
	return javaChildren(body, s, inner)
}

func javaTypeKind(n *sitter.Node, s *fileSink) string {
	switch n.Type() {
	case "interface_declaration":
		return "interface"
	case "enum_declaration":
		return "enum"
	case "record_declaration":
		return "record"
	case "annotation_type_declaration":
		return "annotation"
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "modifiers" && strings.Contains(s.content(c), "abstract") {
			return "abstract_class"
		}
	}
	return "class"
}

func javaCallable(n *sitter.Node, s *fileSink, sc javaScope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := s.content(nameNode)
	kind := "method"
	if n.Type() == "constructor_declaration" {
		kind = "constructor"
	}

	sig, argc := javaSignature(n.ChildByFieldName("parameters"), s)
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
	return javaChildren(body, s, inner)
}

// javaSignature renders a parameter list as "(T1,T2)" using declared
// parameter types only, the form override matching compares.
func javaSignature(params *sitter.Node, s *fileSink) (string, int) {
	if params == nil {
		return "()", 0
	}
	var types []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() != "formal_parameter" && p.Type() != "spread_parameter" {
			continue
		}
		if t := p.ChildByFieldName("type"); t != nil {
			types = append(types, s.content(t))
		}
	}
	return "(" + strings.Join(types, ",") + ")", len(types)
}

func javaField(n *sitter.Node, s *fileSink, sc javaScope) error {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "variable_declarator" {
			continue
		}
		nameNode := c.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := s.content(nameNode)
		d := &store.Decl{
			Name:          name,
			QualifiedName: qualify(sc.prefix, name),
			Kind:          "field",
			ContainerID:   sc.containerID,
		}
		span(d, n, nameNode)
		if _, err := s.decl(d); err != nil {
			return err
		}
	}
	// Initializer expressions may contain calls; revisit children for refs.
	return javaChildren(n, s, sc)
}

// javaSuperNames extracts the base type names from an extends or implements
// clause, dropping generic arguments (Comparable<Foo> contributes Comparable,
// not Foo).
func javaSuperNames(n *sitter.Node, s *fileSink) []string {
	var out []string
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		switch node.Type() {
		case "type_identifier", "scoped_type_identifier":
			out = append(out, s.content(node))
			return
		case "generic_type":
			if node.NamedChildCount() > 0 {
				walk(node.NamedChild(0))
			}
			return
		case "type_arguments":
			return
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i))
		}
	}
	walk(n)
	return out
}

func namedCount(n *sitter.Node) int {
	if n == nil {
		return 0
	}
	return int(n.NamedChildCount())
}
