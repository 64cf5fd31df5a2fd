package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lattice/internal/store"
)

type rubyScope struct {
	prefix      string
	containerID *int64
	enclosingID *int64
	typeID      *int64 // innermost class or module, for include edges
	ordinal     *int
}

func walkRuby(root *sitter.Node, s *fileSink, sc rubyScope) error {
	return rubyChildren(root, s, sc)
}

func rubyChildren(n *sitter.Node, s *fileSink, sc rubyScope) error {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if err := rubyNode(n.NamedChild(i), s, sc); err != nil {
			return err
		}
	}
	return nil
}

func rubyNode(n *sitter.Node, s *fileSink, sc rubyScope) error {
	switch n.Type() {
	case "class", "module":
		return rubyType(n, s, sc)
	case "method", "singleton_method":
		return rubyMethod(n, s, sc)
	case "call":
		if err := rubyCall(n, s, sc); err != nil {
			return err
		}
	}
	return rubyChildren(n, s, sc)
}

func rubyType(n *sitter.Node, s *fileSink, sc rubyScope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := s.content(nameNode)

	kind := "class"
	if n.Type() == "module" {
		// Modules are mixed in rather than subclassed; they behave as the
		// interface-like side of the hierarchy.
		kind = "trait"
	}

	d := &store.Decl{
		Name:          name,
		QualifiedName: qualify(sc.prefix, name),
		Kind:          kind,
		ContainerID:   sc.containerID,
	}
	span(d, n, nameNode)
	id, err := s.decl(d)
	if err != nil {
		return err
	}

	ordinal := 0
	if sup := n.ChildByFieldName("superclass"); sup != nil {
		base := sup
		if sup.NamedChildCount() > 0 {
			base = sup.NamedChild(0)
		}
		if err := s.superRef(id, s.content(base), false, ordinal); err != nil {
			return err
		}
		ordinal++
	}

	inner := rubyScope{
		prefix:      d.QualifiedName,
		containerID: &id,
		typeID:      &id,
		ordinal:     &ordinal,
	}
	return rubyChildren(n, s, inner)
}

func rubyMethod(n *sitter.Node, s *fileSink, sc rubyScope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := s.content(nameNode)

	kind := "method"
	if sc.containerID == nil {
		kind = "function"
	} else if name == "initialize" {
		kind = "constructor"
	}

	sig, argc := rubySignature(n.ChildByFieldName("parameters"), s)
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

	inner := rubyScope{prefix: d.QualifiedName, containerID: sc.containerID, enclosingID: &id}
	return rubyChildren(n, s, inner)
}

func rubySignature(params *sitter.Node, s *fileSink) (string, int) {
	if params == nil {
		return "()", 0
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier":
			names = append(names, s.content(p))
		case "optional_parameter", "keyword_parameter":
			if nn := p.ChildByFieldName("name"); nn != nil {
				names = append(names, s.content(nn))
			}
		case "splat_parameter", "hash_splat_parameter", "block_parameter":
			names = append(names, s.content(p))
		}
	}
	return "(" + strings.Join(names, ",") + ")", len(names)
}

func rubyCall(n *sitter.Node, s *fileSink, sc rubyScope) error {
	methodNode := n.ChildByFieldName("method")
	if methodNode == nil {
		return nil
	}
	name := s.content(methodNode)

	// include/extend/prepend at class or module level declare mixin edges.
	if sc.typeID != nil && sc.enclosingID == nil &&
		(name == "include" || name == "extend" || name == "prepend") {
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				a := args.NamedChild(i)
				if a.Type() != "constant" && a.Type() != "scope_resolution" {
					continue
				}
				if err := s.superRef(*sc.typeID, s.content(a), true, *sc.ordinal); err != nil {
					return err
				}
				*sc.ordinal++
			}
		}
		return nil
	}

	argc := namedCount(n.ChildByFieldName("arguments"))
	return s.ref(name, argc, methodNode, sc.enclosingID)
}
