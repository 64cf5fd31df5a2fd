package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jward/lattice"
)

// outputResultText renders a CLIResult as human-readable text on stdout.
func outputResultText(result CLIResult) error {
	w := os.Stdout
	switch r := result.Results.(type) {
	case *lattice.TypeHierarchyResult:
		formatTypeHierarchyText(w, r)
	case *lattice.CallHierarchyResult:
		formatCallHierarchyText(w, r)
	case *lattice.SuperMethodsResult:
		formatSuperMethodsText(w, r)
	case []lattice.ImplementationEntry:
		formatImplementationsText(w, r)
	case []lattice.SymbolMatch:
		formatMatchesText(w, r)
	default:
		fmt.Fprintf(w, "%v\n", result.Results)
	}
	return nil
}

func formatTypeHierarchyText(w io.Writer, th *lattice.TypeHierarchyResult) {
	formatTypeNode(w, th.Node, 0)
	if len(th.Subtypes) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subtypes:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, sub := range th.Subtypes {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", sub.Name, sub.Kind, location(sub.File, sub.Line))
	}
	tw.Flush()
}

func formatTypeNode(w io.Writer, node lattice.TypeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	loc := location(node.File, node.Line)
	if loc == "" {
		loc = "(external)"
	}
	fmt.Fprintf(w, "%s%s [%s] %s\n", indent, node.Name, node.Kind, loc)
	for _, sup := range node.Supertypes {
		formatTypeNode(w, sup, depth+1)
	}
}

func formatCallHierarchyText(w io.Writer, ch *lattice.CallHierarchyResult) {
	fmt.Fprintf(w, "%s %s\n", ch.Node.Name, location(ch.Node.File, ch.Node.Line))
	for _, c := range ch.Calls {
		formatCallNode(w, c, 1)
	}
}

func formatCallNode(w io.Writer, node lattice.CallNode, depth int) {
	indent := strings.Repeat("  ", depth)
	suffix := ""
	if node.Unresolved {
		suffix = " (unresolved)"
	}
	fmt.Fprintf(w, "%s%s %s%s\n", indent, node.Name, location(node.File, node.Line), suffix)
	for _, c := range node.Calls {
		formatCallNode(w, c, depth+1)
	}
}

func formatSuperMethodsText(w io.Writer, sm *lattice.SuperMethodsResult) {
	fmt.Fprintf(w, "%s.%s%s %s\n", sm.Method.Container, sm.Method.Name, sm.Method.Signature,
		location(sm.Method.File, sm.Method.Line))
	for _, e := range sm.Hierarchy {
		marker := "class"
		if e.IsInterface {
			marker = "interface"
		}
		fmt.Fprintf(w, "  overrides %s.%s%s [%s, depth %d] %s\n",
			e.Container, e.Name, e.Signature, marker, e.Depth, location(e.File, e.Line))
	}
}

func formatImplementationsText(w io.Writer, impls []lattice.ImplementationEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tLANGUAGE\tLOCATION")
	for _, e := range impls {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.Language, location(e.File, e.Line))
	}
	tw.Flush()
}

func formatMatchesText(w io.Writer, matches []lattice.SymbolMatch) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tCONTAINER\tLANGUAGE\tLOCATION")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			m.Name, m.Kind, m.Container, m.Language, location(m.File, m.Line))
	}
	tw.Flush()
}

func location(file string, line int) string {
	if file == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}
