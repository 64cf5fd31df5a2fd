package main

import (
	"context"
	"fmt"

	"github.com/risor-io/risor"

	"github.com/jward/lattice"
)

// filterMatches evaluates a Risor expression once per search match and keeps
// the matches where it is truthy. The expression sees the match fields as
// globals: name, qualified_name, kind, file, line, container, language.
func filterMatches(ctx context.Context, matches []lattice.SymbolMatch, expr string) ([]lattice.SymbolMatch, error) {
	out := make([]lattice.SymbolMatch, 0, len(matches))
	for _, m := range matches {
		result, err := risor.Eval(ctx, expr,
			risor.WithGlobal("name", m.Name),
			risor.WithGlobal("qualified_name", m.QualifiedName),
			risor.WithGlobal("kind", string(m.Kind)),
			risor.WithGlobal("file", m.File),
			risor.WithGlobal("line", m.Line),
			risor.WithGlobal("container", m.Container),
			risor.WithGlobal("language", m.Language),
		)
		if err != nil {
			return nil, fmt.Errorf("evaluating --where expression: %w", err)
		}
		if result.IsTruthy() {
			out = append(out, m)
		}
	}
	return out, nil
}
