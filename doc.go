// Package lattice provides cross-language code intelligence: type and call
// hierarchies, super-method chains, implementations, and fuzzy symbol search
// over a tree-sitter + SQLite index of a source tree.
//
// # Pipeline
//
// Lattice operates in two phases:
//
//  1. Extract: for each source file, parse with tree-sitter and write
//     declarations, declared supertype edges, and call references to SQLite.
//
//  2. Link: cross-reference extraction data to resolve supertype names and
//     call targets to declarations, materializing placeholder declarations
//     for library types named but not defined in the project.
//
// # Usage
//
// Create an Engine, index a directory, and query:
//
//	e, err := lattice.New(".lattice/index.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	err = e.IndexDirectory(ctx, "path/to/project")
//
//	q := e.Query()
//	th, err := q.TypeHierarchy(ctx, lattice.Ref{File: "src/Dog.java", Line: 3, Col: 14})
//
// # Query API
//
// The [QueryBuilder] returned by [Engine.Query] provides five operations:
//
//   - [QueryBuilder.TypeHierarchy]: supertype tree plus flat subtype list.
//   - [QueryBuilder.CallHierarchy]: callers of or callees from a method,
//     polymorphism-aware in the caller direction.
//   - [QueryBuilder.SuperMethods]: the chain of declarations a method
//     overrides, nearest first.
//   - [QueryBuilder.Implementations]: concrete overrides of a method, or
//     subtypes of a type.
//   - [QueryBuilder.SearchSymbols]: fuzzy symbol search ranked by edit
//     distance.
//
// Every query starts from a [Ref]: either a (file, line, col) position or a
// qualified name. Queries are stateless; each call re-resolves its starting
// element against the current index.
//
// # Providers
//
// Operations dispatch to language-family providers by the element's language
// tag. Providers register at Engine construction with a cached availability
// probe; a language whose grammar is unusable drops out of dispatch without
// affecting other families.
package lattice
