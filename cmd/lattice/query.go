package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jward/lattice"
)

var (
	flagName      string
	flagDirection string
	flagDepth     int
	flagScope     string
	flagLimit     int
	flagWhere     string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the code intelligence index",
	Long:  "Run hierarchy, override, and symbol search queries against an indexed codebase. All line and column numbers are 1-based.",
}

func init() {
	queryCmd.PersistentFlags().StringVar(&flagName, "name", "", "qualified declaration name instead of <file> <line> <col>")

	callsCmd.Flags().StringVar(&flagDirection, "direction", "callers", "traversal direction: callers|callees")
	callsCmd.Flags().IntVar(&flagDepth, "depth", 0, "hierarchy depth 1-5 (0 means default)")

	searchCmd.Flags().StringVar(&flagScope, "scope", "project", "search scope: project|all")
	searchCmd.Flags().IntVar(&flagLimit, "limit", 0, "result limit (0 means default)")
	searchCmd.Flags().StringVar(&flagWhere, "where", "", `Risor filter expression over match fields, e.g. 'kind == "class" && language == "java"'`)

	queryCmd.AddCommand(typeHierarchyCmd)
	queryCmd.AddCommand(callsCmd)
	queryCmd.AddCommand(supersCmd)
	queryCmd.AddCommand(implementationsCmd)
	queryCmd.AddCommand(searchCmd)
}

// --- Helpers ---

// openEngine opens the Engine from the --db flag path (or default).
func openEngine() (*lattice.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'lattice index' first)", dbPath)
	}
	return lattice.New(dbPath)
}

// resolveRefArgs builds a query Ref from either the --name flag or
// <file> <line> <col> positional arguments.
func resolveRefArgs(args []string) (lattice.Ref, error) {
	if flagName != "" {
		return lattice.Ref{QualifiedName: flagName}, nil
	}
	if len(args) < 3 {
		return lattice.Ref{}, fmt.Errorf("requires either <file> <line> <col> arguments or --name flag")
	}
	file, err := filepath.Abs(args[0])
	if err != nil {
		return lattice.Ref{}, fmt.Errorf("resolving file path %q: %w", args[0], err)
	}
	line, err := parseIntArg(args[1], "line")
	if err != nil {
		return lattice.Ref{}, err
	}
	col, err := parseIntArg(args[2], "col")
	if err != nil {
		return lattice.Ref{}, err
	}
	return lattice.Ref{File: file, Line: line, Col: col}, nil
}

// parseIntArg parses a positional argument as a positive integer.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, value)
	}
	return n, nil
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	result.QueryID = uuid.NewString()
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error goes to stdout as a
// CLIResult envelope with a machine-readable kind; in text mode, to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		QueryID: uuid.NewString(),
		Error:   &CLIError{Kind: errorKind(err), Message: err.Error()},
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// --- Commands ---

var typeHierarchyCmd = &cobra.Command{
	Use:   "type-hierarchy [<file> <line> <col>]",
	Short: "Show the supertype tree and subtypes of a type",
	Long:  "Returns the nested supertype tree and the flat transitive subtype list for the type at a position or named by --name.",
	Args:  cobra.MaximumNArgs(3),
	RunE:  runTypeHierarchy,
}

func runTypeHierarchy(cmd *cobra.Command, args []string) error {
	ref, err := resolveRefArgs(args)
	if err != nil {
		return outputError("type-hierarchy", err)
	}
	engine, err := openEngine()
	if err != nil {
		return outputError("type-hierarchy", err)
	}
	defer engine.Close()

	th, err := engine.Query().TypeHierarchy(context.Background(), ref)
	if err != nil {
		return outputError("type-hierarchy", err)
	}
	one := 1
	return outputResult(CLIResult{Command: "type-hierarchy", Results: th, TotalCount: &one})
}

var callsCmd = &cobra.Command{
	Use:   "calls [<file> <line> <col>]",
	Short: "Show callers of or callees from a method",
	Long:  "Walks the call graph from the method at a position or named by --name. The caller direction searches polymorphically through overridden declarations.",
	Args:  cobra.MaximumNArgs(3),
	RunE:  runCalls,
}

func runCalls(cmd *cobra.Command, args []string) error {
	var direction lattice.Direction
	switch flagDirection {
	case "callers":
		direction = lattice.Callers
	case "callees":
		direction = lattice.Callees
	default:
		return outputError("calls", fmt.Errorf("invalid direction %q: must be callers or callees", flagDirection))
	}

	ref, err := resolveRefArgs(args)
	if err != nil {
		return outputError("calls", err)
	}
	engine, err := openEngine()
	if err != nil {
		return outputError("calls", err)
	}
	defer engine.Close()

	ch, err := engine.Query().CallHierarchy(context.Background(), ref, direction, flagDepth)
	if err != nil {
		return outputError("calls", err)
	}
	count := len(ch.Calls)
	return outputResult(CLIResult{Command: "calls", Results: ch, TotalCount: &count})
}

var supersCmd = &cobra.Command{
	Use:   "supers [<file> <line> <col>]",
	Short: "Show the declarations a method overrides",
	Long:  "Returns the chain of ancestor declarations the method at a position (or named by --name) overrides, nearest first.",
	Args:  cobra.MaximumNArgs(3),
	RunE:  runSupers,
}

func runSupers(cmd *cobra.Command, args []string) error {
	ref, err := resolveRefArgs(args)
	if err != nil {
		return outputError("supers", err)
	}
	engine, err := openEngine()
	if err != nil {
		return outputError("supers", err)
	}
	defer engine.Close()

	sm, err := engine.Query().SuperMethods(context.Background(), ref)
	if err != nil {
		return outputError("supers", err)
	}
	count := len(sm.Hierarchy)
	return outputResult(CLIResult{Command: "supers", Results: sm, TotalCount: &count})
}

var implementationsCmd = &cobra.Command{
	Use:   "implementations [<file> <line> <col>]",
	Short: "Find overrides of a method or subtypes of a type",
	Args:  cobra.MaximumNArgs(3),
	RunE:  runImplementations,
}

func runImplementations(cmd *cobra.Command, args []string) error {
	ref, err := resolveRefArgs(args)
	if err != nil {
		return outputError("implementations", err)
	}
	engine, err := openEngine()
	if err != nil {
		return outputError("implementations", err)
	}
	defer engine.Close()

	impls, err := engine.Query().Implementations(context.Background(), ref)
	if err != nil {
		return outputError("implementations", err)
	}
	count := len(impls)
	return outputResult(CLIResult{Command: "implementations", Results: impls, TotalCount: &count})
}

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Fuzzy symbol search",
	Long:  "Finds declarations whose names contain the pattern as a substring or ordered subsequence, ranked by edit distance. --where applies a Risor expression filter to the ranked results.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	var scope lattice.Scope
	switch flagScope {
	case "project":
		scope = lattice.ScopeProject
	case "all":
		scope = lattice.ScopeAll
	default:
		return outputError("search", fmt.Errorf("invalid scope %q: must be project or all", flagScope))
	}

	engine, err := openEngine()
	if err != nil {
		return outputError("search", err)
	}
	defer engine.Close()

	ctx := context.Background()
	matches, err := engine.Query().SearchSymbols(ctx, args[0], scope, flagLimit)
	if err != nil {
		return outputError("search", err)
	}
	if flagWhere != "" {
		matches, err = filterMatches(ctx, matches, flagWhere)
		if err != nil {
			return outputError("search", err)
		}
	}
	count := len(matches)
	return outputResult(CLIResult{Command: "search", Results: matches, TotalCount: &count})
}
