package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jward/lattice/internal/model"
)

// MetaIndexReady is the metadata key flipped by the link pass once the model
// is queryable.
const MetaIndexReady = "index_ready"

// nameCacheSize bounds the qualified-name lookup cache. Lookups are
// read-mostly once linking completes, so a small LRU covers the hot set.
const nameCacheSize = 1024

// CodeModel implements model.Access over the SQLite store.
type CodeModel struct {
	store *Store
	names *lru.Cache[string, *model.Element]
}

// NewCodeModel wraps a Store in the code model contract.
func NewCodeModel(s *Store) (*CodeModel, error) {
	cache, err := lru.New[string, *model.Element](nameCacheSize)
	if err != nil {
		return nil, fmt.Errorf("new code model: %w", err)
	}
	return &CodeModel{store: s, names: cache}, nil
}

// InvalidateCache drops cached name lookups. Called after reindexing.
func (cm *CodeModel) InvalidateCache() {
	cm.names.Purge()
}

// Ready returns model.ErrIndexNotReady until the link pass has run.
func (cm *CodeModel) Ready() error {
	ready, err := cm.store.GetMetadata(MetaIndexReady)
	if err != nil {
		return err
	}
	if ready != "1" {
		return model.ErrIndexNotReady
	}
	return nil
}

// declCols is the SELECT list scanElement expects, with d/f/c aliases for
// decls, files, and the container decl.
const declCols = `d.id, d.name, COALESCE(d.qualified_name, ''), d.kind, d.language,
	COALESCE(f.path, ''), COALESCE(d.start_line, 0), COALESCE(d.signature, ''),
	COALESCE(d.container_id, 0), COALESCE(c.name, ''), COALESCE(c.kind, ''), d.is_external`

const declFrom = `FROM decls d
	LEFT JOIN files f ON d.file_id = f.id
	LEFT JOIN decls c ON d.container_id = c.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanElement(row scanner) (*model.Element, error) {
	el := &model.Element{}
	var kind, containerKind string
	err := row.Scan(
		&el.ID, &el.Name, &el.QualifiedName, &kind, &el.Language,
		&el.File, &el.Line, &el.Signature,
		&el.ContainerID, &el.Container, &containerKind, &el.External,
	)
	if err != nil {
		return nil, err
	}
	el.Kind = model.Kind(kind)
	el.ContainerKind = model.Kind(containerKind)
	return el, nil
}

// elementByID loads a single declaration. Returns nil, nil if absent.
func (cm *CodeModel) elementByID(ctx context.Context, id int64) (*model.Element, error) {
	row := cm.store.DB().QueryRowContext(ctx,
		"SELECT "+declCols+" "+declFrom+" WHERE d.id = ?", id)
	el, err := scanElement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("element by id %d: %w", id, err)
	}
	return el, nil
}

// ResolveAt resolves the element at an exact (file, line, col). A call
// reference spanning the position wins over the enclosing declaration; when
// no reference matches, the narrowest declaration containing the line is
// returned. Returns nil, nil when nothing is there.
func (cm *CodeModel) ResolveAt(ctx context.Context, file string, line, col int) (*model.Element, error) {
	f, err := cm.store.FileByPath(file)
	if err != nil {
		return nil, fmt.Errorf("resolve at: %w", err)
	}
	if f == nil {
		return nil, nil
	}

	var targetID int64
	err = cm.store.DB().QueryRowContext(ctx,
		`SELECT target_id FROM refs
		 WHERE file_id = ? AND line = ? AND col <= ? AND col + length(name) >= ?
		   AND target_id IS NOT NULL
		 LIMIT 1`,
		f.ID, line, col, col,
	).Scan(&targetID)
	if err == nil {
		return cm.elementByID(ctx, targetID)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("resolve at: reference lookup: %w", err)
	}

	row := cm.store.DB().QueryRowContext(ctx,
		"SELECT "+declCols+" "+declFrom+`
		 WHERE d.file_id = ? AND d.start_line <= ? AND d.end_line >= ?
		 ORDER BY (d.end_line - d.start_line) ASC, d.start_line DESC
		 LIMIT 1`,
		f.ID, line, line,
	)
	el, err := scanElement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve at: decl lookup: %w", err)
	}
	return el, nil
}

// ResolveName resolves a fully-qualified declaration name, falling back to a
// simple-name match. Returns nil, nil when nothing matches.
func (cm *CodeModel) ResolveName(ctx context.Context, qualifiedName string) (*model.Element, error) {
	if el, ok := cm.names.Get(qualifiedName); ok {
		return el, nil
	}

	row := cm.store.DB().QueryRowContext(ctx,
		"SELECT "+declCols+" "+declFrom+`
		 WHERE d.qualified_name = ? OR d.name = ?
		 ORDER BY d.qualified_name = ? DESC, d.is_external ASC, d.id ASC
		 LIMIT 1`,
		qualifiedName, qualifiedName, qualifiedName,
	)
	el, err := scanElement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve name %q: %w", qualifiedName, err)
	}
	cm.names.Add(qualifiedName, el)
	return el, nil
}

// ContainerOf returns the declaration containing el, or nil, nil for
// top-level declarations.
func (cm *CodeModel) ContainerOf(ctx context.Context, el *model.Element) (*model.Element, error) {
	if el.ContainerID == 0 {
		return nil, nil
	}
	return cm.elementByID(ctx, el.ContainerID)
}

// Supertypes returns declared supertype edges in declaration order.
func (cm *CodeModel) Supertypes(ctx context.Context, t *model.Element) ([]model.TypeRef, error) {
	rows, err := cm.store.DB().QueryContext(ctx,
		"SELECT name, resolved_id, is_interface FROM super_refs WHERE type_id = ? ORDER BY ordinal",
		t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("supertypes: %w", err)
	}
	defer rows.Close()

	var refs []model.TypeRef
	for rows.Next() {
		var name string
		var resolvedID sql.NullInt64
		var isInterface bool
		if err := rows.Scan(&name, &resolvedID, &isInterface); err != nil {
			return nil, fmt.Errorf("supertypes: scan: %w", err)
		}
		ref := model.TypeRef{Name: name, Interface: isInterface}
		if resolvedID.Valid {
			el, err := cm.elementByID(ctx, resolvedID.Int64)
			if err != nil {
				return nil, fmt.Errorf("supertypes: %w", err)
			}
			ref.Target = el
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// TransitiveSubtypes computes the subtype closure with a recursive CTE,
// capped at limit.
func (cm *CodeModel) TransitiveSubtypes(ctx context.Context, t *model.Element, limit int) ([]*model.Element, error) {
	rows, err := cm.store.DB().QueryContext(ctx,
		`WITH RECURSIVE sub(id) AS (
		   SELECT type_id FROM super_refs WHERE resolved_id = ?
		   UNION
		   SELECT sr.type_id FROM super_refs sr JOIN sub ON sr.resolved_id = sub.id
		 )
		 SELECT `+declCols+" "+declFrom+`
		 JOIN sub ON d.id = sub.id
		 ORDER BY d.id
		 LIMIT ?`,
		t.ID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("transitive subtypes: %w", err)
	}
	defer rows.Close()
	return collectElements(rows)
}

// MethodsNamed returns callable declarations named name directly on t.
func (cm *CodeModel) MethodsNamed(ctx context.Context, t *model.Element, name string) ([]*model.Element, error) {
	rows, err := cm.store.DB().QueryContext(ctx,
		"SELECT "+declCols+" "+declFrom+`
		 WHERE d.container_id = ? AND d.name = ? AND d.kind IN (`+callableKinds+`)
		 ORDER BY d.id`,
		t.ID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("methods named: %w", err)
	}
	defer rows.Close()
	return collectElements(rows)
}

// OverridingMethods returns overrides of m in the transitive subtype closure
// of its declaring type, capped at limit.
func (cm *CodeModel) OverridingMethods(ctx context.Context, m *model.Element, matchSignature bool, limit int) ([]*model.Element, error) {
	if m.ContainerID == 0 {
		return nil, nil
	}
	query := `WITH RECURSIVE sub(id) AS (
	   SELECT type_id FROM super_refs WHERE resolved_id = ?
	   UNION
	   SELECT sr.type_id FROM super_refs sr JOIN sub ON sr.resolved_id = sub.id
	 )
	 SELECT ` + declCols + " " + declFrom + `
	 JOIN sub ON d.container_id = sub.id
	 WHERE d.name = ? AND d.kind IN (` + callableKinds + `)`
	args := []any{m.ContainerID, m.Name}
	if matchSignature {
		query += " AND COALESCE(d.signature, '') = ?"
		args = append(args, m.Signature)
	}
	query += " ORDER BY d.id LIMIT ?"
	args = append(args, limit)

	rows, err := cm.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("overriding methods: %w", err)
	}
	defer rows.Close()
	return collectElements(rows)
}

// EachReferenceTo visits reference occurrences targeting m in (file, line)
// order, resolving each occurrence to its enclosing declaration.
func (cm *CodeModel) EachReferenceTo(ctx context.Context, m *model.Element, fn func(model.Occurrence) bool) error {
	rows, err := cm.store.DB().QueryContext(ctx,
		`SELECT f.path, r.line, r.enclosing_id
		 FROM refs r JOIN files f ON r.file_id = f.id
		 WHERE r.target_id = ?
		 ORDER BY f.path, r.line`,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("references to: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var occ model.Occurrence
		var enclosingID sql.NullInt64
		if err := rows.Scan(&occ.File, &occ.Line, &enclosingID); err != nil {
			return fmt.Errorf("references to: scan: %w", err)
		}
		if enclosingID.Valid {
			el, err := cm.elementByID(ctx, enclosingID.Int64)
			if err != nil {
				return fmt.Errorf("references to: %w", err)
			}
			occ.Enclosing = el
		}
		if !fn(occ) {
			return nil
		}
	}
	return rows.Err()
}

// CallSitesWithin returns call expressions inside m's body in source order.
func (cm *CodeModel) CallSitesWithin(ctx context.Context, m *model.Element) ([]model.CallSite, error) {
	rows, err := cm.store.DB().QueryContext(ctx,
		`SELECT r.name, f.path, r.line, r.target_id
		 FROM refs r JOIN files f ON r.file_id = f.id
		 WHERE r.enclosing_id = ?
		 ORDER BY r.line, r.col`,
		m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("call sites: %w", err)
	}
	defer rows.Close()

	var sites []model.CallSite
	for rows.Next() {
		var site model.CallSite
		var targetID sql.NullInt64
		if err := rows.Scan(&site.Name, &site.File, &site.Line, &targetID); err != nil {
			return nil, fmt.Errorf("call sites: scan: %w", err)
		}
		if targetID.Valid {
			el, err := cm.elementByID(ctx, targetID.Int64)
			if err != nil {
				return nil, fmt.Errorf("call sites: %w", err)
			}
			site.Target = el
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// EachDeclaredName visits distinct declared names of the given kind.
func (cm *CodeModel) EachDeclaredName(ctx context.Context, kind model.NameKind, scope model.Scope, langs []string, fn func(string) bool) error {
	query := "SELECT DISTINCT name FROM decls WHERE kind IN (" + kindList(kind) + ")"
	var args []any
	query, args = applyScopeAndLangs(query, args, scope, langs, "")
	query += " ORDER BY name"

	rows, err := cm.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("declared names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("declared names: scan: %w", err)
		}
		if !fn(name) {
			return nil
		}
	}
	return rows.Err()
}

// DeclarationsNamed returns every declaration with the given name and kind.
func (cm *CodeModel) DeclarationsNamed(ctx context.Context, name string, kind model.NameKind, scope model.Scope, langs []string) ([]*model.Element, error) {
	query := "SELECT " + declCols + " " + declFrom +
		" WHERE d.name = ? AND d.kind IN (" + kindList(kind) + ")"
	args := []any{name}
	query, args = applyScopeAndLangs(query, args, scope, langs, "d.")
	query += " ORDER BY d.id"

	rows, err := cm.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("declarations named: %w", err)
	}
	defer rows.Close()
	return collectElements(rows)
}

// --- helpers ---

const callableKinds = "'method', 'function', 'constructor'"

// kindList returns the SQL IN-list of decl kinds for a name namespace.
func kindList(kind model.NameKind) string {
	switch kind {
	case model.TypeNames:
		return `'class', 'interface', 'abstract_class', 'enum', 'annotation',
			'record', 'struct', 'trait', 'protocol', 'object'`
	case model.CallableNames:
		return callableKinds
	default:
		return "'field', 'variable', 'constant'"
	}
}

// applyScopeAndLangs appends scope and language predicates to a query.
// prefix is the table alias prefix ("d." or "").
func applyScopeAndLangs(query string, args []any, scope model.Scope, langs []string, prefix string) (string, []any) {
	if scope != model.ScopeAll {
		query += " AND " + prefix + "is_external = 0"
	}
	if len(langs) > 0 {
		query += " AND " + prefix + "language IN (" + strings.Repeat("?,", len(langs)-1) + "?)"
		for _, l := range langs {
			args = append(args, l)
		}
	}
	return query, args
}

func collectElements(rows *sql.Rows) ([]*model.Element, error) {
	var els []*model.Element
	for rows.Next() {
		el, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		els = append(els, el)
	}
	return els, rows.Err()
}
