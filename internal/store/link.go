package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Link resolves extracted facts into a queryable model:
//
//  1. Supertype edges are matched to declarations by qualified or simple
//     name within the same language.
//  2. Supertype names that still resolve to nothing become external
//     placeholder declarations (no file/line), so hierarchy walks can emit
//     partial leaves and scope=all search can surface library types.
//  3. Call references are matched to callable declarations by name,
//     preferring same-file targets; for languages in arityLangs the argument
//     count must also match.
//
// Linking is idempotent and re-runs in full after any reindex. On success
// the index_ready flag is set.
func (s *Store) Link(ctx context.Context, arityLangs map[string]bool) error {
	if err := s.linkSupertypes(ctx); err != nil {
		return err
	}
	if err := s.materializeExternalSupertypes(ctx); err != nil {
		return err
	}
	if err := s.linkCallTargets(ctx, arityLangs); err != nil {
		return err
	}
	return s.SetMetadata(MetaIndexReady, "1")
}

// linkSupertypes runs two set-based passes: exact qualified-name matches
// first, then simple-name matches for edges still unresolved. Correlated
// columns of the updated table are only usable in the subquery's WHERE, so
// the name preference is expressed as pass order rather than ORDER BY.
func (s *Store) linkSupertypes(ctx context.Context) error {
	for _, nameCol := range []string{"d.qualified_name", "d.name"} {
		query := fmt.Sprintf(`
			UPDATE super_refs SET resolved_id = (
			  SELECT d.id FROM decls d
			  WHERE %s = super_refs.name
			    AND d.kind IN ('class', 'interface', 'abstract_class', 'enum', 'annotation',
			                   'record', 'struct', 'trait', 'protocol', 'object')
			    AND d.language = (SELECT t.language FROM decls t WHERE t.id = super_refs.type_id)
			  ORDER BY d.is_external ASC, d.id ASC
			  LIMIT 1
			)
			WHERE resolved_id IS NULL`, nameCol)
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("link supertypes: %w", err)
		}
	}
	return nil
}

func (s *Store) materializeExternalSupertypes(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sr.id, sr.name, sr.is_interface, t.language
		FROM super_refs sr JOIN decls t ON sr.type_id = t.id
		WHERE sr.resolved_id IS NULL`)
	if err != nil {
		return fmt.Errorf("link externals: %w", err)
	}
	type unresolved struct {
		refID       int64
		name        string
		isInterface bool
		language    string
	}
	var pending []unresolved
	for rows.Next() {
		var u unresolved
		if err := rows.Scan(&u.refID, &u.name, &u.isInterface, &u.language); err != nil {
			rows.Close()
			return fmt.Errorf("link externals: scan: %w", err)
		}
		pending = append(pending, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("link externals: %w", err)
	}

	for _, u := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		declID, err := s.findOrInsertExternalType(u.name, u.isInterface, u.language)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx,
			"UPDATE super_refs SET resolved_id = ? WHERE id = ?", declID, u.refID); err != nil {
			return fmt.Errorf("link externals: update: %w", err)
		}
	}
	return nil
}

// findOrInsertExternalType returns the placeholder declaration for an
// unresolvable supertype name, creating it on first sight.
func (s *Store) findOrInsertExternalType(declaredName string, isInterface bool, language string) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		"SELECT id FROM decls WHERE is_external = 1 AND qualified_name = ? AND language = ?",
		declaredName, language,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup external type: %w", err)
	}

	kind := "class"
	if isInterface {
		kind = "interface"
	}
	simple := declaredName
	if idx := strings.LastIndex(declaredName, "."); idx >= 0 {
		simple = declaredName[idx+1:]
	}
	return s.InsertDecl(&Decl{
		Name:          simple,
		QualifiedName: declaredName,
		Kind:          kind,
		Language:      language,
		IsExternal:    true,
	})
}

func (s *Store) linkCallTargets(ctx context.Context, arityLangs map[string]bool) error {
	langs, err := s.distinctLanguages(ctx)
	if err != nil {
		return err
	}
	for _, lang := range langs {
		arity := ""
		if arityLangs[lang] {
			arity = "AND d.arg_count = refs.arg_count"
		}
		// Same-file pass first so local declarations win, then a global pass
		// for the remainder. The same-file predicate must live in the
		// subquery's WHERE, not its ORDER BY (see linkSupertypes).
		for _, sameFile := range []string{"AND d.file_id = refs.file_id", ""} {
			query := fmt.Sprintf(`
				UPDATE refs SET target_id = (
				  SELECT d.id FROM decls d
				  WHERE d.name = refs.name
				    AND d.kind IN ('method', 'function', 'constructor')
				    AND d.is_external = 0
				    AND d.language = ?
				    %s
				    %s
				  ORDER BY d.id ASC
				  LIMIT 1
				)
				WHERE target_id IS NULL
				  AND file_id IN (SELECT id FROM files WHERE language = ?)`, arity, sameFile)
			if _, err := s.db.ExecContext(ctx, query, lang, lang); err != nil {
				return fmt.Errorf("link call targets for %s: %w", lang, err)
			}
		}
	}
	return nil
}

func (s *Store) distinctLanguages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT language FROM files")
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()
	var langs []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		langs = append(langs, lang)
	}
	return langs, rows.Err()
}
