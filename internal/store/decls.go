package store

import (
	"database/sql"
	"fmt"
)

// InsertFile inserts a file record and returns its ID.
func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, language, hash, line_count, last_indexed) VALUES (?, ?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.LineCount, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	return res.LastInsertId()
}

// FileByPath looks up a file record by path. Returns nil, nil if not found.
func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRow(
		"SELECT id, path, language, hash, line_count, last_indexed FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.LineCount, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

// Files returns all file records ordered by path.
func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query(
		"SELECT id, path, language, hash, line_count, last_indexed FROM files ORDER BY path",
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.LineCount, &f.LastIndexed); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFileData removes a file record and everything extracted from it:
// declarations, supertype edges hanging off them, and references. The path
// is UNIQUE in files, so the record itself must go too or reindexing a
// changed file could never re-insert it.
func (s *Store) DeleteFileData(fileID int64) error {
	stmts := []string{
		"DELETE FROM super_refs WHERE type_id IN (SELECT id FROM decls WHERE file_id = ?)",
		"UPDATE super_refs SET resolved_id = NULL WHERE resolved_id IN (SELECT id FROM decls WHERE file_id = ?)",
		"UPDATE refs SET target_id = NULL WHERE target_id IN (SELECT id FROM decls WHERE file_id = ?)",
		"DELETE FROM refs WHERE file_id = ?",
		"DELETE FROM decls WHERE file_id = ?",
		"DELETE FROM files WHERE id = ?",
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt, fileID); err != nil {
			return fmt.Errorf("delete file data: %w", err)
		}
	}
	return nil
}

// InsertDecl inserts a declaration and returns its ID.
func (s *Store) InsertDecl(d *Decl) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO decls
		 (file_id, name, qualified_name, kind, language, signature, arg_count,
		  container_id, start_line, start_col, end_line, is_external)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.FileID, d.Name, d.QualifiedName, d.Kind, d.Language, d.Signature, d.ArgCount,
		d.ContainerID, d.StartLine, d.StartCol, d.EndLine, d.IsExternal,
	)
	if err != nil {
		return 0, fmt.Errorf("insert decl: %w", err)
	}
	return res.LastInsertId()
}

// InsertSuperRef inserts a declared supertype edge and returns its ID.
func (s *Store) InsertSuperRef(sr *SuperRef) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO super_refs (type_id, name, resolved_id, is_interface, ordinal) VALUES (?, ?, ?, ?, ?)",
		sr.TypeID, sr.Name, sr.ResolvedID, sr.IsInterface, sr.Ordinal,
	)
	if err != nil {
		return 0, fmt.Errorf("insert super ref: %w", err)
	}
	return res.LastInsertId()
}

// InsertRef inserts a call reference and returns its ID.
func (s *Store) InsertRef(r *Ref) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO refs (file_id, name, arg_count, line, col, enclosing_id, target_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.FileID, r.Name, r.ArgCount, r.Line, r.Col, r.EnclosingID, r.TargetID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert ref: %w", err)
	}
	return res.LastInsertId()
}
