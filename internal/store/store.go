package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer backing the code model.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  language        TEXT NOT NULL,
  hash            TEXT,
  line_count      INTEGER DEFAULT 0,
  last_indexed    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS decls (
  id              INTEGER PRIMARY KEY,
  file_id         INTEGER REFERENCES files(id),
  name            TEXT NOT NULL,
  qualified_name  TEXT,
  kind            TEXT NOT NULL,
  language        TEXT NOT NULL,
  signature       TEXT,
  arg_count       INTEGER DEFAULT 0,
  container_id    INTEGER REFERENCES decls(id),
  start_line      INTEGER DEFAULT 0,
  start_col       INTEGER DEFAULT 0,
  end_line        INTEGER DEFAULT 0,
  is_external     BOOLEAN DEFAULT FALSE
);

-- Declared supertype edges, in declaration order (superclass first, then
-- interfaces). resolved_id stays NULL until the link pass matches the name
-- to a declaration; external supertypes get placeholder decls instead.
CREATE TABLE IF NOT EXISTS super_refs (
  id              INTEGER PRIMARY KEY,
  type_id         INTEGER NOT NULL REFERENCES decls(id),
  name            TEXT NOT NULL,
  resolved_id     INTEGER REFERENCES decls(id),
  is_interface    BOOLEAN DEFAULT FALSE,
  ordinal         INTEGER NOT NULL DEFAULT 0
);

-- Call references: one row per call expression, with the declaration that
-- lexically encloses the call site. target_id is filled by the link pass.
CREATE TABLE IF NOT EXISTS refs (
  id              INTEGER PRIMARY KEY,
  file_id         INTEGER NOT NULL REFERENCES files(id),
  name            TEXT NOT NULL,
  arg_count       INTEGER DEFAULT 0,
  line            INTEGER DEFAULT 0,
  col             INTEGER DEFAULT 0,
  enclosing_id    INTEGER REFERENCES decls(id),
  target_id       INTEGER REFERENCES decls(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT
);

CREATE INDEX IF NOT EXISTS idx_decls_name ON decls(name);
CREATE INDEX IF NOT EXISTS idx_decls_qname ON decls(qualified_name);
CREATE INDEX IF NOT EXISTS idx_decls_container ON decls(container_id);
CREATE INDEX IF NOT EXISTS idx_decls_file ON decls(file_id);
CREATE INDEX IF NOT EXISTS idx_super_refs_type ON super_refs(type_id);
CREATE INDEX IF NOT EXISTS idx_super_refs_resolved ON super_refs(resolved_id);
CREATE INDEX IF NOT EXISTS idx_refs_target ON refs(target_id);
CREATE INDEX IF NOT EXISTS idx_refs_enclosing ON refs(enclosing_id);
CREATE INDEX IF NOT EXISTS idx_refs_name ON refs(name);
CREATE INDEX IF NOT EXISTS idx_refs_file ON refs(file_id);
`

// GetMetadata returns the value for a metadata key, or "" if not set.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %q: %w", key, err)
	}
	return value, nil
}

// SetMetadata upserts a metadata key/value pair.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}
