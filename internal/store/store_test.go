package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func insertTestFile(t *testing.T, s *Store, path, lang string) int64 {
	t.Helper()
	id, err := s.InsertFile(&File{
		Path: path, Language: lang, Hash: "abc123",
		LastIndexed: time.Now().Truncate(time.Second),
	})
	require.NoError(t, err)
	require.Positive(t, id)
	return id
}

func insertTestDecl(t *testing.T, s *Store, d *Decl) int64 {
	t.Helper()
	id, err := s.InsertDecl(d)
	require.NoError(t, err)
	require.Positive(t, id)
	return id
}

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"files", "decls", "super_refs", "refs", "metadata"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestMigrate_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestFileByPath_NotFoundReturnsNil(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f, err := s.FileByPath("missing.java")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestFileByPath_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	id := insertTestFile(t, s, "src/App.java", "java")

	f, err := s.FileByPath("src/App.java")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, id, f.ID)
	assert.Equal(t, "java", f.Language)
	assert.Equal(t, "abc123", f.Hash)
}

func TestDeleteFileData_RemovesDeclsAndRefs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	fileID := insertTestFile(t, s, "src/App.java", "java")
	otherID := insertTestFile(t, s, "src/Other.java", "java")

	typeID := insertTestDecl(t, s, &Decl{FileID: &fileID, Name: "App", QualifiedName: "App", Kind: "class", Language: "java"})
	_, err := s.InsertSuperRef(&SuperRef{TypeID: typeID, Name: "Base"})
	require.NoError(t, err)
	_, err = s.InsertRef(&Ref{FileID: fileID, Name: "run", Line: 4, Col: 8})
	require.NoError(t, err)
	// A ref in another file targeting a decl in this one must be unlinked,
	// not deleted.
	_, err = s.InsertRef(&Ref{FileID: otherID, Name: "App", TargetID: &typeID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFileData(fileID))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM decls WHERE file_id = ?", fileID).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM super_refs").Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM refs WHERE file_id = ?", fileID).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM refs WHERE file_id = ? AND target_id IS NULL", otherID).Scan(&count))
	assert.Equal(t, 1, count)

	// The file record goes too, so the path can be re-inserted on reindex.
	f, err := s.FileByPath("src/App.java")
	require.NoError(t, err)
	assert.Nil(t, f)
	id := insertTestFile(t, s, "src/App.java", "java")
	assert.NotEqual(t, fileID, id)
}

func TestMetadata_Upsert(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	v, err := s.GetMetadata("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetMetadata("k", "1"))
	require.NoError(t, s.SetMetadata("k", "2"))
	v, err = s.GetMetadata("k")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestLink_ResolvesSupertypesPreferringQualifiedName(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	fileID := insertTestFile(t, s, "src/App.java", "java")

	baseID := insertTestDecl(t, s, &Decl{FileID: &fileID, Name: "Base", QualifiedName: "app.Base", Kind: "class", Language: "java"})
	subID := insertTestDecl(t, s, &Decl{FileID: &fileID, Name: "Sub", QualifiedName: "app.Sub", Kind: "class", Language: "java"})
	refID, err := s.InsertSuperRef(&SuperRef{TypeID: subID, Name: "app.Base"})
	require.NoError(t, err)

	require.NoError(t, s.Link(context.Background(), nil))

	var resolved int64
	require.NoError(t, s.db.QueryRow("SELECT resolved_id FROM super_refs WHERE id = ?", refID).Scan(&resolved))
	assert.Equal(t, baseID, resolved)
}

func TestLink_SimpleNameFallback(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	fileID := insertTestFile(t, s, "src/App.java", "java")

	baseID := insertTestDecl(t, s, &Decl{FileID: &fileID, Name: "Base", QualifiedName: "app.Base", Kind: "class", Language: "java"})
	subID := insertTestDecl(t, s, &Decl{FileID: &fileID, Name: "Sub", QualifiedName: "app.Sub", Kind: "class", Language: "java"})
	refID, err := s.InsertSuperRef(&SuperRef{TypeID: subID, Name: "Base"})
	require.NoError(t, err)

	require.NoError(t, s.Link(context.Background(), nil))

	var resolved int64
	require.NoError(t, s.db.QueryRow("SELECT resolved_id FROM super_refs WHERE id = ?", refID).Scan(&resolved))
	assert.Equal(t, baseID, resolved)
}

func TestLink_MaterializesExternalPlaceholders(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	fileID := insertTestFile(t, s, "src/App.java", "java")

	subID := insertTestDecl(t, s, &Decl{FileID: &fileID, Name: "App", QualifiedName: "App", Kind: "class", Language: "java"})
	_, err := s.InsertSuperRef(&SuperRef{TypeID: subID, Name: "org.lib.Component", IsInterface: true})
	require.NoError(t, err)

	require.NoError(t, s.Link(context.Background(), nil))

	var name, kind string
	var external bool
	err = s.db.QueryRow(
		"SELECT name, kind, is_external FROM decls WHERE qualified_name = ?", "org.lib.Component",
	).Scan(&name, &kind, &external)
	require.NoError(t, err)
	assert.Equal(t, "Component", name)
	assert.Equal(t, "interface", kind)
	assert.True(t, external)

	// Idempotent: relinking does not duplicate the placeholder.
	require.NoError(t, s.Link(context.Background(), nil))
	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM decls WHERE qualified_name = ?", "org.lib.Component").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestLink_CallTargetsRespectArity(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	fileID := insertTestFile(t, s, "src/App.java", "java")

	oneArg := insertTestDecl(t, s, &Decl{FileID: &fileID, Name: "run", QualifiedName: "App.run", Kind: "method", Language: "java", Signature: "(int)", ArgCount: 1})
	noArg := insertTestDecl(t, s, &Decl{FileID: &fileID, Name: "run", QualifiedName: "App.run", Kind: "method", Language: "java", Signature: "()", ArgCount: 0})
	callID, err := s.InsertRef(&Ref{FileID: fileID, Name: "run", ArgCount: 0, Line: 9, Col: 5})
	require.NoError(t, err)

	require.NoError(t, s.Link(context.Background(), map[string]bool{"java": true}))

	var target int64
	require.NoError(t, s.db.QueryRow("SELECT target_id FROM refs WHERE id = ?", callID).Scan(&target))
	assert.Equal(t, noArg, target)
	assert.NotEqual(t, oneArg, target)
}

func TestLink_CallTargetsPreferSameFile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	fileA := insertTestFile(t, s, "src/A.java", "java")
	fileB := insertTestFile(t, s, "src/B.java", "java")

	// The earlier declaration lives in another file; the same-file one must
	// win despite its higher id.
	insertTestDecl(t, s, &Decl{FileID: &fileA, Name: "run", QualifiedName: "A.run", Kind: "method", Language: "java", Signature: "()"})
	localID := insertTestDecl(t, s, &Decl{FileID: &fileB, Name: "run", QualifiedName: "B.run", Kind: "method", Language: "java", Signature: "()"})
	callID, err := s.InsertRef(&Ref{FileID: fileB, Name: "run", Line: 7, Col: 5})
	require.NoError(t, err)

	require.NoError(t, s.Link(context.Background(), nil))

	var target int64
	require.NoError(t, s.db.QueryRow("SELECT target_id FROM refs WHERE id = ?", callID).Scan(&target))
	assert.Equal(t, localID, target)
}

func TestLink_SetsIndexReady(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestFile(t, s, "src/App.java", "java")

	require.NoError(t, s.Link(context.Background(), nil))
	v, err := s.GetMetadata(MetaIndexReady)
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}
