// Package extract parses source files with tree-sitter and writes the
// declarations, supertype references, and call references they contain into
// the store. Extraction is syntactic only; cross-file resolution happens in
// the store's link pass.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lattice/internal/store"
)

// Extractor parses source files and persists their declarations and
// references. Not safe for concurrent use; create one per indexing run.
type Extractor struct {
	store *store.Store
}

func New(st *store.Store) *Extractor {
	return &Extractor{store: st}
}

// ExtractFile indexes one source file. If the file was indexed before and
// its content hash is unchanged the call is a no-op; otherwise prior rows
// for the file are replaced. Returns (false, nil) for files in unsupported
// languages and unchanged files.
func (e *Extractor) ExtractFile(ctx context.Context, relPath string, src []byte, indexedAt time.Time) (bool, error) {
	lang, ok := LanguageForFile(relPath)
	if !ok {
		return false, nil
	}
	grammar, ok := Grammar(lang)
	if !ok {
		return false, nil
	}

	hash := hashContent(src)
	existing, err := e.store.FileByPath(relPath)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if existing.Hash == hash {
			return false, nil
		}
		if err := e.store.DeleteFileData(existing.ID); err != nil {
			return false, err
		}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", relPath, err)
	}
	defer tree.Close()

	fileID, err := e.store.InsertFile(&store.File{
		Path:        relPath,
		Language:    lang,
		Hash:        hash,
		LineCount:   countLines(src),
		LastIndexed: indexedAt,
	})
	if err != nil {
		return false, err
	}

	sink := &fileSink{store: e.store, fileID: fileID, lang: lang, src: src}
	root := tree.RootNode()
	switch lang {
	case "java":
		err = walkJava(root, sink, javaScope{})
	case "python":
		err = walkPython(root, sink, pyScope{})
	case "ruby":
		err = walkRuby(root, sink, rubyScope{})
	}
	if err != nil {
		return false, fmt.Errorf("extract %s: %w", relPath, err)
	}
	return true, nil
}

// fileSink accumulates extraction output for one file into the store.
// Per-language walkers call decl/superRef/ref and never touch SQL directly.
type fileSink struct {
	store  *store.Store
	fileID int64
	lang   string
	src    []byte
}

func (s *fileSink) content(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(s.src)
}

func (s *fileSink) decl(d *store.Decl) (int64, error) {
	d.FileID = &s.fileID
	d.Language = s.lang
	return s.store.InsertDecl(d)
}

func (s *fileSink) superRef(typeID int64, name string, isInterface bool, ordinal int) error {
	_, err := s.store.InsertSuperRef(&store.SuperRef{
		TypeID:      typeID,
		Name:        name,
		IsInterface: isInterface,
		Ordinal:     ordinal,
	})
	return err
}

func (s *fileSink) ref(name string, argCount int, node *sitter.Node, enclosingID *int64) error {
	_, err := s.store.InsertRef(&store.Ref{
		FileID:      s.fileID,
		Name:        name,
		ArgCount:    argCount,
		Line:        int(node.StartPoint().Row) + 1,
		Col:         int(node.StartPoint().Column) + 1,
		EnclosingID: enclosingID,
	})
	return err
}

// span fills a Decl's position fields from a declaration node and the node
// carrying its name. Lines and columns are 1-based.
func span(d *store.Decl, declNode, nameNode *sitter.Node) {
	d.StartLine = int(declNode.StartPoint().Row) + 1
	d.EndLine = int(declNode.EndPoint().Row) + 1
	if nameNode != nil {
		d.StartLine = int(nameNode.StartPoint().Row) + 1
		d.StartCol = int(nameNode.StartPoint().Column) + 1
	}
}

func hashContent(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

func countLines(src []byte) int {
	n := 1
	for _, b := range src {
		if b == '\n' {
			n++
		}
	}
	return n
}

// qualify joins a container's qualified name with a member name.
func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
