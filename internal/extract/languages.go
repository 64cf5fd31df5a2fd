package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
)

// extToLanguage maps file extensions to canonical language tags.
var extToLanguage = map[string]string{
	".java": "java",
	".py":   "python",
	".rb":   "ruby",
}

// langToGrammar maps language tags to tree-sitter Language objects.
// Lazily initialized on first call via sync.Once.
var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			"java":   java.GetLanguage(),
			"python": python.GetLanguage(),
			"ruby":   ruby.GetLanguage(),
		}
	})
}

// LanguageForFile returns the canonical language tag for a file path based
// on its extension. Returns ("", false) if the extension is not recognized.
func LanguageForFile(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extToLanguage[ext]
	return lang, ok
}

// Grammar returns the tree-sitter grammar for a language tag. Returns
// (nil, false) if the language is not supported.
func Grammar(lang string) (*sitter.Language, bool) {
	initGrammars()
	g, ok := langToGrammar[lang]
	return g, ok
}

// Probe reports whether the grammar for a language tag is usable in this
// process. Provider availability checks call this once at registration.
func Probe(lang string) error {
	if g, ok := Grammar(lang); !ok || g == nil {
		return fmt.Errorf("no grammar for language %q", lang)
	}
	return nil
}

// ArityLanguages lists the languages whose call resolution may use argument
// count to disambiguate overloads. Languages with default or keyword
// arguments cannot, so name matching alone applies there.
func ArityLanguages() map[string]bool {
	return map[string]bool{"java": true}
}
