package lattice

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jward/lattice/internal/extract"
	"github.com/jward/lattice/internal/provider"
	"github.com/jward/lattice/internal/registry"
	"github.com/jward/lattice/internal/store"
)

// Engine orchestrates the lattice pipeline: file discovery, change
// detection, extraction, linking, and query access.
type Engine struct {
	store     *store.Store
	model     *store.CodeModel
	registry  *registry.Registry
	languages map[string]bool // nil means all languages
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which languages the Engine will index.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		e.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			e.languages[lang] = true
		}
	}
}

// New creates an Engine backed by a SQLite database at dbPath, registering
// the built-in provider families. Providers whose availability probe fails
// are excluded from dispatch; the Engine itself still constructs.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("lattice: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("lattice: migrate: %w", err)
	}
	cm, err := store.NewCodeModel(s)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("lattice: %w", err)
	}

	e := &Engine{
		store:    s,
		model:    cm,
		registry: registry.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	classic := provider.NewClassic(cm)
	dynamic := provider.NewDynamic(cm)
	ruby := provider.Delegate(dynamic, "ruby")
	registerFamily(e.registry, classic)
	registerFamily(e.registry, dynamic)
	registerFamily(e.registry, ruby)

	return e, nil
}

// registerFamily registers a provider for every capability the families
// serve. The registry caches one probe per provider across capabilities.
func registerFamily(r *registry.Registry, p registry.Provider) {
	for _, c := range []registry.Capability{
		registry.CapTypeHierarchy,
		registry.CapCallHierarchy,
		registry.CapSuperMethods,
		registry.CapSymbolSearch,
		registry.CapImplementations,
	} {
		r.Register(c, p)
	}
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Query returns a new QueryBuilder over the current index.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{model: e.model, registry: e.registry}
}

// IndexFiles indexes the given source files. Unchanged files (by content
// hash) are skipped. After extraction the link pass re-runs in full, so
// cross-file edges never go stale.
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	ex := extract.New(e.store)
	now := time.Now()
	changed := 0

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		lang, ok := extract.LanguageForFile(path)
		if !ok {
			continue
		}
		if e.languages != nil && !e.languages[lang] {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		indexed, err := ex.ExtractFile(ctx, path, content, now)
		if err != nil {
			return err
		}
		if indexed {
			changed++
		}
	}

	// Nothing changed and the model is already linked: skip the link pass.
	if changed == 0 && e.model.Ready() == nil {
		return nil
	}
	if err := e.store.Link(ctx, extract.ArityLanguages()); err != nil {
		return fmt.Errorf("link: %w", err)
	}
	e.model.InvalidateCache()
	return nil
}

// skipDirs lists directories excluded from the filesystem walk fallback.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// IndexDirectory walks root and indexes all files with supported extensions.
// If root is inside a git repository, uses git ls-files to respect
// .gitignore. Falls back to a filesystem walk (skipping hidden dirs and
// skipDirs) when git is unavailable.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := gitListFiles(root)
	if err != nil {
		// Not a git repo or git not available.
		paths, err = walkListFiles(root)
		if err != nil {
			return err
		}
	}
	return e.IndexFiles(ctx, paths)
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported languages.
func gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if _, ok := extract.LanguageForFile(absPath); ok {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a
// fallback when git is not available.
func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := extract.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
