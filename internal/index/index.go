// Package index maintains an in-memory structural index of one project
// directory: cached file contents, extracted symbols and call sites, a
// ranked name search, and the derived views (grep, chunks, structure)
// built on top of them.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/sightglass-mcp/sightglass/internal/domain"
	"github.com/sightglass-mcp/sightglass/internal/lang"
)

// scanParallelism bounds concurrent file extraction during a full scan.
const scanParallelism = 4

// FileEntry is the cached state of one indexed file. Content is held in
// memory so peek, grep, and chunking never race with edits on disk.
type FileEntry struct {
	Path      string
	Language  string
	Hash      uint64
	Size      int
	Lines     int
	Content   []byte
	IndexedAt time.Time
}

// Index is the structural index of a single project root. All paths exposed
// by its methods are slash-separated and relative to the root.
type Index struct {
	root string
	log  *slog.Logger

	mu    sync.RWMutex
	files map[string]*FileEntry

	// flocks serializes reindex and removal per file, so a file's
	// symbol-table replace and search update land as one unit.
	flockMu sync.Mutex
	flocks  map[string]*sync.Mutex

	table  *SymbolTable
	search *SearchIndex
}

// Stats summarizes a completed scan.
type Stats struct {
	Files     int            `json:"files"`
	Symbols   int            `json:"symbols"`
	Languages map[string]int `json:"languages"`
	Elapsed   time.Duration  `json:"-"`
}

// New creates an index for root. The directory must exist; no scan is
// performed until Scan is called.
func New(root string, log *slog.Logger) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, domain.InvalidInputf("project root %s is not a directory", abs)
	}
	search, err := NewSearchIndex()
	if err != nil {
		return nil, err
	}
	return &Index{
		root:   abs,
		log:    log,
		files:  make(map[string]*FileEntry),
		flocks: make(map[string]*sync.Mutex),
		table:  NewSymbolTable(),
		search: search,
	}, nil
}

// Root returns the absolute project root.
func (ix *Index) Root() string { return ix.root }

// Close releases the search index.
func (ix *Index) Close() error { return ix.search.Close() }

// Scan walks the project tree and indexes every supported file. Safe to call
// again to pick up new files; unchanged files are re-read but only reindexed
// when their hash differs.
func (ix *Index) Scan(ctx context.Context) (Stats, error) {
	start := time.Now()

	var paths []string
	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != ix.root && ShouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(ix.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if ShouldSkipFile(rel) || lang.ForPath(rel) == nil {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("scanning %s: %w", ix.root, err)
	}

	sem := make(chan struct{}, scanParallelism)
	var wg sync.WaitGroup
	for _, rel := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(rel string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := ix.ReindexFile(rel); err != nil {
				ix.log.Warn("skipping file", "file", rel, "error", err)
			}
		}(rel)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Files:     ix.FileCount(),
		Symbols:   ix.table.Len(),
		Languages: ix.LanguageBreakdown(),
		Elapsed:   time.Since(start),
	}
	ix.log.Info("scan complete",
		"root", ix.root,
		"files", stats.Files,
		"symbols", stats.Symbols,
		"elapsed", stats.Elapsed)
	return stats, nil
}

// ReindexFile reads one file from disk and replaces its index entries. A
// no-op when the content hash is unchanged. Removes the file's entries when
// it no longer exists on disk. Concurrent calls for the same file are
// serialized; distinct files proceed in parallel.
func (ix *Index) ReindexFile(rel string) error {
	lock := ix.fileLock(rel)
	lock.Lock()
	defer lock.Unlock()
	return ix.reindexLocked(rel)
}

// fileLock returns the mutex guarding one file's index entries.
func (ix *Index) fileLock(rel string) *sync.Mutex {
	ix.flockMu.Lock()
	defer ix.flockMu.Unlock()
	m, ok := ix.flocks[rel]
	if !ok {
		m = &sync.Mutex{}
		ix.flocks[rel] = m
	}
	return m
}

func (ix *Index) reindexLocked(rel string) error {
	abs := filepath.Join(ix.root, filepath.FromSlash(rel))
	content, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		ix.removeLocked(rel)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", rel, err)
	}
	if IsBinary(content) {
		return nil
	}

	hash := xxh3.Hash(content)
	ix.mu.RLock()
	prev, known := ix.files[rel]
	ix.mu.RUnlock()
	if known && prev.Hash == hash {
		return nil
	}

	l := lang.ForPath(rel)
	if l == nil {
		return nil
	}
	symbols, calls, err := extractFile(l, rel, content)
	if err != nil {
		return err
	}

	entry := &FileEntry{
		Path:      rel,
		Language:  l.Name,
		Hash:      hash,
		Size:      len(content),
		Lines:     domain.CountLines(string(content)),
		Content:   content,
		IndexedAt: time.Now(),
	}

	ix.mu.Lock()
	ix.files[rel] = entry
	ix.mu.Unlock()

	removed, added := ix.table.ReplaceFile(rel, symbols, calls)
	if err := ix.search.Update(ix.table, removed, added); err != nil {
		return fmt.Errorf("updating search index for %s: %w", rel, err)
	}
	return nil
}

// EnsureFresh reindexes rel if its on-disk content changed since the last
// index. Returns ErrNotFound if the file is not in the index and does not
// exist on disk.
func (ix *Index) EnsureFresh(rel string) error {
	rel = filepath.ToSlash(rel)
	abs := filepath.Join(ix.root, filepath.FromSlash(rel))
	if _, err := os.Stat(abs); err != nil {
		ix.mu.RLock()
		_, known := ix.files[rel]
		ix.mu.RUnlock()
		if known {
			ix.removeFile(rel)
		}
		return domain.NotFoundf("file %s", rel)
	}
	return ix.ReindexFile(rel)
}

func (ix *Index) removeFile(rel string) {
	lock := ix.fileLock(rel)
	lock.Lock()
	defer lock.Unlock()
	ix.removeLocked(rel)
}

func (ix *Index) removeLocked(rel string) {
	ix.mu.Lock()
	delete(ix.files, rel)
	ix.mu.Unlock()
	removed := ix.table.RemoveFile(rel)
	if err := ix.search.Update(ix.table, removed, nil); err != nil {
		ix.log.Warn("search index removal failed", "file", rel, "error", err)
	}
}

// Entry returns the cached entry for a file after freshening it.
func (ix *Index) Entry(rel string) (*FileEntry, error) {
	rel = filepath.ToSlash(rel)
	if err := ix.EnsureFresh(rel); err != nil {
		return nil, err
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	entry, ok := ix.files[rel]
	if !ok {
		return nil, domain.NotFoundf("file %s is not indexed", rel)
	}
	return entry, nil
}

// Content returns the cached content of a file after freshening it.
func (ix *Index) Content(rel string) ([]byte, error) {
	entry, err := ix.Entry(rel)
	if err != nil {
		return nil, err
	}
	return entry.Content, nil
}

// FileCount returns the number of indexed files.
func (ix *Index) FileCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.files)
}

// SymbolCount returns the number of indexed symbols.
func (ix *Index) SymbolCount() int { return ix.table.Len() }

// Files returns all indexed file paths, sorted.
func (ix *Index) Files() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.files))
	for rel := range ix.files {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// LanguageBreakdown returns indexed file counts per language.
func (ix *Index) LanguageBreakdown() map[string]int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make(map[string]int)
	for _, entry := range ix.files {
		out[entry.Language]++
	}
	return out
}

// Search ranks indexed symbols against a name query.
func (ix *Index) Search(q string, kind domain.SymbolKind, limit int) ([]Result, int, error) {
	return ix.search.Search(ix.table, q, kind, limit)
}

// Symbols lists the definitions in a file, optionally filtered by kind,
// truncated to limit. Returns the total before truncation.
func (ix *Index) Symbols(rel string, kind domain.SymbolKind, limit int) ([]domain.Symbol, int, error) {
	rel = filepath.ToSlash(rel)
	if err := ix.EnsureFresh(rel); err != nil {
		return nil, 0, err
	}
	all := ix.table.ListByFile(rel)
	if kind != "" {
		filtered := all[:0:0]
		for _, sym := range all {
			if sym.Kind == kind {
				filtered = append(filtered, sym)
			}
		}
		all = filtered
	}
	total := len(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

// Lookup finds the definition of name in file.
func (ix *Index) Lookup(rel, name string) (domain.Symbol, error) {
	rel = filepath.ToSlash(rel)
	if err := ix.EnsureFresh(rel); err != nil {
		return domain.Symbol{}, err
	}
	sym, ok := ix.table.Get(rel, name)
	if !ok {
		return domain.Symbol{}, domain.NotFoundf("symbol %s in %s", name, rel)
	}
	return sym, nil
}

// Impl returns a symbol's definition and its full source text.
func (ix *Index) Impl(rel, name string) (domain.Symbol, string, error) {
	sym, err := ix.Lookup(rel, name)
	if err != nil {
		return domain.Symbol{}, "", err
	}
	content, err := ix.Content(sym.File)
	if err != nil {
		return domain.Symbol{}, "", err
	}
	if sym.EndByte > len(content) {
		return domain.Symbol{}, "", domain.NotFoundf("symbol %s in %s is stale", name, rel)
	}
	return sym, string(content[sym.StartByte:sym.EndByte]), nil
}

// CallersOf returns call sites referencing name, truncated to limit, plus
// the total before truncation. Matches are lexical; an unknown name yields
// an empty result, not an error.
func (ix *Index) CallersOf(name string, limit int) ([]domain.CallSite, int, error) {
	sites := ix.table.Callers(name)
	total := len(sites)
	if limit > 0 && len(sites) > limit {
		sites = sites[:limit]
	}
	return sites, total, nil
}

// Tests returns test definitions whose bodies mention name as a whole word,
// truncated to limit, plus the total before truncation.
func (ix *Index) Tests(name string, limit int) ([]domain.TestReference, int, error) {
	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return nil, 0, domain.InvalidInputf("symbol name %q: %v", name, err)
	}

	var refs []domain.TestReference
	for _, sym := range ix.table.All() {
		if sym.Kind != domain.KindTest {
			continue
		}
		ix.mu.RLock()
		entry, ok := ix.files[sym.File]
		ix.mu.RUnlock()
		if !ok || sym.EndByte > len(entry.Content) {
			continue
		}
		body := entry.Content[sym.StartByte:sym.EndByte]
		loc := pattern.FindIndex(body)
		if loc == nil {
			continue
		}
		line := sym.StartLine + strings.Count(string(body[:loc[0]]), "\n")
		refs = append(refs, domain.TestReference{
			TestName: sym.Name,
			TestFile: sym.File,
			Line:     line,
			Symbol:   name,
		})
	}
	total := len(refs)
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, total, nil
}

// Variables returns the local variable names bound inside a symbol's body.
func (ix *Index) Variables(rel, name string) ([]string, error) {
	sym, err := ix.Lookup(rel, name)
	if err != nil {
		return nil, err
	}
	content, err := ix.Content(sym.File)
	if err != nil {
		return nil, err
	}
	l := lang.ForPath(sym.File)
	if l == nil {
		return nil, domain.NotFoundf("language for %s", sym.File)
	}
	return localVariables(l, content, sym.StartByte, sym.EndByte)
}
