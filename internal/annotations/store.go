// Package annotations stores caller-supplied knowledge about a project:
// prose definitions for files and symbols, and per-file exploration marks.
// The store lives in memory and persists as JSON under the project's
// .sightglass directory.
package annotations

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

const (
	// DirName is the per-project state directory at the project root.
	DirName = ".sightglass"
	// FileName is the annotations file inside DirName.
	FileName = "annotations.json"

	schemaVersion = 1
)

// Definition is a prose description attached to a file or symbol.
type Definition struct {
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileMark is an exploration status attached to a file.
type FileMark struct {
	Status   string    `json:"status"`
	Note     string    `json:"note,omitempty"`
	MarkedAt time.Time `json:"marked_at"`
}

// Store holds one project's annotations.
type Store struct {
	root string

	mu      sync.RWMutex
	files   map[string]Definition
	symbols map[string]Definition
	marks   map[string]FileMark
}

// NewStore creates an empty store for the project rooted at root.
func NewStore(root string) *Store {
	return &Store{
		root:    root,
		files:   make(map[string]Definition),
		symbols: make(map[string]Definition),
		marks:   make(map[string]FileMark),
	}
}

// symbolKey joins a file path and symbol name into one map key.
func symbolKey(file, symbol string) string {
	return file + "::" + symbol
}

// DefineFile attaches a first-time definition to a file. Fails if one
// exists; redefinition is a separate, explicit operation.
func (s *Store) DefineFile(file, text string) error {
	return s.define(s.files, file, text, fmt.Sprintf("file %s", file))
}

// DefineSymbol attaches a first-time definition to a symbol.
func (s *Store) DefineSymbol(file, symbol, text string) error {
	return s.define(s.symbols, symbolKey(file, symbol), text, fmt.Sprintf("symbol %s in %s", symbol, file))
}

func (s *Store) define(m map[string]Definition, key, text, what string) error {
	if text == "" {
		return domain.InvalidInputf("definition text is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := m[key]; ok {
		return domain.InvalidInputf("%s is already defined, use redefine to replace", what)
	}
	m[key] = Definition{Text: text, UpdatedAt: time.Now()}
	return nil
}

// RedefineFile replaces (or creates) a file definition.
func (s *Store) RedefineFile(file, text string) error {
	return s.redefine(s.files, file, text)
}

// RedefineSymbol replaces (or creates) a symbol definition.
func (s *Store) RedefineSymbol(file, symbol, text string) error {
	return s.redefine(s.symbols, symbolKey(file, symbol), text)
}

func (s *Store) redefine(m map[string]Definition, key, text string) error {
	if text == "" {
		return domain.InvalidInputf("definition text is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m[key] = Definition{Text: text, UpdatedAt: time.Now()}
	return nil
}

// FileDefinition returns the definition attached to a file.
func (s *Store) FileDefinition(file string) (Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.files[file]
	return d, ok
}

// SymbolDefinition returns the definition attached to a symbol.
func (s *Store) SymbolDefinition(file, symbol string) (Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.symbols[symbolKey(file, symbol)]
	return d, ok
}

// MarkFile records an exploration status for a file.
func (s *Store) MarkFile(file, status, note string) error {
	if status == "" {
		return domain.InvalidInputf("mark status is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[file] = FileMark{Status: status, Note: note, MarkedAt: time.Now()}
	return nil
}

// Mark returns the mark on a file.
func (s *Store) Mark(file string) (FileMark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.marks[file]
	return m, ok
}

// Marks returns all file marks keyed by path.
func (s *Store) Marks() map[string]FileMark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]FileMark, len(s.marks))
	for k, v := range s.marks {
		out[k] = v
	}
	return out
}

// Summary lists annotated targets for a status report, sorted.
type Summary struct {
	Files   []string `json:"files"`
	Symbols []string `json:"symbols"`
	Marked  []string `json:"marked"`
}

// Summarize returns the annotated targets.
func (s *Store) Summarize() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := Summary{}
	for k := range s.files {
		sum.Files = append(sum.Files, k)
	}
	for k := range s.symbols {
		sum.Symbols = append(sum.Symbols, k)
	}
	for k := range s.marks {
		sum.Marked = append(sum.Marked, k)
	}
	sort.Strings(sum.Files)
	sort.Strings(sum.Symbols)
	sort.Strings(sum.Marked)
	return sum
}
