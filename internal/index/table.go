package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// SymbolTable is a thread-safe symbol store with secondary indices for name
// and file lookup, plus a reverse call graph keyed by callee name.
//
// A reindex replaces all entries for one file under a single write lock, so
// readers never observe a half-updated file.
type SymbolTable struct {
	mu      sync.RWMutex
	symbols map[string]domain.Symbol
	byFile  map[string][]string
	byName  map[string]map[string]bool
	callers map[string][]domain.CallSite
	// call sites grouped by their containing file, for targeted removal
	callsByFile map[string][]domain.CallSite
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols:     make(map[string]domain.Symbol),
		byFile:      make(map[string][]string),
		byName:      make(map[string]map[string]bool),
		callers:     make(map[string][]domain.CallSite),
		callsByFile: make(map[string][]domain.CallSite),
	}
}

// symbolKey builds the primary key. Start line disambiguates overloads and
// same-named definitions within one file.
func symbolKey(file, name string, startLine int) string {
	return fmt.Sprintf("%s::%s::%d", file, name, startLine)
}

// ReplaceFile atomically swaps all symbols and call sites extracted from one
// file. Returns the primary keys removed and the keys added, so a secondary
// search index can be kept in sync.
func (t *SymbolTable) ReplaceFile(file string, symbols []domain.Symbol, calls []domain.CallSite) (removed, added []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed = t.removeFileLocked(file)

	keys := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		key := symbolKey(file, sym.Name, sym.StartLine)
		t.symbols[key] = sym
		keys = append(keys, key)
		set, ok := t.byName[sym.Name]
		if !ok {
			set = make(map[string]bool)
			t.byName[sym.Name] = set
		}
		set[key] = true
	}
	if len(keys) > 0 {
		t.byFile[file] = keys
	}

	if len(calls) > 0 {
		t.callsByFile[file] = calls
		for _, c := range calls {
			t.callers[c.Callee] = append(t.callers[c.Callee], c)
		}
	}

	return removed, keys
}

// RemoveFile drops all entries for a deleted file and returns the removed
// primary keys.
func (t *SymbolTable) RemoveFile(file string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeFileLocked(file)
}

func (t *SymbolTable) removeFileLocked(file string) []string {
	keys := t.byFile[file]
	for _, key := range keys {
		sym, ok := t.symbols[key]
		if !ok {
			continue
		}
		delete(t.symbols, key)
		if set, ok := t.byName[sym.Name]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(t.byName, sym.Name)
			}
		}
	}
	delete(t.byFile, file)

	if _, ok := t.callsByFile[file]; ok {
		delete(t.callsByFile, file)
		for callee, sites := range t.callers {
			kept := sites[:0]
			for _, c := range sites {
				if c.File != file {
					kept = append(kept, c)
				}
			}
			if len(kept) == 0 {
				delete(t.callers, callee)
			} else {
				t.callers[callee] = kept
			}
		}
	}
	return keys
}

// Get returns the first definition of name in file, preferring the earliest
// occurrence.
func (t *SymbolTable) Get(file, name string) (domain.Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var best domain.Symbol
	found := false
	for _, key := range t.byFile[file] {
		sym := t.symbols[key]
		if sym.Name != name {
			continue
		}
		if !found || sym.StartLine < best.StartLine {
			best = sym
			found = true
		}
	}
	return best, found
}

// GetByKey returns the symbol stored under a primary key.
func (t *SymbolTable) GetByKey(key string) (domain.Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sym, ok := t.symbols[key]
	return sym, ok
}

// ListByFile returns all symbols defined in a file, ordered by position.
func (t *SymbolTable) ListByFile(file string) []domain.Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Symbol, 0, len(t.byFile[file]))
	for _, key := range t.byFile[file] {
		if sym, ok := t.symbols[key]; ok {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartByte < out[j].StartByte })
	return out
}

// All returns every symbol in the table in file/position order.
func (t *SymbolTable) All() []domain.Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Symbol, 0, len(t.symbols))
	for _, sym := range t.symbols {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].StartByte < out[j].StartByte
	})
	return out
}

// Callers returns the call sites recorded for a callee name, in file/line
// order. Sites are lexical matches; the name may be unresolved.
func (t *SymbolTable) Callers(name string) []domain.CallSite {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sites := t.callers[name]
	out := make([]domain.CallSite, len(sites))
	copy(out, sites)
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.symbols)
}
