// Package lang maps file extensions to tree-sitter languages and the
// queries used to extract definitions, call sites, local variables, and
// comment/string spans from them.
package lang

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language holds the tree-sitter configuration for one supported language.
// Query sources are compiled lazily and cached; a compiled query is safe to
// share across goroutines, a parser is not.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// Query sources. Captures follow the "<kind>.name" / "<kind>.def"
	// convention for definitions, "@callee" for call sites, "@var" for
	// local variables, and "@skip" for comment/string spans.
	DefsQuery  string
	CallsQuery string
	VarsQuery  string
	ScrubQuery string

	// IsTestSymbol reports whether a definition is a test by the
	// language's naming/file conventions.
	IsTestSymbol func(name, file string) bool

	once     sync.Once
	defs     *sitter.Query
	calls    *sitter.Query
	vars     *sitter.Query
	scrub    *sitter.Query
	queryErr error
}

// Sitter returns the underlying tree-sitter language.
func (l *Language) Sitter() *sitter.Language { return l.lang }

// NewParser returns a fresh parser for this language. Parsers are not
// thread-safe; each goroutine needs its own.
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

func (l *Language) compile() {
	l.once.Do(func() {
		var err error
		if l.defs, err = sitter.NewQuery([]byte(l.DefsQuery), l.lang); err != nil {
			l.queryErr = fmt.Errorf("compiling defs query for %s: %w", l.Name, err)
			return
		}
		if l.calls, err = sitter.NewQuery([]byte(l.CallsQuery), l.lang); err != nil {
			l.queryErr = fmt.Errorf("compiling calls query for %s: %w", l.Name, err)
			return
		}
		if l.VarsQuery != "" {
			if l.vars, err = sitter.NewQuery([]byte(l.VarsQuery), l.lang); err != nil {
				l.queryErr = fmt.Errorf("compiling vars query for %s: %w", l.Name, err)
				return
			}
		}
		if l.ScrubQuery != "" {
			if l.scrub, err = sitter.NewQuery([]byte(l.ScrubQuery), l.lang); err != nil {
				l.queryErr = fmt.Errorf("compiling scrub query for %s: %w", l.Name, err)
				return
			}
		}
	})
}

// DefsCompiled returns the compiled definitions query.
func (l *Language) DefsCompiled() (*sitter.Query, error) {
	l.compile()
	return l.defs, l.queryErr
}

// CallsCompiled returns the compiled call-sites query.
func (l *Language) CallsCompiled() (*sitter.Query, error) {
	l.compile()
	return l.calls, l.queryErr
}

// VarsCompiled returns the compiled local-variables query, or nil when the
// language has none.
func (l *Language) VarsCompiled() (*sitter.Query, error) {
	l.compile()
	return l.vars, l.queryErr
}

// ScrubCompiled returns the compiled comment/string query, or nil when the
// language has none.
func (l *Language) ScrubCompiled() (*sitter.Query, error) {
	l.compile()
	return l.scrub, l.queryErr
}

// Languages maps language names to their configuration. Populated by the
// per-language init() functions.
var Languages = map[string]*Language{}

var (
	extOnce sync.Once
	extMap  map[string]*Language
)

// ForPath returns the language for a file path, or nil if unsupported.
func ForPath(path string) *Language {
	extOnce.Do(func() {
		extMap = make(map[string]*Language)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extMap[ext] = l
			}
		}
	})
	return extMap[strings.ToLower(filepath.Ext(path))]
}

// NodeText returns the source text of a node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// FirstLine returns the first line of a definition's text, used as its
// signature.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimRight(s[:i], "\r")
	}
	return s
}
