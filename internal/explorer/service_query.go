package explorer

import (
	"fmt"
	"path"
	"strings"

	"github.com/sightglass-mcp/sightglass/internal/domain"
	"github.com/sightglass-mcp/sightglass/internal/index"
)

// StructureResult describes the rendered project tree.
type StructureResult struct {
	Buffer    domain.BufferInfo `json:"buffer"`
	Files     int               `json:"files"`
	Symbols   int               `json:"symbols"`
	Languages map[string]int    `json:"languages"`
}

// Structure renders the project tree into the "structure" buffer and
// returns its metadata.
func (s *Service) Structure(instance string, maxDepth int) (StructureResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return StructureResult{}, err
	}
	defer handle.Release()
	ix := handle.Project().Index

	tree := ix.Structure(maxDepth)
	info, err := sess.CreateBuffer("structure", tree, domain.Provenance{
		Type:        domain.ProvenanceComputed,
		Description: "project tree",
	})
	if err != nil {
		return StructureResult{}, err
	}
	sess.Record("structure", handle.Project().Root, info.Preview)
	return StructureResult{
		Buffer:    info,
		Files:     ix.FileCount(),
		Symbols:   ix.SymbolCount(),
		Languages: ix.LanguageBreakdown(),
	}, nil
}

// SearchResult carries ranked symbol hits.
type SearchResult struct {
	Results   []index.Result `json:"results"`
	Total     int            `json:"total_count"`
	Truncated bool           `json:"truncated"`
}

// Search ranks symbols against a name query.
func (s *Service) Search(instance, query, kind string, limit int) (SearchResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return SearchResult{}, err
	}
	defer handle.Release()

	k, err := parseKind(kind)
	if err != nil {
		return SearchResult{}, err
	}
	if limit <= 0 {
		limit = s.limits.SearchLimit
	}
	results, total, err := handle.Project().Index.Search(query, k, limit)
	if err != nil {
		return SearchResult{}, err
	}
	sess.Record("search", query, fmt.Sprintf("%d of %d results", len(results), total))
	return SearchResult{Results: results, Total: total, Truncated: total > len(results)}, nil
}

// SymbolsResult lists definitions in one file.
type SymbolsResult struct {
	Symbols   []domain.Symbol `json:"symbols"`
	Total     int             `json:"total_count"`
	Truncated bool            `json:"truncated"`
}

// Symbols lists a file's definitions.
func (s *Service) Symbols(instance, file, kind string, limit int) (SymbolsResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return SymbolsResult{}, err
	}
	defer handle.Release()

	k, err := parseKind(kind)
	if err != nil {
		return SymbolsResult{}, err
	}
	if limit <= 0 {
		limit = s.limits.SymbolsLimit
	}
	symbols, total, err := handle.Project().Index.Symbols(file, k, limit)
	if err != nil {
		return SymbolsResult{}, err
	}
	sess.Record("symbols", file, fmt.Sprintf("%d of %d symbols", len(symbols), total))
	return SymbolsResult{Symbols: symbols, Total: total, Truncated: total > len(symbols)}, nil
}

// ImplResult describes a symbol implementation held in a buffer.
type ImplResult struct {
	Symbol domain.Symbol     `json:"symbol"`
	Buffer domain.BufferInfo `json:"buffer"`
}

// Impl loads a symbol's definition into an impl_<name> buffer.
func (s *Service) Impl(instance, file, name string) (ImplResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return ImplResult{}, err
	}
	defer handle.Release()

	sym, text, err := handle.Project().Index.Impl(file, name)
	if err != nil {
		return ImplResult{}, err
	}
	info, err := sess.CreateBuffer("impl_"+name, text, domain.Provenance{
		Type:      domain.ProvenanceSymbol,
		Path:      sym.File,
		Symbol:    sym.Name,
		StartLine: sym.StartLine,
		EndLine:   sym.EndLine,
	})
	if err != nil {
		return ImplResult{}, err
	}
	sess.Record("impl", file+"::"+name, sym.Signature)
	return ImplResult{Symbol: sym, Buffer: info}, nil
}

// CallersResult lists call sites of a name.
type CallersResult struct {
	Callers   []domain.CallSite `json:"callers"`
	Total     int               `json:"total_count"`
	Truncated bool              `json:"truncated"`
}

// Callers lists lexical call sites referencing name.
func (s *Service) Callers(instance, name string, limit int) (CallersResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return CallersResult{}, err
	}
	defer handle.Release()

	if limit <= 0 {
		limit = s.limits.CallersLimit
	}
	sites, total, err := handle.Project().Index.CallersOf(name, limit)
	if err != nil {
		return CallersResult{}, err
	}
	sess.Record("callers", name, fmt.Sprintf("%d of %d call sites", len(sites), total))
	return CallersResult{Callers: sites, Total: total, Truncated: total > len(sites)}, nil
}

// TestsResult lists tests mentioning a symbol.
type TestsResult struct {
	Tests     []domain.TestReference `json:"tests"`
	Total     int                    `json:"total_count"`
	Truncated bool                   `json:"truncated"`
}

// Tests lists test definitions whose bodies mention name.
func (s *Service) Tests(instance, name string, limit int) (TestsResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return TestsResult{}, err
	}
	defer handle.Release()

	if limit <= 0 {
		limit = s.limits.TestsLimit
	}
	refs, total, err := handle.Project().Index.Tests(name, limit)
	if err != nil {
		return TestsResult{}, err
	}
	sess.Record("tests", name, fmt.Sprintf("%d of %d tests", len(refs), total))
	return TestsResult{Tests: refs, Total: total, Truncated: total > len(refs)}, nil
}

// VariablesResult lists the locals of a symbol.
type VariablesResult struct {
	Variables []string `json:"variables"`
	Total     int      `json:"total_count"`
}

// Variables lists variable names bound inside a symbol.
func (s *Service) Variables(instance, file, name string) (VariablesResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return VariablesResult{}, err
	}
	defer handle.Release()

	vars, err := handle.Project().Index.Variables(file, name)
	if err != nil {
		return VariablesResult{}, err
	}
	sess.Record("variables", file+"::"+name, fmt.Sprintf("%d variables", len(vars)))
	return VariablesResult{Variables: vars, Total: len(vars)}, nil
}

// PeekResult describes a line window held in a buffer.
type PeekResult struct {
	Buffer    domain.BufferInfo `json:"buffer"`
	File      string            `json:"file"`
	StartLine int               `json:"start_line"`
	EndLine   int               `json:"end_line"`
	FileLines int               `json:"file_lines"`
}

// Peek loads a window of a file into a buffer. Lines are 1-based and the
// window is clamped to PeekMaxLines.
func (s *Service) Peek(instance, file string, startLine, endLine int) (PeekResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return PeekResult{}, err
	}
	defer handle.Release()

	content, err := handle.Project().Index.Content(file)
	if err != nil {
		return PeekResult{}, err
	}
	lines := strings.Split(string(content), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if startLine <= 0 {
		startLine = 1
	}
	if endLine <= 0 || endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > len(lines) || startLine > endLine {
		return PeekResult{}, domain.InvalidInputf("line window %d..%d outside file of %d lines", startLine, endLine, len(lines))
	}
	if endLine-startLine+1 > s.limits.PeekMaxLines {
		endLine = startLine + s.limits.PeekMaxLines - 1
	}
	window := strings.Join(lines[startLine-1:endLine], "\n") + "\n"

	name := fmt.Sprintf("peek_%s_%d_%d", sanitizeName(path.Base(file)), startLine, endLine)
	info, err := sess.CreateBuffer(name, window, domain.Provenance{
		Type:      domain.ProvenanceFile,
		Path:      file,
		StartLine: startLine,
		EndLine:   endLine,
	})
	if err != nil {
		return PeekResult{}, err
	}
	sess.Record("peek", fmt.Sprintf("%s:%d-%d", file, startLine, endLine), info.Preview)
	return PeekResult{
		Buffer:    info,
		File:      file,
		StartLine: startLine,
		EndLine:   endLine,
		FileLines: len(lines),
	}, nil
}

// GrepHit is the metadata view of one match.
type GrepHit struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Preview string `json:"preview"`
}

// GrepToolResult carries match locations plus the buffer holding full
// matched lines with context.
type GrepToolResult struct {
	Matches   []GrepHit         `json:"matches"`
	Total     int               `json:"total_count"`
	Truncated bool              `json:"truncated"`
	Buffer    domain.BufferInfo `json:"buffer"`
}

// Grep searches indexed files with a regex. Matched lines with context go
// into a grep_<n> buffer; the response carries locations and previews.
func (s *Service) Grep(instance, pattern, fileGlob, scope string, contextLines, limit int) (GrepToolResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return GrepToolResult{}, err
	}
	defer handle.Release()

	gs, err := parseScope(scope)
	if err != nil {
		return GrepToolResult{}, err
	}
	if limit <= 0 {
		limit = s.limits.GrepLimit
	}
	if contextLines < 0 {
		contextLines = s.limits.GrepContext
	}
	res, err := handle.Project().Index.Grep(index.GrepOptions{
		Pattern:  pattern,
		FileGlob: fileGlob,
		Scope:    gs,
		Context:  contextLines,
		Limit:    limit,
	})
	if err != nil {
		return GrepToolResult{}, err
	}

	hits := make([]GrepHit, len(res.Matches))
	var full strings.Builder
	for i, m := range res.Matches {
		hits[i] = GrepHit{File: m.File, Line: m.Line, Preview: domain.Preview(m.Text)}
		fmt.Fprintf(&full, "%s:%d: %s\n", m.File, m.Line, m.Text)
		if m.Context != "" {
			fmt.Fprintf(&full, "%s\n", m.Context)
		}
	}
	info, err := sess.CreateBuffer(sess.NextName("grep"), full.String(), domain.Provenance{
		Type:    domain.ProvenanceGrep,
		Pattern: pattern,
	})
	if err != nil {
		return GrepToolResult{}, err
	}
	sess.Record("grep", pattern, fmt.Sprintf("%d of %d matches", len(hits), res.Total))
	return GrepToolResult{
		Matches:   hits,
		Total:     res.Total,
		Truncated: res.Truncated,
		Buffer:    info,
	}, nil
}

// ChunksResult lists a file's semantic chunks.
type ChunksResult struct {
	File   string                 `json:"file"`
	Chunks []domain.SemanticChunk `json:"chunks"`
	Count  int                    `json:"count"`
}

// SemanticChunks splits a file along symbol boundaries.
func (s *Service) SemanticChunks(instance, file string, maxBytes int) (ChunksResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return ChunksResult{}, err
	}
	defer handle.Release()

	if maxBytes <= 0 {
		maxBytes = s.limits.MaxChunkBytes
	}
	chunks, err := handle.Project().Index.SemanticChunks(file, maxBytes)
	if err != nil {
		return ChunksResult{}, err
	}
	sess.Record("semantic_chunks", file, fmt.Sprintf("%d chunks", len(chunks)))
	return ChunksResult{File: file, Chunks: chunks, Count: len(chunks)}, nil
}

func parseKind(kind string) (domain.SymbolKind, error) {
	if kind == "" {
		return "", nil
	}
	k := domain.ParseSymbolKind(kind)
	if k == "" {
		return "", domain.InvalidInputf("unknown symbol kind %q", kind)
	}
	return k, nil
}

func parseScope(scope string) (index.GrepScope, error) {
	switch scope {
	case "", string(index.ScopeAll):
		return index.ScopeAll, nil
	case string(index.ScopeCode):
		return index.ScopeCode, nil
	}
	return "", domain.InvalidInputf("unknown grep scope %q (use all or code)", scope)
}

// sanitizeName makes a path fragment safe for a buffer name.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
