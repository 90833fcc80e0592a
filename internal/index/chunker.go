package index

import (
	"bytes"
	"sort"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// DefaultChunkBytes is the target chunk size when the caller passes none.
const DefaultChunkBytes = 5000

// SemanticChunks splits a file into contiguous byte ranges aligned to
// symbol boundaries. A symbol is never split across chunks; a symbol larger
// than maxBytes becomes a chunk of its own. Concatenating the ranges in
// order reproduces the file exactly. Files with no indexed symbols fall
// back to newline-aligned chunks.
func (ix *Index) SemanticChunks(rel string, maxBytes int) ([]domain.SemanticChunk, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultChunkBytes
	}
	entry, err := ix.Entry(rel)
	if err != nil {
		return nil, err
	}
	content := entry.Content
	if len(content) == 0 {
		return []domain.SemanticChunk{}, nil
	}

	symbols := outermost(ix.table.ListByFile(entry.Path))
	if len(symbols) == 0 {
		return finalize(content, simpleRanges(content, maxBytes)), nil
	}

	var ranges []chunkRange
	cur := chunkRange{start: 0}
	cursor := 0

	flush := func(end int) {
		if end > cur.start {
			cur.end = end
			ranges = append(ranges, cur)
		}
		cur = chunkRange{start: end}
	}
	// splitFlush closes the current chunk at end. A span that would
	// overflow is cut at its last symbol first; a symbol-free remainder
	// larger than maxBytes falls back to newline-aligned cuts.
	splitFlush := func(end int) {
		if cursor > cur.start && end-cur.start > maxBytes {
			flush(cursor)
		}
		if end-cur.start > maxBytes {
			for _, r := range simpleRanges(content[cur.start:end], maxBytes) {
				ranges = append(ranges, chunkRange{start: r.start + cur.start, end: r.end + cur.start})
			}
			cur = chunkRange{start: end}
			return
		}
		flush(end)
	}

	for _, sym := range symbols {
		if sym.StartByte < cursor || sym.EndByte > len(content) {
			continue
		}
		symSize := sym.EndByte - sym.StartByte
		// Size of the current chunk if the gap plus this symbol joins it.
		grown := sym.EndByte - cur.start

		switch {
		case symSize > maxBytes:
			// Oversized symbols stand alone. Preceding text closes out
			// the current chunk.
			splitFlush(sym.StartByte)
			cur.symbols = append(cur.symbols, sym.Name)
			flush(sym.EndByte)
		case grown > maxBytes:
			splitFlush(sym.StartByte)
			cur.symbols = append(cur.symbols, sym.Name)
		default:
			cur.symbols = append(cur.symbols, sym.Name)
		}
		cursor = sym.EndByte
	}
	// Trailing bytes after the last symbol join the final chunk unless
	// that would overflow it.
	if len(content) > cur.start {
		splitFlush(len(content))
	}

	return finalize(content, ranges), nil
}

type chunkRange struct {
	start, end int
	symbols    []string
}

// outermost drops symbols nested inside an earlier symbol's span, so the
// chunker only reasons about top-level boundaries.
func outermost(symbols []domain.Symbol) []domain.Symbol {
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].StartByte != symbols[j].StartByte {
			return symbols[i].StartByte < symbols[j].StartByte
		}
		return symbols[i].EndByte > symbols[j].EndByte
	})
	var out []domain.Symbol
	coveredEnd := -1
	for _, sym := range symbols {
		if sym.StartByte < coveredEnd {
			continue
		}
		out = append(out, sym)
		coveredEnd = sym.EndByte
	}
	return out
}

// simpleRanges cuts content at the newline nearest each maxBytes boundary.
// A single line longer than maxBytes is emitted whole.
func simpleRanges(content []byte, maxBytes int) []chunkRange {
	var ranges []chunkRange
	start := 0
	for start < len(content) {
		end := min(start+maxBytes, len(content))
		if end < len(content) {
			if nl := bytes.LastIndexByte(content[start:end], '\n'); nl >= 0 {
				end = start + nl + 1
			} else if nl := bytes.IndexByte(content[end:], '\n'); nl >= 0 {
				end = end + nl + 1
			} else {
				end = len(content)
			}
		}
		ranges = append(ranges, chunkRange{start: start, end: end})
		start = end
	}
	return ranges
}

func finalize(content []byte, ranges []chunkRange) []domain.SemanticChunk {
	chunks := make([]domain.SemanticChunk, 0, len(ranges))
	for i, r := range ranges {
		text := content[r.start:r.end]
		chunks = append(chunks, domain.SemanticChunk{
			Index:     i,
			ByteStart: r.start,
			ByteEnd:   r.end,
			LineStart: 1 + bytes.Count(content[:r.start], []byte("\n")),
			LineEnd:   1 + bytes.Count(content[:r.end], []byte("\n")),
			Symbols:   r.symbols,
			Preview:   domain.Preview(string(text)),
		})
	}
	return chunks
}
