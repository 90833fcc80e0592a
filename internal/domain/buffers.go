package domain

import (
	"strings"
	"time"
)

// PreviewLimit caps every preview string returned to a metadata-only caller.
const PreviewLimit = 200

// Preview truncates s to at most PreviewLimit characters, ellipsis
// included.
func Preview(s string) string {
	if len(s) <= PreviewLimit {
		return s
	}
	cut := PreviewLimit - len("...")
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// ProvenanceType tags where a buffer's content came from.
type ProvenanceType string

const (
	ProvenanceFile     ProvenanceType = "file"
	ProvenanceSymbol   ProvenanceType = "symbol"
	ProvenanceGrep     ProvenanceType = "grep"
	ProvenanceSubcall  ProvenanceType = "subcall"
	ProvenanceComputed ProvenanceType = "computed"
)

// Provenance records the origin of a buffer's content. Exactly the fields
// relevant to Type are populated.
type Provenance struct {
	Type        ProvenanceType `json:"type"`
	Path        string         `json:"path,omitempty"`
	StartLine   int            `json:"start_line,omitempty"`
	EndLine     int            `json:"end_line,omitempty"`
	Symbol      string         `json:"symbol,omitempty"`
	Pattern     string         `json:"pattern,omitempty"`
	Query       string         `json:"query,omitempty"`
	Description string         `json:"description,omitempty"`
}

// Buffer is an immutable server-side content snapshot. Content is write-once;
// re-creating under the same name replaces the whole buffer.
type Buffer struct {
	Name       string
	Content    string
	Provenance Provenance
	CreatedAt  time.Time
}

// BufferInfo is the metadata-only view of a buffer. Full content is never
// part of a top-level response.
type BufferInfo struct {
	Name       string     `json:"name"`
	SizeBytes  int        `json:"size_bytes"`
	LineCount  int        `json:"line_count"`
	Provenance Provenance `json:"provenance"`
	Preview    string     `json:"preview"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Info builds the metadata view of a buffer.
func (b *Buffer) Info() BufferInfo {
	return BufferInfo{
		Name:       b.Name,
		SizeBytes:  len(b.Content),
		LineCount:  CountLines(b.Content),
		Provenance: b.Provenance,
		Preview:    Preview(b.Content),
		CreatedAt:  b.CreatedAt,
	}
}

// CountLines counts newline-terminated lines plus a trailing partial line.
func CountLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// HistoryEntry is one served query in a session's append-only log.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Target    string    `json:"target"`
	Preview   string    `json:"preview"`
}
