package domain

// SymbolKind classifies a named definition extracted from a syntax tree.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindClass     SymbolKind = "class"
	KindStruct    SymbolKind = "struct"
	KindInterface SymbolKind = "interface"
	KindEnum      SymbolKind = "enum"
	KindTrait     SymbolKind = "trait"
	KindType      SymbolKind = "type"
	KindConstant  SymbolKind = "constant"
	KindModule    SymbolKind = "module"
	KindTest      SymbolKind = "test"
)

// ParseSymbolKind returns the kind for a string, or "" if unknown.
func ParseSymbolKind(s string) SymbolKind {
	switch SymbolKind(s) {
	case KindFunction, KindMethod, KindClass, KindStruct, KindInterface,
		KindEnum, KindTrait, KindType, KindConstant, KindModule, KindTest:
		return SymbolKind(s)
	}
	return ""
}

// Symbol is a named definition with its location in a source file.
// Byte and line spans are exclusive-end. (name, file, kind) is not unique;
// overloads and same-named definitions across files are permitted.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	File      string     `json:"file"`
	StartByte int        `json:"start_byte"`
	EndByte   int        `json:"end_byte"`
	StartLine int        `json:"start_line"`
	EndLine   int        `json:"end_line"`
	Language  string     `json:"language"`
	Signature string     `json:"signature"`
	Parent    string     `json:"parent,omitempty"`
}

// Bytes returns the size of the symbol's definition span.
func (s Symbol) Bytes() int {
	return s.EndByte - s.StartByte
}

// CallSite is a lexical reference to a symbol name. The target may be
// unresolved (no matching definition in the index).
type CallSite struct {
	Callee string `json:"callee"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Text   string `json:"text"`
}

// TestReference links a test definition to a symbol it appears to exercise.
// The link is a name match inside the test body, not proof of coverage.
type TestReference struct {
	TestName string `json:"test_name"`
	TestFile string `json:"test_file"`
	Line     int    `json:"line"`
	Symbol   string `json:"symbol"`
}

// SemanticChunk is a byte range of a file aligned to symbol boundaries.
// Chunks are contiguous, non-overlapping, and together cover the file.
type SemanticChunk struct {
	Index     int      `json:"index"`
	ByteStart int      `json:"byte_start"`
	ByteEnd   int      `json:"byte_end"`
	LineStart int      `json:"line_start"`
	LineEnd   int      `json:"line_end"`
	Symbols   []string `json:"symbols"`
	Preview   string   `json:"preview"`
}

// GrepMatch is one regex hit with surrounding context lines.
type GrepMatch struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}
