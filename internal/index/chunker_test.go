package index

import (
	"strings"
	"testing"
)

// reassemble concatenates chunk byte ranges and checks the coverage
// invariants: contiguous, non-overlapping, and exactly spanning the file.
func reassemble(t *testing.T, content string, chunks []chunkView) {
	t.Helper()
	var b strings.Builder
	prevEnd := 0
	for i, c := range chunks {
		if c.start != prevEnd {
			t.Fatalf("chunk %d starts at %d, want %d", i, c.start, prevEnd)
		}
		if c.end <= c.start {
			t.Fatalf("chunk %d has empty range [%d,%d)", i, c.start, c.end)
		}
		b.WriteString(content[c.start:c.end])
		prevEnd = c.end
	}
	if prevEnd != len(content) {
		t.Fatalf("chunks end at %d, file has %d bytes", prevEnd, len(content))
	}
	if b.String() != content {
		t.Fatal("reassembled chunks differ from file content")
	}
}

type chunkView struct{ start, end int }

func TestSemanticChunksCoverFile(t *testing.T) {
	var b strings.Builder
	b.WriteString("package big\n\n")
	for _, name := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		b.WriteString("func " + name + "() int {\n\treturn len(\"" + name + "\")\n}\n\n")
	}
	content := b.String()

	ix := newTestIndex(t, map[string]string{"big.go": content})

	chunks, err := ix.SemanticChunks("big.go", 120)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	views := make([]chunkView, len(chunks))
	for i, c := range chunks {
		views[i] = chunkView{c.ByteStart, c.ByteEnd}
		if c.Index != i {
			t.Fatalf("chunk %d has index %d", i, c.Index)
		}
	}
	reassemble(t, content, views)
}

func TestSemanticChunksOversizedSymbolStandsAlone(t *testing.T) {
	var body strings.Builder
	body.WriteString("package big\n\nfunc tiny() {}\n\nfunc huge() {\n")
	for i := 0; i < 60; i++ {
		body.WriteString("\t_ = \"padding line to push the function well past the limit\"\n")
	}
	body.WriteString("}\n\nfunc small() {}\n")
	content := body.String()

	ix := newTestIndex(t, map[string]string{"big.go": content})

	chunks, err := ix.SemanticChunks("big.go", 200)
	if err != nil {
		t.Fatal(err)
	}

	views := make([]chunkView, len(chunks))
	var hugeChunk *chunkView
	for i, c := range chunks {
		views[i] = chunkView{c.ByteStart, c.ByteEnd}
		for _, name := range c.Symbols {
			if name == "huge" {
				if len(c.Symbols) != 1 {
					t.Fatalf("oversized symbol shares chunk with %v", c.Symbols)
				}
				hugeChunk = &views[i]
			}
		}
	}
	if hugeChunk == nil {
		t.Fatal("no chunk contains the oversized symbol")
	}
	if !strings.HasPrefix(content[hugeChunk.start:hugeChunk.end], "func huge() {") {
		t.Fatalf("oversized chunk does not start at the symbol: %q", content[hugeChunk.start:hugeChunk.start+20])
	}
	reassemble(t, content, views)
}

func TestSemanticChunksSplitOversizedGap(t *testing.T) {
	var b strings.Builder
	b.WriteString("package big\n\n")
	for i := 0; i < 40; i++ {
		b.WriteString("// filler commentary between definitions\n")
	}
	b.WriteString("\nfunc tiny() {}\n")
	content := b.String()

	ix := newTestIndex(t, map[string]string{"big.go": content})

	chunks, err := ix.SemanticChunks("big.go", 200)
	if err != nil {
		t.Fatal(err)
	}
	views := make([]chunkView, len(chunks))
	for i, c := range chunks {
		views[i] = chunkView{c.ByteStart, c.ByteEnd}
		if size := c.ByteEnd - c.ByteStart; size > 200 {
			t.Fatalf("chunk %d is %d bytes over a 200 byte cap (symbols %v)", i, size, c.Symbols)
		}
	}
	reassemble(t, content, views)
}

func TestSemanticChunksSplitOversizedTrailingText(t *testing.T) {
	var b strings.Builder
	b.WriteString("package big\n\nfunc huge() {\n")
	for i := 0; i < 20; i++ {
		b.WriteString("\t_ = \"padding to push the function past the cap\"\n")
	}
	b.WriteString("}\n\n")
	for i := 0; i < 40; i++ {
		b.WriteString("// trailing commentary after the last definition\n")
	}
	content := b.String()

	ix := newTestIndex(t, map[string]string{"big.go": content})

	chunks, err := ix.SemanticChunks("big.go", 200)
	if err != nil {
		t.Fatal(err)
	}
	views := make([]chunkView, len(chunks))
	for i, c := range chunks {
		views[i] = chunkView{c.ByteStart, c.ByteEnd}
		// Only the oversized symbol itself may exceed the cap.
		if size := c.ByteEnd - c.ByteStart; size > 200 && len(c.Symbols) == 0 {
			t.Fatalf("symbol-free chunk %d is %d bytes over a 200 byte cap", i, size)
		}
	}
	reassemble(t, content, views)
}

func TestSemanticChunksSmallFileSingleChunk(t *testing.T) {
	content := "package small\n\nfunc one() {}\n"
	ix := newTestIndex(t, map[string]string{"small.go": content})

	chunks, err := ix.SemanticChunks("small.go", DefaultChunkBytes)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].ByteStart != 0 || chunks[0].ByteEnd != len(content) {
		t.Fatalf("chunk range = [%d,%d)", chunks[0].ByteStart, chunks[0].ByteEnd)
	}
	if chunks[0].Preview == "" {
		t.Fatal("chunk preview is empty")
	}
}

func TestSimpleChunksFallbackForSymbollessFile(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("just a line of prose with no definitions in it\n")
	}
	content := b.String()
	ix := newTestIndex(t, map[string]string{"notes.py": content})

	chunks, err := ix.SemanticChunks("notes.py", 300)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple fallback chunks, got %d", len(chunks))
	}
	views := make([]chunkView, len(chunks))
	for i, c := range chunks {
		views[i] = chunkView{c.ByteStart, c.ByteEnd}
		if c.ByteEnd < len(content) && content[c.ByteEnd-1] != '\n' {
			t.Fatalf("chunk %d does not end on a newline", i)
		}
	}
	reassemble(t, content, views)
}

func TestOutermostFiltersNested(t *testing.T) {
	src := `package nest

type Greeter struct{}

func (g Greeter) Hello() string {
	inner := func() string { return "hi" }
	return inner()
}
`
	ix := newTestIndex(t, map[string]string{"nest.go": src})

	chunks, err := ix.SemanticChunks("nest.go", DefaultChunkBytes)
	if err != nil {
		t.Fatal(err)
	}
	views := make([]chunkView, len(chunks))
	for i, c := range chunks {
		views[i] = chunkView{c.ByteStart, c.ByteEnd}
	}
	reassemble(t, src, views)
}
