package session

import (
	"strings"
	"testing"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

func TestBufferLifecycle(t *testing.T) {
	s := newSession("id", "/tmp/project")

	info, err := s.CreateBuffer("impl", "func main() {}\n", domain.Provenance{
		Type: domain.ProvenanceSymbol, Path: "main.go", Symbol: "main",
	})
	if err != nil {
		t.Fatal(err)
	}
	if info.SizeBytes != 15 || info.LineCount != 1 {
		t.Fatalf("info = %+v", info)
	}

	buf, err := s.Buffer("impl")
	if err != nil {
		t.Fatal(err)
	}
	if buf.Content != "func main() {}\n" {
		t.Fatalf("content = %q", buf.Content)
	}

	// Re-creating under the same name replaces the buffer.
	if _, err := s.CreateBuffer("impl", "replaced", domain.Provenance{Type: domain.ProvenanceComputed}); err != nil {
		t.Fatal(err)
	}
	buf, _ = s.Buffer("impl")
	if buf.Content != "replaced" {
		t.Fatalf("content after replace = %q", buf.Content)
	}

	if err := s.DeleteBuffer("impl"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Buffer("impl"); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if err := s.DeleteBuffer("impl"); !domain.IsNotFound(err) {
		t.Fatalf("double delete err = %v, want not found", err)
	}
}

func TestBufferPreviewCapped(t *testing.T) {
	s := newSession("id", "/tmp/project")
	long := strings.Repeat("x", 1000)
	info, err := s.CreateBuffer("big", long, domain.Provenance{Type: domain.ProvenanceComputed})
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Preview) != domain.PreviewLimit {
		t.Fatalf("preview length = %d, want %d", len(info.Preview), domain.PreviewLimit)
	}
	if info.SizeBytes != 1000 {
		t.Fatalf("size = %d", info.SizeBytes)
	}
}

func TestFinalVariableRouting(t *testing.T) {
	s := newSession("id", "/tmp/project")

	if _, set := s.Final(); set {
		t.Fatal("final set on fresh session")
	}
	if err := s.SetVar(FinalVariable, "the answer"); err != nil {
		t.Fatal(err)
	}
	got, set := s.Final()
	if !set || got != "the answer" {
		t.Fatalf("final = %q set = %v", got, set)
	}
	// The final slot is not listed among scratch variables.
	if _, ok := s.Vars()[FinalVariable]; ok {
		t.Fatal("final leaked into vars")
	}
	// But reads through GetVar resolve it.
	if v, ok := s.GetVar(FinalVariable); !ok || v != "the answer" {
		t.Fatalf("GetVar(Final) = %q, %v", v, ok)
	}
}

func TestHistoryDedupesConsecutive(t *testing.T) {
	s := newSession("id", "/tmp/project")

	s.Record("search", "handle", "3 results")
	s.Record("search", "handle", "3 results again")
	s.Record("symbols", "main.go", "5 symbols")
	s.Record("search", "handle", "3 results")

	h := s.History(0)
	if len(h) != 3 {
		t.Fatalf("history length = %d, want 3: %+v", len(h), h)
	}
	ops := []string{h[0].Operation, h[1].Operation, h[2].Operation}
	want := []string{"search", "symbols", "search"}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("ops = %v, want %v", ops, want)
		}
	}
	// The first entry of a dedup run is kept, not the later one.
	if h[0].Preview != "3 results" {
		t.Fatalf("preview = %q", h[0].Preview)
	}
}

func TestHistoryLimitReturnsMostRecent(t *testing.T) {
	s := newSession("id", "/tmp/project")
	s.Record("a", "1", "")
	s.Record("b", "2", "")
	s.Record("c", "3", "")

	h := s.History(2)
	if len(h) != 2 || h[0].Operation != "b" || h[1].Operation != "c" {
		t.Fatalf("history = %+v", h)
	}
}

func TestStoreLifecycle(t *testing.T) {
	st := NewStore()

	a := st.Create("/proj/a")
	b := st.Create("/proj/a")
	c := st.Create("/proj/b")
	if a.InstanceID == b.InstanceID {
		t.Fatal("duplicate instance ids")
	}

	got, err := st.Get(a.InstanceID)
	if err != nil || got != a {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := st.Get("nope"); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}

	if n := st.DropProject("/proj/a"); n != 2 {
		t.Fatalf("dropped = %d, want 2", n)
	}
	if st.Len() != 1 {
		t.Fatalf("len = %d, want 1", st.Len())
	}
	if _, err := st.Get(c.InstanceID); err != nil {
		t.Fatalf("unrelated session dropped: %v", err)
	}
}

func TestStoreAttach(t *testing.T) {
	st := NewStore()

	// Empty id mints a fresh session.
	fresh, resumed, err := st.Attach("/proj/a", "")
	if err != nil || resumed {
		t.Fatalf("Attach fresh = %v, resumed %v", err, resumed)
	}
	if fresh.InstanceID == "" {
		t.Fatal("missing instance id")
	}

	// A live id on the same root resumes the existing session.
	if err := fresh.SetVar("note", "kept"); err != nil {
		t.Fatal(err)
	}
	same, resumed, err := st.Attach("/proj/a", fresh.InstanceID)
	if err != nil || !resumed || same != fresh {
		t.Fatalf("Attach resume = %v, %v, resumed %v", same, err, resumed)
	}
	if _, ok := same.GetVar("note"); !ok {
		t.Fatal("session state lost on resume")
	}

	// A live id on a different root is rejected.
	if _, _, err := st.Attach("/proj/b", fresh.InstanceID); !domain.IsInvalidInput(err) {
		t.Fatalf("cross-project attach err = %v, want invalid input", err)
	}

	// A dead id is re-registered under the same name.
	st.Drop(fresh.InstanceID)
	revived, resumed, err := st.Attach("/proj/a", fresh.InstanceID)
	if err != nil || resumed {
		t.Fatalf("Attach after drop = %v, resumed %v", err, resumed)
	}
	if revived.InstanceID != fresh.InstanceID {
		t.Fatalf("instance id = %q, want %q", revived.InstanceID, fresh.InstanceID)
	}
	if _, ok := revived.GetVar("note"); ok {
		t.Fatal("dropped session state resurrected")
	}
}

func TestSubcallResultsAccumulate(t *testing.T) {
	s := newSession("id", "/tmp/project")
	s.AddSubcallResults([]domain.SubcallResult{{ChunkID: "c1"}, {ChunkID: "c2", Error: "boom"}})
	s.AddSubcallResults([]domain.SubcallResult{{ChunkID: "c3"}})

	got := s.SubcallResults()
	if len(got) != 3 {
		t.Fatalf("results = %d, want 3", len(got))
	}
	if !got[1].Failed() {
		t.Fatal("failure marker lost")
	}
}
