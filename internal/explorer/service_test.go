package explorer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sightglass-mcp/sightglass/internal/domain"
	"github.com/sightglass-mcp/sightglass/internal/orchestrator"
	"github.com/sightglass-mcp/sightglass/internal/project"
	"github.com/sightglass-mcp/sightglass/internal/session"
)

const mainGo = `package main

import "fmt"

func greet(name string) string {
	message := "Hello, " + name
	return message
}

func farewell(name string) string {
	return "Bye, " + name
}

func main() {
	fmt.Println(greet("world"))
	fmt.Println(farewell("world"))
}
`

const mainTestGo = `package main

import "testing"

func TestGreet(t *testing.T) {
	if greet("x") == "" {
		t.Fatal("empty greeting")
	}
}
`

func writeTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"main.go":      mainGo,
		"main_test.go": mainTestGo,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// staticEvaluator returns the same reply for every subcall.
type staticEvaluator struct {
	reply string
	err   error
}

func (e *staticEvaluator) Evaluate(ctx context.Context, system, user string) (string, error) {
	return e.reply, e.err
}

func newTestService(t *testing.T, eval orchestrator.Evaluator) *Service {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	sessions := session.NewStore()
	registry := project.NewRegistry(5, sessions, log)
	var orch *orchestrator.Orchestrator
	if eval != nil {
		orch = orchestrator.New(eval, log, 2, 2)
	}
	return NewService(registry, sessions, orch, Limits{}, log)
}

func initSession(t *testing.T, svc *Service) string {
	t.Helper()
	res, err := svc.Init(context.Background(), writeTestProject(t), "")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return res.Instance
}

func TestInitIndexesProject(t *testing.T) {
	svc := newTestService(t, nil)
	res, err := svc.Init(context.Background(), writeTestProject(t), "")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if res.Instance == "" {
		t.Fatal("expected an instance id")
	}
	if res.Files != 2 {
		t.Fatalf("files = %d, want 2", res.Files)
	}
	if res.Languages["go"] != 2 {
		t.Fatalf("go files = %d, want 2", res.Languages["go"])
	}
}

func TestInitResumesLiveSession(t *testing.T) {
	svc := newTestService(t, nil)
	root := writeTestProject(t)
	first, err := svc.Init(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if first.Resumed {
		t.Fatal("fresh session reported as resumed")
	}
	if err := svc.VarSet(first.Instance, "note", "kept"); err != nil {
		t.Fatal(err)
	}

	second, err := svc.Init(context.Background(), root, first.Instance)
	if err != nil {
		t.Fatalf("Init resume: %v", err)
	}
	if !second.Resumed || second.Instance != first.Instance {
		t.Fatalf("resume = %+v, want instance %s resumed", second, first.Instance)
	}
	vars, err := svc.VarList(first.Instance)
	if err != nil {
		t.Fatal(err)
	}
	if len(vars.Variables) != 1 {
		t.Fatalf("session state lost across resume: %+v", vars)
	}

	other := writeTestProject(t)
	if _, err := svc.Init(context.Background(), other, first.Instance); !domain.IsInvalidInput(err) {
		t.Fatalf("expected invalid input for cross-project resume, got %v", err)
	}
}

func TestInitEmptyRootRejected(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.Init(context.Background(), "  ", ""); !domain.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSearchReturnsMetadataOnly(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	res, err := svc.Search(instance, "greet", "function", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) == 0 {
		t.Fatal("expected results")
	}
	if res.Results[0].Symbol.Name != "greet" {
		t.Fatalf("top hit = %q, want greet", res.Results[0].Symbol.Name)
	}
}

func TestImplBuffersContent(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	res, err := svc.Impl(instance, "main.go", "greet")
	if err != nil {
		t.Fatalf("Impl: %v", err)
	}
	if res.Buffer.Name != "impl_greet" {
		t.Fatalf("buffer = %q, want impl_greet", res.Buffer.Name)
	}
	if !strings.HasPrefix(res.Buffer.Preview, "func greet(") {
		t.Fatalf("preview = %q", res.Buffer.Preview)
	}

	// The full text is reachable only through the peek escape hatch.
	peek, err := svc.BufferPeek(instance, "impl_greet", 0, 0)
	if err != nil {
		t.Fatalf("BufferPeek: %v", err)
	}
	if !strings.Contains(peek.Content, "message :=") {
		t.Fatalf("peek content = %q", peek.Content)
	}
}

func TestPeekClampsWindow(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	res, err := svc.Peek(instance, "main.go", 1, 4)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if res.StartLine != 1 || res.EndLine != 4 {
		t.Fatalf("window %d..%d, want 1..4", res.StartLine, res.EndLine)
	}
	if res.Buffer.LineCount != 4 {
		t.Fatalf("line count = %d, want 4", res.Buffer.LineCount)
	}

	if _, err := svc.Peek(instance, "main.go", 500, 510); !domain.IsInvalidInput(err) {
		t.Fatalf("expected invalid input for out-of-range window, got %v", err)
	}
}

func TestGrepBuffersMatches(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	res, err := svc.Grep(instance, "farewell", "*.go", "", 0, 0)
	if err != nil {
		t.Fatalf("Grep: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("total = %d, want 2", res.Total)
	}
	if !strings.HasPrefix(res.Buffer.Name, "grep_") {
		t.Fatalf("buffer = %q", res.Buffer.Name)
	}

	peek, err := svc.BufferPeek(instance, res.Buffer.Name, 0, 0)
	if err != nil {
		t.Fatalf("BufferPeek: %v", err)
	}
	if !strings.Contains(peek.Content, "main.go:") {
		t.Fatalf("buffer content = %q", peek.Content)
	}
}

func TestCallersAndTests(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	callers, err := svc.Callers(instance, "greet", 0)
	if err != nil {
		t.Fatalf("Callers: %v", err)
	}
	if callers.Total != 2 {
		t.Fatalf("caller total = %d, want 2", callers.Total)
	}

	tests, err := svc.Tests(instance, "greet", 0)
	if err != nil {
		t.Fatalf("Tests: %v", err)
	}
	if tests.Total != 1 || tests.Tests[0].TestName != "TestGreet" {
		t.Fatalf("tests = %+v", tests)
	}
}

func TestHistoryRecordsQueries(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	if _, err := svc.Search(instance, "greet", "", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Impl(instance, "main.go", "greet"); err != nil {
		t.Fatal(err)
	}

	hist, err := svc.History(instance, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if hist.Total != 2 {
		t.Fatalf("history total = %d, want 2", hist.Total)
	}
	if hist.Entries[0].Operation != "search" || hist.Entries[1].Operation != "impl" {
		t.Fatalf("entries = %+v", hist.Entries)
	}
}

func TestFinalVariableFlow(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	before, err := svc.CheckFinal(instance)
	if err != nil {
		t.Fatal(err)
	}
	if before.Set {
		t.Fatal("final should start unset")
	}

	if err := svc.VarSet(instance, session.FinalVariable, "the answer"); err != nil {
		t.Fatal(err)
	}
	after, err := svc.CheckFinal(instance)
	if err != nil {
		t.Fatal(err)
	}
	if !after.Set || after.Final != "the answer" {
		t.Fatalf("final = %+v", after)
	}

	// Final does not leak into the ordinary variable listing.
	vars, err := svc.VarList(instance)
	if err != nil {
		t.Fatal(err)
	}
	if len(vars.Variables) != 0 || !vars.FinalSet {
		t.Fatalf("vars = %+v", vars)
	}
}

func TestStatusAccountsBuffers(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	if _, err := svc.BufferCreate(instance, "notes", "0123456789ab", "scratch"); err != nil {
		t.Fatal(err)
	}
	status, err := svc.Status(instance)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.BufferBytes != 12 {
		t.Fatalf("buffer bytes = %d, want 12", status.BufferBytes)
	}
	if status.TokenBudget.BufferTokens != 3 {
		t.Fatalf("buffer tokens = %d, want 3", status.TokenBudget.BufferTokens)
	}
	if len(status.OpenProjects) != 1 {
		t.Fatalf("open projects = %v", status.OpenProjects)
	}
}

func TestCleanupDropsSessions(t *testing.T) {
	svc := newTestService(t, nil)
	root := writeTestProject(t)
	res, err := svc.Init(context.Background(), root, "")
	if err != nil {
		t.Fatal(err)
	}

	cleaned, err := svc.Cleanup(root)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if cleaned.SessionsDropped != 1 {
		t.Fatalf("dropped = %d, want 1", cleaned.SessionsDropped)
	}
	if _, err := svc.Status(res.Instance); !domain.IsNotFound(err) {
		t.Fatalf("expected not found after cleanup, got %v", err)
	}
}

func TestAnnotationsRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	if err := svc.DefineFile(instance, "main.go", "entry point"); err != nil {
		t.Fatal(err)
	}
	if err := svc.DefineFile(instance, "main.go", "again"); err == nil {
		t.Fatal("expected error on duplicate define")
	}
	if err := svc.RedefineFile(instance, "main.go", "entry point, revised"); err != nil {
		t.Fatal(err)
	}
	if err := svc.DefineSymbol(instance, "main.go", "greet", "builds the greeting"); err != nil {
		t.Fatal(err)
	}
	if err := svc.MarkFile(instance, "main.go", "explored", ""); err != nil {
		t.Fatal(err)
	}

	sum, err := svc.SaveAnnotations(instance)
	if err != nil {
		t.Fatalf("SaveAnnotations: %v", err)
	}
	if sum.Files != 1 || sum.Symbols != 1 || sum.Marked != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	loaded, err := svc.LoadAnnotations(instance)
	if err != nil {
		t.Fatalf("LoadAnnotations: %v", err)
	}
	if loaded != sum {
		t.Fatalf("loaded %+v, want %+v", loaded, sum)
	}
}

func TestOrchestrationWithoutEvaluatorFails(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	if _, err := svc.BufferCreate(instance, "chunk", "some code", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LLMQuery(context.Background(), instance, "chunk", "what is this"); !domain.IsEvaluatorFailure(err) {
		t.Fatalf("expected evaluator failure, got %v", err)
	}
	if _, err := svc.DeepQuery(context.Background(), instance, "main.go", "what", 0); !domain.IsEvaluatorFailure(err) {
		t.Fatalf("expected evaluator failure, got %v", err)
	}
}

func TestLLMQueryRecordsSubcall(t *testing.T) {
	eval := &staticEvaluator{reply: `{"findings": [{"point": "greets by name", "evidence": "greet", "confidence": "high"}]}`}
	svc := newTestService(t, eval)
	instance := initSession(t, svc)

	if _, err := svc.BufferCreate(instance, "chunk", "func greet() {}", ""); err != nil {
		t.Fatal(err)
	}
	res, err := svc.LLMQuery(context.Background(), instance, "chunk", "what does this do")
	if err != nil {
		t.Fatalf("LLMQuery: %v", err)
	}
	if res.Result.Failed() {
		t.Fatalf("unexpected failure: %s", res.Result.Error)
	}
	if len(res.Result.Findings) != 1 || res.Result.Findings[0].Point != "greets by name" {
		t.Fatalf("findings = %+v", res.Result.Findings)
	}
	if res.ResultBuffer != "subcall_chunk" {
		t.Fatalf("result buffer = %q", res.ResultBuffer)
	}

	status, err := svc.Status(instance)
	if err != nil {
		t.Fatal(err)
	}
	if status.Subcalls != 1 {
		t.Fatalf("subcalls = %d, want 1", status.Subcalls)
	}
}

func TestSubcallBatchCountsFailures(t *testing.T) {
	eval := &staticEvaluator{reply: "not json at all"}
	svc := newTestService(t, eval)
	instance := initSession(t, svc)

	res, err := svc.SubcallBatch(context.Background(), instance, "main.go", "find bugs", 0)
	if err != nil {
		t.Fatalf("SubcallBatch: %v", err)
	}
	if res.Count == 0 {
		t.Fatal("expected at least one chunk")
	}
	if res.Failures != res.Count {
		t.Fatalf("failures = %d, want %d", res.Failures, res.Count)
	}
	for _, sc := range res.Subcalls {
		if !sc.Failed {
			t.Fatalf("expected failure marker in %+v", sc)
		}
	}
}

func TestDeepQuerySynthesizes(t *testing.T) {
	eval := &staticEvaluator{reply: `{"findings": [{"point": "two greeting helpers", "evidence": "main.go", "confidence": "medium"}], "answer_if_complete": "Greeting helpers live in main.go."}`}
	svc := newTestService(t, eval)
	instance := initSession(t, svc)

	res, err := svc.DeepQuery(context.Background(), instance, "main.go", "where are greetings built", 0)
	if err != nil {
		t.Fatalf("DeepQuery: %v", err)
	}
	if res.Answer == "" {
		t.Fatal("expected an answer")
	}
	if !strings.HasPrefix(res.AnswerBuffer, "deep_") {
		t.Fatalf("answer buffer = %q", res.AnswerBuffer)
	}
	if res.Failures != 0 {
		t.Fatalf("failures = %d", res.Failures)
	}
	if res.Depth != 1 {
		t.Fatalf("depth = %d, want 1", res.Depth)
	}
}

// reentrantEvaluator calls back into DeepQuery with the context it was
// handed, the way a sub-evaluator issuing its own deep query would.
type reentrantEvaluator struct {
	svc      *Service
	instance string
	file     string

	mu        sync.Mutex
	nestedErr error
}

func (e *reentrantEvaluator) Evaluate(ctx context.Context, system, user string) (string, error) {
	_, err := e.svc.DeepQuery(ctx, e.instance, e.file, "nested question", 0)
	if err != nil {
		e.mu.Lock()
		if e.nestedErr == nil {
			e.nestedErr = err
		}
		e.mu.Unlock()
	}
	return `{"findings": [{"point": "nested lookup ran", "evidence": "main.go", "confidence": "low"}]}`, nil
}

func TestDeepQueryNestedCallsHitCeiling(t *testing.T) {
	eval := &reentrantEvaluator{}
	svc := newTestService(t, eval)
	instance := initSession(t, svc)
	eval.svc = svc
	eval.instance = instance
	eval.file = "main.go"

	res, err := svc.DeepQuery(context.Background(), instance, "main.go", "what does main do", 0)
	if err != nil {
		t.Fatalf("DeepQuery: %v", err)
	}
	if res.Depth != 1 {
		t.Fatalf("depth = %d, want 1", res.Depth)
	}
	if eval.nestedErr == nil {
		t.Fatal("nested queries never reached the recursion ceiling")
	}
	if !errors.Is(eval.nestedErr, domain.ErrDepthExceeded) {
		t.Fatalf("nested err = %v, want depth exceeded", eval.nestedErr)
	}
}

func TestReplScriptDrivesSession(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	script := `
hits = search("greet", kind="function")
for h in hits["results"]:
    print(h["name"], h["file"])
set_var("Final", "found " + str(hits["total_count"]))
`
	res, err := svc.Repl(context.Background(), instance, script)
	if err != nil {
		t.Fatalf("Repl: %v", err)
	}
	if res.Error != "" {
		t.Fatalf("script error: %s", res.Error)
	}
	if !strings.HasPrefix(res.StdoutBuffer.Name, "stdout_") {
		t.Fatalf("stdout buffer = %q", res.StdoutBuffer.Name)
	}
	if !strings.Contains(res.StdoutBuffer.Preview, "greet main.go") {
		t.Fatalf("stdout preview = %q", res.StdoutBuffer.Preview)
	}

	final, err := svc.CheckFinal(instance)
	if err != nil {
		t.Fatal(err)
	}
	if !final.Set || !strings.HasPrefix(final.Final, "found ") {
		t.Fatalf("final = %+v", final)
	}
}

func TestReplScriptErrorIsRecoverable(t *testing.T) {
	svc := newTestService(t, nil)
	instance := initSession(t, svc)

	res, err := svc.Repl(context.Background(), instance, `print("before")
x = 1 // 0`)
	if err != nil {
		t.Fatalf("Repl: %v", err)
	}
	if res.Error == "" {
		t.Fatal("expected a script error")
	}
	if !strings.Contains(res.StdoutBuffer.Preview, "before") {
		t.Fatalf("partial stdout lost: %q", res.StdoutBuffer.Preview)
	}
}
