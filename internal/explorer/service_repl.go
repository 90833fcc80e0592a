package explorer

import (
	"context"
	"strings"

	"github.com/sightglass-mcp/sightglass/internal/domain"
	"github.com/sightglass-mcp/sightglass/internal/index"
	"github.com/sightglass-mcp/sightglass/internal/orchestrator"
	"github.com/sightglass-mcp/sightglass/internal/project"
	"github.com/sightglass-mcp/sightglass/internal/sandbox"
	"github.com/sightglass-mcp/sightglass/internal/session"
)

// ReplResult is the metadata view of one script run. Full stdout lives in
// the named buffer; the response carries only its shape and a preview.
type ReplResult struct {
	StdoutBuffer domain.BufferInfo `json:"stdout_buffer"`
	Steps        uint64            `json:"steps"`
	Error        string            `json:"error,omitempty"`
}

// Repl executes a Starlark script against the session. Script failures are
// reported in the result, not as an error; partial stdout is still
// captured.
func (s *Service) Repl(ctx context.Context, instance, code string) (ReplResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return ReplResult{}, err
	}
	defer handle.Release()

	host := &scriptHost{svc: s, sess: sess, handle: handle, ctx: ctx}
	run := sandbox.Run(ctx, host, code, s.limits.ReplMaxSteps)

	info, err := sess.CreateBuffer(sess.NextName("stdout"), run.Stdout, domain.Provenance{
		Type:        domain.ProvenanceComputed,
		Description: "repl stdout",
	})
	if err != nil {
		return ReplResult{}, err
	}
	sess.Record("repl", info.Name, info.Preview)

	result := ReplResult{StdoutBuffer: info, Steps: run.Steps}
	if run.Err != nil {
		result.Error = run.Err.Error()
	}
	return result, nil
}

// scriptHost exposes session-bound operations to the sandbox. Scripts see
// raw content; only what they print leaves, through the stdout buffer.
type scriptHost struct {
	svc    *Service
	sess   *session.Session
	handle *project.Handle
	ctx    context.Context
}

func (h *scriptHost) Search(query, kind string, limit int) ([]sandbox.SearchHit, int, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = h.svc.limits.SearchLimit
	}
	results, total, err := h.handle.Project().Index.Search(query, k, limit)
	if err != nil {
		return nil, 0, err
	}
	hits := make([]sandbox.SearchHit, len(results))
	for i, r := range results {
		hits[i] = sandbox.SearchHit{Symbol: r.Symbol, Score: r.Score}
	}
	h.sess.Record("repl:search", query, "")
	return hits, total, nil
}

func (h *scriptHost) Symbols(file, kind string, limit int) ([]domain.Symbol, int, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = h.svc.limits.SymbolsLimit
	}
	return h.handle.Project().Index.Symbols(file, k, limit)
}

func (h *scriptHost) Impl(file, name string) (domain.Symbol, string, error) {
	sym, text, err := h.handle.Project().Index.Impl(file, name)
	if err != nil {
		return domain.Symbol{}, "", err
	}
	h.sess.Record("repl:impl", file+"::"+name, sym.Signature)
	return sym, text, nil
}

func (h *scriptHost) Callers(name string, limit int) ([]domain.CallSite, int, error) {
	if limit <= 0 {
		limit = h.svc.limits.CallersLimit
	}
	return h.handle.Project().Index.CallersOf(name, limit)
}

func (h *scriptHost) Tests(name string, limit int) ([]domain.TestReference, int, error) {
	if limit <= 0 {
		limit = h.svc.limits.TestsLimit
	}
	return h.handle.Project().Index.Tests(name, limit)
}

func (h *scriptHost) Grep(pattern, glob, scope string, limit int) ([]domain.GrepMatch, int, error) {
	gs, err := parseScope(scope)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = h.svc.limits.GrepLimit
	}
	res, err := h.handle.Project().Index.Grep(index.GrepOptions{
		Pattern:  pattern,
		FileGlob: glob,
		Scope:    gs,
		Limit:    limit,
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Matches, res.Total, nil
}

func (h *scriptHost) PeekFile(file string, startLine, endLine int) (string, error) {
	content, err := h.handle.Project().Index.Content(file)
	if err != nil {
		return "", err
	}
	lines := strings.Split(string(content), "\n")
	if startLine <= 0 {
		startLine = 1
	}
	if endLine <= 0 || endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > endLine {
		return "", domain.InvalidInputf("line window %d..%d is empty", startLine, endLine)
	}
	if endLine-startLine+1 > h.svc.limits.PeekMaxLines {
		endLine = startLine + h.svc.limits.PeekMaxLines - 1
	}
	return strings.Join(lines[startLine-1:endLine], "\n"), nil
}

func (h *scriptHost) Variables(file, symbol string) ([]string, error) {
	return h.handle.Project().Index.Variables(file, symbol)
}

func (h *scriptHost) CreateBuffer(name, content string) error {
	_, err := h.sess.CreateBuffer(name, content, domain.Provenance{
		Type:        domain.ProvenanceComputed,
		Description: "created by repl script",
	})
	return err
}

func (h *scriptHost) LoadBuffer(name string) (string, error) {
	buf, err := h.sess.Buffer(name)
	if err != nil {
		return "", err
	}
	return buf.Content, nil
}

func (h *scriptHost) ListBuffers() []domain.BufferInfo {
	return h.sess.Buffers()
}

func (h *scriptHost) DeleteBuffer(name string) error {
	return h.sess.DeleteBuffer(name)
}

func (h *scriptHost) SetVar(name, value string) error {
	return h.sess.SetVar(name, value)
}

func (h *scriptHost) GetVar(name string) (string, bool) {
	return h.sess.GetVar(name)
}

func (h *scriptHost) ListVars() map[string]string {
	return h.sess.Vars()
}

func (h *scriptHost) SetFinal(value string) {
	h.sess.SetFinal(value)
}

func (h *scriptHost) AddFinding(point, evidence, confidence string) {
	h.sess.AddFinding(domain.Finding{Point: point, Evidence: evidence, Confidence: confidence})
}

func (h *scriptHost) Final() (string, bool) {
	return h.sess.Final()
}

func (h *scriptHost) LLMQuery(ctx context.Context, chunkID, content, query string) (domain.SubcallResult, error) {
	orch, err := h.svc.orchestrate()
	if err != nil {
		return domain.SubcallResult{}, err
	}
	result := orch.Query(ctx, orchestrator.Chunk{ID: chunkID, Content: content}, query)
	h.sess.AddSubcallResults([]domain.SubcallResult{result})
	h.svc.storeSubcall(h.sess, result)
	return result, nil
}

func (h *scriptHost) SubcallBatch(ctx context.Context, file, query string) (int, int, error) {
	res, err := h.svc.SubcallBatch(ctx, h.sess.InstanceID, file, query, 0)
	if err != nil {
		return 0, 0, err
	}
	return res.Count, res.Failures, nil
}

func (h *scriptHost) DeepQuery(ctx context.Context, file, query string, maxDepth int) (string, int, int, error) {
	res, err := h.svc.DeepQuery(ctx, h.sess.InstanceID, file, query, maxDepth)
	if err != nil {
		return "", 0, 0, err
	}
	return res.Answer, res.ChunkCount, res.Failures, nil
}
