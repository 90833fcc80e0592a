package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

const (
	// DefaultParallelism bounds concurrent evaluator calls in one batch.
	DefaultParallelism = 4
	// DefaultMaxDepth is the recursion ceiling for deep queries.
	DefaultMaxDepth = 2
)

// CallContext carries the recursion depth through nested orchestration.
// Depth 0 is the top-level caller; each deep query consumes one level.
type CallContext struct {
	Depth    int
	MaxDepth int
}

// Root returns the context for a top-level call.
func Root(maxDepth int) CallContext {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return CallContext{Depth: 0, MaxDepth: maxDepth}
}

// Child descends one recursion level, failing at the ceiling.
func (c CallContext) Child() (CallContext, error) {
	if c.Depth+1 > c.MaxDepth {
		return c, fmt.Errorf("%w: depth %d at ceiling %d", domain.ErrDepthExceeded, c.Depth, c.MaxDepth)
	}
	return CallContext{Depth: c.Depth + 1, MaxDepth: c.MaxDepth}, nil
}

type callContextKey struct{}

// WithContext stamps the recursion state into ctx. Work dispatched under
// the returned context that calls back into a deep query descends from
// this state instead of restarting at the root.
func WithContext(ctx context.Context, cc CallContext) context.Context {
	return context.WithValue(ctx, callContextKey{}, cc)
}

// FromContext returns the recursion state stamped by an enclosing deep
// query, if any.
func FromContext(ctx context.Context) (CallContext, bool) {
	cc, ok := ctx.Value(callContextKey{}).(CallContext)
	return cc, ok
}

// Chunk is one unit of content dispatched to the evaluator.
type Chunk struct {
	ID      string
	Content string
}

// Orchestrator runs single, batched, and recursive evaluator queries.
type Orchestrator struct {
	eval        Evaluator
	log         *slog.Logger
	parallelism int
	maxDepth    int
}

// New creates an orchestrator. parallelism and maxDepth fall back to the
// defaults when non-positive.
func New(eval Evaluator, log *slog.Logger, parallelism, maxDepth int) *Orchestrator {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Orchestrator{eval: eval, log: log, parallelism: parallelism, maxDepth: maxDepth}
}

// MaxDepth returns the configured recursion ceiling.
func (o *Orchestrator) MaxDepth() int { return o.maxDepth }

const subcallSystem = `You analyze a fragment of source code against a query.
Reply with only a JSON object of this shape:
{"findings": [{"point": "...", "evidence": "...", "confidence": "high|medium|low"}],
 "suggested_queries": ["..."],
 "answer_if_complete": "..."}
Findings must cite evidence from the fragment. Leave answer_if_complete
empty unless the fragment alone fully answers the query.`

// Query evaluates one chunk against a query. Evaluator or parse failures
// come back as a failure-marked result, never as an error; a batch must
// keep its position for every dispatched chunk.
func (o *Orchestrator) Query(ctx context.Context, chunk Chunk, query string) domain.SubcallResult {
	result := domain.SubcallResult{
		ChunkID:   chunk.ID,
		Query:     query,
		CreatedAt: time.Now(),
	}

	user := fmt.Sprintf("Query: %s\n\nFragment %s:\n```\n%s\n```", query, chunk.ID, chunk.Content)
	raw, err := o.eval.Evaluate(ctx, subcallSystem, user)
	if err != nil {
		o.log.Warn("subcall failed", "chunk", chunk.ID, "error", err)
		result.Error = err.Error()
		return result
	}

	parsed, err := parseSubcallResponse(raw)
	if err != nil {
		o.log.Warn("subcall response unparseable", "chunk", chunk.ID, "error", err)
		result.Error = err.Error()
		return result
	}
	result.Findings = parsed.Findings
	result.SuggestedQueries = parsed.SuggestedQueries
	result.AnswerIfComplete = parsed.AnswerIfComplete
	return result
}

// Batch evaluates every chunk against the query with bounded parallelism.
// The returned slice has one result per chunk in input order; failed
// chunks hold failure markers and still count.
func (o *Orchestrator) Batch(ctx context.Context, chunks []Chunk, query string) []domain.SubcallResult {
	results := make([]domain.SubcallResult, len(chunks))
	sem := make(chan struct{}, o.parallelism)
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk Chunk) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.Query(ctx, chunk, query)
		}(i, chunk)
	}
	wg.Wait()
	return results
}

// DeepResult is the synthesized outcome of a recursive query.
type DeepResult struct {
	Answer     string                 `json:"answer"`
	Findings   []domain.Finding       `json:"findings"`
	Subcalls   []domain.SubcallResult `json:"-"`
	ChunkCount int                    `json:"chunk_count"`
	Failures   int                    `json:"failures"`
	Depth      int                    `json:"depth"`
}

const synthesizeSystem = `You synthesize findings gathered from fragments of a
codebase into one answer. Base the answer only on the findings given. Note
open questions when the findings are insufficient. Reply with plain text.`

// DeepQuery scouts every chunk, then synthesizes the collected findings
// into a single answer. Consumes one recursion level; at the ceiling it
// returns ErrDepthExceeded without dispatching anything.
func (o *Orchestrator) DeepQuery(ctx context.Context, cc CallContext, chunks []Chunk, query string) (DeepResult, error) {
	child, err := cc.Child()
	if err != nil {
		return DeepResult{}, err
	}
	if len(chunks) == 0 {
		return DeepResult{}, domain.InvalidInputf("deep query has no chunks")
	}

	o.log.Info("deep query", "chunks", len(chunks), "depth", child.Depth)
	ctx = WithContext(ctx, child)
	subcalls := o.Batch(ctx, chunks, query)

	result := DeepResult{
		Subcalls:   subcalls,
		ChunkCount: len(subcalls),
		Depth:      child.Depth,
	}
	var findings []domain.Finding
	var complete []string
	for _, sc := range subcalls {
		if sc.Failed() {
			result.Failures++
			continue
		}
		findings = append(findings, sc.Findings...)
		if sc.AnswerIfComplete != "" {
			complete = append(complete, sc.AnswerIfComplete)
		}
	}
	result.Findings = findings

	if len(findings) == 0 && len(complete) == 0 {
		if result.Failures == result.ChunkCount {
			return result, fmt.Errorf("%w: all %d chunks failed", domain.ErrEvaluator, result.Failures)
		}
		result.Answer = "No relevant findings."
		return result, nil
	}

	result.Answer, err = o.synthesize(ctx, query, findings, complete)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (o *Orchestrator) synthesize(ctx context.Context, query string, findings []domain.Finding, complete []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nFindings:\n", query)
	for _, f := range findings {
		fmt.Fprintf(&b, "- [%s] %s (evidence: %s)\n", f.Confidence, f.Point, f.Evidence)
	}
	for _, a := range complete {
		fmt.Fprintf(&b, "\nCandidate answer from one fragment: %s\n", a)
	}
	answer, err := o.eval.Evaluate(ctx, synthesizeSystem, b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
