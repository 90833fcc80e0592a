// Package sandbox executes caller-supplied Starlark against a fixed
// builtin surface. Scripts run server-side with full access to file
// content; only printed output leaves the sandbox, and the explorer caps
// what of that reaches the top-level caller.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// DefaultMaxSteps bounds script execution when the caller passes none.
const DefaultMaxSteps = 10_000_000

// Host is the operation surface scripts can reach. Implemented by the
// explorer service bound to one session.
type Host interface {
	Search(query, kind string, limit int) ([]SearchHit, int, error)
	Symbols(file, kind string, limit int) ([]domain.Symbol, int, error)
	Impl(file, name string) (domain.Symbol, string, error)
	Callers(name string, limit int) ([]domain.CallSite, int, error)
	Tests(name string, limit int) ([]domain.TestReference, int, error)
	Grep(pattern, glob, scope string, limit int) ([]domain.GrepMatch, int, error)
	PeekFile(file string, startLine, endLine int) (string, error)
	Variables(file, symbol string) ([]string, error)

	CreateBuffer(name, content string) error
	LoadBuffer(name string) (string, error)
	ListBuffers() []domain.BufferInfo
	DeleteBuffer(name string) error

	SetVar(name, value string) error
	GetVar(name string) (string, bool)
	ListVars() map[string]string
	SetFinal(value string)
	AddFinding(point, evidence, confidence string)
	Final() (string, bool)

	LLMQuery(ctx context.Context, chunkID, content, query string) (domain.SubcallResult, error)
	SubcallBatch(ctx context.Context, file, query string) (count, failures int, err error)
	DeepQuery(ctx context.Context, file, query string, maxDepth int) (answer string, chunkCount, failures int, err error)
}

// SearchHit is the sandbox view of one ranked search result.
type SearchHit struct {
	Symbol domain.Symbol
	Score  float64
}

// Result is the outcome of one script run.
type Result struct {
	Stdout string
	Steps  uint64
	Err    error
}

// Run executes code with the builtin surface bound to host. Script errors
// come back in Result.Err, not as the returned error; only setup failures
// are returned directly.
func Run(ctx context.Context, host Host, code string, maxSteps uint64) Result {
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	var stdout strings.Builder
	thread := &starlark.Thread{
		Name: "repl",
		Print: func(_ *starlark.Thread, msg string) {
			stdout.WriteString(msg)
			stdout.WriteByte('\n')
		},
	}
	thread.SetMaxExecutionSteps(maxSteps)
	thread.SetLocal("ctx", ctx)

	opts := &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
	}
	_, err := starlark.ExecFileOptions(opts, thread, "repl.star", code, builtins(ctx, host))

	res := Result{Stdout: stdout.String(), Steps: thread.ExecutionSteps()}
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			res.Err = fmt.Errorf("script error: %s", evalErr.Backtrace())
		} else {
			res.Err = fmt.Errorf("script error: %w", err)
		}
	}
	return res
}
