// Package explorer ties the project registry, sessions, orchestrator, and
// sandbox into the operation surface exposed as MCP tools. Operations that
// touch file content materialize a session buffer and hand back metadata;
// the raw text stays server-side.
package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sightglass-mcp/sightglass/internal/domain"
	"github.com/sightglass-mcp/sightglass/internal/index"
	"github.com/sightglass-mcp/sightglass/internal/orchestrator"
	"github.com/sightglass-mcp/sightglass/internal/project"
	"github.com/sightglass-mcp/sightglass/internal/session"
)

// Limits are the per-operation response caps. Zero fields fall back to the
// defaults at construction.
type Limits struct {
	SearchLimit        int
	SymbolsLimit       int
	CallersLimit       int
	TestsLimit         int
	GrepLimit          int
	GrepContext        int
	MaxChunkBytes      int
	PeekMaxLines       int
	BufferPeekMaxBytes int
	MaxDepth           int
	ReplMaxSteps       uint64
}

// DefaultLimits returns the standard caps.
func DefaultLimits() Limits {
	return Limits{
		SearchLimit:        5,
		SymbolsLimit:       10,
		CallersLimit:       5,
		TestsLimit:         5,
		GrepLimit:          5,
		GrepContext:        2,
		MaxChunkBytes:      index.DefaultChunkBytes,
		PeekMaxLines:       100,
		BufferPeekMaxBytes: 500,
		MaxDepth:           orchestrator.DefaultMaxDepth,
		ReplMaxSteps:       10_000_000,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.SearchLimit <= 0 {
		l.SearchLimit = d.SearchLimit
	}
	if l.SymbolsLimit <= 0 {
		l.SymbolsLimit = d.SymbolsLimit
	}
	if l.CallersLimit <= 0 {
		l.CallersLimit = d.CallersLimit
	}
	if l.TestsLimit <= 0 {
		l.TestsLimit = d.TestsLimit
	}
	if l.GrepLimit <= 0 {
		l.GrepLimit = d.GrepLimit
	}
	if l.GrepContext <= 0 {
		l.GrepContext = d.GrepContext
	}
	if l.MaxChunkBytes <= 0 {
		l.MaxChunkBytes = d.MaxChunkBytes
	}
	if l.PeekMaxLines <= 0 {
		l.PeekMaxLines = d.PeekMaxLines
	}
	if l.BufferPeekMaxBytes <= 0 {
		l.BufferPeekMaxBytes = d.BufferPeekMaxBytes
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.ReplMaxSteps == 0 {
		l.ReplMaxSteps = d.ReplMaxSteps
	}
	return l
}

// Service implements every explorer operation.
type Service struct {
	registry *project.Registry
	sessions *session.Store
	orch     *orchestrator.Orchestrator
	limits   Limits
	log      *slog.Logger
}

// NewService wires the explorer together. orch may be nil when no
// evaluator is configured; orchestration operations then fail cleanly.
func NewService(registry *project.Registry, sessions *session.Store, orch *orchestrator.Orchestrator, limits Limits, log *slog.Logger) *Service {
	return &Service{
		registry: registry,
		sessions: sessions,
		orch:     orch,
		limits:   limits.withDefaults(),
		log:      log,
	}
}

// Limits returns the resolved per-operation caps.
func (s *Service) Limits() Limits { return s.limits }

// open resolves an instance id to its session and pins the project. The
// caller must release the handle.
func (s *Service) open(instance string) (*session.Session, *project.Handle, error) {
	sess, err := s.sessions.Get(instance)
	if err != nil {
		return nil, nil, err
	}
	handle, err := s.registry.Acquire(sess.ProjectRoot)
	if err != nil {
		return nil, nil, err
	}
	return sess, handle, nil
}

// orchestrate returns the orchestrator or a clean failure when none is
// configured.
func (s *Service) orchestrate() (*orchestrator.Orchestrator, error) {
	if s.orch == nil {
		return nil, fmt.Errorf("%w: no evaluator configured", domain.ErrEvaluator)
	}
	return s.orch, nil
}

// InitResult is the response of a session init.
type InitResult struct {
	Instance  string         `json:"instance"`
	Root      string         `json:"project_root"`
	Created   bool           `json:"indexed_now"`
	Resumed   bool           `json:"resumed"`
	Files     int            `json:"files"`
	Symbols   int            `json:"symbols"`
	Languages map[string]int `json:"languages"`
}

// Init opens (and on first use scans) the project at root and binds a
// session to it. An empty instance mints a new session; a live instance
// bound to the same root is resumed with its state intact.
func (s *Service) Init(ctx context.Context, root, instance string) (InitResult, error) {
	if strings.TrimSpace(root) == "" {
		return InitResult{}, domain.InvalidInputf("project_root is empty")
	}
	handle, created, err := s.registry.Open(ctx, root)
	if err != nil {
		return InitResult{}, err
	}
	defer handle.Release()

	p := handle.Project()
	sess, resumed, err := s.sessions.Attach(p.Root, strings.TrimSpace(instance))
	if err != nil {
		return InitResult{}, err
	}
	return InitResult{
		Instance:  sess.InstanceID,
		Root:      p.Root,
		Created:   created,
		Resumed:   resumed,
		Files:     p.Index.FileCount(),
		Symbols:   p.Index.SymbolCount(),
		Languages: p.Index.LanguageBreakdown(),
	}, nil
}

// CleanupResult is the response of a project cleanup.
type CleanupResult struct {
	Root            string `json:"project_root"`
	SessionsDropped int    `json:"sessions_dropped"`
}

// Cleanup closes a project and drops its sessions.
func (s *Service) Cleanup(root string) (CleanupResult, error) {
	dropped, err := s.registry.Remove(root)
	if err != nil {
		return CleanupResult{}, err
	}
	return CleanupResult{Root: root, SessionsDropped: dropped}, nil
}

// StatusResult summarizes server, project, and session state.
type StatusResult struct {
	OpenProjects []string             `json:"open_projects"`
	ProjectRoot  string               `json:"project_root"`
	Files        int                  `json:"files"`
	Symbols      int                  `json:"symbols"`
	Languages    map[string]int       `json:"languages"`
	Buffers      []domain.BufferInfo  `json:"buffers"`
	BufferBytes  int                  `json:"buffer_bytes"`
	Variables    int                  `json:"variables"`
	Findings     int                  `json:"findings"`
	Subcalls     int                  `json:"subcalls"`
	FinalSet     bool                 `json:"final_set"`
	History      int                  `json:"history_entries"`
	TokenBudget  TokenEstimate        `json:"token_estimate"`
}

// TokenEstimate is a rough accounting of how much held content would cost
// to surface, at 4 bytes per token.
type TokenEstimate struct {
	BufferTokens int `json:"buffer_tokens"`
}

// Status reports what the session and its project are holding.
func (s *Service) Status(instance string) (StatusResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return StatusResult{}, err
	}
	defer handle.Release()
	p := handle.Project()

	buffers := sess.Buffers()
	bytes := 0
	for _, b := range buffers {
		bytes += b.SizeBytes
	}
	_, finalSet := sess.Final()
	return StatusResult{
		OpenProjects: s.registry.Roots(),
		ProjectRoot:  p.Root,
		Files:        p.Index.FileCount(),
		Symbols:      p.Index.SymbolCount(),
		Languages:    p.Index.LanguageBreakdown(),
		Buffers:      buffers,
		BufferBytes:  bytes,
		Variables:    len(sess.Vars()),
		Findings:     len(sess.Findings()),
		Subcalls:     len(sess.SubcallResults()),
		FinalSet:     finalSet,
		History:      len(sess.History(0)),
		TokenBudget:  TokenEstimate{BufferTokens: bytes / 4},
	}, nil
}

// HistoryResult lists served queries.
type HistoryResult struct {
	Entries []domain.HistoryEntry `json:"entries"`
	Total   int                   `json:"total_count"`
}

// History returns the most recent limit entries.
func (s *Service) History(instance string, limit int) (HistoryResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return HistoryResult{}, err
	}
	defer handle.Release()
	all := sess.History(0)
	return HistoryResult{Entries: sess.History(limit), Total: len(all)}, nil
}

// FinalResult is the check_final response.
type FinalResult struct {
	Set      bool             `json:"set"`
	Final    string           `json:"final,omitempty"`
	Findings []domain.Finding `json:"findings,omitempty"`
}

// CheckFinal reports whether the session produced a final answer, and
// returns it together with collected findings.
func (s *Service) CheckFinal(instance string) (FinalResult, error) {
	sess, handle, err := s.open(instance)
	if err != nil {
		return FinalResult{}, err
	}
	defer handle.Release()
	final, set := sess.Final()
	return FinalResult{Set: set, Final: final, Findings: sess.Findings()}, nil
}
