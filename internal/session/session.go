// Package session holds per-caller exploration state: named content
// buffers, scratch variables, the final-result slot, the query history,
// and accumulated sub-query results. Sessions are keyed by instance id and
// scoped to one project.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// FinalVariable is the reserved variable name that routes writes into the
// session's final-result slot.
const FinalVariable = "Final"

// Session is the mutable state of one exploration. Safe for concurrent use.
type Session struct {
	InstanceID  string
	ProjectRoot string
	CreatedAt   time.Time

	mu        sync.RWMutex
	buffers   map[string]*domain.Buffer
	vars      map[string]string
	final     string
	finalSet  bool
	history   []domain.HistoryEntry
	subcalls  []domain.SubcallResult
	findings  []domain.Finding
	stdoutSeq int
}

func newSession(instanceID, projectRoot string) *Session {
	return &Session{
		InstanceID:  instanceID,
		ProjectRoot: projectRoot,
		CreatedAt:   time.Now(),
		buffers:     make(map[string]*domain.Buffer),
		vars:        make(map[string]string),
	}
}

// CreateBuffer stores content under name, replacing any existing buffer of
// the same name, and returns its metadata view.
func (s *Session) CreateBuffer(name, content string, prov domain.Provenance) (domain.BufferInfo, error) {
	if name == "" {
		return domain.BufferInfo{}, domain.InvalidInputf("buffer name is empty")
	}
	buf := &domain.Buffer{
		Name:       name,
		Content:    content,
		Provenance: prov,
		CreatedAt:  time.Now(),
	}
	s.mu.Lock()
	s.buffers[name] = buf
	s.mu.Unlock()
	return buf.Info(), nil
}

// Buffer returns the buffer stored under name.
func (s *Session) Buffer(name string) (*domain.Buffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, ok := s.buffers[name]
	if !ok {
		return nil, domain.NotFoundf("buffer %q", name)
	}
	return buf, nil
}

// Buffers lists all buffer metadata, oldest first.
func (s *Session) Buffers() []domain.BufferInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BufferInfo, 0, len(s.buffers))
	for _, buf := range s.buffers {
		out = append(out, buf.Info())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DeleteBuffer removes the buffer stored under name.
func (s *Session) DeleteBuffer(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buffers[name]; !ok {
		return domain.NotFoundf("buffer %q", name)
	}
	delete(s.buffers, name)
	return nil
}

// NextName reserves a sequenced buffer name with the given prefix, e.g.
// "stdout_1", "grep_2". The counter is shared across prefixes so names
// never collide.
func (s *Session) NextName(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stdoutSeq++
	return fmt.Sprintf("%s_%d", prefix, s.stdoutSeq)
}

// SetVar stores a scratch variable. Writing FinalVariable sets the final
// slot instead.
func (s *Session) SetVar(name, value string) error {
	if name == "" {
		return domain.InvalidInputf("variable name is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == FinalVariable {
		s.final = value
		s.finalSet = true
		return nil
	}
	s.vars[name] = value
	return nil
}

// GetVar reads a scratch variable; FinalVariable reads the final slot.
func (s *Session) GetVar(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name == FinalVariable {
		return s.final, s.finalSet
	}
	v, ok := s.vars[name]
	return v, ok
}

// DeleteVar removes a scratch variable. Deleting FinalVariable clears the
// final slot.
func (s *Session) DeleteVar(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == FinalVariable {
		if !s.finalSet {
			return domain.NotFoundf("variable %q", name)
		}
		s.final = ""
		s.finalSet = false
		return nil
	}
	if _, ok := s.vars[name]; !ok {
		return domain.NotFoundf("variable %q", name)
	}
	delete(s.vars, name)
	return nil
}

// Vars returns a copy of the scratch variables, without the final slot.
func (s *Session) Vars() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// SetFinal writes the final-result slot.
func (s *Session) SetFinal(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.final = value
	s.finalSet = true
}

// Final reads the final-result slot and whether it has been set.
func (s *Session) Final() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.final, s.finalSet
}

// Record appends a history entry. A query identical in operation and target
// to the previous entry is dropped, so repeated polling does not grow the
// log.
func (s *Session) Record(operation, target, preview string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.history); n > 0 {
		last := s.history[n-1]
		if last.Operation == operation && last.Target == target {
			return
		}
	}
	s.history = append(s.history, domain.HistoryEntry{
		Timestamp: time.Now(),
		Operation: operation,
		Target:    target,
		Preview:   domain.Preview(preview),
	})
}

// History returns the most recent limit entries, oldest first. limit <= 0
// returns everything.
func (s *Session) History(limit int) []domain.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]domain.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}

// AddSubcallResults appends results from a dispatched batch.
func (s *Session) AddSubcallResults(results []domain.SubcallResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subcalls = append(s.subcalls, results...)
}

// SubcallResults returns all accumulated sub-query results.
func (s *Session) SubcallResults() []domain.SubcallResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SubcallResult, len(s.subcalls))
	copy(out, s.subcalls)
	return out
}

// AddFinding appends a structured finding collected during exploration.
func (s *Session) AddFinding(f domain.Finding) {
	s.mu.Lock()
	s.findings = append(s.findings, f)
	s.mu.Unlock()
}

// Findings returns all collected findings.
func (s *Session) Findings() []domain.Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// BufferCount returns the number of live buffers.
func (s *Session) BufferCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buffers)
}
