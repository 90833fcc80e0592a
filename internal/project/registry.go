// Package project tracks the set of open projects. Each project owns one
// structural index and one annotations store; the registry bounds how many
// stay resident and evicts the least recently used, dropping that
// project's sessions with it.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sightglass-mcp/sightglass/internal/annotations"
	"github.com/sightglass-mcp/sightglass/internal/domain"
	"github.com/sightglass-mcp/sightglass/internal/index"
	"github.com/sightglass-mcp/sightglass/internal/session"
)

// DefaultCapacity is the resident-project bound when the caller passes none.
const DefaultCapacity = 5

// Project is one open project.
type Project struct {
	Root        string
	Index       *index.Index
	Annotations *annotations.Store
	OpenedAt    time.Time

	lastUsed time.Time
	refs     int
	stats    index.Stats
}

// Stats returns the scan stats captured when the project was opened.
func (p *Project) Stats() index.Stats { return p.stats }

// Registry bounds the set of resident projects.
type Registry struct {
	capacity int
	sessions *session.Store
	log      *slog.Logger

	mu       sync.Mutex
	projects map[string]*Project
}

// NewRegistry creates a registry holding at most capacity projects.
func NewRegistry(capacity int, sessions *session.Store, log *slog.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		capacity: capacity,
		sessions: sessions,
		log:      log,
		projects: make(map[string]*Project),
	}
}

// Handle pins a project against eviction for the duration of one call.
type Handle struct {
	reg      *Registry
	project  *Project
	released bool
}

// Project returns the pinned project.
func (h *Handle) Project() *Project { return h.project }

// Release unpins the project. Safe to call more than once.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.reg.mu.Lock()
	h.project.refs--
	h.reg.mu.Unlock()
}

// Open returns a handle on the project at root, creating and scanning it on
// first use. Opening past capacity evicts the least recently used idle
// project along with its sessions.
func (r *Registry) Open(ctx context.Context, root string) (*Handle, bool, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, false, fmt.Errorf("resolving project root: %w", err)
	}

	r.mu.Lock()
	if p, ok := r.projects[abs]; ok {
		p.refs++
		p.lastUsed = time.Now()
		r.mu.Unlock()
		return &Handle{reg: r, project: p}, false, nil
	}
	r.mu.Unlock()

	// Build outside the lock; a scan can take a while.
	ix, err := index.New(abs, r.log)
	if err != nil {
		return nil, false, err
	}
	stats, err := ix.Scan(ctx)
	if err != nil {
		ix.Close()
		return nil, false, err
	}
	ann := annotations.NewStore(abs)
	if err := ann.Load(); err != nil {
		r.log.Warn("loading annotations failed", "root", abs, "error", err)
	}

	p := &Project{
		Root:        abs,
		Index:       ix,
		Annotations: ann,
		OpenedAt:    time.Now(),
		lastUsed:    time.Now(),
		stats:       stats,
	}

	r.mu.Lock()
	if existing, ok := r.projects[abs]; ok {
		// Lost a race with a concurrent Open of the same root.
		existing.refs++
		existing.lastUsed = time.Now()
		r.mu.Unlock()
		ix.Close()
		return &Handle{reg: r, project: existing}, false, nil
	}
	r.projects[abs] = p
	p.refs++
	evicted := r.evictLocked(abs)
	r.mu.Unlock()

	for _, old := range evicted {
		r.retire(old)
	}
	return &Handle{reg: r, project: p}, true, nil
}

// Acquire returns a handle on an already open project.
func (r *Registry) Acquire(root string) (*Handle, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[abs]
	if !ok {
		return nil, domain.NotFoundf("project %s is not open", abs)
	}
	p.refs++
	p.lastUsed = time.Now()
	return &Handle{reg: r, project: p}, nil
}

// Remove closes a project explicitly and drops its sessions, returning how
// many sessions went with it.
func (r *Registry) Remove(root string) (int, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return 0, fmt.Errorf("resolving project root: %w", err)
	}
	r.mu.Lock()
	p, ok := r.projects[abs]
	if ok {
		delete(r.projects, abs)
	}
	r.mu.Unlock()
	if !ok {
		return 0, domain.NotFoundf("project %s is not open", abs)
	}
	return r.retire(p), nil
}

// evictLocked removes least recently used idle projects until the registry
// is back at capacity. keep is never evicted. Caller holds the mutex.
func (r *Registry) evictLocked(keep string) []*Project {
	var evicted []*Project
	for len(r.projects) > r.capacity {
		var victim *Project
		for root, p := range r.projects {
			if root == keep || p.refs > 0 {
				continue
			}
			if victim == nil || p.lastUsed.Before(victim.lastUsed) {
				victim = p
			}
		}
		if victim == nil {
			// Everything else is pinned; tolerate the overflow until
			// the next Open.
			break
		}
		delete(r.projects, victim.Root)
		evicted = append(evicted, victim)
	}
	return evicted
}

// retire releases a project's resources and its sessions.
func (r *Registry) retire(p *Project) int {
	dropped := r.sessions.DropProject(p.Root)
	if err := p.Index.Close(); err != nil {
		r.log.Warn("closing index failed", "root", p.Root, "error", err)
	}
	r.log.Info("project closed", "root", p.Root, "sessions_dropped", dropped)
	return dropped
}

// Roots lists the open project roots, most recently used first.
func (r *Registry) Roots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	type entry struct {
		root string
		used time.Time
	}
	entries := make([]entry, 0, len(r.projects))
	for root, p := range r.projects {
		entries = append(entries, entry{root, p.lastUsed})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].used.After(entries[j].used) })
	roots := make([]string, len(entries))
	for i, e := range entries {
		roots[i] = e.root
	}
	return roots
}

// Len returns the number of resident projects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.projects)
}
