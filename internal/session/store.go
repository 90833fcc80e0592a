package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// Store tracks live sessions by instance id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session for projectRoot and returns it. The
// instance id is a fresh UUID the caller passes back on every later call.
func (st *Store) Create(projectRoot string) *Session {
	s := newSession(uuid.NewString(), projectRoot)
	st.mu.Lock()
	st.sessions[s.InstanceID] = s
	st.mu.Unlock()
	return s
}

// Attach resolves an instance id supplied at init time. An empty id mints
// a fresh session. A live id bound to the same project root is returned as
// is, so a caller that lost its connection resumes with its buffers intact.
// A dead id is re-registered under the same name. Reports whether the
// session was resumed rather than created.
func (st *Store) Attach(projectRoot, instanceID string) (*Session, bool, error) {
	if instanceID == "" {
		return st.Create(projectRoot), false, nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[instanceID]; ok {
		if s.ProjectRoot != projectRoot {
			return nil, false, domain.InvalidInputf("instance %q is bound to %s", instanceID, s.ProjectRoot)
		}
		return s, true, nil
	}
	s := newSession(instanceID, projectRoot)
	st.sessions[instanceID] = s
	return s, false, nil
}

// Get returns the session for an instance id.
func (st *Store) Get(instanceID string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[instanceID]
	if !ok {
		return nil, domain.NotFoundf("session %q (call init first)", instanceID)
	}
	return s, nil
}

// Drop removes one session. Unknown ids are a no-op.
func (st *Store) Drop(instanceID string) {
	st.mu.Lock()
	delete(st.sessions, instanceID)
	st.mu.Unlock()
}

// DropProject removes every session bound to projectRoot and returns how
// many were dropped. Called when a project is evicted or cleaned up.
func (st *Store) DropProject(projectRoot string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.ProjectRoot == projectRoot {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
