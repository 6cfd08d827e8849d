package workspace

import (
	"context"
	"errors"
	"sync"

	"github.com/agentworks/console/pkg/authz"
)

// ErrNotFound is returned when a workspace does not exist. Callers map it to
// a not-found response, which is distinct from an access denial.
var ErrNotFound = errors.New("workspace not found")

// Workspace is a named unit of isolation for agent sessions, backed by a
// Kubernetes namespace. Workspaces are created and mutated by cluster-side
// reconciliation; this package only reads them.
type Workspace struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`

	authz.Bindings
}

// Store looks up workspaces by name.
type Store interface {
	// Get returns the named workspace, or ErrNotFound.
	Get(ctx context.Context, name string) (*Workspace, error)
}

// StaticStore is an in-memory Store for tests and local development.
type StaticStore struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewStaticStore creates a store holding the given workspaces.
func NewStaticStore(workspaces ...*Workspace) *StaticStore {
	s := &StaticStore{workspaces: make(map[string]*Workspace, len(workspaces))}
	for _, ws := range workspaces {
		s.workspaces[ws.Name] = ws
	}
	return s
}

// Add inserts or replaces a workspace.
func (s *StaticStore) Add(ws *Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[ws.Name] = ws
}

// Get implements Store.
func (s *StaticStore) Get(_ context.Context, name string) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[name]
	if !ok {
		return nil, ErrNotFound
	}
	return ws, nil
}
