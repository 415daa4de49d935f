package spawner

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// nowFunc is overridable in tests.
var nowFunc = time.Now

var (
	// ErrParentNotFound is returned by SpawnChild when the parent agent
	// does not exist.
	ErrParentNotFound = errors.New("spawner: parent agent not found")
	// ErrMaxChildren is returned when spawning a child would exceed the
	// parent's max_child_agents limit.
	ErrMaxChildren = errors.New("spawner: parent's max child agents exceeded")
	// ErrMaxDepth is returned when spawning a child would exceed the
	// spawner's configured maximum tree depth.
	ErrMaxDepth = errors.New("spawner: maximum agent depth exceeded")
	// ErrNotFound is returned by Get/GetMut/Terminate for an unknown agent.
	ErrNotFound = errors.New("spawner: agent not found")
)

// Spawner owns the full agent tree. The parent→child graph is
// maintained as an acyclic tree: a child always has exactly one parent
// reference and parents never store back-references that would outlive
// them — terminating a parent cascades depth-first to every descendant.
type Spawner struct {
	mu       sync.Mutex
	agents   map[uuid.UUID]*Agent
	maxDepth int // 0 = unbounded

	// OnTerminate, if set, is invoked for every agent removed by
	// Terminate (the agent itself and each cascaded descendant), so
	// callers (the orchestrator) can drop mailboxes and handlers that
	// the spawner itself does not own.
	OnTerminate func(id uuid.UUID)
}

// New creates a Spawner. maxDepth bounds how many SpawnChild levels are
// permitted below a root agent (0 disables the check).
func New(maxDepth int) *Spawner {
	return &Spawner{
		agents:   make(map[uuid.UUID]*Agent),
		maxDepth: maxDepth,
	}
}

// Spawn creates a new root agent (no parent) with the given name and
// default (unbounded) resource limits.
func (s *Spawner) Spawn(name string) uuid.UUID {
	return s.SpawnWithLimits(name, ResourceLimits{})
}

// SpawnWithLimits creates a new root agent with explicit resource limits.
func (s *Spawner) SpawnWithLimits(name string, limits ResourceLimits) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &Agent{
		ID:        uuid.New(),
		Name:      name,
		Children:  make(map[uuid.UUID]struct{}),
		CreatedAt: nowFunc(),
		Limits:    limits,
	}
	s.agents[a.ID] = a
	return a.ID
}

// SpawnChild creates a new agent as a child of parentID. It fails if
// the parent does not exist, if the parent's max_child_agents would be
// exceeded, or if the resulting depth exceeds the spawner's configured
// maximum.
func (s *Spawner) SpawnChild(name string, parentID uuid.UUID) (uuid.UUID, error) {
	return s.SpawnChildWithLimits(name, parentID, ResourceLimits{})
}

// SpawnChildWithLimits is SpawnChild with explicit resource limits for
// the new child.
func (s *Spawner) SpawnChildWithLimits(name string, parentID uuid.UUID, limits ResourceLimits) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.agents[parentID]
	if !ok {
		return uuid.Nil, ErrParentNotFound
	}
	if parent.Limits.ChildrenExceeded(len(parent.Children)) {
		return uuid.Nil, ErrMaxChildren
	}
	if s.maxDepth > 0 && s.depthOf(parentID)+1 >= s.maxDepth {
		return uuid.Nil, ErrMaxDepth
	}

	id := uuid.New()
	pid := parentID
	child := &Agent{
		ID:        id,
		Name:      name,
		Parent:    &pid,
		Children:  make(map[uuid.UUID]struct{}),
		CreatedAt: nowFunc(),
		Limits:    limits,
	}
	s.agents[id] = child
	parent.Children[id] = struct{}{}
	return id, nil
}

// depthOf returns the number of ancestors above id (0 for a root
// agent). Caller must hold s.mu.
func (s *Spawner) depthOf(id uuid.UUID) int {
	depth := 0
	cur, ok := s.agents[id]
	for ok && cur.Parent != nil {
		depth++
		cur, ok = s.agents[*cur.Parent]
	}
	return depth
}

// Get returns a copy of the agent record for id, or false if it does
// not exist. Children is a shallow copy so callers cannot mutate the
// spawner's internal tree through it.
func (s *Spawner) Get(id uuid.UUID) (Agent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return Agent{}, false
	}
	cp := *a
	cp.Children = make(map[uuid.UUID]struct{}, len(a.Children))
	for k := range a.Children {
		cp.Children[k] = struct{}{}
	}
	return cp, true
}

// WithMut runs fn against the live agent record for id under the
// spawner's lock, allowing in-place mutation (e.g. adjusting limits).
// It returns ErrNotFound if id does not exist.
func (s *Spawner) WithMut(id uuid.UUID, fn func(*Agent)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return ErrNotFound
	}
	fn(a)
	return nil
}

// Terminate removes id and, depth-first, every descendant of id. For
// each removed agent (including id itself), OnTerminate is invoked if
// set, so the orchestrator can drop its mailbox and handler. Terminate
// is a no-op (returns ErrNotFound) if id does not exist.
func (s *Spawner) Terminate(id uuid.UUID) error {
	s.mu.Lock()
	removed := make([]uuid.UUID, 0)
	if _, ok := s.agents[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.collectDescendantsDepthFirst(id, &removed)
	for _, rid := range removed {
		if a, ok := s.agents[rid]; ok && a.Parent != nil {
			if parent, ok := s.agents[*a.Parent]; ok {
				delete(parent.Children, rid)
			}
		}
		delete(s.agents, rid)
	}
	s.mu.Unlock()

	slog.Debug("spawner: terminated agent tree", "root", id, "count", len(removed))
	if s.OnTerminate != nil {
		for _, rid := range removed {
			s.OnTerminate(rid)
		}
	}
	return nil
}

// collectDescendantsDepthFirst appends id and all of its descendants,
// visiting children before recording the parent so the returned order
// is safe to delete in sequence depth-first. Caller must hold s.mu.
func (s *Spawner) collectDescendantsDepthFirst(id uuid.UUID, out *[]uuid.UUID) {
	a, ok := s.agents[id]
	if !ok {
		return
	}
	for childID := range a.Children {
		s.collectDescendantsDepthFirst(childID, out)
	}
	*out = append(*out, id)
}

// Descendants returns every descendant of id (not including id
// itself), in depth-first order.
func (s *Spawner) Descendants(id uuid.UUID) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []uuid.UUID
	if a, ok := s.agents[id]; ok {
		for childID := range a.Children {
			s.collectDescendantsDepthFirst(childID, &all)
		}
	}
	return all
}
