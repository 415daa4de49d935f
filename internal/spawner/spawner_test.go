package spawner

import (
	"testing"

	"github.com/google/uuid"
)

func TestSpawnChildUnknownParent(t *testing.T) {
	s := New(0)
	if _, err := s.SpawnChild("child", uuid.New()); err != ErrParentNotFound {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
}

func TestMaxChildAgents(t *testing.T) {
	s := New(0)
	max := 1
	p := s.SpawnWithLimits("parent", ResourceLimits{MaxChildAgents: &max})
	if _, err := s.SpawnChild("c1", p); err != nil {
		t.Fatalf("first child should succeed: %v", err)
	}
	if _, err := s.SpawnChild("c2", p); err != ErrMaxChildren {
		t.Fatalf("expected ErrMaxChildren, got %v", err)
	}
}

func TestMaxDepth(t *testing.T) {
	s := New(2) // root (depth 0) -> child (depth 1) allowed; grandchild (depth 2) rejected
	root := s.Spawn("root")
	child, err := s.SpawnChild("child", root)
	if err != nil {
		t.Fatalf("child spawn should succeed: %v", err)
	}
	if _, err := s.SpawnChild("grandchild", child); err != ErrMaxDepth {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
}

func TestCascadingTermination(t *testing.T) {
	s := New(0)
	var terminated []uuid.UUID
	s.OnTerminate = func(id uuid.UUID) {
		terminated = append(terminated, id)
	}

	root := s.Spawn("root")
	child1, _ := s.SpawnChild("child1", root)
	child2, _ := s.SpawnChild("child2", root)
	grandchild, _ := s.SpawnChild("grandchild", child1)

	if err := s.Terminate(root); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	for _, id := range []uuid.UUID{root, child1, child2, grandchild} {
		if _, ok := s.Get(id); ok {
			t.Fatalf("expected %s to be gone after terminate", id)
		}
	}

	if len(terminated) != 4 {
		t.Fatalf("expected 4 terminated agents, got %d: %v", len(terminated), terminated)
	}
	idxGrandchild, idxChild1 := -1, -1
	for i, id := range terminated {
		if id == grandchild {
			idxGrandchild = i
		}
		if id == child1 {
			idxChild1 = i
		}
	}
	if idxGrandchild == -1 || idxChild1 == -1 || idxGrandchild > idxChild1 {
		t.Fatalf("expected grandchild to terminate before child1, got order %v", terminated)
	}
}
