// Package spawner implements the hierarchical agent registry: a
// parent→child tree of Agents with per-agent resource limits and
// cascading termination.
package spawner

import (
	"time"

	"github.com/google/uuid"
)

// ResourceLimits bounds what a single agent may consume. A nil pointer
// field means "unbounded" for that dimension.
type ResourceLimits struct {
	MaxToolCalls    *int
	MaxTokens       *int
	MaxChildAgents  *int
	MaxElapsedSeconds *int
}

// Exceeded reports whether usage has reached or would exceed limits
// for the dimensions that are set. toolCalls/elapsed are the agent's
// current counters; adding one more unit of work must not cross them.
func (r ResourceLimits) ToolCallsExceeded(current int) bool {
	return r.MaxToolCalls != nil && current >= *r.MaxToolCalls
}

func (r ResourceLimits) ElapsedExceeded(elapsed time.Duration) bool {
	return r.MaxElapsedSeconds != nil && elapsed >= time.Duration(*r.MaxElapsedSeconds)*time.Second
}

func (r ResourceLimits) ChildrenExceeded(currentChildren int) bool {
	return r.MaxChildAgents != nil && currentChildren >= *r.MaxChildAgents
}

// Agent is one node in the spawner's agent tree.
type Agent struct {
	ID        uuid.UUID
	Name      string
	Parent    *uuid.UUID
	Children  map[uuid.UUID]struct{}
	CreatedAt time.Time
	Limits    ResourceLimits
}
