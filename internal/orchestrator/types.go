// Package orchestrator consumes the message bus, enforces resource
// caps, dispatches TaskRequests to per-agent handlers, and produces
// responses. It owns the spawner, bus, and router, and handles
// shutdown/status queries.
package orchestrator

import (
	"context"

	"github.com/nextlevelbuilder/goclaw/internal/spawner"
)

// TaskHandler turns a TaskRequest into a result string or an error
// string, per the host ↔ task-handler contract in spec.md §6. A
// handler may suspend (perform I/O); it must not mutate shared state
// without its own synchronization, and dropping its context must be
// safe to abandon.
type TaskHandler func(ctx context.Context, description string, args map[string]string) (string, error)

// ResourceLimits re-exports spawner.ResourceLimits so callers only
// need to import this package to configure an agent.
type ResourceLimits = spawner.ResourceLimits
