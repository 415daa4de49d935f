package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/goclaw/internal/msgbus"
	"github.com/nextlevelbuilder/goclaw/internal/router"
	"github.com/nextlevelbuilder/goclaw/internal/spawner"
)

// Orchestrator owns the spawner, bus, and router, and drives the
// system's scheduling loop via explicit ProcessPending calls. It is a
// state machine advanced one pass at a time — not entangled with any
// background goroutine — so tests stay deterministic and cancellation
// semantics stay crisp (spec.md §9).
type Orchestrator struct {
	Spawner *spawner.Spawner
	Bus     *msgbus.Bus
	Router  *router.Router

	mu        sync.Mutex
	handlers  map[uuid.UUID]TaskHandler
	toolCalls map[uuid.UUID]int
	startedAt map[uuid.UUID]time.Time
}

// New creates an Orchestrator wired to the given spawner, bus, and
// router (all may be freshly constructed by the caller).
func New(sp *spawner.Spawner, bus *msgbus.Bus, rt *router.Router) *Orchestrator {
	o := &Orchestrator{
		Spawner:   sp,
		Bus:       bus,
		Router:    rt,
		handlers:  make(map[uuid.UUID]TaskHandler),
		toolCalls: make(map[uuid.UUID]int),
		startedAt: make(map[uuid.UUID]time.Time),
	}
	sp.OnTerminate = func(id uuid.UUID) {
		bus.Unregister(id)
		o.mu.Lock()
		delete(o.handlers, id)
		delete(o.toolCalls, id)
		delete(o.startedAt, id)
		o.mu.Unlock()
	}
	return o
}

// RegisterHandler registers the TaskHandler for agentID and starts its
// mailbox on the bus. The agent must already exist in the spawner.
func (o *Orchestrator) RegisterHandler(agentID uuid.UUID, handler TaskHandler) {
	o.Bus.Register(agentID)
	o.mu.Lock()
	o.handlers[agentID] = handler
	if _, ok := o.startedAt[agentID]; !ok {
		o.startedAt[agentID] = time.Now()
	}
	o.mu.Unlock()
}

// ProcessPending performs one pass over every registered agent that
// has at least one pending message AND a registered handler, in
// ascending UUID order. For each such agent it dequeues and dispatches
// exactly one envelope, then moves to the next agent — a single pass
// never processes more than one message per agent, preventing
// starvation. It returns the number of envelopes processed.
func (o *Orchestrator) ProcessPending(ctx context.Context) int {
	processed := 0
	for _, agentID := range o.Bus.RegisteredAgents() {
		o.mu.Lock()
		handler, hasHandler := o.handlers[agentID]
		o.mu.Unlock()
		if !hasHandler {
			continue
		}
		if o.Bus.PendingCount(agentID) == 0 {
			continue
		}

		if o.dispatchOne(ctx, agentID, handler) {
			processed++
		}
	}
	return processed
}

// dispatchOne dequeues and processes exactly one envelope for
// agentID. It returns true if an envelope was processed.
func (o *Orchestrator) dispatchOne(ctx context.Context, agentID uuid.UUID, handler TaskHandler) bool {
	if limits, ok := o.resourceLimitsFor(agentID); ok {
		if exceeded, reason := o.limitExceeded(agentID, limits); exceeded {
			env, ok := o.Bus.Receive(agentID)
			if !ok {
				return false
			}
			o.replyResourceLimit(env, reason)
			return true
		}
	}

	env, ok := o.Bus.Receive(agentID)
	if !ok {
		return false
	}

	switch env.Payload.Kind {
	case msgbus.KindTaskRequest:
		o.mu.Lock()
		o.toolCalls[agentID]++
		o.mu.Unlock()
		o.runTask(ctx, agentID, env, handler)

	case msgbus.KindShutdown:
		if err := o.Spawner.Terminate(agentID); err != nil {
			slog.Warn("orchestrator: shutdown of unknown agent", "agent", agentID, "error", err)
		}

	case msgbus.KindStatusQuery:
		name := agentID.String()
		if a, ok := o.Spawner.Get(agentID); ok {
			name = a.Name
		}
		resp := env.Reply(agentID, msgbus.Payload{
			Kind: msgbus.KindStatusResponse,
			StatusResponse: &msgbus.StatusResponse{
				AgentName:    name,
				Active:       true,
				PendingTasks: o.Bus.PendingCount(agentID),
			},
		})
		o.send(resp)

	default:
		// Pass-through / no-op payloads still count as processed.
	}

	return true
}

func (o *Orchestrator) runTask(ctx context.Context, agentID uuid.UUID, env msgbus.Envelope, handler TaskHandler) {
	req := env.Payload.TaskRequest
	output, err := handler(ctx, req.Description, req.Args)
	var result msgbus.Payload
	if err != nil {
		result = msgbus.Payload{Kind: msgbus.KindTaskResult, TaskResult: &msgbus.TaskResult{Success: false, Output: err.Error()}}
	} else {
		result = msgbus.Payload{Kind: msgbus.KindTaskResult, TaskResult: &msgbus.TaskResult{Success: true, Output: output}}
	}
	o.send(env.Reply(agentID, result))
}

func (o *Orchestrator) replyResourceLimit(env msgbus.Envelope, reason string) {
	resp := env.Reply(env.To, msgbus.Payload{
		Kind: msgbus.KindError,
		Error: &msgbus.ErrorPayload{
			Code:        msgbus.ErrCodeResourceLimit,
			Message:     reason,
			Recoverable: false,
		},
	})
	o.send(resp)
}

func (o *Orchestrator) send(env msgbus.Envelope) {
	if err := o.Bus.Send(env); err != nil {
		slog.Warn("orchestrator: failed to deliver response", "to", env.To, "error", err)
	}
}

func (o *Orchestrator) resourceLimitsFor(agentID uuid.UUID) (spawner.ResourceLimits, bool) {
	a, ok := o.Spawner.Get(agentID)
	if !ok {
		return spawner.ResourceLimits{}, false
	}
	return a.Limits, true
}

func (o *Orchestrator) limitExceeded(agentID uuid.UUID, limits spawner.ResourceLimits) (bool, string) {
	o.mu.Lock()
	calls := o.toolCalls[agentID]
	startedAt, hasStart := o.startedAt[agentID]
	o.mu.Unlock()

	if limits.ToolCallsExceeded(calls) {
		return true, "tool call limit exceeded"
	}
	if hasStart && limits.ElapsedExceeded(time.Since(startedAt)) {
		return true, "elapsed time limit exceeded"
	}
	return false, ""
}

// ToolCallCount returns the number of TaskRequests processed for
// agentID so far (for tests/observability).
func (o *Orchestrator) ToolCallCount(agentID uuid.UUID) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.toolCalls[agentID]
}
