package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/goclaw/internal/msgbus"
	"github.com/nextlevelbuilder/goclaw/internal/router"
	"github.com/nextlevelbuilder/goclaw/internal/spawner"
)

func newTestOrchestrator() *Orchestrator {
	return New(spawner.New(0), msgbus.New(0), router.New())
}

func echoHandler(ctx context.Context, description string, args map[string]string) (string, error) {
	return "echo: " + description, nil
}

// E1 — round-trip task.
func TestRoundTripTask(t *testing.T) {
	o := newTestOrchestrator()
	worker := o.Spawner.Spawn("worker")
	sender := o.Spawner.Spawn("S")
	o.Bus.Register(sender)
	o.RegisterHandler(worker, echoHandler)

	env := msgbus.NewTaskRequestEnvelope(sender, worker, "hello", nil, msgbus.PriorityNormal)
	if err := o.Bus.Send(env); err != nil {
		t.Fatalf("send: %v", err)
	}

	if n := o.ProcessPending(context.Background()); n != 1 {
		t.Fatalf("expected 1 processed, got %d", n)
	}

	resp, ok := o.Bus.Receive(sender)
	if !ok {
		t.Fatalf("expected a response in sender's mailbox")
	}
	if resp.Payload.Kind != msgbus.KindTaskResult {
		t.Fatalf("expected TaskResult, got %v", resp.Payload.Kind)
	}
	if !resp.Payload.TaskResult.Success || resp.Payload.TaskResult.Output != "echo: hello" {
		t.Fatalf("unexpected result: %+v", resp.Payload.TaskResult)
	}
}

// E2 — resource cap.
func TestResourceCap(t *testing.T) {
	o := newTestOrchestrator()
	maxCalls := 2
	worker := o.Spawner.SpawnWithLimits("worker", spawner.ResourceLimits{MaxToolCalls: &maxCalls})
	sender := o.Spawner.Spawn("S")
	o.Bus.Register(sender)
	o.RegisterHandler(worker, echoHandler)

	for i := 0; i < 3; i++ {
		env := msgbus.NewTaskRequestEnvelope(sender, worker, "task", nil, msgbus.PriorityNormal)
		if err := o.Bus.Send(env); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		o.ProcessPending(context.Background())
	}

	var successes, resourceErrors int
	for {
		resp, ok := o.Bus.Receive(sender)
		if !ok {
			break
		}
		switch resp.Payload.Kind {
		case msgbus.KindTaskResult:
			if resp.Payload.TaskResult.Success {
				successes++
			}
		case msgbus.KindError:
			if resp.Payload.Error.Code == msgbus.ErrCodeResourceLimit {
				resourceErrors++
			}
		}
	}

	if successes != 2 || resourceErrors != 1 {
		t.Fatalf("expected 2 successes and 1 resource error, got %d successes, %d errors", successes, resourceErrors)
	}
}

func TestCorrelationPreservation(t *testing.T) {
	o := newTestOrchestrator()
	worker := o.Spawner.Spawn("worker")
	sender := o.Spawner.Spawn("S")
	o.Bus.Register(sender)
	o.RegisterHandler(worker, echoHandler)

	corr := uuid.New()
	env := msgbus.NewTaskRequestEnvelope(sender, worker, "hi", nil, msgbus.PriorityNormal)
	env.CorrelationID = &corr
	_ = o.Bus.Send(env)
	o.ProcessPending(context.Background())

	resp, ok := o.Bus.Receive(sender)
	if !ok {
		t.Fatalf("expected response")
	}
	if resp.CorrelationID == nil || *resp.CorrelationID != corr {
		t.Fatalf("expected correlation id preserved, got %v", resp.CorrelationID)
	}
}

func TestStatusQuery(t *testing.T) {
	o := newTestOrchestrator()
	worker := o.Spawner.Spawn("worker")
	sender := o.Spawner.Spawn("S")
	o.Bus.Register(sender)
	o.RegisterHandler(worker, echoHandler)

	env := msgbus.Envelope{
		ID: uuid.New(), From: sender, To: worker,
		Payload: msgbus.Payload{Kind: msgbus.KindStatusQuery, StatusQuery: &msgbus.StatusQuery{}},
	}
	_ = o.Bus.Send(env)
	o.ProcessPending(context.Background())

	resp, ok := o.Bus.Receive(sender)
	if !ok {
		t.Fatalf("expected status response")
	}
	if resp.Payload.Kind != msgbus.KindStatusResponse || resp.Payload.StatusResponse.AgentName != "worker" {
		t.Fatalf("unexpected response: %+v", resp.Payload)
	}
}

func TestShutdownCascadesTermination(t *testing.T) {
	o := newTestOrchestrator()
	parent := o.Spawner.Spawn("parent")
	child, _ := o.Spawner.SpawnChild("child", parent)
	sender := o.Spawner.Spawn("S")
	o.Bus.Register(sender)
	o.RegisterHandler(parent, echoHandler)
	o.RegisterHandler(child, echoHandler)

	env := msgbus.Envelope{ID: uuid.New(), From: sender, To: parent, Payload: msgbus.Payload{Kind: msgbus.KindShutdown, Shutdown: &msgbus.Shutdown{}}}
	_ = o.Bus.Send(env)
	o.ProcessPending(context.Background())

	if _, ok := o.Spawner.Get(parent); ok {
		t.Fatalf("expected parent to be terminated")
	}
	if _, ok := o.Spawner.Get(child); ok {
		t.Fatalf("expected child to be cascaded-terminated")
	}
	if o.Bus.IsRegistered(child) {
		t.Fatalf("expected child's mailbox to be dropped")
	}
}

func TestErrHandlerProducesFailureResult(t *testing.T) {
	o := newTestOrchestrator()
	worker := o.Spawner.Spawn("worker")
	sender := o.Spawner.Spawn("S")
	o.Bus.Register(sender)
	o.RegisterHandler(worker, func(ctx context.Context, description string, args map[string]string) (string, error) {
		return "", errors.New("boom")
	})

	_ = o.Bus.Send(msgbus.NewTaskRequestEnvelope(sender, worker, "x", nil, msgbus.PriorityNormal))
	o.ProcessPending(context.Background())

	resp, ok := o.Bus.Receive(sender)
	if !ok || resp.Payload.TaskResult == nil {
		t.Fatalf("expected a TaskResult")
	}
	if resp.Payload.TaskResult.Success || resp.Payload.TaskResult.Output != "boom" {
		t.Fatalf("expected failure result with message 'boom', got %+v", resp.Payload.TaskResult)
	}
}
