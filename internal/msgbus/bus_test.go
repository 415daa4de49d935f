package msgbus

import (
	"testing"

	"github.com/google/uuid"
)

func TestSendUnknownRecipient(t *testing.T) {
	b := New(0)
	env := NewTaskRequestEnvelope(uuid.New(), uuid.New(), "hi", nil, PriorityNormal)
	err := b.Send(env)
	if err != ErrUnknownRecipient {
		t.Fatalf("expected ErrUnknownRecipient, got %v", err)
	}
}

func TestMailboxFull(t *testing.T) {
	b := New(1)
	to := uuid.New()
	b.Register(to)

	env1 := NewTaskRequestEnvelope(uuid.New(), to, "a", nil, PriorityNormal)
	if err := b.Send(env1); err != nil {
		t.Fatalf("first send should succeed: %v", err)
	}

	env2 := NewTaskRequestEnvelope(uuid.New(), to, "b", nil, PriorityNormal)
	if err := b.Send(env2); err != ErrMailboxFull {
		t.Fatalf("expected ErrMailboxFull, got %v", err)
	}
}

func TestPriorityThenFIFO(t *testing.T) {
	b := New(0)
	to := uuid.New()
	b.Register(to)
	from := uuid.New()

	order := []Priority{PriorityLow, PriorityUrgent, PriorityNormal, PriorityUrgent, PriorityHigh}
	for i, p := range order {
		env := NewTaskRequestEnvelope(from, to, string(rune('a'+i)), nil, p)
		if err := b.Send(env); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	// Expect: urgent(i=1), urgent(i=3), high(i=4), normal(i=2), low(i=0)
	wantDescriptions := []string{"b", "d", "e", "c", "a"}
	for _, want := range wantDescriptions {
		env, ok := b.Receive(to)
		if !ok {
			t.Fatalf("expected a message, mailbox empty")
		}
		if env.Payload.TaskRequest.Description != want {
			t.Fatalf("expected description %q, got %q", want, env.Payload.TaskRequest.Description)
		}
	}

	if _, ok := b.Receive(to); ok {
		t.Fatalf("expected mailbox to be empty")
	}
}

func TestEnvelopeConservation(t *testing.T) {
	b := New(0)
	to := uuid.New()
	b.Register(to)
	env := NewTaskRequestEnvelope(uuid.New(), to, "conserve-me", nil, PriorityNormal)

	if err := b.Send(env); err != nil {
		t.Fatalf("send: %v", err)
	}
	got, ok := b.Receive(to)
	if !ok {
		t.Fatalf("expected envelope to be received")
	}
	if got.ID != env.ID {
		t.Fatalf("expected same envelope ID, got different one")
	}
}

func TestReplyPreservesCorrelationID(t *testing.T) {
	corr := uuid.New()
	req := Envelope{
		ID:            uuid.New(),
		From:          uuid.New(),
		To:            uuid.New(),
		CorrelationID: &corr,
		Payload:       Payload{Kind: KindTaskRequest, TaskRequest: &TaskRequest{Description: "x"}},
	}
	resp := req.Reply(req.To, Payload{Kind: KindTaskResult, TaskResult: &TaskResult{Success: true, Output: "y"}})
	if resp.CorrelationID == nil || *resp.CorrelationID != corr {
		t.Fatalf("expected correlation id %v to be preserved, got %v", corr, resp.CorrelationID)
	}
}

func TestUnregisterDropsQueuedMessages(t *testing.T) {
	b := New(0)
	to := uuid.New()
	b.Register(to)
	_ = b.Send(NewTaskRequestEnvelope(uuid.New(), to, "a", nil, PriorityNormal))
	b.Unregister(to)
	if b.PendingCount(to) != 0 {
		t.Fatalf("expected 0 pending after unregister")
	}
	err := b.Send(NewTaskRequestEnvelope(uuid.New(), to, "b", nil, PriorityNormal))
	if err != ErrUnknownRecipient {
		t.Fatalf("expected ErrUnknownRecipient after unregister, got %v", err)
	}
}
