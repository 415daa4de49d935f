package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

type fakeProvider struct {
	name    string
	fail    bool
	calls   int
}

func (f *fakeProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("boom")
	}
	return &ChatResponse{Content: "ok from " + f.name}, nil
}

func (f *fakeProvider) ChatStream(ctx context.Context, req ChatRequest, onChunk func(StreamChunk)) (*ChatResponse, error) {
	return f.Chat(ctx, req)
}

func (f *fakeProvider) DefaultModel() string { return "fake-model" }
func (f *fakeProvider) Name() string         { return f.name }

func TestCascadeFallsThroughToNextProvider(t *testing.T) {
	a := &fakeProvider{name: "a", fail: true}
	b := &fakeProvider{name: "b", fail: false}
	c := NewCascade([]Provider{a, b}, DefaultBreakerConfig())

	resp, err := c.Complete(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("expected cascade to succeed via b, got error: %v", err)
	}
	if resp.Content != "ok from b" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

// Property 14 — circuit breaker opens, recovers, resets.
func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	a := &fakeProvider{name: "a", fail: true}
	cfg := BreakerConfig{FailureThreshold: 2, RecoveryTimeout: 20 * time.Millisecond}
	c := NewCascade([]Provider{a}, cfg)

	for i := 0; i < 2; i++ {
		if _, err := c.Complete(context.Background(), ChatRequest{}); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}

	state, ok := c.State("a")
	if !ok || state != gobreaker.StateOpen {
		t.Fatalf("expected breaker open after threshold failures, got %v", state)
	}

	callsBeforeSkip := a.calls
	if _, err := c.Complete(context.Background(), ChatRequest{}); err == nil {
		t.Fatalf("expected failure while breaker is open")
	}
	if a.calls != callsBeforeSkip {
		t.Fatalf("expected provider to be skipped while breaker is open")
	}

	time.Sleep(30 * time.Millisecond)
	a.fail = false
	resp, err := c.Complete(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("expected recovery call to succeed, got %v", err)
	}
	if resp.Content != "ok from a" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	state, _ = c.State("a")
	if state != gobreaker.StateClosed {
		t.Fatalf("expected breaker closed after successful probe, got %v", state)
	}
}

func TestAllProvidersFailReturnsFailoverError(t *testing.T) {
	a := &fakeProvider{name: "a", fail: true}
	b := &fakeProvider{name: "b", fail: true}
	c := NewCascade([]Provider{a, b}, DefaultBreakerConfig())

	_, err := c.Complete(context.Background(), ChatRequest{})
	var fe *FailoverError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FailoverError, got %v (%T)", err, err)
	}
}

func TestProfileRotatorSkipsCoolingProfiles(t *testing.T) {
	r := NewProfileRotator([]AuthProfile{{Name: "p1"}, {Name: "p2"}})
	r.Cooldown("p1", time.Hour)

	p, ok := r.Next()
	if !ok || p.Name != "p2" {
		t.Fatalf("expected p2 to be the only available profile, got %+v ok=%v", p, ok)
	}
}
