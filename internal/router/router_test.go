package router

import (
	"testing"

	"github.com/google/uuid"
)

type fakeMsg struct {
	channelType string
	senderID    string
	text        string
}

func (f fakeMsg) RouteChannelType() string { return f.channelType }
func (f fakeMsg) RouteSenderID() string    { return f.senderID }
func (f fakeMsg) RouteTextContent() string { return f.text }

func TestRouteHighestPriorityWins(t *testing.T) {
	r := New()
	lowTarget := uuid.New()
	highTarget := uuid.New()
	deflt := uuid.New()

	r.AddRoute(Route{
		Priority:   1,
		Target:     lowTarget,
		Conditions: []RouteCondition{{Kind: ConditionChannelType, Value: "slack"}},
	})
	r.AddRoute(Route{
		Priority:   5,
		Target:     highTarget,
		Conditions: []RouteCondition{{Kind: ConditionChannelType, Value: "slack"}},
	})

	msg := fakeMsg{channelType: "slack"}
	got := r.Route(msg, deflt)
	if got != highTarget {
		t.Fatalf("expected highTarget to win, got %v", got)
	}
}

func TestRouteNoMatchReturnsDefault(t *testing.T) {
	r := New()
	deflt := uuid.New()
	r.AddRoute(Route{
		Priority:   1,
		Target:     uuid.New(),
		Conditions: []RouteCondition{{Kind: ConditionChannelType, Value: "discord"}},
	})

	msg := fakeMsg{channelType: "slack"}
	got := r.Route(msg, deflt)
	if got != deflt {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestRouteAllConditionsMustMatch(t *testing.T) {
	r := New()
	deflt := uuid.New()
	target := uuid.New()
	r.AddRoute(Route{
		Priority: 1,
		Target:   target,
		Conditions: []RouteCondition{
			{Kind: ConditionChannelType, Value: "slack"},
			{Kind: ConditionKeyword, Value: "urgent"},
		},
	})

	if got := r.Route(fakeMsg{channelType: "slack", text: "nothing special"}, deflt); got != deflt {
		t.Fatalf("expected default when keyword missing, got %v", got)
	}
	if got := r.Route(fakeMsg{channelType: "slack", text: "this is URGENT"}, deflt); got != target {
		t.Fatalf("expected target when all conditions match, got %v", got)
	}
}

func TestRouteInsertionOrderTieBreak(t *testing.T) {
	r := New()
	deflt := uuid.New()
	first := uuid.New()
	second := uuid.New()
	r.AddRoute(Route{Priority: 3, Target: first, Conditions: []RouteCondition{{Kind: ConditionChannelType, Value: "slack"}}})
	r.AddRoute(Route{Priority: 3, Target: second, Conditions: []RouteCondition{{Kind: ConditionChannelType, Value: "slack"}}})

	got := r.Route(fakeMsg{channelType: "slack"}, deflt)
	if got != first {
		t.Fatalf("expected first-inserted route to win tie, got %v", got)
	}
}
