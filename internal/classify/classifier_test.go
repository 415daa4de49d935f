package classify

import "testing"

func TestClassifyUrgentIsActionRequired(t *testing.T) {
	c := New()
	got := c.Classify(ChannelMessage{Text: "production is down, need help ASAP"})
	if got.Priority != PriorityUrgent {
		t.Fatalf("expected urgent priority, got %v", got.Priority)
	}
	if got.MessageType != TypeActionRequired {
		t.Fatalf("expected action_required type, got %v", got.MessageType)
	}
}

func TestClassifyQuestion(t *testing.T) {
	c := New()
	got := c.Classify(ChannelMessage{Text: "what is the weather today?"})
	if got.MessageType != TypeQuestion {
		t.Fatalf("expected question type, got %v", got.MessageType)
	}
	if got.SuggestedAction.Kind != ActionRouteToAgent {
		t.Fatalf("expected route_to_agent action, got %v", got.SuggestedAction.Kind)
	}
}

func TestClassifyCommand(t *testing.T) {
	c := New()
	got := c.Classify(ChannelMessage{Text: "/status", IsCommand: true})
	if got.Priority != PriorityHigh || got.MessageType != TypeActionRequired {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestClassifyDefaultsToDigest(t *testing.T) {
	c := New()
	got := c.Classify(ChannelMessage{Text: "fyi, deployment finished"})
	if got.SuggestedAction.Kind != ActionAddToDigest {
		t.Fatalf("expected add_to_digest, got %v", got.SuggestedAction.Kind)
	}
}

func TestClassifyEmptyIsIgnored(t *testing.T) {
	c := New()
	got := c.Classify(ChannelMessage{Text: "   "})
	if got.SuggestedAction.Kind != ActionIgnore {
		t.Fatalf("expected ignore action, got %v", got.SuggestedAction.Kind)
	}
}
