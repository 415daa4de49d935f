package classify

import (
	"strings"
	"time"
)

var nowFunc = time.Now

// urgentKeywords bump priority to Urgent and mark the message action-required.
var urgentKeywords = []string{"urgent", "asap", "critical", "down", "outage", "emergency", "production is"}

// actionKeywords mark a message as requiring action even without urgency.
var actionKeywords = []string{"please", "can you", "could you", "need", "todo", "fix", "deploy", "approve"}

// Classifier is a keyless, keyword-driven rule engine. It requires no
// external model and produces deterministic, explainable verdicts.
type Classifier struct {
	FollowUpMinutes int
}

// New returns a Classifier with the default follow-up delay (60 minutes)
// for messages it decides to schedule rather than act on immediately.
func New() *Classifier {
	return &Classifier{FollowUpMinutes: 60}
}

// Classify inspects msg and returns its verdict.
func (c *Classifier) Classify(msg ChannelMessage) ClassifiedMessage {
	lower := strings.ToLower(msg.Text)

	priority := PriorityNormal
	msgType := TypeNotification
	action := SuggestedAction{Kind: ActionAddToDigest}
	var reasons []string

	switch {
	case containsAny(lower, urgentKeywords):
		priority = PriorityUrgent
		msgType = TypeActionRequired
		action = SuggestedAction{Kind: ActionRouteToAgent}
		reasons = append(reasons, "urgent keyword matched")
	case msg.IsCommand:
		priority = PriorityHigh
		msgType = TypeActionRequired
		action = SuggestedAction{Kind: ActionRouteToAgent}
		reasons = append(reasons, "message is a command")
	case strings.Contains(msg.Text, "?"):
		priority = PriorityNormal
		msgType = TypeQuestion
		action = SuggestedAction{Kind: ActionRouteToAgent}
		reasons = append(reasons, "message contains a question")
	case containsAny(lower, actionKeywords):
		priority = PriorityHigh
		msgType = TypeActionRequired
		action = SuggestedAction{Kind: ActionScheduleFollow, Minutes: c.FollowUpMinutes}
		reasons = append(reasons, "action-request phrasing matched")
	case strings.TrimSpace(msg.Text) == "":
		msgType = TypeChitchat
		action = SuggestedAction{Kind: ActionIgnore}
		reasons = append(reasons, "empty content")
	default:
		msgType = TypeNotification
		action = SuggestedAction{Kind: ActionAddToDigest}
		reasons = append(reasons, "no signal matched, defaulting to digest")
	}

	confidence := 0.6
	if len(reasons) > 0 {
		confidence = 0.75
	}

	return ClassifiedMessage{
		Message:         msg,
		Priority:        priority,
		MessageType:     msgType,
		SuggestedAction: action,
		Confidence:      confidence,
		Reasoning:       strings.Join(reasons, "; "),
		ClassifiedAt:    nowFunc(),
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
