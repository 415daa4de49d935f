// Package classify implements the channel intelligence pipeline: turning a
// raw ChannelMessage into a ClassifiedMessage carrying priority, type, and a
// suggested downstream action.
package classify

import "time"

// Priority mirrors msgbus.Priority's ordering but lives independently since
// channel intelligence runs upstream of any agent or mailbox.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// MessageType categorizes the intent of an inbound channel message.
type MessageType string

const (
	TypeNotification   MessageType = "notification"
	TypeQuestion        MessageType = "question"
	TypeActionRequired  MessageType = "action_required"
	TypeChitchat        MessageType = "chitchat"
)

// SuggestedActionKind is the disposition classification recommends.
type SuggestedActionKind string

const (
	ActionAddToDigest    SuggestedActionKind = "add_to_digest"
	ActionRouteToAgent   SuggestedActionKind = "route_to_agent"
	ActionScheduleFollow SuggestedActionKind = "schedule_follow_up"
	ActionIgnore         SuggestedActionKind = "ignore"
)

// SuggestedAction carries the follow-up minutes when its kind is
// ActionScheduleFollow; zero otherwise.
type SuggestedAction struct {
	Kind    SuggestedActionKind
	Minutes int
}

// ChannelMessage is the wire shape delivered by a channel adapter.
type ChannelMessage struct {
	ID          string
	ChannelType string
	ChannelID   string
	SenderID    string
	SenderName  string
	Text        string
	IsCommand   bool
	HasFile     bool
	Timestamp   time.Time
	ReplyTo     string
	ThreadID    string
	Metadata    map[string]string
}

// ClassifiedMessage wraps a ChannelMessage with the pipeline's verdict.
type ClassifiedMessage struct {
	Message         ChannelMessage
	Priority        Priority
	MessageType     MessageType
	SuggestedAction SuggestedAction
	Confidence      float64
	Reasoning       string
	ClassifiedAt    time.Time
}
