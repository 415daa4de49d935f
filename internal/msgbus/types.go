// Package msgbus implements the agent-to-agent message bus: per-agent
// priority mailboxes with bounded capacity, correlation IDs, and
// registration lifecycle. It is distinct from internal/bus, which
// carries channel-adapter traffic (Telegram/Discord/...) into and out
// of the gateway; this bus only ever moves Envelopes between agents.
package msgbus

import (
	"time"

	"github.com/google/uuid"
)

// Priority orders messages within a mailbox. Higher values are served first.
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

// PayloadKind discriminates Envelope.Payload variants.
type PayloadKind string

const (
	KindTaskRequest    PayloadKind = "task_request"
	KindTaskResult     PayloadKind = "task_result"
	KindStatusQuery    PayloadKind = "status_query"
	KindStatusResponse PayloadKind = "status_response"
	KindShutdown       PayloadKind = "shutdown"
	KindError          PayloadKind = "error"
	KindBroadcast      PayloadKind = "broadcast"
)

// Payload is the sum type carried by an Envelope. Exactly one of the
// pointer fields is non-nil; Kind names which one.
type Payload struct {
	Kind PayloadKind

	TaskRequest    *TaskRequest
	TaskResult     *TaskResult
	StatusQuery    *StatusQuery
	StatusResponse *StatusResponse
	Shutdown       *Shutdown
	Error          *ErrorPayload
	Broadcast      *Broadcast
}

// TaskRequest asks the recipient agent to perform work.
type TaskRequest struct {
	Description string
	Args        map[string]string
}

// TaskResult is the outcome of a TaskRequest.
type TaskResult struct {
	Success bool
	Output  string
}

// StatusQuery asks for an agent's current status.
type StatusQuery struct{}

// StatusResponse answers a StatusQuery.
type StatusResponse struct {
	AgentName    string
	Active       bool
	PendingTasks int
}

// Shutdown asks the recipient (and, cascading, its descendants) to terminate.
type Shutdown struct{}

// ErrorPayload reports a failure that could not be expressed as a TaskResult.
type ErrorPayload struct {
	Code        string
	Message     string
	Recoverable bool
}

// Well-known error codes.
const (
	ErrCodeResourceLimit = "RESOURCE_LIMIT"
	ErrCodePolicy        = "POLICY"
	ErrCodeUnknown       = "UNKNOWN"
)

// Broadcast fans data out on a topic; routing/consumption is up to the
// orchestrator's dispatch logic and not otherwise constrained here.
type Broadcast struct {
	Topic string
	Data  map[string]string
}

// Envelope is the unit of delivery on the bus.
type Envelope struct {
	ID            uuid.UUID
	From          uuid.UUID
	To            uuid.UUID
	Payload       Payload
	Priority      Priority
	CorrelationID *uuid.UUID
	Timestamp     time.Time
}

// NewTaskRequestEnvelope builds an Envelope carrying a TaskRequest.
func NewTaskRequestEnvelope(from, to uuid.UUID, description string, args map[string]string, priority Priority) Envelope {
	return Envelope{
		ID:       uuid.New(),
		From:     from,
		To:       to,
		Priority: priority,
		Payload: Payload{
			Kind:        KindTaskRequest,
			TaskRequest: &TaskRequest{Description: description, Args: args},
		},
		Timestamp: time.Now(),
	}
}

// Reply builds a response Envelope from recipient back to sender,
// preserving the correlation ID: a response carries the request's
// correlation_id when one was set, and none otherwise.
func (e Envelope) Reply(from uuid.UUID, payload Payload) Envelope {
	return Envelope{
		ID:            uuid.New(),
		From:          from,
		To:            e.From,
		Payload:       payload,
		Priority:      e.Priority,
		CorrelationID: e.CorrelationID,
		Timestamp:     time.Now(),
	}
}
