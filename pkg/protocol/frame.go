package protocol

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the wire version advertised on connect and health checks.
const ProtocolVersion = 1

// FrameType distinguishes the three kinds of JSON frame exchanged over the
// gateway WebSocket connection.
type FrameType string

const (
	FrameTypeRequest  FrameType = "request"
	FrameTypeResponse FrameType = "response"
	FrameTypeEvent    FrameType = "event"
)

// Error codes used in ResponseFrame.Error.Code.
const (
	ErrInvalidRequest = "invalid_request"
	ErrNotFound       = "not_found"
	ErrUnauthorized   = "unauthorized"
	ErrRateLimited    = "rate_limited"
	ErrInternal       = "internal"
)

// RequestFrame is a client -> server RPC call.
type RequestFrame struct {
	Type   FrameType       `json:"type"`
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ErrorInfo describes a failed RPC call.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseFrame is a server -> client reply to a RequestFrame, matched by ID.
type ResponseFrame struct {
	Type    FrameType   `json:"type"`
	ID      string      `json:"id"`
	OK      bool        `json:"ok"`
	Payload interface{} `json:"payload,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// EventFrame is an unsolicited server -> client push (agent progress,
// chat chunks, presence, etc).
type EventFrame struct {
	Type    FrameType   `json:"type"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// NewOKResponse builds a successful ResponseFrame for id.
func NewOKResponse(id string, payload interface{}) *ResponseFrame {
	return &ResponseFrame{Type: FrameTypeResponse, ID: id, OK: true, Payload: payload}
}

// NewErrorResponse builds a failed ResponseFrame for id.
func NewErrorResponse(id, code, message string) *ResponseFrame {
	return &ResponseFrame{Type: FrameTypeResponse, ID: id, OK: false, Error: &ErrorInfo{Code: code, Message: message}}
}

// NewEvent builds an EventFrame for name.
func NewEvent(name string, payload interface{}) *EventFrame {
	return &EventFrame{Type: FrameTypeEvent, Event: name, Payload: payload}
}

// ParseFrameType extracts just the "type" discriminator from a raw frame
// without decoding the rest of the payload, so the client can pick the
// right concrete struct to unmarshal into.
func ParseFrameType(raw []byte) (FrameType, error) {
	var probe struct {
		Type FrameType `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("parse frame type: %w", err)
	}
	if probe.Type == "" {
		return "", fmt.Errorf("frame missing type field")
	}
	return probe.Type, nil
}
