package store

import (
	"context"

	"github.com/google/uuid"
)

// Context keys used to carry routing/scoping identity alongside a
// request's context.Context, rather than threading it through every
// function signature between the agent loop and the store layer.

type ctxKey string

const (
	ctxAgentID   ctxKey = "store_agent_id"
	ctxUserID    ctxKey = "store_user_id"
	ctxAgentType ctxKey = "store_agent_type"
	ctxSenderID  ctxKey = "store_sender_id"
)

func WithAgentID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxAgentID, id)
}

func AgentIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxAgentID).(uuid.UUID)
	return id, ok
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxUserID).(string)
	return v
}

func WithAgentType(ctx context.Context, agentType string) context.Context {
	return context.WithValue(ctx, ctxAgentType, agentType)
}

func AgentTypeFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxAgentType).(string)
	return v
}

func WithSenderID(ctx context.Context, senderID string) context.Context {
	return context.WithValue(ctx, ctxSenderID, senderID)
}

func SenderIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxSenderID).(string)
	return v
}

// GenNewID returns a new random identifier for store records.
func GenNewID() uuid.UUID {
	return uuid.New()
}
