package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nextlevelbuilder/goclaw/internal/agent"
	"github.com/nextlevelbuilder/goclaw/pkg/protocol"
)

// HandlerFunc processes one RPC request for a connected client.
type HandlerFunc func(ctx context.Context, client *Client, req *protocol.RequestFrame)

// MethodRouter dispatches incoming RequestFrames by method name. Extra
// methods (e.g. managed-mode CRUD) register themselves via Register the
// same way the built-ins below do.
type MethodRouter struct {
	mu      sync.RWMutex
	methods map[string]HandlerFunc
	server  *Server
}

// NewMethodRouter creates a router with the built-in connect/chat methods
// registered against server.
func NewMethodRouter(server *Server) *MethodRouter {
	r := &MethodRouter{methods: make(map[string]HandlerFunc), server: server}
	r.Register(protocol.MethodConnect, r.handleConnect)
	r.Register(protocol.MethodChatSend, r.handleChatSend)
	return r
}

// Register adds or replaces the handler for method.
func (r *MethodRouter) Register(method string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[method] = handler
}

// Dispatch looks up req.Method and runs its handler, replying with an
// invalid-request error if the method is unknown.
func (r *MethodRouter) Dispatch(ctx context.Context, client *Client, req *protocol.RequestFrame) {
	r.mu.RLock()
	handler, ok := r.methods[req.Method]
	r.mu.RUnlock()
	if !ok {
		client.SendResponse(protocol.NewErrorResponse(req.ID, protocol.ErrInvalidRequest, "unknown method: "+req.Method))
		return
	}
	handler(ctx, client, req)
}

func (r *MethodRouter) handleConnect(_ context.Context, client *Client, req *protocol.RequestFrame) {
	var params struct {
		Token string `json:"token"`
	}
	if req.Params != nil {
		_ = json.Unmarshal(req.Params, &params)
	}
	expected := r.server.cfg.Gateway.Token
	if expected != "" && params.Token != expected {
		client.SendResponse(protocol.NewErrorResponse(req.ID, protocol.ErrUnauthorized, "invalid token"))
		return
	}
	client.SendResponse(protocol.NewOKResponse(req.ID, map[string]interface{}{
		"protocol": protocol.ProtocolVersion,
		"agents":   r.server.agents.List(),
	}))
}

func (r *MethodRouter) handleChatSend(ctx context.Context, client *Client, req *protocol.RequestFrame) {
	var params struct {
		Message    string `json:"message"`
		AgentID    string `json:"agentId"`
		SessionKey string `json:"sessionKey"`
	}
	if req.Params != nil {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			client.SendResponse(protocol.NewErrorResponse(req.ID, protocol.ErrInvalidRequest, "invalid params"))
			return
		}
	}
	agentID := params.AgentID
	if agentID == "" {
		agentID = "default"
	}
	loop, err := r.server.agents.MustGet(agentID)
	if err != nil {
		client.SendResponse(protocol.NewErrorResponse(req.ID, protocol.ErrNotFound, err.Error()))
		return
	}

	result, err := loop.Run(ctx, agent.RunRequest{
		SessionKey: params.SessionKey,
		Message:    params.Message,
		RunID:      req.ID,
		Channel:    "gateway",
		PeerKind:   "direct",
		Stream:     false,
	})
	if err != nil {
		client.SendResponse(protocol.NewErrorResponse(req.ID, protocol.ErrInternal, err.Error()))
		return
	}
	client.SendResponse(protocol.NewOKResponse(req.ID, map[string]interface{}{
		"content": result.Content,
		"runId":   result.RunID,
	}))
}
