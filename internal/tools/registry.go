package tools

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/goclaw/internal/providers"
	"github.com/nextlevelbuilder/goclaw/internal/redact"
)

// Tool is the interface every registered tool implements. Parameters
// returns a JSON-schema fragment describing the tool's arguments, used
// to build the provider-facing ToolDefinition.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) *Result
}

// AsyncCallback delivers a follow-up Result for a tool that returned
// Async: true from its initial Execute call.
type AsyncCallback func(update *Result)

// ToProviderDef converts a Tool into the function-calling schema a
// provider expects.
func ToProviderDef(t Tool) providers.ToolDefinition {
	return providers.ToolDefinition{
		Type: "function",
		Function: providers.ToolFunctionSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}

// Registry holds the set of tools available to an agent loop and
// dispatches calls by name. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool

	limiters  map[string]*rate.Limiter
	limitRate rate.Limit
	limitBurst int

	scrub    bool
	redactor *redact.Redactor
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds or replaces a tool under its own Name().
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Unregister removes a tool by name. No-op if absent.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
	if r.limiters != nil {
		delete(r.limiters, name)
	}
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the names of every registered tool, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ProviderDefs returns the provider-facing schema for every registered
// tool, sorted by name.
func (r *Registry) ProviderDefs() []providers.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]providers.ToolDefinition, 0, len(r.tools))
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		defs = append(defs, ToProviderDef(r.tools[name]))
	}
	return defs
}

// SetRateLimiter caps tool executions to perHour calls per tool name,
// using a token-bucket limiter per tool so a noisy tool can't starve
// the others. perHour <= 0 disables limiting.
func (r *Registry) SetRateLimiter(perHour int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if perHour <= 0 {
		r.limitRate = 0
		r.limiters = nil
		return
	}
	r.limitRate = rate.Limit(float64(perHour) / 3600.0)
	r.limitBurst = perHour
	if r.limitBurst < 1 {
		r.limitBurst = 1
	}
	r.limiters = make(map[string]*rate.Limiter)
}

func (r *Registry) limiterFor(name string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limiters == nil {
		return nil
	}
	l, ok := r.limiters[name]
	if !ok {
		l = rate.NewLimiter(r.limitRate, r.limitBurst)
		r.limiters[name] = l
	}
	return l
}

// SetScrubbing enables or disables secret redaction (internal/redact)
// over every tool result's ForLLM/ForUser text before it leaves the
// registry.
func (r *Registry) SetScrubbing(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrub = enabled
	if enabled && r.redactor == nil {
		r.redactor = redact.New()
	}
}

// ExecuteWithContext looks up name, injects the calling channel/chat/peer
// identity and session key into ctx, and runs the tool. asyncCB, if
// non-nil, is stashed on the context so the tool can deliver follow-up
// results for long-running work.
func (r *Registry) ExecuteWithContext(ctx context.Context, name string, args map[string]interface{}, channel, chatID, peerKind, sessionKey string, asyncCB AsyncCallback) *Result {
	t, ok := r.Get(name)
	if !ok {
		return ErrorResult("unknown tool: " + name)
	}

	if lim := r.limiterFor(name); lim != nil && !lim.Allow() {
		return ErrorResult("rate limit exceeded for tool: " + name)
	}

	ctx = WithToolChannel(ctx, channel)
	ctx = WithToolChatID(ctx, chatID)
	ctx = WithToolPeerKind(ctx, peerKind)
	ctx = WithToolSandboxKey(ctx, sessionKey)
	if asyncCB != nil {
		ctx = WithToolAsyncCB(ctx, asyncCB)
	}

	result := t.Execute(ctx, args)
	r.scrubResult(result)
	return result
}

func (r *Registry) scrubResult(result *Result) {
	if result == nil {
		return
	}
	r.mu.RLock()
	scrub, redactor := r.scrub, r.redactor
	r.mu.RUnlock()
	if !scrub || redactor == nil {
		return
	}
	if result.ForLLM != "" {
		result.ForLLM = redactor.Redact(result.ForLLM).Redacted
	}
	if result.ForUser != "" {
		result.ForUser = redactor.Redact(result.ForUser).Redacted
	}
}
